package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/security"
)

func testOperator(t *testing.T, password string) *domain.Operator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.Operator{
		ID:           7,
		Name:         "Pedro",
		Email:        "pedro@lavarenta.mx",
		Role:         domain.OperatorRoleField,
		PasswordHash: string(hash),
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	store := newFakeStore()
	tokens := security.NewTokenManager("test-secret", 60)
	svc := NewAuthService(store, tokens)
	ctx := testContext()

	op := testOperator(t, "hunter2")
	store.operators.On("GetByEmail", ctx, "pedro@lavarenta.mx").Return(op, nil)

	access, refresh, err := svc.Login(ctx, "pedro@lavarenta.mx", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := tokens.ValidateToken(access)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.OperatorID)
	assert.Equal(t, security.TokenTypeAccess, claims.Type)
	assert.Equal(t, string(domain.OperatorRoleField), claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewAuthService(store, security.NewTokenManager("test-secret", 60))
	ctx := testContext()

	store.operators.On("GetByEmail", ctx, "pedro@lavarenta.mx").Return(testOperator(t, "hunter2"), nil)

	_, _, err := svc.Login(ctx, "pedro@lavarenta.mx", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	store := newFakeStore()
	svc := NewAuthService(store, security.NewTokenManager("test-secret", 60))
	ctx := testContext()

	store.operators.On("GetByEmail", ctx, "nadie@lavarenta.mx").
		Return(nil, domain.Errorf(domain.CodeNotFound, "operador no encontrado"))

	_, _, err := svc.Login(ctx, "nadie@lavarenta.mx", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesTokens(t *testing.T) {
	store := newFakeStore()
	tokens := security.NewTokenManager("test-secret", 60)
	svc := NewAuthService(store, tokens)
	ctx := testContext()

	op := testOperator(t, "hunter2")
	store.operators.On("GetByID", ctx, int64(7)).Return(op, nil)

	refresh, err := tokens.GenerateRefreshToken(7, op.Email)
	require.NoError(t, err)

	access, newRefresh, err := svc.Refresh(ctx, refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newRefresh)

	claims, err := tokens.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, security.TokenTypeAccess, claims.Type)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	store := newFakeStore()
	tokens := security.NewTokenManager("test-secret", 60)
	svc := NewAuthService(store, tokens)

	access, err := tokens.GenerateAccessToken(7, "pedro@lavarenta.mx", "FIELD")
	require.NoError(t, err)

	_, _, err = svc.Refresh(testContext(), access)
	assert.ErrorIs(t, err, security.ErrWrongTokenType)
}

func TestUnblockOperatorStampsUnlock(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store)
	ctx := testContext()

	store.operators.On("GetByID", ctx, int64(7)).
		Return(&domain.Operator{ID: 7, Blocked: true}, nil)
	store.operators.On("Unblock", ctx, int64(7), mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := svc.UnblockOperatorData(ctx, 7, 1)
	require.NoError(t, err)
	store.operators.AssertExpectations(t)
}

func TestUnblockOperatorIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store)
	ctx := testContext()

	store.operators.On("GetByID", ctx, int64(7)).
		Return(&domain.Operator{ID: 7, Blocked: false}, nil)

	err := svc.UnblockOperatorData(ctx, 7, 1)
	require.NoError(t, err)
	store.operators.AssertNotCalled(t, "Unblock", mock.Anything, mock.Anything, mock.Anything)
}
