package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"lavarenta-backend/internal/config"
	"lavarenta-backend/internal/domain"
)

var testClock = time.Date(2026, 8, 20, 11, 30, 0, 0, time.UTC)

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		Levels: map[int]config.LevelPricing{
			1: {WeekCents: 45000, DayCents: 7500},
			2: {WeekCents: 40000, DayCents: 7000},
		},
	}
}

// newTestCore wires a TaskCore against the repository mocks with a frozen
// clock, no evidence store and no notifier
func newTestCore(store *fakeStore) TaskCore {
	core := NewTaskCore(store, nil, testPacingGuard(), NewSettlementCalculator(testSettlementConfig()), nil, testPricing())
	core.now = func() time.Time { return testClock }
	return core
}

// expectQuietPacing stubs the guard calls a completion makes so the test's
// operator stays unblocked
func expectQuietPacing(store *fakeStore, operatorID int64) {
	store.actions.On("Record", mock.Anything, operatorID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	store.operators.On("GetByID", mock.Anything, operatorID).
		Return(&domain.Operator{ID: operatorID, Role: domain.OperatorRoleField}, nil)
	store.actions.On("ListSince", mock.Anything, operatorID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).Return(nil, nil)
}

func testContext() context.Context { return context.Background() }
