package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository"
	"lavarenta-backend/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	store  repository.Store
	tokens security.TokenManager
}

func NewAuthService(store repository.Store, tokens security.TokenManager) AuthService {
	return &authService{store: store, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	op, err := s.store.Operators().GetByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	access, err := s.tokens.GenerateAccessToken(op.ID, op.Email, string(op.Role))
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(op.ID, op.Email)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", security.ErrWrongTokenType
	}

	op, err := s.store.Operators().GetByID(ctx, claims.OperatorID)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	access, err := s.tokens.GenerateAccessToken(op.ID, op.Email, string(op.Role))
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(op.ID, op.Email)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

type adminService struct {
	store repository.Store
}

func NewAdminService(store repository.Store) AdminService {
	return &adminService{store: store}
}

// UnblockOperatorData lifts a pacing block. Stamping lastUnlockAt restarts
// the guard's observation window so the operator is not instantly re-blocked
// by stale gaps.
func (s *adminService) UnblockOperatorData(ctx context.Context, operatorID, actingUser int64) error {
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		op, err := tx.Operators().GetByID(ctx, operatorID)
		if err != nil {
			return err
		}
		if !op.Blocked {
			return nil
		}
		return tx.Operators().Unblock(ctx, operatorID, time.Now())
	})
	if err != nil {
		return err
	}
	logger.Info("operator unblocked", "operator_id", operatorID, "by", actingUser)
	return nil
}
