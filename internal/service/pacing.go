package service

import (
	"context"
	"fmt"
	"time"

	"lavarenta-backend/internal/config"
	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository"
)

// PacingGuard is the anti-idling control. After every completion it looks
// at the mean gap between the operator's recent same-day completions and
// blocks the account when the mean exceeds the role's threshold. It runs
// inside the completion's transaction so a blocked operator cannot slip
// another completion through the window.
type PacingGuard struct {
	windowSize int
	fieldMin   int
	officeMin  int
}

func NewPacingGuard(cfg config.PacingConfig) *PacingGuard {
	return &PacingGuard{
		windowSize: cfg.WindowSize,
		fieldMin:   cfg.FieldThresholdMin,
		officeMin:  cfg.OfficeThresholdMin,
	}
}

// RecordAndCheck records the completion and applies the guard. It reports
// whether the operator got blocked and with what reason; blocking itself is
// never an error, only storage failures are.
func (g *PacingGuard) RecordAndCheck(ctx context.Context, tx repository.Tx, operatorID int64, kind string, now time.Time) (bool, string, error) {
	if err := tx.OperatorActions().Record(ctx, operatorID, kind, now); err != nil {
		return false, "", err
	}

	op, err := tx.Operators().GetByID(ctx, operatorID)
	if err != nil {
		return false, "", err
	}
	if op.Blocked {
		return false, "", nil
	}

	cutoff := domain.StartOfDay(now)
	if op.LastUnlockAt != nil && op.LastUnlockAt.After(cutoff) {
		cutoff = *op.LastUnlockAt
	}

	times, err := tx.OperatorActions().ListSince(ctx, operatorID, cutoff, g.windowSize)
	if err != nil {
		return false, "", err
	}
	if len(times) < 2 {
		return false, "", nil
	}

	// times come newest first; mean gap is the span over the window
	span := times[0].Sub(times[len(times)-1])
	mean := span / time.Duration(len(times)-1)

	threshold := time.Duration(op.PacingThresholdMinutes(g.fieldMin, g.officeMin)) * time.Minute
	if mean <= threshold {
		return false, "", nil
	}

	reason := fmt.Sprintf("ritmo de trabajo excedido: %.0f min promedio entre tareas", mean.Minutes())
	if err := tx.Operators().Block(ctx, operatorID, reason, now); err != nil {
		return false, "", err
	}
	logger.Warn("operator blocked by pacing guard",
		"operator_id", operatorID, "mean_minutes", mean.Minutes(), "threshold_minutes", threshold.Minutes())
	return true, reason, nil
}
