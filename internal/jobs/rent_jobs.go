package jobs

import (
	"context"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/logger"
)

// systemUser stamps updatedBy on rows touched by scheduled jobs
const systemUser int64 = 0

// MarkOverdueRents flips every RENTADO rent whose end date has passed to
// VENCIDA. Overdue rents stay fully operational: they can still be
// extended, swapped or collected.
func (jr *JobRunner) MarkOverdueRents() {
	jr.runWithRecovery("MarkOverdueRents", func() {
		ctx := context.Background()
		cutoff := domain.StartOfDay(time.Now())

		n, err := jr.store.Rents().MarkOverdue(ctx, cutoff, systemUser)
		if err != nil {
			logger.Error("Failed to mark overdue rents", "error", err)
			return
		}
		logger.Info("Marked overdue rents", "count", n, "cutoff", cutoff)
	})
}
