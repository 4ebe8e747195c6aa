package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lavarenta-backend/internal/config"
	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository"
	"lavarenta-backend/internal/storage"
)

// TaskCore holds the collaborators every task-family service shares. The
// delivery, pickup and change services embed it and differ only in their
// per-kind completion semantics.
type TaskCore struct {
	store      repository.Store
	files      storage.EvidenceStore
	pacing     *PacingGuard
	settlement *SettlementCalculator
	notifier   Notifier
	pricing    config.PricingConfig
	now        func() time.Time
}

func NewTaskCore(store repository.Store, files storage.EvidenceStore, pacing *PacingGuard, settlement *SettlementCalculator, notifier Notifier, pricing config.PricingConfig) TaskCore {
	return TaskCore{
		store:      store,
		files:      files,
		pacing:     pacing,
		settlement: settlement,
		notifier:   notifier,
		pricing:    pricing,
		now:        time.Now,
	}
}

// counterName builds the sequence counter key for a task kind. The daily
// counter restarts every calendar day by keying on the date.
func counterName(kind domain.TaskKind, day *time.Time) string {
	k := strings.ToLower(string(kind))
	if day == nil {
		return fmt.Sprintf("task_%s_total", k)
	}
	return fmt.Sprintf("task_%s_%s", k, day.Format("2006-01-02"))
}

// scheduleTask creates a visit of the given kind for a rent. moveRentTo,
// when non-empty, is the transient status the rent takes while the visit is
// pending; the previous status is stored on the task so cancellation can
// restore it.
func (c *TaskCore) scheduleTask(ctx context.Context, tx repository.Tx, kind domain.TaskKind, in SaveTaskInput, moveRentTo domain.RentStatus) (*domain.Task, error) {
	rent, err := tx.Rents().GetByID(ctx, in.RentID)
	if err != nil {
		return nil, err
	}
	if !rent.IsOpen() {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "la renta %d ya está cerrada", rent.ID)
	}

	// one live visit per rent and kind
	existing, err := tx.Tasks().ListByRentAndKind(ctx, in.RentID, kind)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if !t.Status.IsTerminal() {
			return nil, domain.Errorf(domain.CodeDuplicate, "la renta %d ya tiene una visita de %s pendiente", rent.ID, kind)
		}
	}

	window, err := domain.NormalizeTimeWindow(kind, in.Date, in.TimeOption, in.FromTime, in.EndTime)
	if err != nil {
		return nil, err
	}

	total, err := tx.Counters().Next(ctx, counterName(kind, nil))
	if err != nil {
		return nil, err
	}
	daily, err := tx.Counters().Next(ctx, counterName(kind, &window.Date))
	if err != nil {
		return nil, err
	}

	now := c.now()
	task := &domain.Task{
		Kind:           kind,
		TotalNumber:    total,
		DayNumber:      daily,
		Status:         domain.TaskStatusEspera,
		Date:           window.Date,
		FromTime:       window.From,
		EndTime:        window.End,
		TimeOption:     window.Option,
		RentID:         rent.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      in.ActingUser,
		PrevRentStatus: rent.Status,
	}

	if moveRentTo != "" && rent.Status != moveRentTo {
		if !rent.Status.CanTransition(moveRentTo) {
			return nil, domain.Errorf(domain.CodeInvalidStatus,
				"la renta %d no puede pasar de %s a %s", rent.ID, rent.Status, moveRentTo)
		}
		rent.Status = moveRentTo
		rent.UpdatedAt = now
		rent.UpdatedBy = in.ActingUser
		if err := tx.Rents().Update(ctx, rent); err != nil {
			return nil, err
		}
	}

	if err := tx.Tasks().Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// assignOperator puts a waiting task on an operator's route. The status does
// not change here: the operator flips it to EN_CAMINO when actually heading
// out. Blocked operators cannot take work.
func (c *TaskCore) assignOperator(ctx context.Context, kind domain.TaskKind, taskID, operatorID, actingUser int64) error {
	var assigned *domain.Task
	var operator *domain.Operator

	err := c.store.WithinTx(ctx, func(tx repository.Tx) error {
		task, err := tx.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.Kind != kind {
			return domain.Errorf(domain.CodeNotFound, "visita %d no es de tipo %s", taskID, kind)
		}
		if task.Status != domain.TaskStatusEspera {
			return domain.Errorf(domain.CodeInvalidStatus, "la visita %d no está en espera", taskID)
		}

		op, err := tx.Operators().GetByID(ctx, operatorID)
		if err != nil {
			return err
		}
		if op.Blocked {
			return domain.Errorf(domain.CodeInvalidStatus, "el operador %s está bloqueado", op.Name)
		}

		now := c.now()
		task.OperatorID = &operatorID
		task.TakenAt = &now
		task.WasSent = true
		task.UpdatedAt = now
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}
		assigned, operator = task, op
		return nil
	})
	if err != nil {
		return err
	}

	if c.notifier != nil {
		if err := c.notifier.SendTaskAssigned(ctx, operator.Email, string(kind), assigned.Date); err != nil {
			logger.Warn("task assignment notification failed", "task_id", taskID, "error", err)
		}
	}
	return nil
}

// cancelTask closes a pending visit with a mandatory reason. restoreStatus
// reverts the rent to the status the visit's creation replaced; the delivery
// service additionally cancels the whole rent when asked to.
func (c *TaskCore) cancelTask(ctx context.Context, tx repository.Tx, kind domain.TaskKind, in CancelTaskInput, restoreStatus bool) (*domain.Task, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.NewError(domain.CodeMissingField, "la razón de cancelación es obligatoria")
	}

	task, err := tx.Tasks().GetByID(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Kind != kind {
		return nil, domain.Errorf(domain.CodeNotFound, "visita %d no es de tipo %s", in.TaskID, kind)
	}
	if !task.Status.Completable() {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "la visita %d ya está cerrada", in.TaskID)
	}

	now := c.now()
	task.Status = domain.TaskStatusCancelada
	task.Reason = in.Reason
	task.FinishedAt = &now
	task.UpdatedAt = now
	if err := tx.Tasks().Update(ctx, task); err != nil {
		return nil, err
	}

	if restoreStatus && task.PrevRentStatus != "" {
		rent, err := tx.Rents().GetByID(ctx, task.RentID)
		if err != nil {
			return nil, err
		}
		if rent.Status != task.PrevRentStatus && !rent.Status.IsTerminal() {
			rent.Status = task.PrevRentStatus
			rent.UpdatedAt = now
			rent.UpdatedBy = in.ActingUser
			if err := tx.Rents().Update(ctx, rent); err != nil {
				return nil, err
			}
		}
	}
	return task, nil
}

// rescheduleTask moves a pending visit to a new window. A visit that was
// never dispatched just changes its window in place; a dispatched one is
// archived as REPROGRAMADA and replaced by a fresh waiting record that
// keeps the original's sequence numbers.
func (c *TaskCore) rescheduleTask(ctx context.Context, tx repository.Tx, kind domain.TaskKind, in UpdateTimeInput) (*domain.Task, error) {
	task, err := tx.Tasks().GetByID(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Kind != kind {
		return nil, domain.Errorf(domain.CodeNotFound, "visita %d no es de tipo %s", in.TaskID, kind)
	}
	if !task.Status.Completable() {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "la visita %d ya está cerrada", in.TaskID)
	}

	window, err := domain.NormalizeTimeWindow(kind, in.Date, in.TimeOption, in.FromTime, in.EndTime)
	if err != nil {
		return nil, err
	}

	now := c.now()
	if !task.WasSent {
		task.Date = window.Date
		task.FromTime = window.From
		task.EndTime = window.End
		task.TimeOption = window.Option
		task.UpdatedAt = now
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return nil, err
		}
		return task, nil
	}

	task.Status = domain.TaskStatusReprogramada
	task.FinishedAt = &now
	task.UpdatedAt = now
	if err := tx.Tasks().Update(ctx, task); err != nil {
		return nil, err
	}

	replacement := &domain.Task{
		Kind:           kind,
		TotalNumber:    task.TotalNumber,
		DayNumber:      task.DayNumber,
		Status:         domain.TaskStatusEspera,
		Date:           window.Date,
		FromTime:       window.From,
		EndTime:        window.End,
		TimeOption:     window.Option,
		RentID:         task.RentID,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      in.ActingUser,
		PrevRentStatus: task.PrevRentStatus,
	}
	if err := tx.Tasks().Create(ctx, replacement); err != nil {
		return nil, err
	}
	return replacement, nil
}

// loadCompletableTask fetches a task and verifies it can still be completed
// by the acting operator
func (c *TaskCore) loadCompletableTask(ctx context.Context, tx repository.Tx, kind domain.TaskKind, taskID int64) (*domain.Task, error) {
	task, err := tx.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Kind != kind {
		return nil, domain.Errorf(domain.CodeNotFound, "visita %d no es de tipo %s", taskID, kind)
	}
	if !task.Status.Completable() {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "la visita %d ya está cerrada", taskID)
	}
	return task, nil
}

// uploadEvidence stores the completion photos and returns their URLs keyed
// by original name, plus the storage keys for rollback cleanup
func (c *TaskCore) uploadEvidence(ctx context.Context, files []EvidenceFile) (map[string]string, []string, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}
	urls := make(map[string]string, len(files))
	keys := make([]string, 0, len(files))
	for _, f := range files {
		key := uuid.New().String()
		url, err := c.files.Upload(ctx, key, f.ContentType, f.Data)
		if err != nil {
			c.cleanupEvidence(ctx, keys)
			return nil, nil, fmt.Errorf("failed to upload evidence %s: %w", f.Name, err)
		}
		urls[f.Name] = url
		keys = append(keys, key)
	}
	return urls, keys, nil
}

// cleanupEvidence best-effort removes uploaded files after a failed
// completion
func (c *TaskCore) cleanupEvidence(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := c.files.Delete(ctx, key); err != nil {
			logger.Warn("orphaned evidence file after rollback", "key", key, "error", err)
		}
	}
}

// applyPacing runs the anti-idling guard for a completion and notifies the
// caller's deferred hook when the operator got blocked
func (c *TaskCore) applyPacing(ctx context.Context, tx repository.Tx, operatorID int64, kind string, now time.Time) (func(context.Context), error) {
	blocked, reason, err := c.pacing.RecordAndCheck(ctx, tx, operatorID, kind, now)
	if err != nil {
		return nil, err
	}
	if !blocked || c.notifier == nil {
		return nil, nil
	}
	op, err := tx.Operators().GetByID(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	email, name := op.Email, op.Name
	return func(ctx context.Context) {
		if err := c.notifier.SendOperatorBlocked(ctx, email, name, reason); err != nil {
			logger.Warn("operator block notification failed", "operator_id", operatorID, "error", err)
		}
	}, nil
}
