package service

import (
	"context"
	"fmt"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository"
)

// consecutiveChangesForBonus is how many swaps in a row earn the customer a
// free week
const consecutiveChangesForBonus = 4

// changeService runs the mid-rental swap flow: a faulty machine is either
// fixed on-site or exchanged for a working one from the operator's vehicle
type changeService struct {
	TaskCore
}

func NewChangeService(core TaskCore) ChangeService {
	return &changeService{TaskCore: core}
}

// SaveChangeData schedules the swap and parks the rent in EN_CAMBIO until
// the visit resolves
func (s *changeService) SaveChangeData(ctx context.Context, in SaveTaskInput) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		task, err = s.scheduleTask(ctx, tx, domain.TaskKindChange, in, domain.RentStatusEnCambio)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("change scheduled", "task_id", task.ID, "rent_id", in.RentID, "date", task.Date)
	return task, nil
}

func (s *changeService) AssignChangeOperator(ctx context.Context, taskID, operatorID, actingUser int64) error {
	return s.assignOperator(ctx, domain.TaskKindChange, taskID, operatorID, actingUser)
}

// MarkCompleteChangeData resolves the swap. A fix on-site leaves the machine
// in place; otherwise the replacement goes to the customer and the faulty
// unit comes back on the vehicle. Either way the rent returns to the status
// the visit interrupted.
func (s *changeService) MarkCompleteChangeData(ctx context.Context, in CompleteChangeInput) (*domain.Rent, error) {
	var (
		rent        *domain.Rent
		uploaded    []string
		notifyBlock func(context.Context)
	)

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		task, err := s.loadCompletableTask(ctx, tx, domain.TaskKindChange, in.TaskID)
		if err != nil {
			return err
		}
		if task.OperatorID == nil {
			return domain.NewError(domain.CodeInvalidStatus, "la visita no tiene operador asignado")
		}
		operatorID := *task.OperatorID

		rent, err = tx.Rents().GetByID(ctx, task.RentID)
		if err != nil {
			return err
		}
		if rent.Status != domain.RentStatusEnCambio {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no está en cambio", rent.ID)
		}
		if rent.MachineID == nil {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no tiene máquina asignada", rent.ID)
		}

		now := s.now()
		if !in.WasFixed {
			if len(in.Evidence) == 0 {
				return domain.NewError(domain.CodeMissingField, "se requiere evidencia del cambio")
			}
			if err := s.swapMachines(ctx, tx, rent, in, operatorID, now); err != nil {
				return err
			}
		}

		// a fix on-site confirms accessories as present; a swap leaves the
		// snapshot untouched
		if in.WasFixed {
			for name, confirmed := range in.AccessoriesConfirmed {
				if !confirmed {
					continue
				}
				if rent.Accessories == nil {
					rent.Accessories = make(map[string]bool)
				}
				rent.Accessories[name] = true
			}
		}
		rent.TotalChanges++
		rent.ConsecutiveChanges++
		if err := s.applyChangeBonus(ctx, tx, rent, in.ActingUser, now); err != nil {
			return err
		}

		// the rent resumes the status the swap interrupted
		resume := task.PrevRentStatus
		if resume == "" {
			resume = domain.RentStatusRentado
		}
		if !rent.Status.CanTransition(resume) {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no puede volver a %s", rent.ID, resume)
		}
		rent.Status = resume
		rent.UpdatedAt = now
		rent.UpdatedBy = in.ActingUser
		if err := tx.Rents().Update(ctx, rent); err != nil {
			return err
		}

		urls, keys, err := s.uploadEvidence(ctx, in.Evidence)
		if err != nil {
			return err
		}
		uploaded = keys

		task.Status = domain.TaskStatusCompletada
		task.WasFixed = in.WasFixed
		task.ImagesURL = urls
		task.FinishedAt = &now
		task.UpdatedAt = now
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}

		notifyBlock, err = s.applyPacing(ctx, tx, operatorID, string(domain.TaskKindChange), now)
		return err
	})
	if err != nil {
		s.cleanupEvidence(ctx, uploaded)
		return nil, err
	}

	if notifyBlock != nil {
		notifyBlock(ctx)
	}
	logger.Info("change completed", "task_id", in.TaskID, "rent_id", rent.ID, "was_fixed", in.WasFixed)
	return rent, nil
}

// swapMachines exchanges the faulty unit for the replacement and records the
// exchange on both machine ledgers and the customer's
func (s *changeService) swapMachines(ctx context.Context, tx repository.Tx, rent *domain.Rent, in CompleteChangeInput, operatorID int64, now time.Time) error {
	if in.ReplacementMachineID == 0 {
		return domain.NewError(domain.CodeMissingField, "se requiere la máquina de reemplazo")
	}
	if in.ReplacementMachineID == *rent.MachineID {
		return domain.NewError(domain.CodeInvalidStatus, "la máquina de reemplazo es la misma que la actual")
	}

	vehicle, err := tx.Vehicles().GetByOperator(ctx, operatorID)
	if err != nil {
		return err
	}

	faulty, err := tx.Machines().GetByID(ctx, *rent.MachineID)
	if err != nil {
		return err
	}
	replacement, err := tx.Machines().GetByID(ctx, in.ReplacementMachineID)
	if err != nil {
		return err
	}
	if !replacement.Status.CanTransition(domain.MachineStatusRentado) {
		return domain.Errorf(domain.CodeInvalidStatus, "la máquina %d no está disponible para el cambio", replacement.Num)
	}
	if !faulty.Status.CanTransition(domain.MachineStatusRec) {
		return domain.Errorf(domain.CodeInvalidStatus, "la máquina %d no está con el cliente", faulty.Num)
	}

	faulty.Status = domain.MachineStatusRec
	faulty.PlaceOnVehicle(vehicle.ID)
	faulty.TotalChanges++
	faulty.UpdatedAt = now
	faulty.UpdatedBy = in.ActingUser
	if err := tx.Machines().Update(ctx, faulty); err != nil {
		return err
	}
	if err := tx.Vehicles().AddMachine(ctx, vehicle.ID, faulty.ID); err != nil {
		return err
	}

	replacement.Status = domain.MachineStatusRentado
	replacement.PlaceWithCustomer()
	replacement.LastRentID = &rent.ID
	replacement.UpdatedAt = now
	replacement.UpdatedBy = in.ActingUser
	if err := tx.Machines().Update(ctx, replacement); err != nil {
		return err
	}
	if err := tx.Vehicles().RemoveMachineFromAny(ctx, replacement.ID); err != nil {
		return err
	}

	rent.MachineID = &replacement.ID

	desc := fmt.Sprintf("cambio de máquina %d por %d", faulty.Num, replacement.Num)
	if err := tx.Movements().CreateCustomerMovement(ctx, &domain.CustomerMovement{
		CustomerID:  rent.CustomerID,
		RentID:      &rent.ID,
		Type:        domain.CustomerMovementChange,
		AmountCents: 0,
		Date:        now,
		Description: desc,
	}); err != nil {
		return err
	}
	for _, m := range []*domain.Machine{faulty, replacement} {
		if err := tx.Movements().CreateMachineMovement(ctx, &domain.MachineMovement{
			MachineID:   m.ID,
			RentID:      &rent.ID,
			Type:        domain.MachineMovementChange,
			AmountCents: 0,
			Date:        now,
			Description: desc,
		}); err != nil {
			return err
		}
	}
	return nil
}

// applyChangeBonus awards a free week after enough consecutive swaps and
// resets the streak
func (s *changeService) applyChangeBonus(ctx context.Context, tx repository.Tx, rent *domain.Rent, actingUser int64, now time.Time) error {
	if rent.ConsecutiveChanges < consecutiveChangesForBonus {
		return nil
	}
	rent.ConsecutiveChanges = 0

	customer, err := tx.Customers().GetByID(ctx, rent.CustomerID)
	if err != nil {
		return err
	}
	customer.FreeWeeks++
	customer.UpdatedAt = now
	if err := tx.Customers().Update(ctx, customer); err != nil {
		return err
	}

	logger.Info("change bonus awarded", "customer_id", customer.ID, "rent_id", rent.ID)
	return tx.Movements().CreateCustomerMovement(ctx, &domain.CustomerMovement{
		CustomerID:  customer.ID,
		RentID:      &rent.ID,
		Type:        domain.CustomerMovementBonus,
		AmountCents: 0,
		Date:        now,
		Description: fmt.Sprintf("semana gratis por %d cambios consecutivos", consecutiveChangesForBonus),
	})
}

func (s *changeService) CancelChangeData(ctx context.Context, in CancelTaskInput) error {
	return s.store.WithinTx(ctx, func(tx repository.Tx) error {
		_, err := s.cancelTask(ctx, tx, domain.TaskKindChange, in, true)
		return err
	})
}

func (s *changeService) UpdateChangeTimeData(ctx context.Context, in UpdateTimeInput) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		task, err = s.rescheduleTask(ctx, tx, domain.TaskKindChange, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
