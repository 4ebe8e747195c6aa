package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository"
	"lavarenta-backend/internal/storage"
)

// pickupService runs the collection visit flow that ends a rental
type pickupService struct {
	TaskCore
}

func NewPickupService(core TaskCore) PickupService {
	return &pickupService{TaskCore: core}
}

// SavePickupData schedules the collection and parks the rent in
// EN_RECOLECCION until the visit resolves
func (s *pickupService) SavePickupData(ctx context.Context, in SaveTaskInput) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		task, err = s.scheduleTask(ctx, tx, domain.TaskKindPickup, in, domain.RentStatusEnRecoleccion)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("pickup scheduled", "task_id", task.ID, "rent_id", in.RentID, "date", task.Date)
	return task, nil
}

func (s *pickupService) AssignPickupOperator(ctx context.Context, taskID, operatorID, actingUser int64) error {
	return s.assignOperator(ctx, domain.TaskKindPickup, taskID, operatorID, actingUser)
}

// MarkCompletePickupData closes the rental: the machine comes back on the
// operator's vehicle and the customer's account is released
func (s *pickupService) MarkCompletePickupData(ctx context.Context, in CompletePickupInput) (*domain.Rent, error) {
	var (
		rent        *domain.Rent
		uploaded    []string
		staleKeys   []string
		notifyBlock func(context.Context)
	)

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		task, err := s.loadCompletableTask(ctx, tx, domain.TaskKindPickup, in.TaskID)
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
		if !rent.Status.CanTransition(domain.RentStatusFinalizada) {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no está en recolección", rent.ID)
		}
		if rent.MachineID == nil {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no tiene máquina asignada", rent.ID)
		}

		vehicle, err := tx.Vehicles().GetByOperator(ctx, operatorID)
		if err != nil {
			return err
		}

		now := s.now()
		machine, err := tx.Machines().GetByID(ctx, *rent.MachineID)
		if err != nil {
			return err
		}
		if !machine.Status.CanTransition(domain.MachineStatusRec) {
			return domain.Errorf(domain.CodeInvalidStatus, "la máquina %d no está con el cliente", machine.Num)
		}
		machine.Status = domain.MachineStatusRec
		machine.PlaceOnVehicle(vehicle.ID)
		machine.UpdatedAt = now
		machine.UpdatedBy = in.ActingUser
		if err := tx.Machines().Update(ctx, machine); err != nil {
			return err
		}
		if err := tx.Vehicles().AddMachine(ctx, vehicle.ID, machine.ID); err != nil {
			return err
		}

		missing := missingAccessories(rent.Accessories, in.AccessoriesReturned)

		rent.Status = domain.RentStatusFinalizada
		rent.EndDate = &now
		rent.Accessories = nil
		rent.UpdatedAt = now
		rent.UpdatedBy = in.ActingUser
		if err := tx.Rents().Update(ctx, rent); err != nil {
			return err
		}

		staleKeys, err = s.clearChangeEvidence(ctx, tx, rent.ID, now)
		if err != nil {
			return err
		}

		customer, err := tx.Customers().GetByID(ctx, rent.CustomerID)
		if err != nil {
			return err
		}
		customer.HasRent = false
		customer.CurrentRentID = nil
		customer.CompletedRents++
		customer.AcumulatedDays += rent.AcumulatedDays
		customer.UpdatedAt = now
		if err := tx.Customers().Update(ctx, customer); err != nil {
			return err
		}

		urls, keys, err := s.uploadEvidence(ctx, in.Evidence)
		if err != nil {
			return err
		}
		uploaded = keys

		task.Status = domain.TaskStatusCompletada
		task.ImagesURL = urls
		task.FinishedAt = &now
		task.UpdatedAt = now
		if missing != "" {
			task.Reason = fmt.Sprintf("accesorios faltantes: %s", missing)
		}
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}

		notifyBlock, err = s.applyPacing(ctx, tx, operatorID, string(domain.TaskKindPickup), now)
		return err
	})
	if err != nil {
		s.cleanupEvidence(ctx, uploaded)
		return nil, err
	}

	// the rental is over; its swap evidence no longer needs to exist
	s.cleanupEvidence(ctx, staleKeys)

	if notifyBlock != nil {
		notifyBlock(ctx)
	}
	logger.Info("pickup completed", "task_id", in.TaskID, "rent_id", rent.ID)
	return rent, nil
}

// clearChangeEvidence drops the evidence references of the rent's change
// visits and returns the backing storage keys so the files can go after
// commit
func (s *pickupService) clearChangeEvidence(ctx context.Context, tx repository.Tx, rentID int64, now time.Time) ([]string, error) {
	changes, err := tx.Tasks().ListByRentAndKind(ctx, rentID, domain.TaskKindChange)
	if err != nil {
		return nil, err
	}
	var keys []string
	for i := range changes {
		t := &changes[i]
		if len(t.ImagesURL) == 0 {
			continue
		}
		for _, u := range t.ImagesURL {
			keys = append(keys, storage.KeyFromURL(u))
		}
		t.ImagesURL = nil
		t.UpdatedAt = now
		if err := tx.Tasks().Update(ctx, t); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// missingAccessories lists delivered accessories the pickup did not get back
func missingAccessories(delivered, returned map[string]bool) string {
	var missing []string
	for name, had := range delivered {
		if had && !returned[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return strings.Join(missing, ", ")
}

func (s *pickupService) CancelPickupData(ctx context.Context, in CancelTaskInput) error {
	return s.store.WithinTx(ctx, func(tx repository.Tx) error {
		_, err := s.cancelTask(ctx, tx, domain.TaskKindPickup, in, true)
		return err
	})
}

func (s *pickupService) UpdatePickupTimeData(ctx context.Context, in UpdateTimeInput) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		task, err = s.rescheduleTask(ctx, tx, domain.TaskKindPickup, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
