package service

import (
	"context"
	"fmt"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository"
)

// maintenanceService runs the workshop flow: collected machines arrive at a
// warehouse, go through a repair pass that consumes inventory, and come out
// ready to rent again
type maintenanceService struct {
	TaskCore
}

func NewMaintenanceService(core TaskCore) MaintenanceService {
	return &maintenanceService{TaskCore: core}
}

// ReceiveEquipmentData unloads collected machines from their vehicles into a
// warehouse. All of them move or none does.
func (s *maintenanceService) ReceiveEquipmentData(ctx context.Context, machineIDs []int64, warehouseID int64, actingUser int64) error {
	if len(machineIDs) == 0 {
		return domain.NewError(domain.CodeMissingField, "no hay máquinas que recibir")
	}
	return s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var warehouse *domain.Warehouse
		var err error
		if warehouseID > 0 {
			warehouse, err = tx.Warehouses().GetByID(ctx, warehouseID)
		} else {
			warehouse, err = tx.Warehouses().GetDefault(ctx)
		}
		if err != nil {
			return err
		}
		now := s.now()
		for _, id := range machineIDs {
			machine, err := tx.Machines().GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !machine.Status.CanTransition(domain.MachineStatusEspe) {
				return domain.Errorf(domain.CodeInvalidStatus, "la máquina %d no viene de recolección", machine.Num)
			}
			machine.Status = domain.MachineStatusEspe
			machine.PlaceInWarehouse(warehouse.ID)
			machine.UpdatedAt = now
			machine.UpdatedBy = actingUser
			if err := tx.Machines().Update(ctx, machine); err != nil {
				return err
			}
			if err := tx.Vehicles().RemoveMachineFromAny(ctx, machine.ID); err != nil {
				return err
			}
		}
		logger.Info("equipment received", "warehouse_id", warehouse.ID, "machines", len(machineIDs))
		return nil
	})
}

// StartMaintenanceData opens a repair pass on a waiting machine
func (s *maintenanceService) StartMaintenanceData(ctx context.Context, machineID int64, actingUser int64) (*domain.Maintenance, error) {
	var m *domain.Maintenance
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		machine, err := tx.Machines().GetByID(ctx, machineID)
		if err != nil {
			return err
		}
		if !machine.Status.CanTransition(domain.MachineStatusMantenimiento) {
			return domain.Errorf(domain.CodeInvalidStatus, "la máquina %d no está en espera de mantenimiento", machine.Num)
		}
		now := s.now()
		machine.Status = domain.MachineStatusMantenimiento
		machine.UpdatedAt = now
		machine.UpdatedBy = actingUser
		if err := tx.Machines().Update(ctx, machine); err != nil {
			return err
		}

		m = &domain.Maintenance{
			MachineID: machine.ID,
			Status:    domain.MaintenanceStatusEnProceso,
			StartedAt: now,
			CreatedBy: actingUser,
		}
		return tx.Maintenances().Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("maintenance started", "maintenance_id", m.ID, "machine_id", machineID)
	return m, nil
}

// AddUsedProductData consumes inventory against an open repair pass; the
// stock decrement and the cost accrual commit together
func (s *maintenanceService) AddUsedProductData(ctx context.Context, maintenanceID, productID int64, quantity int, actingUser int64) error {
	if quantity <= 0 {
		return domain.NewError(domain.CodeMissingField, "la cantidad debe ser positiva")
	}
	return s.store.WithinTx(ctx, func(tx repository.Tx) error {
		m, err := tx.Maintenances().GetByID(ctx, maintenanceID)
		if err != nil {
			return err
		}
		if m.Status != domain.MaintenanceStatusEnProceso {
			return domain.Errorf(domain.CodeInvalidStatus, "el mantenimiento %d no está en proceso", maintenanceID)
		}

		product, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := tx.Products().DecrementStock(ctx, productID, quantity); err != nil {
			return err
		}
		if err := tx.Maintenances().AddUsedProduct(ctx, &domain.UsedProduct{
			MaintenanceID: maintenanceID,
			ProductID:     productID,
			Quantity:      quantity,
			UnitCostCents: product.UnitCostCents,
		}); err != nil {
			return err
		}

		m.CostCents += product.UnitCostCents * int64(quantity)
		return tx.Maintenances().Update(ctx, m)
	})
}

// CompleteMantainanceData closes the repair pass: the machine comes out
// ready and its ledger absorbs the repair cost
func (s *maintenanceService) CompleteMantainanceData(ctx context.Context, maintenanceID int64, notes string, actingUser int64) error {
	return s.store.WithinTx(ctx, func(tx repository.Tx) error {
		m, err := tx.Maintenances().GetByID(ctx, maintenanceID)
		if err != nil {
			return err
		}
		if m.Status != domain.MaintenanceStatusEnProceso {
			return domain.Errorf(domain.CodeInvalidStatus, "el mantenimiento %d no está en proceso", maintenanceID)
		}

		now := s.now()
		m.Status = domain.MaintenanceStatusCompletada
		m.Notes = notes
		m.FinishedAt = &now
		if err := tx.Maintenances().Update(ctx, m); err != nil {
			return err
		}

		machine, err := tx.Machines().GetByID(ctx, m.MachineID)
		if err != nil {
			return err
		}
		if !machine.Status.CanTransition(domain.MachineStatusListo) {
			return domain.Errorf(domain.CodeInvalidStatus, "la máquina %d no está en mantenimiento", machine.Num)
		}
		machine.Status = domain.MachineStatusListo
		machine.ExpensesCents += m.CostCents
		machine.UpdatedAt = now
		machine.UpdatedBy = actingUser
		if err := tx.Machines().Update(ctx, machine); err != nil {
			return err
		}

		if m.CostCents > 0 {
			if err := tx.Movements().CreateMachineMovement(ctx, &domain.MachineMovement{
				MachineID:   machine.ID,
				Type:        domain.MachineMovementExpense,
				AmountCents: m.CostCents,
				Date:        now,
				Description: fmt.Sprintf("mantenimiento #%d", m.ID),
			}); err != nil {
				return err
			}
		}
		logger.Info("maintenance completed", "maintenance_id", maintenanceID, "machine_id", machine.ID, "cost_cents", m.CostCents)
		return nil
	})
}
