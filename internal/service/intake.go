package service

import (
	"context"
	"strings"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository"
)

// RegisterRentInput opens a rental request before any payment changes hands
type RegisterRentInput struct {
	CustomerName  string
	CustomerPhone string
	MapsURL       string
	Level         int
	InitialWeeks  int
	PayDay        time.Weekday
	ActingUser    int64
}

// RegisterRentData creates the PENDIENTE rent a delivery visit will later
// complete. The customer is matched by phone; an unknown phone creates a
// fresh record. A customer already holding an open rent cannot take another.
func (s *adminService) RegisterRentData(ctx context.Context, in RegisterRentInput) (*domain.Rent, error) {
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerPhone) == "" {
		return nil, domain.NewError(domain.CodeMissingField, "nombre y teléfono del cliente son obligatorios")
	}
	if in.InitialWeeks <= 0 {
		return nil, domain.NewError(domain.CodeMissingField, "las semanas iniciales deben ser positivas")
	}

	var rent *domain.Rent
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		customer, err := tx.Customers().GetByPhone(ctx, in.CustomerPhone)
		if err != nil && !domain.IsDomainError(err) {
			return err
		}

		now := time.Now()
		if customer == nil {
			level := in.Level
			if level <= 0 {
				level = 1
			}
			customer = &domain.Customer{
				Name:      in.CustomerName,
				Phone:     in.CustomerPhone,
				MapsURL:   in.MapsURL,
				Level:     level,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Customers().Create(ctx, customer); err != nil {
				return err
			}
		} else {
			open, err := tx.Rents().GetOpenByCustomer(ctx, customer.ID)
			if err != nil && !domain.IsDomainError(err) {
				return err
			}
			if open != nil {
				return domain.Errorf(domain.CodeDuplicate, "el cliente %s ya tiene una renta activa", customer.Name)
			}
		}

		rent = &domain.Rent{
			Status:       domain.RentStatusPendiente,
			CustomerID:   customer.ID,
			InitialWeeks: in.InitialWeeks,
			PayDay:       in.PayDay,
			CreatedAt:    now,
			UpdatedAt:    now,
			UpdatedBy:    in.ActingUser,
		}
		return tx.Rents().Create(ctx, rent)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("rent registered", "rent_id", rent.ID, "customer_id", rent.CustomerID)
	return rent, nil
}

// RegisterMachineInput adds a physical unit to the fleet
type RegisterMachineInput struct {
	Num         int64
	PartnerID   *int64
	WarehouseID int64
	ActingUser  int64
}

// RegisterMachineData creates a ready machine parked in a warehouse. A zero
// warehouse id lands it in the default one.
func (s *adminService) RegisterMachineData(ctx context.Context, in RegisterMachineInput) (*domain.Machine, error) {
	if in.Num <= 0 {
		return nil, domain.NewError(domain.CodeMissingField, "el número de máquina es obligatorio")
	}

	var machine *domain.Machine
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var warehouse *domain.Warehouse
		var err error
		if in.WarehouseID > 0 {
			warehouse, err = tx.Warehouses().GetByID(ctx, in.WarehouseID)
		} else {
			warehouse, err = tx.Warehouses().GetDefault(ctx)
		}
		if err != nil {
			return err
		}

		machine = &domain.Machine{
			Num:       in.Num,
			Status:    domain.MachineStatusListo,
			PartnerID: in.PartnerID,
			UpdatedBy: in.ActingUser,
		}
		machine.PlaceInWarehouse(warehouse.ID)
		return tx.Machines().Create(ctx, machine)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("machine registered", "machine_id", machine.ID, "num", in.Num)
	return machine, nil
}
