package repository

import (
	"context"
	"time"

	"lavarenta-backend/internal/domain"
)

// MachineRepository persists physical units
type MachineRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Machine, error)
	Create(ctx context.Context, m *domain.Machine) error
	Update(ctx context.Context, m *domain.Machine) error
	ListByStatus(ctx context.Context, status domain.MachineStatus) ([]domain.Machine, error)
}

// RentRepository persists rent aggregates
type RentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Rent, error)
	Create(ctx context.Context, r *domain.Rent) error
	Update(ctx context.Context, r *domain.Rent) error
	GetOpenByCustomer(ctx context.Context, customerID int64) (*domain.Rent, error)
	MarkOverdue(ctx context.Context, before time.Time, updatedBy int64) (int64, error)
}

// CustomerRepository persists ledger owners
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Create(ctx context.Context, c *domain.Customer) error
	Update(ctx context.Context, c *domain.Customer) error
}

// TaskRepository persists scheduled field visits
type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	ListByRentAndKind(ctx context.Context, rentID int64, kind domain.TaskKind) ([]domain.Task, error)
	ListByDay(ctx context.Context, kind domain.TaskKind, day time.Time) ([]domain.Task, error)
}

// MovementRepository appends immutable ledger entries
type MovementRepository interface {
	CreateCustomerMovement(ctx context.Context, m *domain.CustomerMovement) error
	CreateMachineMovement(ctx context.Context, m *domain.MachineMovement) error
	ListCustomerMovements(ctx context.Context, customerID int64) ([]domain.CustomerMovement, error)
	SumCustomerMonetary(ctx context.Context, customerID int64) (int64, error)
}

// PayoutRepository persists partner revenue-share results
type PayoutRepository interface {
	Create(ctx context.Context, p *domain.Payout) error
	ListByPartner(ctx context.Context, partnerID int64) ([]domain.Payout, error)
}

// PartnerRepository reads machine owners
type PartnerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Partner, error)
}

// VehicleRepository persists vehicles and their machine load
type VehicleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	GetByOperator(ctx context.Context, operatorID int64) (*domain.Vehicle, error)
	AddMachine(ctx context.Context, vehicleID, machineID int64) error
	RemoveMachineFromAny(ctx context.Context, machineID int64) error
	ListMachinesOn(ctx context.Context, vehicleID int64) ([]int64, error)
}

// WarehouseRepository reads storage locations
type WarehouseRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Warehouse, error)
	GetDefault(ctx context.Context) (*domain.Warehouse, error)
}

// OperatorRepository persists worker accounts
type OperatorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Operator, error)
	GetByEmail(ctx context.Context, email string) (*domain.Operator, error)
	Update(ctx context.Context, o *domain.Operator) error
	Block(ctx context.Context, id int64, reason string, at time.Time) error
	Unblock(ctx context.Context, id int64, at time.Time) error
}

// OperatorActionRepository records completion timestamps for the pacing
// guard
type OperatorActionRepository interface {
	Record(ctx context.Context, operatorID int64, kind string, at time.Time) error
	ListSince(ctx context.Context, operatorID int64, since time.Time, limit int) ([]time.Time, error)
}

// MaintenanceRepository persists repair passes
type MaintenanceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Maintenance, error)
	Create(ctx context.Context, m *domain.Maintenance) error
	Update(ctx context.Context, m *domain.Maintenance) error
	AddUsedProduct(ctx context.Context, up *domain.UsedProduct) error
}

// ProductRepository persists maintenance inventory
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int) error
}

// CounterRepository hands out monotonic sequence numbers. Implementations
// must be atomic: two concurrent calls never see the same value.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Tx is the set of repositories bound to one open transaction. Everything
// read or written through it commits or rolls back together.
type Tx interface {
	Machines() MachineRepository
	Rents() RentRepository
	Customers() CustomerRepository
	Tasks() TaskRepository
	Movements() MovementRepository
	Payouts() PayoutRepository
	Partners() PartnerRepository
	Vehicles() VehicleRepository
	Warehouses() WarehouseRepository
	Operators() OperatorRepository
	OperatorActions() OperatorActionRepository
	Maintenances() MaintenanceRepository
	Products() ProductRepository
	Counters() CounterRepository
}

// Store is the entry point to persistence. WithinTx opens one transaction,
// runs fn against repositories bound to it, commits on nil error and rolls
// back otherwise. The rollback also runs on panic.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
