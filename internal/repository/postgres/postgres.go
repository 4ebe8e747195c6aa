package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"lavarenta-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx. Every
// repository runs against it so the same code serves both transactional and
// plain access.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// repoSet binds one repository of each kind to a DBTX
type repoSet struct {
	machines        repository.MachineRepository
	rents           repository.RentRepository
	customers       repository.CustomerRepository
	tasks           repository.TaskRepository
	movements       repository.MovementRepository
	payouts         repository.PayoutRepository
	partners        repository.PartnerRepository
	vehicles        repository.VehicleRepository
	warehouses      repository.WarehouseRepository
	operators       repository.OperatorRepository
	operatorActions repository.OperatorActionRepository
	maintenances    repository.MaintenanceRepository
	products        repository.ProductRepository
	counters        repository.CounterRepository
}

func newRepoSet(db DBTX) repoSet {
	return repoSet{
		machines:        NewMachineRepository(db),
		rents:           NewRentRepository(db),
		customers:       NewCustomerRepository(db),
		tasks:           NewTaskRepository(db),
		movements:       NewMovementRepository(db),
		payouts:         NewPayoutRepository(db),
		partners:        NewPartnerRepository(db),
		vehicles:        NewVehicleRepository(db),
		warehouses:      NewWarehouseRepository(db),
		operators:       NewOperatorRepository(db),
		operatorActions: NewOperatorActionRepository(db),
		maintenances:    NewMaintenanceRepository(db),
		products:        NewProductRepository(db),
		counters:        NewCounterRepository(db),
	}
}

func (s repoSet) Machines() repository.MachineRepository               { return s.machines }
func (s repoSet) Rents() repository.RentRepository                     { return s.rents }
func (s repoSet) Customers() repository.CustomerRepository             { return s.customers }
func (s repoSet) Tasks() repository.TaskRepository                     { return s.tasks }
func (s repoSet) Movements() repository.MovementRepository             { return s.movements }
func (s repoSet) Payouts() repository.PayoutRepository                 { return s.payouts }
func (s repoSet) Partners() repository.PartnerRepository               { return s.partners }
func (s repoSet) Vehicles() repository.VehicleRepository               { return s.vehicles }
func (s repoSet) Warehouses() repository.WarehouseRepository           { return s.warehouses }
func (s repoSet) Operators() repository.OperatorRepository             { return s.operators }
func (s repoSet) OperatorActions() repository.OperatorActionRepository { return s.operatorActions }
func (s repoSet) Maintenances() repository.MaintenanceRepository       { return s.maintenances }
func (s repoSet) Products() repository.ProductRepository               { return s.products }
func (s repoSet) Counters() repository.CounterRepository               { return s.counters }

// Store is the PostgreSQL-backed repository.Store
type Store struct {
	db *sql.DB
	repoSet
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		repoSet: newRepoSet(db),
	}
}

// WithinTx opens one transaction and runs fn against repositories bound to
// it. Commit happens only on a nil error; every other exit path, including
// a panic inside fn, rolls back.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(newRepoSet(sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
