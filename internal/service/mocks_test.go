package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/repository"
)

// fakeStore binds every repository mock into one repository.Store whose
// WithinTx just runs the callback. Rollback semantics live in the postgres
// package; here an error from the callback simply propagates.
type fakeStore struct {
	machines    *MockMachineRepo
	rents       *MockRentRepo
	customers   *MockCustomerRepo
	tasks       *MockTaskRepo
	movements   *MockMovementRepo
	payouts     *MockPayoutRepo
	partners    *MockPartnerRepo
	vehicles    *MockVehicleRepo
	warehouses  *MockWarehouseRepo
	operators   *MockOperatorRepo
	actions     *MockOperatorActionRepo
	maintenance *MockMaintenanceRepo
	products    *MockProductRepo
	counters    *MockCounterRepo
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		machines:    new(MockMachineRepo),
		rents:       new(MockRentRepo),
		customers:   new(MockCustomerRepo),
		tasks:       new(MockTaskRepo),
		movements:   new(MockMovementRepo),
		payouts:     new(MockPayoutRepo),
		partners:    new(MockPartnerRepo),
		vehicles:    new(MockVehicleRepo),
		warehouses:  new(MockWarehouseRepo),
		operators:   new(MockOperatorRepo),
		actions:     new(MockOperatorActionRepo),
		maintenance: new(MockMaintenanceRepo),
		products:    new(MockProductRepo),
		counters:    new(MockCounterRepo),
	}
}

func (s *fakeStore) Machines() repository.MachineRepository               { return s.machines }
func (s *fakeStore) Rents() repository.RentRepository                     { return s.rents }
func (s *fakeStore) Customers() repository.CustomerRepository             { return s.customers }
func (s *fakeStore) Tasks() repository.TaskRepository                     { return s.tasks }
func (s *fakeStore) Movements() repository.MovementRepository             { return s.movements }
func (s *fakeStore) Payouts() repository.PayoutRepository                 { return s.payouts }
func (s *fakeStore) Partners() repository.PartnerRepository               { return s.partners }
func (s *fakeStore) Vehicles() repository.VehicleRepository               { return s.vehicles }
func (s *fakeStore) Warehouses() repository.WarehouseRepository           { return s.warehouses }
func (s *fakeStore) Operators() repository.OperatorRepository             { return s.operators }
func (s *fakeStore) OperatorActions() repository.OperatorActionRepository { return s.actions }
func (s *fakeStore) Maintenances() repository.MaintenanceRepository       { return s.maintenance }
func (s *fakeStore) Products() repository.ProductRepository               { return s.products }
func (s *fakeStore) Counters() repository.CounterRepository               { return s.counters }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	return fn(s)
}

type MockMachineRepo struct{ mock.Mock }

func (m *MockMachineRepo) GetByID(ctx context.Context, id int64) (*domain.Machine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Machine), args.Error(1)
}
func (m *MockMachineRepo) Create(ctx context.Context, mc *domain.Machine) error {
	return m.Called(ctx, mc).Error(0)
}
func (m *MockMachineRepo) Update(ctx context.Context, mc *domain.Machine) error {
	return m.Called(ctx, mc).Error(0)
}
func (m *MockMachineRepo) ListByStatus(ctx context.Context, status domain.MachineStatus) ([]domain.Machine, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Machine), args.Error(1)
}

type MockRentRepo struct{ mock.Mock }

func (m *MockRentRepo) GetByID(ctx context.Context, id int64) (*domain.Rent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rent), args.Error(1)
}
func (m *MockRentRepo) Create(ctx context.Context, r *domain.Rent) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockRentRepo) Update(ctx context.Context, r *domain.Rent) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockRentRepo) GetOpenByCustomer(ctx context.Context, customerID int64) (*domain.Rent, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rent), args.Error(1)
}
func (m *MockRentRepo) MarkOverdue(ctx context.Context, before time.Time, updatedBy int64) (int64, error) {
	args := m.Called(ctx, before, updatedBy)
	return args.Get(0).(int64), args.Error(1)
}

type MockCustomerRepo struct{ mock.Mock }

func (m *MockCustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}
func (m *MockCustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}

type MockTaskRepo struct{ mock.Mock }

func (m *MockTaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}
func (m *MockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.Called(ctx, t).Error(0)
}
func (m *MockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.Called(ctx, t).Error(0)
}
func (m *MockTaskRepo) ListByRentAndKind(ctx context.Context, rentID int64, kind domain.TaskKind) ([]domain.Task, error) {
	args := m.Called(ctx, rentID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}
func (m *MockTaskRepo) ListByDay(ctx context.Context, kind domain.TaskKind, day time.Time) ([]domain.Task, error) {
	args := m.Called(ctx, kind, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

type MockMovementRepo struct{ mock.Mock }

func (m *MockMovementRepo) CreateCustomerMovement(ctx context.Context, mv *domain.CustomerMovement) error {
	return m.Called(ctx, mv).Error(0)
}
func (m *MockMovementRepo) CreateMachineMovement(ctx context.Context, mv *domain.MachineMovement) error {
	return m.Called(ctx, mv).Error(0)
}
func (m *MockMovementRepo) ListCustomerMovements(ctx context.Context, customerID int64) ([]domain.CustomerMovement, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CustomerMovement), args.Error(1)
}
func (m *MockMovementRepo) SumCustomerMonetary(ctx context.Context, customerID int64) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPayoutRepo struct{ mock.Mock }

func (m *MockPayoutRepo) Create(ctx context.Context, p *domain.Payout) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockPayoutRepo) ListByPartner(ctx context.Context, partnerID int64) ([]domain.Payout, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payout), args.Error(1)
}

type MockPartnerRepo struct{ mock.Mock }

func (m *MockPartnerRepo) GetByID(ctx context.Context, id int64) (*domain.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

type MockVehicleRepo struct{ mock.Mock }

func (m *MockVehicleRepo) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) GetByOperator(ctx context.Context, operatorID int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) AddMachine(ctx context.Context, vehicleID, machineID int64) error {
	return m.Called(ctx, vehicleID, machineID).Error(0)
}
func (m *MockVehicleRepo) RemoveMachineFromAny(ctx context.Context, machineID int64) error {
	return m.Called(ctx, machineID).Error(0)
}
func (m *MockVehicleRepo) ListMachinesOn(ctx context.Context, vehicleID int64) ([]int64, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type MockWarehouseRepo struct{ mock.Mock }

func (m *MockWarehouseRepo) GetByID(ctx context.Context, id int64) (*domain.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Warehouse), args.Error(1)
}
func (m *MockWarehouseRepo) GetDefault(ctx context.Context) (*domain.Warehouse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Warehouse), args.Error(1)
}

type MockOperatorRepo struct{ mock.Mock }

func (m *MockOperatorRepo) GetByID(ctx context.Context, id int64) (*domain.Operator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operator), args.Error(1)
}
func (m *MockOperatorRepo) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operator), args.Error(1)
}
func (m *MockOperatorRepo) Update(ctx context.Context, o *domain.Operator) error {
	return m.Called(ctx, o).Error(0)
}
func (m *MockOperatorRepo) Block(ctx context.Context, id int64, reason string, at time.Time) error {
	return m.Called(ctx, id, reason, at).Error(0)
}
func (m *MockOperatorRepo) Unblock(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type MockOperatorActionRepo struct{ mock.Mock }

func (m *MockOperatorActionRepo) Record(ctx context.Context, operatorID int64, kind string, at time.Time) error {
	return m.Called(ctx, operatorID, kind, at).Error(0)
}
func (m *MockOperatorActionRepo) ListSince(ctx context.Context, operatorID int64, since time.Time, limit int) ([]time.Time, error) {
	args := m.Called(ctx, operatorID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

type MockMaintenanceRepo struct{ mock.Mock }

func (m *MockMaintenanceRepo) GetByID(ctx context.Context, id int64) (*domain.Maintenance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Maintenance), args.Error(1)
}
func (m *MockMaintenanceRepo) Create(ctx context.Context, mt *domain.Maintenance) error {
	return m.Called(ctx, mt).Error(0)
}
func (m *MockMaintenanceRepo) Update(ctx context.Context, mt *domain.Maintenance) error {
	return m.Called(ctx, mt).Error(0)
}
func (m *MockMaintenanceRepo) AddUsedProduct(ctx context.Context, up *domain.UsedProduct) error {
	return m.Called(ctx, up).Error(0)
}

type MockProductRepo struct{ mock.Mock }

func (m *MockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockProductRepo) DecrementStock(ctx context.Context, id int64, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}

type MockCounterRepo struct{ mock.Mock }

func (m *MockCounterRepo) Next(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

type MockEvidenceStore struct{ mock.Mock }

func (m *MockEvidenceStore) Upload(ctx context.Context, key string, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, key, contentType, r)
	return args.String(0), args.Error(1)
}
func (m *MockEvidenceStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) SendOperatorBlocked(ctx context.Context, email, name, reason string) error {
	return m.Called(ctx, email, name, reason).Error(0)
}
func (m *MockNotifier) SendTaskAssigned(ctx context.Context, email, kind string, date time.Time) error {
	return m.Called(ctx, email, kind, date).Error(0)
}
