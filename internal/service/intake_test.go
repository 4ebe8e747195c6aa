package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lavarenta-backend/internal/domain"
)

func TestRegisterRentCreatesCustomerAndPendingRent(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store)
	ctx := testContext()

	store.customers.On("GetByPhone", ctx, "5512345678").
		Return(nil, domain.Errorf(domain.CodeNotFound, "cliente no encontrado"))
	store.customers.On("Create", ctx, mock.AnythingOfType("*domain.Customer")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Customer).ID = 31 }).
		Return(nil).Once()
	store.rents.On("Create", ctx, mock.AnythingOfType("*domain.Rent")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Rent).ID = 60 }).
		Return(nil).Once()

	rent, err := svc.RegisterRentData(ctx, RegisterRentInput{
		CustomerName:  "Laura",
		CustomerPhone: "5512345678",
		MapsURL:       "https://maps.example.com/p/laura",
		InitialWeeks:  2,
		PayDay:        time.Monday,
		ActingUser:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RentStatusPendiente, rent.Status)
	assert.Nil(t, rent.Num) // the sequence number waits for the delivery payment
	assert.EqualValues(t, 31, rent.CustomerID)
	assert.Equal(t, 2, rent.InitialWeeks)
	assert.Equal(t, time.Monday, rent.PayDay)
	store.customers.AssertExpectations(t)
	store.rents.AssertExpectations(t)
}

func TestRegisterRentReusesCustomerByPhone(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store)
	ctx := testContext()

	existing := &domain.Customer{ID: 20, Name: "Marta", Phone: "5598765432"}
	store.customers.On("GetByPhone", ctx, "5598765432").Return(existing, nil)
	store.rents.On("GetOpenByCustomer", ctx, int64(20)).
		Return(nil, domain.Errorf(domain.CodeNotFound, "sin renta abierta"))
	store.rents.On("Create", ctx, mock.AnythingOfType("*domain.Rent")).Return(nil).Once()

	rent, err := svc.RegisterRentData(ctx, RegisterRentInput{
		CustomerName:  "Marta",
		CustomerPhone: "5598765432",
		InitialWeeks:  1,
		ActingUser:    1,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 20, rent.CustomerID)
	store.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterRentRejectsCustomerWithOpenRent(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store)
	ctx := testContext()

	existing := &domain.Customer{ID: 20, Name: "Marta", Phone: "5598765432"}
	store.customers.On("GetByPhone", ctx, "5598765432").Return(existing, nil)
	store.rents.On("GetOpenByCustomer", ctx, int64(20)).
		Return(&domain.Rent{ID: 77, Status: domain.RentStatusRentado}, nil)

	_, err := svc.RegisterRentData(ctx, RegisterRentInput{
		CustomerName:  "Marta",
		CustomerPhone: "5598765432",
		InitialWeeks:  1,
		ActingUser:    1,
	})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeDuplicate, de.Code)
	store.rents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterRentRequiresCustomerData(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store)

	_, err := svc.RegisterRentData(testContext(), RegisterRentInput{CustomerName: " ", InitialWeeks: 1})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeMissingField, de.Code)
	store.customers.AssertNotCalled(t, "GetByPhone", mock.Anything, mock.Anything)
}

func TestRegisterMachineParksInWarehouse(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store)
	ctx := testContext()

	store.warehouses.On("GetByID", ctx, int64(1)).Return(&domain.Warehouse{ID: 1}, nil)
	store.machines.On("Create", ctx, mock.AnythingOfType("*domain.Machine")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Machine).ID = 15 }).
		Return(nil).Once()

	machine, err := svc.RegisterMachineData(ctx, RegisterMachineInput{Num: 52, WarehouseID: 1, ActingUser: 1})
	require.NoError(t, err)

	assert.Equal(t, domain.MachineStatusListo, machine.Status)
	require.NotNil(t, machine.CurrentWarehouseID)
	assert.EqualValues(t, 1, *machine.CurrentWarehouseID)
	assert.Nil(t, machine.CurrentVehicleID)
}

func TestRegisterMachineUsesDefaultWarehouse(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store)
	ctx := testContext()

	store.warehouses.On("GetDefault", ctx).Return(&domain.Warehouse{ID: 3}, nil)
	store.machines.On("Create", ctx, mock.AnythingOfType("*domain.Machine")).Return(nil).Once()

	machine, err := svc.RegisterMachineData(ctx, RegisterMachineInput{Num: 53, ActingUser: 1})
	require.NoError(t, err)
	require.NotNil(t, machine.CurrentWarehouseID)
	assert.EqualValues(t, 3, *machine.CurrentWarehouseID)
}
