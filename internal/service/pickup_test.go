package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lavarenta-backend/internal/domain"
)

func pickupFixture() (*fakeStore, *pickupService, *domain.Task, *domain.Rent, *domain.Customer, *domain.Machine) {
	store := newFakeStore()
	svc := NewPickupService(newTestCore(store)).(*pickupService)
	operatorID := int64(7)
	machineID := int64(9)
	task := &domain.Task{
		ID:             30,
		Kind:           domain.TaskKindPickup,
		Status:         domain.TaskStatusEnCamino,
		RentID:         5,
		OperatorID:     &operatorID,
		WasSent:        true,
		PrevRentStatus: domain.RentStatusRentado,
	}
	rent := &domain.Rent{
		ID:             5,
		Status:         domain.RentStatusEnRecoleccion,
		CustomerID:     3,
		MachineID:      &machineID,
		AcumulatedDays: 3,
		Accessories:    map[string]bool{"manguera": true, "tapa": true},
	}
	customer := &domain.Customer{ID: 3, Name: "Laura", CompletedRents: 1, CurrentRentID: &rent.ID, HasRent: true}
	machine := &domain.Machine{ID: 9, Num: 42, Status: domain.MachineStatusRentado}
	return store, svc, task, rent, customer, machine
}

func TestCompletePickupEndsRental(t *testing.T) {
	store, svc, task, rent, customer, machine := pickupFixture()
	ctx := testContext()

	store.tasks.On("GetByID", ctx, int64(30)).Return(task, nil)
	store.rents.On("GetByID", ctx, int64(5)).Return(rent, nil)
	store.vehicles.On("GetByOperator", ctx, int64(7)).Return(&domain.Vehicle{ID: 2, Name: "camioneta 2"}, nil)
	store.machines.On("GetByID", ctx, int64(9)).Return(machine, nil)
	store.machines.On("Update", ctx, machine).Return(nil)
	store.vehicles.On("AddMachine", ctx, int64(2), int64(9)).Return(nil)
	store.rents.On("Update", ctx, rent).Return(nil)
	store.tasks.On("ListByRentAndKind", ctx, int64(5), domain.TaskKindChange).Return(nil, nil)
	store.customers.On("GetByID", ctx, int64(3)).Return(customer, nil)
	store.customers.On("Update", ctx, customer).Return(nil)
	store.tasks.On("Update", ctx, task).Return(nil)
	expectQuietPacing(store, 7)

	got, err := svc.MarkCompletePickupData(ctx, CompletePickupInput{
		TaskID:              30,
		AccessoriesReturned: map[string]bool{"manguera": true, "tapa": true},
		ActingUser:          1,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RentStatusFinalizada, got.Status)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, testClock, *got.EndDate)
	assert.Nil(t, got.Accessories)

	assert.Equal(t, domain.MachineStatusRec, machine.Status)
	require.NotNil(t, machine.CurrentVehicleID)
	assert.EqualValues(t, 2, *machine.CurrentVehicleID)

	assert.False(t, customer.HasRent)
	assert.Nil(t, customer.CurrentRentID)
	assert.Equal(t, 2, customer.CompletedRents)
	assert.Equal(t, 3, customer.AcumulatedDays) // rent's bridged days banked

	assert.Equal(t, domain.TaskStatusCompletada, task.Status)
	assert.Empty(t, task.Reason) // everything came back
}

func TestCompletePickupFlagsMissingAccessories(t *testing.T) {
	store, svc, task, rent, customer, machine := pickupFixture()
	ctx := testContext()

	store.tasks.On("GetByID", ctx, int64(30)).Return(task, nil)
	store.rents.On("GetByID", ctx, int64(5)).Return(rent, nil)
	store.vehicles.On("GetByOperator", ctx, int64(7)).Return(&domain.Vehicle{ID: 2}, nil)
	store.machines.On("GetByID", ctx, int64(9)).Return(machine, nil)
	store.machines.On("Update", ctx, machine).Return(nil)
	store.vehicles.On("AddMachine", ctx, int64(2), int64(9)).Return(nil)
	store.rents.On("Update", ctx, rent).Return(nil)
	store.tasks.On("ListByRentAndKind", ctx, int64(5), domain.TaskKindChange).Return(nil, nil)
	store.customers.On("GetByID", ctx, int64(3)).Return(customer, nil)
	store.customers.On("Update", ctx, customer).Return(nil)
	store.tasks.On("Update", ctx, task).Return(nil)
	expectQuietPacing(store, 7)

	_, err := svc.MarkCompletePickupData(ctx, CompletePickupInput{
		TaskID:              30,
		AccessoriesReturned: map[string]bool{"manguera": true},
		ActingUser:          1,
	})
	require.NoError(t, err)
	assert.Equal(t, "accesorios faltantes: tapa", task.Reason)
}

func TestCompletePickupPurgesChangeEvidenceAfterCommit(t *testing.T) {
	store, svc, task, rent, customer, machine := pickupFixture()
	files := new(MockEvidenceStore)
	svc.files = files
	ctx := testContext()

	changeTask := domain.Task{
		ID:     22,
		Kind:   domain.TaskKindChange,
		Status: domain.TaskStatusCompletada,
		RentID: 5,
		ImagesURL: map[string]string{
			"frente.jpg": "http://localhost:8080/evidence/abc-123",
		},
	}
	store.tasks.On("GetByID", ctx, int64(30)).Return(task, nil)
	store.rents.On("GetByID", ctx, int64(5)).Return(rent, nil)
	store.vehicles.On("GetByOperator", ctx, int64(7)).Return(&domain.Vehicle{ID: 2}, nil)
	store.machines.On("GetByID", ctx, int64(9)).Return(machine, nil)
	store.machines.On("Update", ctx, machine).Return(nil)
	store.vehicles.On("AddMachine", ctx, int64(2), int64(9)).Return(nil)
	store.rents.On("Update", ctx, rent).Return(nil)
	store.tasks.On("ListByRentAndKind", ctx, int64(5), domain.TaskKindChange).
		Return([]domain.Task{changeTask}, nil)
	store.tasks.On("Update", ctx, mock.MatchedBy(func(tk *domain.Task) bool {
		return tk.ID == 22 && tk.ImagesURL == nil
	})).Return(nil).Once()
	store.customers.On("GetByID", ctx, int64(3)).Return(customer, nil)
	store.customers.On("Update", ctx, customer).Return(nil)
	store.tasks.On("Update", ctx, task).Return(nil)
	files.On("Delete", ctx, "abc-123").Return(nil).Once()
	expectQuietPacing(store, 7)

	_, err := svc.MarkCompletePickupData(ctx, CompletePickupInput{
		TaskID:              30,
		AccessoriesReturned: map[string]bool{"manguera": true, "tapa": true},
		ActingUser:          1,
	})
	require.NoError(t, err)
	files.AssertExpectations(t)
}

func TestCompletePickupRequiresAssignedOperator(t *testing.T) {
	store, svc, task, _, _, _ := pickupFixture()
	ctx := testContext()
	task.OperatorID = nil

	store.tasks.On("GetByID", ctx, int64(30)).Return(task, nil)

	_, err := svc.MarkCompletePickupData(ctx, CompletePickupInput{TaskID: 30, ActingUser: 1})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeInvalidStatus, de.Code)
	store.rents.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCancelPickupRestoresRentStatus(t *testing.T) {
	store, svc, task, rent, _, _ := pickupFixture()
	ctx := testContext()

	store.tasks.On("GetByID", ctx, int64(30)).Return(task, nil)
	store.tasks.On("Update", ctx, task).Return(nil)
	store.rents.On("GetByID", ctx, int64(5)).Return(rent, nil)
	store.rents.On("Update", ctx, rent).Return(nil)

	err := svc.CancelPickupData(ctx, CancelTaskInput{TaskID: 30, Reason: "cliente no estaba", ActingUser: 1})
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusCancelada, task.Status)
	assert.Equal(t, domain.RentStatusRentado, rent.Status) // back to where it was
}

func TestMissingAccessories(t *testing.T) {
	delivered := map[string]bool{"manguera": true, "tapa": true, "filtro": false}
	assert.Equal(t, "", missingAccessories(delivered, map[string]bool{"manguera": true, "tapa": true}))
	assert.Equal(t, "manguera, tapa", missingAccessories(delivered, nil))
	assert.Equal(t, "tapa", missingAccessories(delivered, map[string]bool{"manguera": true}))
}
