package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lavarenta-backend/internal/domain"
)

func changeFixture() (*fakeStore, *changeService, *domain.Task, *domain.Rent) {
	store := newFakeStore()
	svc := NewChangeService(newTestCore(store)).(*changeService)
	operatorID := int64(7)
	machineID := int64(9)
	task := &domain.Task{
		ID:             40,
		Kind:           domain.TaskKindChange,
		Status:         domain.TaskStatusEnCamino,
		RentID:         5,
		OperatorID:     &operatorID,
		WasSent:        true,
		PrevRentStatus: domain.RentStatusRentado,
	}
	rent := &domain.Rent{
		ID:         5,
		Status:     domain.RentStatusEnCambio,
		CustomerID: 3,
		MachineID:  &machineID,
	}
	return store, svc, task, rent
}

func TestCompleteChangeSwapsMachines(t *testing.T) {
	store, svc, task, rent := changeFixture()
	files := new(MockEvidenceStore)
	svc.files = files
	ctx := testContext()

	faulty := &domain.Machine{ID: 9, Num: 42, Status: domain.MachineStatusRentado}
	replacement := &domain.Machine{ID: 14, Num: 51, Status: domain.MachineStatusVehi}

	store.tasks.On("GetByID", ctx, int64(40)).Return(task, nil)
	store.rents.On("GetByID", ctx, int64(5)).Return(rent, nil)
	store.vehicles.On("GetByOperator", ctx, int64(7)).Return(&domain.Vehicle{ID: 2}, nil)
	store.machines.On("GetByID", ctx, int64(9)).Return(faulty, nil)
	store.machines.On("GetByID", ctx, int64(14)).Return(replacement, nil)
	store.machines.On("Update", ctx, faulty).Return(nil)
	store.machines.On("Update", ctx, replacement).Return(nil)
	store.vehicles.On("AddMachine", ctx, int64(2), int64(9)).Return(nil)
	store.vehicles.On("RemoveMachineFromAny", ctx, int64(14)).Return(nil)
	store.movements.On("CreateCustomerMovement", ctx, mock.MatchedBy(func(mv *domain.CustomerMovement) bool {
		return mv.Type == domain.CustomerMovementChange && mv.AmountCents == 0
	})).Return(nil).Once()
	store.movements.On("CreateMachineMovement", ctx, mock.MatchedBy(func(mv *domain.MachineMovement) bool {
		return mv.Type == domain.MachineMovementChange && mv.AmountCents == 0
	})).Return(nil).Twice()
	store.rents.On("Update", ctx, rent).Return(nil)
	files.On("Upload", ctx, mock.AnythingOfType("string"), "image/jpeg", mock.Anything).
		Return("http://localhost:8080/evidence/key-1", nil).Once()
	store.tasks.On("Update", ctx, task).Return(nil)
	expectQuietPacing(store, 7)

	rent.Accessories = map[string]bool{"manguera": true}
	got, err := svc.MarkCompleteChangeData(ctx, CompleteChangeInput{
		TaskID:               40,
		ReplacementMachineID: 14,
		AccessoriesConfirmed: map[string]bool{"tapa": true},
		Evidence:             []EvidenceFile{{Name: "cambio.jpg", ContentType: "image/jpeg", Data: strings.NewReader("img")}},
		ActingUser:           1,
	})
	require.NoError(t, err)

	require.NotNil(t, got.MachineID)
	assert.EqualValues(t, 14, *got.MachineID)
	// swaps never touch the accessory snapshot
	assert.Equal(t, map[string]bool{"manguera": true}, got.Accessories)
	assert.Equal(t, domain.RentStatusRentado, got.Status)
	assert.Equal(t, 1, got.TotalChanges)
	assert.Equal(t, 1, got.ConsecutiveChanges)

	assert.Equal(t, domain.MachineStatusRec, faulty.Status)
	assert.Equal(t, 1, faulty.TotalChanges)
	assert.Equal(t, domain.MachineStatusRentado, replacement.Status)
	require.NotNil(t, replacement.LastRentID)
	assert.EqualValues(t, 5, *replacement.LastRentID)

	store.movements.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestCompleteChangeFixedOnSiteKeepsMachine(t *testing.T) {
	store, svc, task, rent := changeFixture()
	ctx := testContext()
	rent.Accessories = map[string]bool{"manguera": false, "tapa": true}

	store.tasks.On("GetByID", ctx, int64(40)).Return(task, nil)
	store.rents.On("GetByID", ctx, int64(5)).Return(rent, nil)
	store.rents.On("Update", ctx, rent).Return(nil)
	store.tasks.On("Update", ctx, task).Return(nil)
	expectQuietPacing(store, 7)

	got, err := svc.MarkCompleteChangeData(ctx, CompleteChangeInput{
		TaskID:               40,
		WasFixed:             true,
		AccessoriesConfirmed: map[string]bool{"manguera": true, "filtro": false},
		ActingUser:           1,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 9, *got.MachineID) // same machine stays out
	assert.Equal(t, domain.RentStatusRentado, got.Status)
	assert.Equal(t, 1, got.TotalChanges) // a fix still counts toward the streak
	assert.True(t, task.WasFixed)
	// confirmations only flip flags to true; unconfirmed entries survive
	assert.Equal(t, map[string]bool{"manguera": true, "tapa": true}, got.Accessories)
	store.machines.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	store.movements.AssertNotCalled(t, "CreateCustomerMovement", mock.Anything, mock.Anything)
}

func TestCompleteChangeAwardsBonusOnFourthConsecutive(t *testing.T) {
	store, svc, task, rent := changeFixture()
	ctx := testContext()
	rent.TotalChanges = 3
	rent.ConsecutiveChanges = 3
	customer := &domain.Customer{ID: 3, Name: "Laura", FreeWeeks: 0}

	store.tasks.On("GetByID", ctx, int64(40)).Return(task, nil)
	store.rents.On("GetByID", ctx, int64(5)).Return(rent, nil)
	store.customers.On("GetByID", ctx, int64(3)).Return(customer, nil)
	store.customers.On("Update", ctx, customer).Return(nil)
	store.movements.On("CreateCustomerMovement", ctx, mock.MatchedBy(func(mv *domain.CustomerMovement) bool {
		return mv.Type == domain.CustomerMovementBonus && mv.AmountCents == 0
	})).Return(nil).Once()
	store.rents.On("Update", ctx, rent).Return(nil)
	store.tasks.On("Update", ctx, task).Return(nil)
	expectQuietPacing(store, 7)

	got, err := svc.MarkCompleteChangeData(ctx, CompleteChangeInput{
		TaskID:     40,
		WasFixed:   true,
		ActingUser: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, got.TotalChanges)
	assert.Equal(t, 0, got.ConsecutiveChanges) // streak resets on the award
	assert.Equal(t, 1, customer.FreeWeeks)
	store.movements.AssertExpectations(t)
}

func TestCompleteChangeSwapRequiresEvidence(t *testing.T) {
	store, svc, task, rent := changeFixture()
	ctx := testContext()

	store.tasks.On("GetByID", ctx, int64(40)).Return(task, nil)
	store.rents.On("GetByID", ctx, int64(5)).Return(rent, nil)

	_, err := svc.MarkCompleteChangeData(ctx, CompleteChangeInput{
		TaskID:               40,
		ReplacementMachineID: 14,
		ActingUser:           1,
	})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeMissingField, de.Code)
}

func TestCompleteChangeRejectsSameMachine(t *testing.T) {
	store, svc, task, rent := changeFixture()
	ctx := testContext()

	store.tasks.On("GetByID", ctx, int64(40)).Return(task, nil)
	store.rents.On("GetByID", ctx, int64(5)).Return(rent, nil)

	_, err := svc.MarkCompleteChangeData(ctx, CompleteChangeInput{
		TaskID:               40,
		ReplacementMachineID: 9,
		Evidence:             []EvidenceFile{{Name: "cambio.jpg", ContentType: "image/jpeg", Data: strings.NewReader("img")}},
		ActingUser:           1,
	})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeInvalidStatus, de.Code)
	store.machines.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
