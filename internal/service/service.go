package service

import (
	"context"
	"io"
	"time"

	"lavarenta-backend/internal/domain"
)

// SaveTaskInput is the common payload to schedule a field visit
type SaveTaskInput struct {
	RentID     int64
	Date       time.Time
	TimeOption domain.TimeOption
	FromTime   time.Time
	EndTime    time.Time
	ActingUser int64
}

// UpdateTimeInput reschedules an existing task
type UpdateTimeInput struct {
	TaskID     int64
	Date       time.Time
	TimeOption domain.TimeOption
	FromTime   time.Time
	EndTime    time.Time
	ActingUser int64
}

// EvidenceFile is one completion photo handed to the evidence store
type EvidenceFile struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// CompleteDeliveryInput carries the delivery completion payload
type CompleteDeliveryInput struct {
	TaskID        int64
	MachineID     int64
	PaymentCents  int64
	CustomerName  string
	CustomerPhone string
	MapsURL       string
	SamePerson    bool
	Accessories   map[string]bool
	Evidence      []EvidenceFile
	ActingUser    int64
}

// CompletePickupInput carries the pickup completion payload
type CompletePickupInput struct {
	TaskID              int64
	AccessoriesReturned map[string]bool
	Evidence            []EvidenceFile
	ActingUser          int64
}

// CompleteChangeInput carries the swap completion payload
type CompleteChangeInput struct {
	TaskID               int64
	WasFixed             bool
	AccessoriesConfirmed map[string]bool
	ReplacementMachineID int64
	Evidence             []EvidenceFile
	ActingUser           int64
}

// CancelTaskInput cancels a scheduled visit; the reason is mandatory
type CancelTaskInput struct {
	TaskID     int64
	Reason     string
	CancelRent bool // delivery only: also cancel the pending rent
	ActingUser int64
}

// DeliveryService schedules and completes first-delivery visits
type DeliveryService interface {
	SaveDeliveryData(ctx context.Context, in SaveTaskInput) (*domain.Task, error)
	AssignDeliveryOperator(ctx context.Context, taskID, operatorID, actingUser int64) error
	MarkCompleteDeliveryData(ctx context.Context, in CompleteDeliveryInput) (*domain.Rent, error)
	CancelDeliveryData(ctx context.Context, in CancelTaskInput) error
	UpdateDeliveryTimeData(ctx context.Context, in UpdateTimeInput) (*domain.Task, error)
}

// PickupService schedules and completes collection visits
type PickupService interface {
	SavePickupData(ctx context.Context, in SaveTaskInput) (*domain.Task, error)
	AssignPickupOperator(ctx context.Context, taskID, operatorID, actingUser int64) error
	MarkCompletePickupData(ctx context.Context, in CompletePickupInput) (*domain.Rent, error)
	CancelPickupData(ctx context.Context, in CancelTaskInput) error
	UpdatePickupTimeData(ctx context.Context, in UpdateTimeInput) (*domain.Task, error)
}

// ChangeService schedules and completes mid-rental swap visits
type ChangeService interface {
	SaveChangeData(ctx context.Context, in SaveTaskInput) (*domain.Task, error)
	AssignChangeOperator(ctx context.Context, taskID, operatorID, actingUser int64) error
	MarkCompleteChangeData(ctx context.Context, in CompleteChangeInput) (*domain.Rent, error)
	CancelChangeData(ctx context.Context, in CancelTaskInput) error
	UpdateChangeTimeData(ctx context.Context, in UpdateTimeInput) (*domain.Task, error)
}

// ExtensionService runs the back-office rent extension and pay-day
// operations
type ExtensionService interface {
	ExtendRentData(ctx context.Context, in ExtendRentInput) (*domain.Rent, error)
	ChangeRentPayDayData(ctx context.Context, in ChangePayDayInput) (*domain.Rent, error)
}

// ExtendRentInput re-prices and extends a running rent
type ExtendRentInput struct {
	RentID       int64
	Weeks        int
	PaymentCents int64
	UseFreeWeeks bool
	ActingUser   int64
}

// ChangePayDayInput shifts the rent's payment weekday
type ChangePayDayInput struct {
	RentID       int64
	NewPayDay    time.Weekday
	PaymentCents int64
	ActingUser   int64
}

// MaintenanceService runs the workshop flow for collected machines
type MaintenanceService interface {
	ReceiveEquipmentData(ctx context.Context, machineIDs []int64, warehouseID int64, actingUser int64) error
	StartMaintenanceData(ctx context.Context, machineID int64, actingUser int64) (*domain.Maintenance, error)
	AddUsedProductData(ctx context.Context, maintenanceID, productID int64, quantity int, actingUser int64) error
	CompleteMantainanceData(ctx context.Context, maintenanceID int64, notes string, actingUser int64) error
}

// Notifier sends best-effort notifications after a commit. Failures are
// logged, never propagated.
type Notifier interface {
	SendOperatorBlocked(ctx context.Context, email, name, reason string) error
	SendTaskAssigned(ctx context.Context, email, kind string, date time.Time) error
}

// AuthService authenticates operators and refreshes their tokens
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

// AdminService holds back-office administration operations
type AdminService interface {
	UnblockOperatorData(ctx context.Context, operatorID, actingUser int64) error
	RegisterRentData(ctx context.Context, in RegisterRentInput) (*domain.Rent, error)
	RegisterMachineData(ctx context.Context, in RegisterMachineInput) (*domain.Machine, error)
}
