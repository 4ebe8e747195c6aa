package domain

import "time"

type TaskKind string

const (
	TaskKindDelivery TaskKind = "DELIVERY"
	TaskKindPickup   TaskKind = "PICKUP"
	TaskKindChange   TaskKind = "CHANGE"
)

type TaskStatus string

const (
	TaskStatusEspera       TaskStatus = "ESPERA"
	TaskStatusEnCamino     TaskStatus = "EN_CAMINO"
	TaskStatusCompletada   TaskStatus = "COMPLETADA"
	TaskStatusCancelada    TaskStatus = "CANCELADA"
	TaskStatusReprogramada TaskStatus = "REPROGRAMADA"
)

// Completable reports whether the task is still in a status from which it
// may be completed. Guards against double completion.
func (s TaskStatus) Completable() bool {
	return s == TaskStatusEspera || s == TaskStatusEnCamino
}

// IsTerminal reports whether the task reached a final status
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompletada || s == TaskStatusCancelada || s == TaskStatusReprogramada
}

// Task is one scheduled field visit that advances a rent's lifecycle when
// completed
type Task struct {
	ID          int64             `json:"id"`
	Kind        TaskKind          `json:"kind"`
	TotalNumber int64             `json:"total_number"`
	DayNumber   int64             `json:"day_number"`
	Status      TaskStatus        `json:"status"`
	Date        time.Time         `json:"date"`
	FromTime    time.Time         `json:"from_time"`
	EndTime     time.Time         `json:"end_time"`
	TimeOption  TimeOption        `json:"time_option"`
	OperatorID  *int64            `json:"operator_id,omitempty"`
	TakenAt     *time.Time        `json:"taken_at,omitempty"`
	RentID      int64             `json:"rent_id"`
	WasSent     bool              `json:"was_sent"`
	WasFixed    bool              `json:"was_fixed"` // change tasks resolved on-site
	Reason      string            `json:"reason"`    // mandatory on cancellation
	ImagesURL   map[string]string `json:"images_url,omitempty"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CreatedBy   int64             `json:"created_by"`

	// PrevRentStatus is the rent status the task's creation replaced, kept
	// so cancellation can revert exactly that side effect
	PrevRentStatus RentStatus `json:"prev_rent_status,omitempty"`
}
