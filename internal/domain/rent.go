package domain

import "time"

type RentStatus string

const (
	RentStatusPendiente     RentStatus = "PENDIENTE"
	RentStatusRentado       RentStatus = "RENTADO"
	RentStatusEnCambio      RentStatus = "EN_CAMBIO"
	RentStatusEnRecoleccion RentStatus = "EN_RECOLECCION"
	RentStatusVencida       RentStatus = "VENCIDA"
	RentStatusFinalizada    RentStatus = "FINALIZADA"
	RentStatusCancelada     RentStatus = "CANCELADA"
)

// rentTransitions is the closed allowed-transitions table. Rents move only
// through task completions and the overdue job; there is no direct setter.
var rentTransitions = map[RentStatus][]RentStatus{
	RentStatusPendiente:     {RentStatusRentado, RentStatusCancelada},
	RentStatusRentado:       {RentStatusEnCambio, RentStatusEnRecoleccion, RentStatusVencida},
	RentStatusVencida:       {RentStatusRentado, RentStatusEnCambio, RentStatusEnRecoleccion},
	RentStatusEnCambio:      {RentStatusRentado, RentStatusVencida},
	RentStatusEnRecoleccion: {RentStatusFinalizada, RentStatusRentado, RentStatusVencida},
}

// CanTransition reports whether a rent may move from its current status to
// the target status
func (s RentStatus) CanTransition(to RentStatus) bool {
	for _, allowed := range rentTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s RentStatus) IsTerminal() bool {
	return s == RentStatusFinalizada || s == RentStatusCancelada
}

// Rent is one customer's occupancy of one machine over a billed period
type Rent struct {
	ID                 int64           `json:"id"`
	Num                *int64          `json:"num,omitempty"` // assigned only once delivery payment clears
	Status             RentStatus      `json:"status"`
	CustomerID         int64           `json:"customer_id"`
	MachineID          *int64          `json:"machine_id,omitempty"`
	StartDate          *time.Time      `json:"start_date,omitempty"`
	EndDate            *time.Time      `json:"end_date,omitempty"`
	PayDay             time.Weekday    `json:"pay_day"`
	InitialWeeks       int             `json:"initial_weeks"`
	TotalWeeks         int             `json:"total_weeks"`
	ExtendedTimes      int             `json:"extended_times"`
	UsedFreeWeeks      int             `json:"used_free_weeks"`
	AcumulatedDays     int             `json:"acumulated_days"`
	TotalChanges       int             `json:"total_changes"`
	ConsecutiveChanges int             `json:"consecutive_changes"`
	Accessories        map[string]bool `json:"accesories"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	UpdatedBy          int64           `json:"updated_by"`
}

// IsOpen reports whether the rent still occupies its customer. A customer
// may hold at most one open rent at a time.
func (r *Rent) IsOpen() bool {
	return !r.Status.IsTerminal()
}
