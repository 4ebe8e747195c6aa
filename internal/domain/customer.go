package domain

import "time"

// Customer owns the balance / free-week ledger. Balance, free weeks and
// total rent weeks change only as the side effect of a recorded
// CustomerMovement; nothing adjusts them directly.
type Customer struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	MapsURL        string    `json:"maps_url"`
	BalanceCents   int64     `json:"balance_cents"` // negative = debt
	FreeWeeks      int       `json:"free_weeks"`
	AcumulatedDays int       `json:"acumulated_days"`
	Level          int       `json:"level"`
	TotalRentWeeks int       `json:"total_rent_weeks"`
	HasRent        bool      `json:"has_rent"`
	CurrentRentID  *int64    `json:"current_rent_id,omitempty"`
	CompletedRents int       `json:"completed_rents"`
	MergedIntoID   *int64    `json:"merged_into_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
