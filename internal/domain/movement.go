package domain

import "time"

type CustomerMovementType string

const (
	CustomerMovementNewRent   CustomerMovementType = "NEW_RENT"
	CustomerMovementExtRent   CustomerMovementType = "EXT_RENT"
	CustomerMovementChange    CustomerMovementType = "CHANGE"
	CustomerMovementDebt      CustomerMovementType = "DEBT"
	CustomerMovementBonus     CustomerMovementType = "BONUS"
	CustomerMovementPayChange CustomerMovementType = "PAY_CHANGE"
	CustomerMovementFreeWeek  CustomerMovementType = "FREE_WEEK"
)

// Monetary reports whether movements of this type affect the customer's
// balance. Non-monetary movements record credit events (free weeks, bonus
// weeks) with a zero amount.
func (t CustomerMovementType) Monetary() bool {
	switch t {
	case CustomerMovementBonus, CustomerMovementFreeWeek:
		return false
	}
	return true
}

// CustomerMovement is an append-only ledger entry on a customer. Never
// updated or deleted after creation.
type CustomerMovement struct {
	ID          int64                `json:"id"`
	CustomerID  int64                `json:"customer_id"`
	RentID      *int64               `json:"rent_id,omitempty"`
	Type        CustomerMovementType `json:"type"`
	AmountCents int64                `json:"amount_cents"`
	Date        time.Time            `json:"date"`
	Description string               `json:"description"`
}

type MachineMovementType string

const (
	MachineMovementRent    MachineMovementType = "RENT"
	MachineMovementExtRent MachineMovementType = "EXT_RENT"
	MachineMovementChange  MachineMovementType = "CHANGE"
	MachineMovementExpense MachineMovementType = "EXPENSE"
)

// MachineMovement is an append-only earnings/expense ledger entry on a
// machine
type MachineMovement struct {
	ID          int64               `json:"id"`
	MachineID   int64               `json:"machine_id"`
	RentID      *int64              `json:"rent_id,omitempty"`
	Type        MachineMovementType `json:"type"`
	AmountCents int64               `json:"amount_cents"`
	Date        time.Time           `json:"date"`
	Description string              `json:"description"`
}
