package domain

import "time"

type OperatorRole string

const (
	OperatorRoleField  OperatorRole = "FIELD"
	OperatorRoleOffice OperatorRole = "OFFICE"
	OperatorRoleAdmin  OperatorRole = "ADMIN"
)

// Operator is a worker account. Field operators complete visits from a
// vehicle; office operators run extensions and pay-day changes.
type Operator struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Role          OperatorRole `json:"role"`
	VehicleID     *int64       `json:"vehicle_id,omitempty"`
	PasswordHash  string       `json:"-"`
	Blocked       bool         `json:"blocked"`
	BlockedAt     *time.Time   `json:"blocked_at,omitempty"`
	BlockedReason string       `json:"blocked_reason"`
	LastUnlockAt  *time.Time   `json:"last_unlock_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// PacingThresholdMinutes returns the anti-idling threshold for the
// operator's role: field workers get the wider window.
func (o *Operator) PacingThresholdMinutes(fieldMin, officeMin int) int {
	if o.Role == OperatorRoleField {
		return fieldMin
	}
	return officeMin
}
