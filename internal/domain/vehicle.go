package domain

import "time"

// Vehicle is a field operator's truck. Its machine load is tracked through
// a join table; a machine is never listed on two vehicles.
type Vehicle struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Plate      string    `json:"plate"`
	OperatorID *int64    `json:"operator_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Warehouse is a storage location for machines off the street
type Warehouse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
