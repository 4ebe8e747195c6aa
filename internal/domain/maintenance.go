package domain

import "time"

type MaintenanceStatus string

const (
	MaintenanceStatusPendiente  MaintenanceStatus = "PENDIENTE"
	MaintenanceStatusEnProceso  MaintenanceStatus = "EN_PROCESO"
	MaintenanceStatusCompletada MaintenanceStatus = "COMPLETADA"
)

// Maintenance is one repair pass over a machine at the warehouse
type Maintenance struct {
	ID         int64             `json:"id"`
	MachineID  int64             `json:"machine_id"`
	Status     MaintenanceStatus `json:"status"`
	Notes      string            `json:"notes"`
	CostCents  int64             `json:"cost_cents"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	CreatedBy  int64             `json:"created_by"`
}

// UsedProduct records inventory consumed by a maintenance
type UsedProduct struct {
	ID            int64 `json:"id"`
	MaintenanceID int64 `json:"maintenance_id"`
	ProductID     int64 `json:"product_id"`
	Quantity      int   `json:"quantity"`
	UnitCostCents int64 `json:"unit_cost_cents"`
}

// Product is an inventory item consumed during maintenance
type Product struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Stock         int    `json:"stock"`
	UnitCostCents int64  `json:"unit_cost_cents"`
}
