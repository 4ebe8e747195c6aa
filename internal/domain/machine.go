package domain

import "time"

type MachineStatus string

const (
	MachineStatusListo         MachineStatus = "LISTO"         // ready to rent
	MachineStatusRentado       MachineStatus = "RENTADO"       // with a customer
	MachineStatusRec           MachineStatus = "REC"           // collected, on a vehicle awaiting transport
	MachineStatusEspe          MachineStatus = "ESPE"          // at warehouse awaiting maintenance
	MachineStatusMantenimiento MachineStatus = "MANTENIMIENTO" // maintenance in progress
	MachineStatusVehi          MachineStatus = "VEHI"          // loaded on a vehicle
)

// machineTransitions is the closed allowed-transitions table for a physical
// unit. Location-field side effects are enforced by the services that drive
// the transition, inside the same transaction.
var machineTransitions = map[MachineStatus][]MachineStatus{
	MachineStatusListo:         {MachineStatusRentado, MachineStatusVehi, MachineStatusEspe},
	MachineStatusRentado:       {MachineStatusRec},
	MachineStatusRec:           {MachineStatusEspe, MachineStatusRentado, MachineStatusVehi},
	MachineStatusEspe:          {MachineStatusMantenimiento},
	MachineStatusMantenimiento: {MachineStatusListo},
	MachineStatusVehi:          {MachineStatusRentado, MachineStatusListo, MachineStatusEspe},
}

// CanTransition reports whether a machine may move between the two statuses
func (s MachineStatus) CanTransition(to MachineStatus) bool {
	for _, allowed := range machineTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Machine is one physical washing machine
type Machine struct {
	ID                 int64         `json:"id"`
	Num                int64         `json:"num"`
	Status             MachineStatus `json:"status"`
	CurrentVehicleID   *int64        `json:"current_vehicle_id,omitempty"`
	CurrentWarehouseID *int64        `json:"current_warehouse_id,omitempty"`
	LastRentID         *int64        `json:"last_rent_id,omitempty"`
	EarningsCents      int64         `json:"earnings_cents"`
	ExpensesCents      int64         `json:"expenses_cents"`
	TotalChanges       int           `json:"total_changes"`
	PartnerID          *int64        `json:"partner_id,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	UpdatedBy          int64         `json:"updated_by"`
}

// PlaceOnVehicle records the machine's location as a vehicle and clears the
// warehouse. At most one of vehicle / warehouse may ever be set.
func (m *Machine) PlaceOnVehicle(vehicleID int64) {
	m.CurrentVehicleID = &vehicleID
	m.CurrentWarehouseID = nil
}

// PlaceInWarehouse records the machine's location as a warehouse and clears
// the vehicle
func (m *Machine) PlaceInWarehouse(warehouseID int64) {
	m.CurrentWarehouseID = &warehouseID
	m.CurrentVehicleID = nil
}

// PlaceWithCustomer clears both location fields: a rented machine is neither
// on a vehicle nor at a warehouse
func (m *Machine) PlaceWithCustomer() {
	m.CurrentVehicleID = nil
	m.CurrentWarehouseID = nil
}

// AgeMonths returns the machine's age in whole months at the given instant
func (m *Machine) AgeMonths(now time.Time) int {
	months := (now.Year()-m.CreatedAt.Year())*12 + int(now.Month()) - int(m.CreatedAt.Month())
	if now.Day() < m.CreatedAt.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
