package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMachineStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to MachineStatus
		allowed  bool
	}{
		{MachineStatusListo, MachineStatusRentado, true},
		{MachineStatusListo, MachineStatusVehi, true},
		{MachineStatusListo, MachineStatusMantenimiento, false},
		{MachineStatusRentado, MachineStatusRec, true},
		{MachineStatusRentado, MachineStatusListo, false},
		{MachineStatusRec, MachineStatusEspe, true},
		{MachineStatusRec, MachineStatusRentado, true},
		{MachineStatusEspe, MachineStatusMantenimiento, true},
		{MachineStatusEspe, MachineStatusRentado, false},
		{MachineStatusMantenimiento, MachineStatusListo, true},
		{MachineStatusVehi, MachineStatusRentado, true},
	}
	for _, c := range cases {
		assert.Equalf(t, c.allowed, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestMachineLocationExclusivity(t *testing.T) {
	m := &Machine{}

	m.PlaceOnVehicle(7)
	assert.EqualValues(t, 7, *m.CurrentVehicleID)
	assert.Nil(t, m.CurrentWarehouseID)

	m.PlaceInWarehouse(3)
	assert.EqualValues(t, 3, *m.CurrentWarehouseID)
	assert.Nil(t, m.CurrentVehicleID)

	m.PlaceWithCustomer()
	assert.Nil(t, m.CurrentVehicleID)
	assert.Nil(t, m.CurrentWarehouseID)
}

func TestMachineAgeMonths(t *testing.T) {
	created := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	m := &Machine{CreatedAt: created}

	assert.Equal(t, 0, m.AgeMonths(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, m.AgeMonths(time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, m.AgeMonths(time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 11, m.AgeMonths(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 12, m.AgeMonths(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24, m.AgeMonths(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
	// clock before creation clamps to zero
	assert.Equal(t, 0, m.AgeMonths(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}
