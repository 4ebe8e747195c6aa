package postgres

import (
	"context"
	"database/sql"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/repository"
)

type vehicleRepository struct {
	db DBTX
}

func NewVehicleRepository(db DBTX) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	query := `SELECT id, name, COALESCE(plate, ''), operator_id, created_at FROM vehicles WHERE id = $1`
	v := &domain.Vehicle{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Name, &v.Plate, &v.OperatorID, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "vehículo %d no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) GetByOperator(ctx context.Context, operatorID int64) (*domain.Vehicle, error) {
	query := `SELECT id, name, COALESCE(plate, ''), operator_id, created_at FROM vehicles WHERE operator_id = $1`
	v := &domain.Vehicle{}
	err := r.db.QueryRowContext(ctx, query, operatorID).Scan(&v.ID, &v.Name, &v.Plate, &v.OperatorID, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "el operador %d no tiene vehículo asignado", operatorID)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) AddMachine(ctx context.Context, vehicleID, machineID int64) error {
	query := `INSERT INTO vehicle_machines (vehicle_id, machine_id) VALUES ($1, $2)
	          ON CONFLICT (machine_id) DO UPDATE SET vehicle_id = EXCLUDED.vehicle_id`
	_, err := r.db.ExecContext(ctx, query, vehicleID, machineID)
	return err
}

// RemoveMachineFromAny clears the machine's vehicle membership wherever it
// is. The unique constraint on machine_id keeps a machine off two vehicles;
// this is the safe unload before any re-load.
func (r *vehicleRepository) RemoveMachineFromAny(ctx context.Context, machineID int64) error {
	query := `DELETE FROM vehicle_machines WHERE machine_id = $1`
	_, err := r.db.ExecContext(ctx, query, machineID)
	return err
}

func (r *vehicleRepository) ListMachinesOn(ctx context.Context, vehicleID int64) ([]int64, error) {
	query := `SELECT machine_id FROM vehicle_machines WHERE vehicle_id = $1 ORDER BY machine_id`
	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type warehouseRepository struct {
	db DBTX
}

func NewWarehouseRepository(db DBTX) repository.WarehouseRepository {
	return &warehouseRepository{db: db}
}

func (r *warehouseRepository) GetByID(ctx context.Context, id int64) (*domain.Warehouse, error) {
	query := `SELECT id, name, created_at FROM warehouses WHERE id = $1`
	w := &domain.Warehouse{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&w.ID, &w.Name, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "almacén %d no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *warehouseRepository) GetDefault(ctx context.Context) (*domain.Warehouse, error) {
	query := `SELECT id, name, created_at FROM warehouses ORDER BY id LIMIT 1`
	w := &domain.Warehouse{}
	err := r.db.QueryRowContext(ctx, query).Scan(&w.ID, &w.Name, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.CodeNotFound, "no hay almacén registrado")
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}
