package postgres

import (
	"context"
	"database/sql"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/repository"
)

type machineRepository struct {
	db DBTX
}

func NewMachineRepository(db DBTX) repository.MachineRepository {
	return &machineRepository{db: db}
}

const machineColumns = `id, num, status, current_vehicle_id, current_warehouse_id, last_rent_id,
	earnings_cents, expenses_cents, total_changes, partner_id, created_at, updated_at, updated_by`

func scanMachine(row interface{ Scan(...any) error }) (*domain.Machine, error) {
	m := &domain.Machine{}
	err := row.Scan(&m.ID, &m.Num, &m.Status, &m.CurrentVehicleID, &m.CurrentWarehouseID,
		&m.LastRentID, &m.EarningsCents, &m.ExpensesCents, &m.TotalChanges, &m.PartnerID,
		&m.CreatedAt, &m.UpdatedAt, &m.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *machineRepository) GetByID(ctx context.Context, id int64) (*domain.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE id = $1`
	m, err := scanMachine(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "máquina %d no encontrada", id)
	}
	return m, err
}

func (r *machineRepository) Create(ctx context.Context, m *domain.Machine) error {
	query := `INSERT INTO machines (num, status, current_vehicle_id, current_warehouse_id, last_rent_id,
	          earnings_cents, expenses_cents, total_changes, partner_id, created_at, updated_at, updated_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10, $11) RETURNING id`
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	return r.db.QueryRowContext(ctx, query, m.Num, m.Status, m.CurrentVehicleID, m.CurrentWarehouseID,
		m.LastRentID, m.EarningsCents, m.ExpensesCents, m.TotalChanges, m.PartnerID, now, m.UpdatedBy).Scan(&m.ID)
}

func (r *machineRepository) Update(ctx context.Context, m *domain.Machine) error {
	query := `UPDATE machines SET status=$1, current_vehicle_id=$2, current_warehouse_id=$3,
	          last_rent_id=$4, earnings_cents=$5, expenses_cents=$6, total_changes=$7,
	          updated_at=$8, updated_by=$9 WHERE id=$10`
	m.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query, m.Status, m.CurrentVehicleID, m.CurrentWarehouseID,
		m.LastRentID, m.EarningsCents, m.ExpensesCents, m.TotalChanges, m.UpdatedAt, m.UpdatedBy, m.ID)
	return err
}

func (r *machineRepository) ListByStatus(ctx context.Context, status domain.MachineStatus) ([]domain.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE status = $1 ORDER BY num`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var machines []domain.Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		machines = append(machines, *m)
	}
	return machines, rows.Err()
}
