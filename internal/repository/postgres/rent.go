package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/repository"
)

type rentRepository struct {
	db DBTX
}

func NewRentRepository(db DBTX) repository.RentRepository {
	return &rentRepository{db: db}
}

const rentColumns = `id, num, status, customer_id, machine_id, start_date, end_date, pay_day,
	initial_weeks, total_weeks, extended_times, used_free_weeks, acumulated_days,
	total_changes, consecutive_changes, accessories, created_at, updated_at, updated_by`

func scanRent(row interface{ Scan(...any) error }) (*domain.Rent, error) {
	r := &domain.Rent{}
	var payDay int
	var accessories []byte
	err := row.Scan(&r.ID, &r.Num, &r.Status, &r.CustomerID, &r.MachineID, &r.StartDate, &r.EndDate,
		&payDay, &r.InitialWeeks, &r.TotalWeeks, &r.ExtendedTimes, &r.UsedFreeWeeks,
		&r.AcumulatedDays, &r.TotalChanges, &r.ConsecutiveChanges, &accessories,
		&r.CreatedAt, &r.UpdatedAt, &r.UpdatedBy)
	if err != nil {
		return nil, err
	}
	r.PayDay = time.Weekday(payDay)
	if len(accessories) > 0 {
		if err := json.Unmarshal(accessories, &r.Accessories); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *rentRepository) GetByID(ctx context.Context, id int64) (*domain.Rent, error) {
	query := `SELECT ` + rentColumns + ` FROM rents WHERE id = $1`
	rent, err := scanRent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "renta %d no encontrada", id)
	}
	return rent, err
}

func (r *rentRepository) Create(ctx context.Context, rent *domain.Rent) error {
	accessories, err := json.Marshal(rent.Accessories)
	if err != nil {
		return err
	}
	query := `INSERT INTO rents (num, status, customer_id, machine_id, start_date, end_date, pay_day,
	          initial_weeks, total_weeks, extended_times, used_free_weeks, acumulated_days,
	          total_changes, consecutive_changes, accessories, created_at, updated_at, updated_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16, $17)
	          RETURNING id`
	now := time.Now()
	rent.CreatedAt = now
	rent.UpdatedAt = now
	return r.db.QueryRowContext(ctx, query, rent.Num, rent.Status, rent.CustomerID, rent.MachineID,
		rent.StartDate, rent.EndDate, int(rent.PayDay), rent.InitialWeeks, rent.TotalWeeks,
		rent.ExtendedTimes, rent.UsedFreeWeeks, rent.AcumulatedDays, rent.TotalChanges,
		rent.ConsecutiveChanges, accessories, now, rent.UpdatedBy).Scan(&rent.ID)
}

func (r *rentRepository) Update(ctx context.Context, rent *domain.Rent) error {
	accessories, err := json.Marshal(rent.Accessories)
	if err != nil {
		return err
	}
	query := `UPDATE rents SET num=$1, status=$2, customer_id=$3, machine_id=$4, start_date=$5,
	          end_date=$6, pay_day=$7, initial_weeks=$8, total_weeks=$9, extended_times=$10,
	          used_free_weeks=$11, acumulated_days=$12, total_changes=$13, consecutive_changes=$14,
	          accessories=$15, updated_at=$16, updated_by=$17 WHERE id=$18`
	rent.UpdatedAt = time.Now()
	_, err = r.db.ExecContext(ctx, query, rent.Num, rent.Status, rent.CustomerID, rent.MachineID,
		rent.StartDate, rent.EndDate, int(rent.PayDay), rent.InitialWeeks, rent.TotalWeeks,
		rent.ExtendedTimes, rent.UsedFreeWeeks, rent.AcumulatedDays, rent.TotalChanges,
		rent.ConsecutiveChanges, accessories, rent.UpdatedAt, rent.UpdatedBy, rent.ID)
	return err
}

// GetOpenByCustomer returns the customer's single non-terminal rent, or
// sql.ErrNoRows wrapped as a domain not-found when none is open
func (r *rentRepository) GetOpenByCustomer(ctx context.Context, customerID int64) (*domain.Rent, error) {
	query := `SELECT ` + rentColumns + ` FROM rents
	          WHERE customer_id = $1 AND status NOT IN ('FINALIZADA', 'CANCELADA')`
	rent, err := scanRent(r.db.QueryRowContext(ctx, query, customerID))
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "el cliente %d no tiene renta abierta", customerID)
	}
	return rent, err
}

// MarkOverdue flips every RENTADO rent past its end date to VENCIDA and
// returns how many rows changed
func (r *rentRepository) MarkOverdue(ctx context.Context, before time.Time, updatedBy int64) (int64, error) {
	query := `UPDATE rents SET status = 'VENCIDA', updated_at = $1, updated_by = $2
	          WHERE status = 'RENTADO' AND end_date < $3`
	res, err := r.db.ExecContext(ctx, query, time.Now(), updatedBy, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
