package postgres

import (
	"context"
	"database/sql"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/repository"
)

type operatorRepository struct {
	db DBTX
}

func NewOperatorRepository(db DBTX) repository.OperatorRepository {
	return &operatorRepository{db: db}
}

const operatorColumns = `id, name, email, role, vehicle_id, password_hash, blocked, blocked_at,
	COALESCE(blocked_reason, ''), last_unlock_at, created_at, updated_at`

func scanOperator(row interface{ Scan(...any) error }) (*domain.Operator, error) {
	o := &domain.Operator{}
	err := row.Scan(&o.ID, &o.Name, &o.Email, &o.Role, &o.VehicleID, &o.PasswordHash, &o.Blocked,
		&o.BlockedAt, &o.BlockedReason, &o.LastUnlockAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *operatorRepository) GetByID(ctx context.Context, id int64) (*domain.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE id = $1`
	o, err := scanOperator(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "operador %d no encontrado", id)
	}
	return o, err
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE email = $1`
	o, err := scanOperator(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.CodeNotFound, "operador no encontrado")
	}
	return o, err
}

func (r *operatorRepository) Update(ctx context.Context, o *domain.Operator) error {
	query := `UPDATE operators SET name=$1, email=$2, role=$3, vehicle_id=$4, password_hash=$5,
	          blocked=$6, blocked_at=$7, blocked_reason=$8, last_unlock_at=$9, updated_at=$10
	          WHERE id=$11`
	o.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query, o.Name, o.Email, o.Role, o.VehicleID, o.PasswordHash,
		o.Blocked, o.BlockedAt, o.BlockedReason, o.LastUnlockAt, o.UpdatedAt, o.ID)
	return err
}

func (r *operatorRepository) Block(ctx context.Context, id int64, reason string, at time.Time) error {
	query := `UPDATE operators SET blocked = TRUE, blocked_at = $1, blocked_reason = $2, updated_at = $1
	          WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, at, reason, id)
	return err
}

func (r *operatorRepository) Unblock(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE operators SET blocked = FALSE, blocked_at = NULL, blocked_reason = '',
	          last_unlock_at = $1, updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

type operatorActionRepository struct {
	db DBTX
}

func NewOperatorActionRepository(db DBTX) repository.OperatorActionRepository {
	return &operatorActionRepository{db: db}
}

func (r *operatorActionRepository) Record(ctx context.Context, operatorID int64, kind string, at time.Time) error {
	query := `INSERT INTO operator_actions (operator_id, kind, completed_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, operatorID, kind, at)
	return err
}

// ListSince returns the operator's most recent completion timestamps at or
// after the cutoff, newest first
func (r *operatorActionRepository) ListSince(ctx context.Context, operatorID int64, since time.Time, limit int) ([]time.Time, error) {
	query := `SELECT completed_at FROM operator_actions
	          WHERE operator_id = $1 AND completed_at >= $2
	          ORDER BY completed_at DESC LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, operatorID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}
