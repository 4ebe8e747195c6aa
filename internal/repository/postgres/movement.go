package postgres

import (
	"context"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/repository"
)

type movementRepository struct {
	db DBTX
}

func NewMovementRepository(db DBTX) repository.MovementRepository {
	return &movementRepository{db: db}
}

// CreateCustomerMovement appends one immutable customer ledger entry. There
// is deliberately no update or delete counterpart.
func (r *movementRepository) CreateCustomerMovement(ctx context.Context, m *domain.CustomerMovement) error {
	query := `INSERT INTO customer_movements (customer_id, rent_id, type, amount_cents, date, description)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	return r.db.QueryRowContext(ctx, query, m.CustomerID, m.RentID, m.Type, m.AmountCents,
		m.Date, m.Description).Scan(&m.ID)
}

// CreateMachineMovement appends one immutable machine ledger entry
func (r *movementRepository) CreateMachineMovement(ctx context.Context, m *domain.MachineMovement) error {
	query := `INSERT INTO machine_movements (machine_id, rent_id, type, amount_cents, date, description)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	return r.db.QueryRowContext(ctx, query, m.MachineID, m.RentID, m.Type, m.AmountCents,
		m.Date, m.Description).Scan(&m.ID)
}

func (r *movementRepository) ListCustomerMovements(ctx context.Context, customerID int64) ([]domain.CustomerMovement, error) {
	query := `SELECT id, customer_id, rent_id, type, amount_cents, date, COALESCE(description, '')
	          FROM customer_movements WHERE customer_id = $1 ORDER BY date, id`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []domain.CustomerMovement
	for rows.Next() {
		var m domain.CustomerMovement
		if err := rows.Scan(&m.ID, &m.CustomerID, &m.RentID, &m.Type, &m.AmountCents, &m.Date, &m.Description); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// SumCustomerMonetary derives the customer's balance from the ledger trail.
// The denormalized customers.balance_cents must always equal this sum.
func (r *movementRepository) SumCustomerMonetary(ctx context.Context, customerID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM customer_movements
	          WHERE customer_id = $1 AND type NOT IN ('BONUS', 'FREE_WEEK')`
	var sum int64
	err := r.db.QueryRowContext(ctx, query, customerID).Scan(&sum)
	return sum, err
}
