package postgres

import (
	"context"
	"database/sql"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/repository"
)

type customerRepository struct {
	db DBTX
}

func NewCustomerRepository(db DBTX) repository.CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, name, phone, COALESCE(maps_url, ''), balance_cents, free_weeks,
	acumulated_days, level, total_rent_weeks, has_rent, current_rent_id, completed_rents,
	merged_into_id, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.MapsURL, &c.BalanceCents, &c.FreeWeeks,
		&c.AcumulatedDays, &c.Level, &c.TotalRentWeeks, &c.HasRent, &c.CurrentRentID,
		&c.CompletedRents, &c.MergedIntoID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "cliente %d no encontrado", id)
	}
	return c, err
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
	          WHERE phone = $1 AND merged_into_id IS NULL ORDER BY created_at LIMIT 1`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, phone))
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "cliente con teléfono %s no encontrado", phone)
	}
	return c, err
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (name, phone, maps_url, balance_cents, free_weeks, acumulated_days,
	          level, total_rent_weeks, has_rent, current_rent_id, completed_rents, merged_into_id,
	          created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13) RETURNING id`
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return r.db.QueryRowContext(ctx, query, c.Name, c.Phone, c.MapsURL, c.BalanceCents, c.FreeWeeks,
		c.AcumulatedDays, c.Level, c.TotalRentWeeks, c.HasRent, c.CurrentRentID, c.CompletedRents,
		c.MergedIntoID, now).Scan(&c.ID)
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET name=$1, phone=$2, maps_url=$3, balance_cents=$4, free_weeks=$5,
	          acumulated_days=$6, level=$7, total_rent_weeks=$8, has_rent=$9, current_rent_id=$10,
	          completed_rents=$11, merged_into_id=$12, updated_at=$13 WHERE id=$14`
	c.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query, c.Name, c.Phone, c.MapsURL, c.BalanceCents, c.FreeWeeks,
		c.AcumulatedDays, c.Level, c.TotalRentWeeks, c.HasRent, c.CurrentRentID, c.CompletedRents,
		c.MergedIntoID, c.UpdatedAt, c.ID)
	return err
}
