package postgres

import (
	"context"
	"database/sql"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/repository"
)

type maintenanceRepository struct {
	db DBTX
}

func NewMaintenanceRepository(db DBTX) repository.MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) GetByID(ctx context.Context, id int64) (*domain.Maintenance, error) {
	query := `SELECT id, machine_id, status, COALESCE(notes, ''), cost_cents, started_at, finished_at, created_by
	          FROM maintenances WHERE id = $1`
	m := &domain.Maintenance{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.MachineID, &m.Status, &m.Notes,
		&m.CostCents, &m.StartedAt, &m.FinishedAt, &m.CreatedBy)
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "mantenimiento %d no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *maintenanceRepository) Create(ctx context.Context, m *domain.Maintenance) error {
	query := `INSERT INTO maintenances (machine_id, status, notes, cost_cents, started_at, finished_at, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if m.StartedAt.IsZero() {
		m.StartedAt = time.Now()
	}
	return r.db.QueryRowContext(ctx, query, m.MachineID, m.Status, m.Notes, m.CostCents,
		m.StartedAt, m.FinishedAt, m.CreatedBy).Scan(&m.ID)
}

func (r *maintenanceRepository) Update(ctx context.Context, m *domain.Maintenance) error {
	query := `UPDATE maintenances SET status=$1, notes=$2, cost_cents=$3, finished_at=$4 WHERE id=$5`
	_, err := r.db.ExecContext(ctx, query, m.Status, m.Notes, m.CostCents, m.FinishedAt, m.ID)
	return err
}

func (r *maintenanceRepository) AddUsedProduct(ctx context.Context, up *domain.UsedProduct) error {
	query := `INSERT INTO maintenance_products (maintenance_id, product_id, quantity, unit_cost_cents)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, up.MaintenanceID, up.ProductID, up.Quantity, up.UnitCostCents).Scan(&up.ID)
}

type productRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT id, name, stock, unit_cost_cents FROM products WHERE id = $1`
	p := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Stock, &p.UnitCostCents)
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "producto %d no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DecrementStock takes quantity units off the shelf. The WHERE clause makes
// the check-and-decrement atomic: zero rows affected means the stock was
// insufficient.
func (r *productRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	query := `UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`
	res, err := r.db.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.Errorf(domain.CodeInsufficientStock, "inventario insuficiente del producto %d", id)
	}
	return nil
}
