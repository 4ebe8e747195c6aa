package postgres

import (
	"context"

	"lavarenta-backend/internal/repository"
)

type counterRepository struct {
	db DBTX
}

func NewCounterRepository(db DBTX) repository.CounterRepository {
	return &counterRepository{db: db}
}

// Next atomically increments and returns the named counter. The upsert form
// replaces the old read-max-then-insert pattern: two concurrent callers can
// never receive the same value.
func (r *counterRepository) Next(ctx context.Context, name string) (int64, error) {
	query := `INSERT INTO counters (name, value) VALUES ($1, 1)
	          ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
	          RETURNING value`
	var value int64
	err := r.db.QueryRowContext(ctx, query, name).Scan(&value)
	return value, err
}
