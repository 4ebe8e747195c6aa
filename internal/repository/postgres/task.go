package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/repository"
)

type taskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) repository.TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, kind, total_number, day_number, status, date, from_time, end_time,
	time_option, operator_id, taken_at, rent_id, prev_rent_status, was_sent, was_fixed,
	COALESCE(reason, ''), images_url, finished_at, created_at, updated_at, created_by`

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	t := &domain.Task{}
	var images []byte
	err := row.Scan(&t.ID, &t.Kind, &t.TotalNumber, &t.DayNumber, &t.Status, &t.Date, &t.FromTime,
		&t.EndTime, &t.TimeOption, &t.OperatorID, &t.TakenAt, &t.RentID, &t.PrevRentStatus,
		&t.WasSent, &t.WasFixed, &t.Reason, &images, &t.FinishedAt, &t.CreatedAt, &t.UpdatedAt,
		&t.CreatedBy)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &t.ImagesURL); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "tarea %d no encontrada", id)
	}
	return t, err
}

func (r *taskRepository) Create(ctx context.Context, t *domain.Task) error {
	images, err := json.Marshal(t.ImagesURL)
	if err != nil {
		return err
	}
	query := `INSERT INTO tasks (kind, total_number, day_number, status, date, from_time, end_time,
	          time_option, operator_id, taken_at, rent_id, prev_rent_status, was_sent, was_fixed,
	          reason, images_url, finished_at, created_at, updated_at, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18, $19)
	          RETURNING id`
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	return r.db.QueryRowContext(ctx, query, t.Kind, t.TotalNumber, t.DayNumber, t.Status, t.Date,
		t.FromTime, t.EndTime, t.TimeOption, t.OperatorID, t.TakenAt, t.RentID, t.PrevRentStatus,
		t.WasSent, t.WasFixed, t.Reason, images, t.FinishedAt, now, t.CreatedBy).Scan(&t.ID)
}

func (r *taskRepository) Update(ctx context.Context, t *domain.Task) error {
	images, err := json.Marshal(t.ImagesURL)
	if err != nil {
		return err
	}
	query := `UPDATE tasks SET total_number=$1, day_number=$2, status=$3, date=$4, from_time=$5,
	          end_time=$6, time_option=$7, operator_id=$8, taken_at=$9, was_sent=$10, was_fixed=$11,
	          reason=$12, images_url=$13, finished_at=$14, updated_at=$15 WHERE id=$16`
	t.UpdatedAt = time.Now()
	_, err = r.db.ExecContext(ctx, query, t.TotalNumber, t.DayNumber, t.Status, t.Date, t.FromTime,
		t.EndTime, t.TimeOption, t.OperatorID, t.TakenAt, t.WasSent, t.WasFixed, t.Reason, images,
		t.FinishedAt, t.UpdatedAt, t.ID)
	return err
}

func (r *taskRepository) ListByRentAndKind(ctx context.Context, rentID int64, kind domain.TaskKind) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE rent_id = $1 AND kind = $2 ORDER BY created_at`
	return r.list(ctx, query, rentID, kind)
}

// ListByDay returns the kind's live tasks for one calendar day. Archived
// REPROGRAMADA records are excluded so sequence reporting stays contiguous.
func (r *taskRepository) ListByDay(ctx context.Context, kind domain.TaskKind, day time.Time) ([]domain.Task, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	query := `SELECT ` + taskColumns + ` FROM tasks
	          WHERE kind = $1 AND date >= $2 AND date < $3 AND status <> 'REPROGRAMADA'
	          ORDER BY day_number`
	return r.list(ctx, query, kind, start, end)
}

func (r *taskRepository) list(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
