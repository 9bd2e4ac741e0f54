package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"timetable-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ScheduleRunRepository управляет журналом прогонов генерации в базе данных
type ScheduleRunRepository struct {
	db *sqlx.DB
}

// NewScheduleRunRepository создает новый ScheduleRunRepository
func NewScheduleRunRepository(db *sqlx.DB) *ScheduleRunRepository {
	return &ScheduleRunRepository{db: db}
}

// Create сохраняет запись о прогоне
func (r *ScheduleRunRepository) Create(ctx context.Context, run *models.ScheduleRun) error {
	query := `
		INSERT INTO schedule_runs (
			id, created_at, time_limit_seconds, num_search_workers,
			desired_lessons_per_day, input, result, items_count,
			solve_duration_ms, conflicts_count
		)
		VALUES (
			:id, :created_at, :time_limit_seconds, :num_search_workers,
			:desired_lessons_per_day, :input, :result, :items_count,
			:solve_duration_ms, :conflicts_count
		)
	`

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		if IsUniqueViolationError(err) {
			return fmt.Errorf("schedule run %s already recorded: %w", run.ID, err)
		}
		return fmt.Errorf("failed to create schedule run: %w", err)
	}
	return nil
}

// GetByID получает прогон по ID
func (r *ScheduleRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduleRun, error) {
	query := `
		SELECT id, created_at, time_limit_seconds, num_search_workers,
		       desired_lessons_per_day, input, result, items_count,
		       solve_duration_ms, conflicts_count
		FROM schedule_runs
		WHERE id = $1
	`

	var run models.ScheduleRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get schedule run by ID: %w", err)
	}
	return &run, nil
}

// List возвращает страницу сводок прогонов, новые первыми
func (r *ScheduleRunRepository) List(ctx context.Context, limit, offset int) ([]models.ScheduleRunSummary, error) {
	query := `
		SELECT id, created_at, desired_lessons_per_day, items_count,
		       solve_duration_ms, conflicts_count
		FROM schedule_runs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	runs := []models.ScheduleRunSummary{}
	if err := r.db.SelectContext(ctx, &runs, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list schedule runs: %w", err)
	}
	return runs, nil
}

// Count возвращает общее количество сохраненных прогонов
func (r *ScheduleRunRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM schedule_runs`); err != nil {
		return 0, fmt.Errorf("failed to count schedule runs: %w", err)
	}
	return count, nil
}
