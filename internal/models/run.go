package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ScheduleRun - одна сохраненная запись о вызове генерации расписания:
// вход, параметры, результат и сводка по конфликтам.
type ScheduleRun struct {
	ID                   uuid.UUID       `db:"id" json:"id"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	TimeLimitSeconds     float64         `db:"time_limit_seconds" json:"time_limit_seconds"`
	NumSearchWorkers     int             `db:"num_search_workers" json:"num_search_workers"`
	DesiredLessonsPerDay int             `db:"desired_lessons_per_day" json:"desired_lessons_per_day"`
	Input                json.RawMessage `db:"input" json:"input"`
	Result               json.RawMessage `db:"result" json:"result"`
	ItemsCount           int             `db:"items_count" json:"items_count"`
	SolveDurationMs      int64           `db:"solve_duration_ms" json:"solve_duration_ms"`
	ConflictsCount       int             `db:"conflicts_count" json:"conflicts_count"`
}

// ScheduleRunSummary - облегченная проекция для списков истории (без
// jsonb-полей входа и результата).
type ScheduleRunSummary struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	DesiredLessonsPerDay int       `db:"desired_lessons_per_day" json:"desired_lessons_per_day"`
	ItemsCount           int       `db:"items_count" json:"items_count"`
	SolveDurationMs      int64     `db:"solve_duration_ms" json:"solve_duration_ms"`
	ConflictsCount       int       `db:"conflicts_count" json:"conflicts_count"`
}
