package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"timetable-service/internal/conflicts"
	"timetable-service/internal/models"
	"timetable-service/internal/schedule"
	"timetable-service/internal/solver"
	"timetable-service/internal/validator"
	"timetable-service/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RunStore - операции журнала прогонов, нужные сервису (интерфейс для
// тестирования без базы данных)
type RunStore interface {
	Create(ctx context.Context, run *models.ScheduleRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduleRun, error)
	List(ctx context.Context, limit, offset int) ([]models.ScheduleRunSummary, error)
	Count(ctx context.Context) (int, error)
}

// ScheduleService оркестрирует конвейер генерации: валидация, решение,
// детект конфликтов, запись прогона в журнал.
type ScheduleService struct {
	runs   RunStore
	engine solver.Engine
}

// NewScheduleService создает новый ScheduleService с штатным движком.
func NewScheduleService(runs RunStore) *ScheduleService {
	return &ScheduleService{runs: runs, engine: solver.NewBacktrackEngine()}
}

// NewScheduleServiceWithEngine создает ScheduleService с внешним движком.
func NewScheduleServiceWithEngine(runs RunStore, engine solver.Engine) *ScheduleService {
	return &ScheduleService{runs: runs, engine: engine}
}

// Validate выполняет структурные проверки данных без запуска решателя.
func (s *ScheduleService) Validate(data schedule.ScheduleData) schedule.ValidationResult {
	return validator.Validate(data)
}

// GenerateOutcome - результат одного вызова Generate.
type GenerateOutcome struct {
	RunID     uuid.UUID
	Result    schedule.ScheduleResult
	Conflicts models.ConflictsDTO
	Duration  time.Duration
}

// Generate прогоняет полный конвейер над уже валидированными данными и
// сохраняет запись о прогоне. Ошибка записи в журнал не теряет результат:
// расписание возвращается вместе с ошибкой.
func (s *ScheduleService) Generate(ctx context.Context, data schedule.ScheduleData, opts solver.Options, rawInput json.RawMessage) (*GenerateOutcome, error) {
	started := time.Now()
	result := solver.GenerateWithEngine(ctx, s.engine, data, opts)
	duration := time.Since(started)

	metrics.SolveDuration.Observe(duration.Seconds())
	if len(result.Items) == 0 {
		metrics.SolveRequestsTotal.WithLabelValues("infeasible").Inc()
		metrics.SolveInfeasibleTotal.Inc()
	} else {
		metrics.SolveRequestsTotal.WithLabelValues("solved").Inc()
	}

	conflictsDTO := s.detect(data, result)

	log.Info().
		Int("items", len(result.Items)).
		Int("conflicts", conflictsDTO.Count()).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("Schedule generated")

	outcome := &GenerateOutcome{
		Result:    result,
		Conflicts: conflictsDTO,
		Duration:  duration,
	}

	resultJSON, err := json.Marshal(models.ScheduleResultToDTO(result))
	if err != nil {
		return outcome, fmt.Errorf("failed to marshal schedule result: %w", err)
	}

	run := &models.ScheduleRun{
		ID:                   uuid.New(),
		CreatedAt:            started,
		TimeLimitSeconds:     opts.TimeLimitSeconds,
		NumSearchWorkers:     opts.NumSearchWorkers,
		DesiredLessonsPerDay: opts.DesiredLessonsPerDay,
		Input:                rawInput,
		Result:               resultJSON,
		ItemsCount:           len(result.Items),
		SolveDurationMs:      duration.Milliseconds(),
		ConflictsCount:       conflictsDTO.Count(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		metrics.DBErrorsTotal.Inc()
		return outcome, fmt.Errorf("failed to persist schedule run: %w", err)
	}
	outcome.RunID = run.ID

	return outcome, nil
}

// Conflicts прогоняет четыре детектора над парой (данные, результат).
func (s *ScheduleService) Conflicts(data schedule.ScheduleData, result schedule.ScheduleResult) models.ConflictsDTO {
	return s.detect(data, result)
}

func (s *ScheduleService) detect(data schedule.ScheduleData, result schedule.ScheduleResult) models.ConflictsDTO {
	overlappedClassrooms := conflicts.FindOverlappedClassrooms(data, result)
	overlappedProfessors := conflicts.FindOverlappedProfessors(data, result)
	overlappedGroups := conflicts.FindOverlappedGroups(data, result)
	violated := conflicts.FindViolatedSubjectRequests(data, result)

	metrics.ConflictsDetectedTotal.WithLabelValues("classroom").Add(float64(len(overlappedClassrooms)))
	metrics.ConflictsDetectedTotal.WithLabelValues("professor").Add(float64(len(overlappedProfessors)))
	metrics.ConflictsDetectedTotal.WithLabelValues("groups").Add(float64(len(overlappedGroups)))
	metrics.ConflictsDetectedTotal.WithLabelValues("violated_request").Add(float64(len(violated)))

	return models.ConflictsToDTO(overlappedClassrooms, overlappedProfessors, overlappedGroups, violated)
}

// GetRun возвращает один сохраненный прогон.
func (s *ScheduleService) GetRun(ctx context.Context, id uuid.UUID) (*models.ScheduleRun, error) {
	return s.runs.GetByID(ctx, id)
}

// ListRuns возвращает страницу истории прогонов и общее количество.
func (s *ScheduleService) ListRuns(ctx context.Context, limit, offset int) ([]models.ScheduleRunSummary, int, error) {
	runs, err := s.runs.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.runs.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
