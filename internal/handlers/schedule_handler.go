package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"timetable-service/internal/config"
	"timetable-service/internal/models"
	"timetable-service/internal/repository"
	"timetable-service/internal/schedule"
	"timetable-service/internal/service"
	"timetable-service/internal/solver"
	"timetable-service/pkg/metrics"
	"timetable-service/pkg/pagination"
	"timetable-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ScheduleHandler обрабатывает запросы валидации, генерации и диагностики
// расписаний
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
	solverDefaults  config.SolverConfig
}

// NewScheduleHandler создает новый ScheduleHandler
func NewScheduleHandler(scheduleService *service.ScheduleService, solverDefaults config.SolverConfig) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		solverDefaults:  solverDefaults,
	}
}

// ValidateResponse структура ответа валидации
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Result string `json:"result"`
}

// Validate обрабатывает POST /api/v1/schedules/validate
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var dto models.ScheduleDataDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		response.BadRequest(w, response.ErrCodeInvalidInput, "Invalid JSON body")
		return
	}

	data, err := dto.ToDomain()
	if err != nil {
		response.BadRequest(w, response.ErrCodeInvalidInput, err.Error())
		return
	}

	result := h.scheduleService.Validate(data)
	response.OK(w, ValidateResponse{
		Valid:  result == schedule.Ok,
		Result: result.String(),
	})
}

// GenerateRequest структура запроса генерации
type GenerateRequest struct {
	Data    models.ScheduleDataDTO `json:"data"`
	Options GenerateOptions        `json:"options"`
}

// GenerateOptions переопределяет параметры решателя для одного запроса.
// Нулевые значения заменяются дефолтами из конфигурации.
type GenerateOptions struct {
	TimeLimitSeconds     float64 `json:"time_limit_seconds"`
	NumSearchWorkers     int     `json:"num_search_workers"`
	DesiredLessonsPerDay int     `json:"desired_lessons_per_day"`
}

// GenerateResponse структура ответа генерации
type GenerateResponse struct {
	RunID     uuid.UUID                `json:"run_id"`
	Items     []models.ScheduleItemDTO `json:"items"`
	Conflicts models.ConflictsDTO      `json:"conflicts"`
}

// Generate обрабатывает POST /api/v1/schedules/generate. Сначала данные
// проходят валидацию; на любой не-Ok вердикт возвращается 422 и решатель
// не запускается.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, response.ErrCodeInvalidInput, "Failed to read request body")
		return
	}

	var req GenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		response.BadRequest(w, response.ErrCodeInvalidInput, "Invalid JSON body")
		return
	}

	data, err := req.Data.ToDomain()
	if err != nil {
		response.BadRequest(w, response.ErrCodeInvalidInput, err.Error())
		return
	}

	if result := h.scheduleService.Validate(data); result != schedule.Ok {
		metrics.SolveRequestsTotal.WithLabelValues("rejected").Inc()
		response.Error(w, http.StatusUnprocessableEntity, response.ErrCodeScheduleInvalid, result.String())
		return
	}

	opts := h.solverOptions(req.Options)

	rawInput, err := json.Marshal(req.Data)
	if err != nil {
		response.InternalError(w, "Failed to serialize input")
		return
	}

	outcome, err := h.scheduleService.Generate(r.Context(), data, opts, rawInput)
	if err != nil {
		// Расписание уже посчитано; потеря журнала не должна терять результат
		log.Error().Err(err).Msg("Failed to persist schedule run")
	}
	if outcome == nil {
		response.InternalError(w, "Schedule generation failed")
		return
	}

	response.OK(w, GenerateResponse{
		RunID:     outcome.RunID,
		Items:     models.ScheduleResultToDTO(outcome.Result).Items,
		Conflicts: outcome.Conflicts,
	})
}

// solverOptions накладывает дефолты конфигурации на пустые поля запроса
func (h *ScheduleHandler) solverOptions(o GenerateOptions) solver.Options {
	opts := solver.Options{
		TimeLimitSeconds:     o.TimeLimitSeconds,
		NumSearchWorkers:     o.NumSearchWorkers,
		DesiredLessonsPerDay: o.DesiredLessonsPerDay,
	}
	if opts.TimeLimitSeconds <= 0 {
		opts.TimeLimitSeconds = h.solverDefaults.DefaultTimeLimitSeconds
	}
	if opts.NumSearchWorkers <= 0 {
		opts.NumSearchWorkers = h.solverDefaults.DefaultSearchWorkers
	}
	if opts.DesiredLessonsPerDay < 1 || opts.DesiredLessonsPerDay > schedule.MaxLessonsPerDay {
		opts.DesiredLessonsPerDay = h.solverDefaults.DefaultLessonsPerDay
	}
	return opts
}

// ConflictsRequest структура запроса диагностики
type ConflictsRequest struct {
	Data   models.ScheduleDataDTO   `json:"data"`
	Result models.ScheduleResultDTO `json:"result"`
}

// Conflicts обрабатывает POST /api/v1/schedules/conflicts. Работает с любым
// результатом, включая отредактированный вручную.
func (h *ScheduleHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	var req ConflictsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, response.ErrCodeInvalidInput, "Invalid JSON body")
		return
	}

	data, err := req.Data.ToDomain()
	if err != nil {
		response.BadRequest(w, response.ErrCodeInvalidInput, err.Error())
		return
	}
	result, err := req.Result.ToDomain()
	if err != nil {
		response.BadRequest(w, response.ErrCodeInvalidInput, err.Error())
		return
	}

	response.OK(w, h.scheduleService.Conflicts(data, result))
}

// ListRuns обрабатывает GET /api/v1/runs
func (h *ScheduleHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)

	runs, total, err := h.scheduleService.ListRuns(r.Context(), params.PerPage, params.Offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list schedule runs")
		response.Error(w, http.StatusInternalServerError, response.ErrCodeDatabaseError, "Failed to list runs")
		return
	}

	response.OK(w, pagination.NewResponse(runs, params.Page, params.PerPage, total))
}

// GetRun обрабатывает GET /api/v1/runs/{id}
func (h *ScheduleHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, response.ErrCodeInvalidInput, "Invalid run ID")
		return
	}

	run, err := h.scheduleService.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			response.NotFound(w, "Run not found")
			return
		}
		log.Error().Err(err).Str("run_id", id.String()).Msg("Failed to get schedule run")
		response.Error(w, http.StatusInternalServerError, response.ErrCodeDatabaseError, "Failed to get run")
		return
	}

	response.OK(w, run)
}
