package api

import (
	"net/http"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/config"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/health-tracker/internal/errors"
	"github.com/vladimiradmaev/health-tracker/internal/interfaces"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
	"github.com/vladimiradmaev/health-tracker/internal/services"
)

// Services are the collaborators behind the HTTP handlers
type Services struct {
	Logs      interfaces.HealthLogServiceInterface
	Aggregate interfaces.AggregateServiceInterface
	Stats     interfaces.StatsServiceInterface
	Warnings  interfaces.WarningServiceInterface
	Sleep     interfaces.SleepServiceInterface
}

type Handler struct {
	services Services
	paging   config.PagingConfig
	loc      *time.Location
	errors   *apperrors.Handler
	now      func() time.Time
}

func NewHandler(svc Services, paging config.PagingConfig, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		services: svc,
		paging:   paging,
		loc:      loc,
		errors:   apperrors.NewHandler(logger.GetLogger()),
		now:      time.Now,
	}
}

type statusResponse struct {
	Status string `json:"status"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	page, err := h.services.Aggregate.Query(r.Context(), h.logQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, month := h.monthParams(r)
	stats, err := h.services.Stats.MonthlyStats(r.Context(), year, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type warningsResponse struct {
	Year  int                `json:"year"`
	Month int                `json:"month"`
	Days  []domain.DayReport `json:"days"`
}

func (h *Handler) MonthlyWarnings(w http.ResponseWriter, r *http.Request) {
	year, month := h.monthParams(r)
	days, err := h.services.Warnings.MonthlyWarnings(r.Context(), year, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, warningsResponse{Year: year, Month: month, Days: days})
}

func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	log, err := h.services.Logs.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (h *Handler) CreateLog(w http.ResponseWriter, r *http.Request) {
	patch, err := h.decodeLog(r, true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log := &domain.HealthLog{
		ActivityType: *patch.ActivityType,
		Value:        *patch.Value,
		OccurredAt:   *patch.OccurredAt,
	}
	if patch.Unit != nil {
		log.Unit = *patch.Unit
	}
	if patch.Note != nil {
		log.Note = *patch.Note
	}

	if err := h.services.Logs.Create(r.Context(), log); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (h *Handler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	patch, err := h.decodeLog(r, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	log, err := h.services.Logs.Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (h *Handler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.services.Logs.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) SleepSessions(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, h.paging.SleepDefaultLimit, h.paging.SleepMaxLimit)
	year, month := optionalMonth(r)
	result, err := h.services.Sleep.Sessions(r.Context(), services.SleepFilter{
		Filter: dateFilter(r),
		Year:   year,
		Month:  month,
	}, page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
