package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/health-tracker/internal/errors"
	"github.com/vladimiradmaev/health-tracker/internal/services"
	"github.com/vladimiradmaev/health-tracker/internal/utils"
)

// localTimestampLayouts are ISO 8601 forms without a zone, read in the configured zone
var localTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	utils.DayLayout,
}

// pageParams reads page (floor 1) and limit (default def, clamped to [1, maxLimit])
func pageParams(r *http.Request, def, maxLimit int) (int, int) {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit == 0 {
		limit = def
	}
	return page, lo.Clamp(limit, 1, maxLimit)
}

func dateFilter(r *http.Request) daterange.Filter {
	q := r.URL.Query()
	return daterange.Filter{
		Date:      q.Get("date"),
		WeekStart: q.Get("weekStart"),
		WeekEnd:   q.Get("weekEnd"),
	}
}

func (h *Handler) logQuery(r *http.Request) services.LogQuery {
	page, limit := pageParams(r, h.paging.DefaultLimit, h.paging.MaxLimit)
	return services.LogQuery{
		ActivityType:     domain.ActivityType(r.URL.Query().Get("activityType")),
		Filter:           dateFilter(r),
		CalculateAverage: r.URL.Query().Get("calculateAverage") == "true",
		Page:             page,
		Limit:            limit,
	}
}

// monthParams reads year and month, falling back to the current ones when
// missing or out of range.
func (h *Handler) monthParams(r *http.Request) (int, int) {
	now := h.now()
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year <= 0 {
		year = now.Year()
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		month = int(now.Month())
	}
	return year, month
}

// optionalMonth reads year and month for filters where both are optional;
// invalid values read as 0.
func optionalMonth(r *http.Request) (int, int) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year <= 0 {
		year = 0
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		month = 0
	}
	return year, month
}

func idParam(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("Validation failed").WithField("id", "id must be a positive integer")
	}
	return uint(id), nil
}

// decodeLog validates a create (full) or update (partial) body
func (h *Handler) decodeLog(r *http.Request, full bool) (domain.HealthLogPatch, error) {
	var patch domain.HealthLogPatch
	invalid := apperrors.NewValidationError("Validation failed")

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return patch, invalid.WithField("body", "body must be a JSON object")
	}

	if raw, ok := present(body, "activityType"); ok {
		var s string
		switch {
		case json.Unmarshal(raw, &s) != nil:
			invalid.WithField("activityType", "activityType must be a string")
		case s == "" && full:
			invalid.WithField("activityType", "activityType is required")
		case !domain.ActivityType(s).Valid():
			invalid.WithField("activityType", "activityType must be one of: "+activityTypeList())
		default:
			t := domain.ActivityType(s)
			patch.ActivityType = &t
		}
	} else if full {
		invalid.WithField("activityType", "activityType is required")
	}

	if raw, ok := present(body, "value"); ok {
		if v, ok := numeric(raw); ok {
			patch.Value = &v
		} else {
			invalid.WithField("value", "value must be a number")
		}
	} else if full {
		invalid.WithField("value", "value must be a number")
	}

	for _, field := range []string{"unit", "note"} {
		raw, ok := present(body, field)
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			invalid.WithField(field, field+" must be a string")
			continue
		}
		if field == "unit" {
			patch.Unit = &s
		} else {
			patch.Note = &s
		}
	}

	if raw, ok := present(body, "occurredAt"); ok {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			invalid.WithField("occurredAt", "occurredAt must be ISO8601 date string")
		} else if t, err := parseTimestamp(s, h.loc); err != nil {
			invalid.WithField("occurredAt", "occurredAt must be ISO8601 date string")
		} else {
			patch.OccurredAt = &t
		}
	} else if full {
		invalid.WithField("occurredAt", "occurredAt is required")
	}

	if len(invalid.Fields) > 0 {
		return patch, invalid
	}
	return patch, nil
}

// present returns a field unless it is absent or JSON null
func present(body map[string]json.RawMessage, field string) (json.RawMessage, bool) {
	raw, ok := body[field]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// numeric accepts a JSON number or a string holding one
func numeric(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range localTimestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

func activityTypeList() string {
	return strings.Join(lo.Map(domain.ActivityTypes, func(t domain.ActivityType, _ int) string {
		return string(t)
	}), ", ")
}
