package mifit

import (
	"context"
	"math"

	"github.com/vladimiradmaev/health-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/health-tracker/internal/errors"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
)

const sleepCollection = "sleep"

// Stage fields default to 0 and clock fields to null in a session's raw blob.
var (
	sleepZeroFields = []string{
		"sleep_light_duration",
		"sleep_deep_duration",
		"sleep_rem_duration",
		"sleep_awake_duration",
		"awake_count",
	}
	sleepNullFields = []string{
		"bedtime",
		"wake_up_time",
		"device_bedtime",
		"device_wake_up_time",
	}
)

// Sleep reads one page of sleep sessions. Unlike Fetch, store failures are
// returned to the caller.
func (a *Adapter) Sleep(ctx context.Context, q domain.SleepQuery) ([]domain.SleepSession, int64, error) {
	records, total, err := a.finder.Find(ctx, Query{
		Collection: sleepCollection,
		Filter:     KeyFilter(sleepCollection, q.Interval),
		Skip:       int64(q.Skip),
		Limit:      int64(q.Limit),
	})
	if err != nil {
		a.metrics.DeviceSourceFailed(sleepCollection)
		appErr := apperrors.NewSourceUnavailableError(err, "mifit")
		logger.WithContext(ctx).Warn("Cannot read MiFit sleep sessions", appErr.LogFields()...)
		return nil, 0, appErr
	}

	sessions := make([]domain.SleepSession, 0, len(records))
	for _, rec := range records {
		sessions = append(sessions, ToSleepSession(rec))
	}
	return sessions, total, nil
}

// ToSleepSession maps a sleep record, filling the raw blob defaults and
// deriving stage shares and quality.
func ToSleepSession(rec Record) domain.SleepSession {
	raw := make(map[string]interface{}, len(rec.Value)+len(sleepZeroFields)+len(sleepNullFields))
	for k, v := range rec.Value {
		raw[k] = v
	}
	for _, f := range sleepZeroFields {
		if raw[f] == nil {
			raw[f] = 0
		}
	}
	for _, f := range sleepNullFields {
		if _, ok := raw[f]; !ok {
			raw[f] = nil
		}
	}

	session := domain.SleepSession{
		ID:       rec.IDString(),
		UID:      rec.UID,
		SID:      rec.SID,
		Time:     rec.Time,
		Duration: optionalNumber(rec.Value["duration"]),
		MinHR:    optionalNumber(rec.Value["min_hr"]),
		AvgHR:    optionalNumber(rec.Value["avg_hr"]),
		MaxHR:    optionalNumber(rec.Value["max_hr"]),
		Timezone: rec.Value["timezone"],
		Raw:      raw,
	}
	if t := EpochTime(rec.Time); !t.IsZero() {
		session.OccurredAt = &t
	}
	session.Stages = Stages(session)
	session.Quality = Quality(session)
	return session
}

// Stages returns each stage as a rounded share of the total duration; all
// zero when the duration is unknown.
func Stages(s domain.SleepSession) domain.SleepStages {
	duration := valueOrZero(s.Duration)
	if duration == 0 {
		return domain.SleepStages{}
	}
	share := func(field string) int {
		v, _ := Number(s.Raw[field])
		return int(math.Round(v / duration * 100))
	}
	return domain.SleepStages{
		Light: share("sleep_light_duration"),
		Deep:  share("sleep_deep_duration"),
		REM:   share("sleep_rem_duration"),
		Awake: share("sleep_awake_duration"),
	}
}

// Quality rates a session: good needs 7h with deep >= 15%, REM >= 20% and
// fewer than 5 awakenings; fair needs 6h.
func Quality(s domain.SleepSession) domain.SleepQuality {
	hours := valueOrZero(s.Duration) / 60
	stages := Stages(s)
	awakenings, _ := Number(s.Raw["awake_count"])

	switch {
	case hours >= 7 && stages.Deep >= 15 && stages.REM >= 20 && awakenings < 5:
		return domain.SleepGood
	case hours >= 6:
		return domain.SleepFair
	default:
		return domain.SleepPoor
	}
}

func optionalNumber(v interface{}) *float64 {
	n, ok := Number(v)
	if !ok {
		return nil
	}
	return &n
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
