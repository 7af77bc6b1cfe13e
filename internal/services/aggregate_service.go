package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/vladimiradmaev/health-tracker/internal/cache"
	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/health-tracker/internal/errors"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
	"github.com/vladimiradmaev/health-tracker/internal/metrics"
	"github.com/vladimiradmaev/health-tracker/internal/utils"
	"golang.org/x/sync/errgroup"
)

// deviceReadBound caps the device records read for one sum or average
const deviceReadBound = 1000

const (
	sumNote      = "Tổng calories trong khoảng thời gian"
	caloriesUnit = "kcal"
	cacheSpace   = "healthlogs"
)

// Mode is the aggregation a log query resolves to
type Mode string

const (
	ModeRaw     Mode = "raw"
	ModeSum     Mode = "sum"
	ModeAverage Mode = "average"
)

// LogQuery is a health log request after boundary validation. Page and Limit
// are used as given.
type LogQuery struct {
	ActivityType domain.ActivityType `json:"activityType,omitempty"`
	daterange.Filter
	CalculateAverage bool `json:"calculateAverage,omitempty"`
	Page             int  `json:"page"`
	Limit            int  `json:"limit"`
}

// ResolveMode picks the aggregation for q. Sum beats average, average beats
// the raw listing; both aggregates need an interval.
func ResolveMode(q LogQuery, hasInterval bool) Mode {
	switch {
	case q.ActivityType == domain.Calories && hasInterval:
		return ModeSum
	case q.CalculateAverage && hasInterval && q.ActivityType != "":
		return ModeAverage
	default:
		return ModeRaw
	}
}

// AggregateService merges the primary store with the device source
type AggregateService struct {
	store    domain.HealthLogStore
	device   domain.DeviceSource
	loc      *time.Location
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

type AggregateOption func(*AggregateService)

// WithCache lets raw and sum results be served from c for ttl
func WithCache(c cache.Cache, ttl time.Duration) AggregateOption {
	return func(s *AggregateService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithMetrics(m *metrics.Metrics) AggregateOption {
	return func(s *AggregateService) {
		s.metrics = m
	}
}

// WithClock replaces the clock that stamps average rows
func WithClock(now func() time.Time) AggregateOption {
	return func(s *AggregateService) {
		s.now = now
	}
}

func NewAggregateService(store domain.HealthLogStore, device domain.DeviceSource, loc *time.Location, opts ...AggregateOption) *AggregateService {
	if loc == nil {
		loc = time.Local
	}
	s := &AggregateService{
		store:  store,
		device: device,
		loc:    loc,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query resolves the interval and mode of q and runs it
func (s *AggregateService) Query(ctx context.Context, q LogQuery) (*domain.LogPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	iv, err := daterange.Resolve(q.Filter, s.loc)
	if err != nil {
		return nil, invalidDate(q.Filter, s.loc, err)
	}

	mode := ResolveMode(q, iv != nil)
	s.metrics.AggregationServed(string(mode))

	if mode == ModeAverage {
		return s.average(ctx, q, iv)
	}

	key := s.cacheKey(mode, q)
	if page, ok := s.cached(ctx, key); ok {
		if mode == ModeSum && len(page.Items) == 1 {
			page.Items[0].OccurredAt = domain.Echo(q.Filter.Echo())
		}
		return page, nil
	}

	var page *domain.LogPage
	if mode == ModeSum {
		page, err = s.sum(ctx, q, iv)
	} else {
		page, err = s.raw(ctx, q, iv)
	}
	if err != nil {
		return nil, err
	}
	s.remember(ctx, key, page)
	return page, nil
}

func (s *AggregateService) sum(ctx context.Context, q LogQuery, iv *daterange.Interval) (*domain.LogPage, error) {
	var (
		primary float64
		device  domain.SourceResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		primary, err = s.store.Sum(gctx, domain.LogFilter{ActivityType: q.ActivityType, Interval: iv})
		return err
	})
	g.Go(func() error {
		device = s.fetchDevice(gctx, q.ActivityType, iv, 0, deviceReadBound)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := primary + lo.SumBy(device.Items, func(item domain.LogItem) float64 {
		return item.Value
	})
	row := domain.LogItem{
		ActivityType: domain.Calories,
		Value:        total,
		Unit:         caloriesUnit,
		Note:         sumNote,
		OccurredAt:   domain.Echo(q.Filter.Echo()),
		Source:       domain.SourceTotal,
	}
	return domain.NewLogPage([]domain.LogItem{row}, 1, 1, 1), nil
}

func (s *AggregateService) average(ctx context.Context, q LogQuery, iv *daterange.Interval) (*domain.LogPage, error) {
	var (
		logs   []domain.HealthLog
		device domain.SourceResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		logs, err = s.store.FindAll(gctx, domain.LogFilter{ActivityType: q.ActivityType, Interval: iv})
		return err
	})
	g.Go(func() error {
		device = s.fetchDevice(gctx, q.ActivityType, iv, 0, deviceReadBound)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	values := append(
		lo.Map(logs, func(l domain.HealthLog, _ int) float64 { return l.Value }),
		lo.Map(device.Items, func(item domain.LogItem, _ int) float64 { return item.Value })...,
	)
	values = lo.Filter(values, func(v float64, _ int) bool { return !math.IsNaN(v) })
	if len(values) == 0 {
		return domain.NewLogPage(nil, 0, 1, 1), nil
	}

	mean := lo.Sum(values) / float64(len(values))
	now := s.now()
	row := domain.LogItem{
		ID:           "average_" + strconv.FormatInt(now.UnixMilli(), 10),
		ActivityType: q.ActivityType,
		Value:        math.Round(mean*100) / 100,
		Unit:         averageUnit(logs, device.Items),
		Note:         fmt.Sprintf("Trung bình %d bản ghi trong %d ngày", len(values), daterange.SpanDays(q.Filter)),
		OccurredAt:   domain.At(now),
		Source:       domain.SourceCalculated,
		IsAverage:    true,
	}
	return domain.NewLogPage([]domain.LogItem{row}, 1, 1, 1), nil
}

// averageUnit takes the unit of the oldest primary log (FindAll reads newest
// first), else of the first device item.
func averageUnit(logs []domain.HealthLog, device []domain.LogItem) string {
	if len(logs) > 0 && logs[len(logs)-1].Unit != "" {
		return logs[len(logs)-1].Unit
	}
	if len(device) > 0 {
		return device[0].Unit
	}
	return ""
}

// raw concatenates one page of each source. Each source applies skip and
// limit on its own, so a merged page may hold up to twice limit items.
func (s *AggregateService) raw(ctx context.Context, q LogQuery, iv *daterange.Interval) (*domain.LogPage, error) {
	skip := (q.Page - 1) * q.Limit
	filter := domain.LogFilter{ActivityType: q.ActivityType, Interval: iv}

	var (
		logs        []domain.HealthLog
		primaryHits int64
		device      domain.SourceResult
	)
	withDevice := q.ActivityType != "" && s.device != nil && s.device.Supports(q.ActivityType)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		logs, primaryHits, err = s.store.ListPage(gctx, filter, skip, q.Limit)
		return err
	})
	if withDevice {
		g.Go(func() error {
			device = s.fetchDevice(gctx, q.ActivityType, iv, skip, q.Limit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]domain.LogItem, 0, len(logs)+len(device.Items))
	for _, l := range logs {
		items = append(items, l.Item())
	}
	if withDevice {
		items = append(items, device.Items...)
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].OccurredAt.Time.After(items[j].OccurredAt.Time)
		})
	}
	return domain.NewLogPage(items, primaryHits+device.Total, q.Page, q.Limit), nil
}

func (s *AggregateService) fetchDevice(ctx context.Context, activityType domain.ActivityType, iv *daterange.Interval, skip, limit int) domain.SourceResult {
	if s.device == nil {
		return domain.SourceResult{}
	}
	return s.device.Fetch(ctx, activityType, iv, skip, limit)
}

func (s *AggregateService) cacheKey(mode Mode, q LogQuery) string {
	if s.cache == nil || s.cacheTTL <= 0 {
		return ""
	}
	key, err := cache.Key(cacheSpace+":"+string(mode), q)
	if err != nil {
		return ""
	}
	return key
}

func (s *AggregateService) cached(ctx context.Context, key string) (*domain.LogPage, bool) {
	if key == "" {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logger.WithContext(ctx).Warn("Cache read failed", "error", err)
		}
		s.metrics.CacheLookup(false)
		return nil, false
	}
	var page domain.LogPage
	if err := json.Unmarshal(data, &page); err != nil {
		logger.WithContext(ctx).Warn("Discarding undecodable cache entry", "error", err)
		s.metrics.CacheLookup(false)
		return nil, false
	}
	s.metrics.CacheLookup(true)
	return &page, true
}

func (s *AggregateService) remember(ctx context.Context, key string, page *domain.LogPage) {
	if key == "" {
		return
	}
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		logger.WithContext(ctx).Warn("Cache write failed", "error", err)
	}
}

// invalidDate attributes a resolve failure to the offending filter field
func invalidDate(f daterange.Filter, loc *time.Location, err error) error {
	appErr := apperrors.NewValidationError("Validation failed")
	switch {
	case f.Date != "":
		appErr.WithField("date", err.Error())
	case !parses(f.WeekStart, loc):
		appErr.WithField("weekStart", err.Error())
	default:
		appErr.WithField("weekEnd", err.Error())
	}
	return appErr
}

func parses(day string, loc *time.Location) bool {
	_, err := utils.ParseDay(day, loc)
	return err == nil
}
