package services

import (
	"context"
	"sync"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
)

// fakeStore is an in-memory domain.HealthLogStore that filters like the
// real repository does.
type fakeStore struct {
	mu     sync.Mutex
	logs   []domain.HealthLog
	nextID uint
	err    error
	calls  map[string]int
}

func newFakeStore(logs ...domain.HealthLog) *fakeStore {
	s := &fakeStore{calls: make(map[string]int)}
	for _, l := range logs {
		s.nextID++
		if l.ID == 0 {
			l.ID = s.nextID
		}
		s.logs = append(s.logs, l)
	}
	return s
}

func (s *fakeStore) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *fakeStore) called(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeStore) match(filter domain.LogFilter) []domain.HealthLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.HealthLog
	for _, l := range s.logs {
		if filter.ActivityType != "" && l.ActivityType != filter.ActivityType {
			continue
		}
		if filter.Interval != nil && !filter.Interval.Contains(l.OccurredAt) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (s *fakeStore) Create(ctx context.Context, log *domain.HealthLog) error {
	s.record("Create")
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	log.ID = s.nextID
	s.logs = append(s.logs, *log)
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uint) (*domain.HealthLog, error) {
	s.record("GetByID")
	if s.err != nil {
		return nil, s.err
	}
	for _, l := range s.match(domain.LogFilter{}) {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Update(ctx context.Context, id uint, patch domain.HealthLogPatch) (*domain.HealthLog, error) {
	s.record("Update")
	if s.err != nil {
		return nil, s.err
	}
	log := &domain.HealthLog{ID: id}
	if patch.Value != nil {
		log.Value = *patch.Value
	}
	return log, nil
}

func (s *fakeStore) Delete(ctx context.Context, id uint) error {
	s.record("Delete")
	return s.err
}

func (s *fakeStore) Sum(ctx context.Context, filter domain.LogFilter) (float64, error) {
	s.record("Sum")
	if s.err != nil {
		return 0, s.err
	}
	var total float64
	for _, l := range s.match(filter) {
		total += l.Value
	}
	return total, nil
}

func (s *fakeStore) ListPage(ctx context.Context, filter domain.LogFilter, skip, limit int) ([]domain.HealthLog, int64, error) {
	s.record("ListPage")
	if s.err != nil {
		return nil, 0, s.err
	}
	all := s.match(filter)
	total := int64(len(all))
	if skip >= len(all) {
		return []domain.HealthLog{}, total, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], total, nil
}

func (s *fakeStore) FindAll(ctx context.Context, filter domain.LogFilter) ([]domain.HealthLog, error) {
	s.record("FindAll")
	if s.err != nil {
		return nil, s.err
	}
	return s.match(filter), nil
}

func (s *fakeStore) CountByActivityType(ctx context.Context, from, to time.Time) ([]domain.ActivityCount, error) {
	s.record("CountByActivityType")
	if s.err != nil {
		return nil, s.err
	}
	iv := daterange.Interval{Start: from, End: to, HalfOpen: true}
	counts := make(map[domain.ActivityType]int64)
	var order []domain.ActivityType
	for _, l := range s.match(domain.LogFilter{Interval: &iv}) {
		if _, ok := counts[l.ActivityType]; !ok {
			order = append(order, l.ActivityType)
		}
		counts[l.ActivityType]++
	}
	var out []domain.ActivityCount
	for _, t := range order {
		out = append(out, domain.ActivityCount{ActivityType: t, Count: counts[t]})
	}
	return out, nil
}

// fakeDevice is a domain.DeviceSource returning canned items per type
type fakeDevice struct {
	mu        sync.Mutex
	supported map[domain.ActivityType]bool
	items     map[domain.ActivityType][]domain.LogItem
	totals    map[domain.ActivityType]int64
	fetches   []deviceFetch
}

type deviceFetch struct {
	activityType domain.ActivityType
	skip, limit  int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		supported: map[domain.ActivityType]bool{
			domain.HeartRate: true,
			domain.Calories:  true,
			domain.Steps:     true,
			domain.SpO2:      true,
		},
		items:  make(map[domain.ActivityType][]domain.LogItem),
		totals: make(map[domain.ActivityType]int64),
	}
}

func (d *fakeDevice) Supports(activityType domain.ActivityType) bool {
	return d.supported[activityType]
}

func (d *fakeDevice) Fetch(ctx context.Context, activityType domain.ActivityType, iv *daterange.Interval, skip, limit int) domain.SourceResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetches = append(d.fetches, deviceFetch{activityType: activityType, skip: skip, limit: limit})

	var items []domain.LogItem
	for _, item := range d.items[activityType] {
		if iv != nil && !iv.Contains(item.OccurredAt.Time) {
			continue
		}
		items = append(items, item)
	}
	total, ok := d.totals[activityType]
	if !ok {
		total = int64(len(items))
	}
	if items == nil {
		items = []domain.LogItem{}
	}
	return domain.SourceResult{Items: items, Total: total}
}

func (d *fakeDevice) fetchCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fetches)
}

func deviceItem(activityType domain.ActivityType, value float64, at time.Time) domain.LogItem {
	return domain.LogItem{
		ID:           "dev-" + at.Format(time.RFC3339),
		ActivityType: activityType,
		Value:        value,
		Unit:         activityType.Unit(),
		Note:         "MiFit " + string(activityType),
		OccurredAt:   domain.At(at),
		Source:       domain.SourceMiFit,
	}
}

// fakeSleep is a domain.SleepSource
type fakeSleep struct {
	sessions []domain.SleepSession
	total    int64
	err      error
	queries  []domain.SleepQuery
}

func (f *fakeSleep) Sleep(ctx context.Context, q domain.SleepQuery) ([]domain.SleepSession, int64, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.sessions, f.total, nil
}
