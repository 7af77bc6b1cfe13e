package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-tracker/internal/cache"
	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/health-tracker/internal/errors"
)

var (
	day5  = daterange.Filter{Date: "2025-09-05"}
	at0   = time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC)
	clock = time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)
)

func healthLog(activityType domain.ActivityType, value float64, at time.Time) domain.HealthLog {
	return domain.HealthLog{ActivityType: activityType, Value: value, Unit: activityType.Unit(), OccurredAt: at}
}

func newTestAggregate(store *fakeStore, device *fakeDevice, opts ...AggregateOption) *AggregateService {
	opts = append([]AggregateOption{WithClock(func() time.Time { return clock })}, opts...)
	return NewAggregateService(store, device, time.UTC, opts...)
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name        string
		query       LogQuery
		hasInterval bool
		want        Mode
	}{
		{name: "calories with interval sums", query: LogQuery{ActivityType: domain.Calories}, hasInterval: true, want: ModeSum},
		{name: "sum beats average", query: LogQuery{ActivityType: domain.Calories, CalculateAverage: true}, hasInterval: true, want: ModeSum},
		{name: "average with type and interval", query: LogQuery{ActivityType: domain.HeartRate, CalculateAverage: true}, hasInterval: true, want: ModeAverage},
		{name: "average without type lists", query: LogQuery{CalculateAverage: true}, hasInterval: true, want: ModeRaw},
		{name: "average without interval lists", query: LogQuery{ActivityType: domain.HeartRate, CalculateAverage: true}, want: ModeRaw},
		{name: "calories without interval lists", query: LogQuery{ActivityType: domain.Calories}, want: ModeRaw},
		{name: "plain listing", query: LogQuery{ActivityType: domain.Steps}, hasInterval: true, want: ModeRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveMode(tt.query, tt.hasInterval))
		})
	}
}

func TestQuery_SumWithoutRecords(t *testing.T) {
	svc := newTestAggregate(newFakeStore(), newFakeDevice())

	page, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.Calories, Filter: day5, Page: 3, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.Limit)
	assert.Equal(t, 1, page.Pages)
	require.Len(t, page.Items, 1)

	row := page.Items[0]
	assert.Equal(t, 0.0, row.Value)
	assert.Equal(t, "kcal", row.Unit)
	assert.Equal(t, domain.Calories, row.ActivityType)
	assert.Equal(t, "Tổng calories trong khoảng thời gian", row.Note)
	assert.Equal(t, domain.SourceTotal, row.Source)
	assert.Equal(t, domain.Echo("2025-09-05"), row.OccurredAt)
	assert.Empty(t, row.ID)
}

func TestQuery_SumMergesSources(t *testing.T) {
	store := newFakeStore(
		healthLog(domain.Calories, 200, at0.Add(8*time.Hour)),
		healthLog(domain.Calories, 150, at0.Add(12*time.Hour)),
		healthLog(domain.Calories, 999, at0.Add(-time.Hour)),
	)
	device := newFakeDevice()
	device.items[domain.Calories] = []domain.LogItem{
		deviceItem(domain.Calories, 100, at0.Add(9*time.Hour)),
		deviceItem(domain.Calories, 50, at0.Add(48*time.Hour)),
	}
	svc := newTestAggregate(store, device)

	page, err := svc.Query(context.Background(), LogQuery{
		ActivityType: domain.Calories,
		Filter:       daterange.Filter{WeekStart: "2025-09-05", WeekEnd: "2025-09-05"},
		Page:         1,
		Limit:        10,
	})

	require.NoError(t, err)
	assert.Equal(t, 450.0, page.Items[0].Value)
	assert.Equal(t, domain.Echo("2025-09-05"), page.Items[0].OccurredAt)
	require.Len(t, device.fetches, 1)
	assert.Equal(t, deviceFetch{activityType: domain.Calories, skip: 0, limit: deviceReadBound}, device.fetches[0])
}

func TestQuery_AverageWithoutValues(t *testing.T) {
	svc := newTestAggregate(newFakeStore(), newFakeDevice())

	page, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.HeartRate, CalculateAverage: true, Filter: day5, Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, int64(0), page.Total)
}

func TestQuery_Average(t *testing.T) {
	store := newFakeStore(
		healthLog(domain.HeartRate, 70, at0.Add(8*time.Hour)),
		healthLog(domain.HeartRate, 71, at0.Add(9*time.Hour)),
		healthLog(domain.SpO2, 95, at0.Add(9*time.Hour)),
	)
	svc := newTestAggregate(store, newFakeDevice())

	page, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.HeartRate, CalculateAverage: true, Filter: day5, Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)

	row := page.Items[0]
	assert.Equal(t, 70.5, row.Value)
	assert.Equal(t, "bpm", row.Unit)
	assert.Equal(t, "Trung bình 2 bản ghi trong 1 ngày", row.Note)
	assert.Equal(t, "average_1757152800000", row.ID)
	assert.Equal(t, domain.SourceCalculated, row.Source)
	assert.True(t, row.IsAverage)
	assert.Equal(t, clock, row.OccurredAt.Time)
}

func TestQuery_AverageUnitFromOldestLog(t *testing.T) {
	newest := healthLog(domain.HeartRate, 80, at0.Add(10*time.Hour))
	newest.Unit = "nhịp/phút"
	oldest := healthLog(domain.HeartRate, 60, at0.Add(time.Hour))
	// FindAll returns newest first
	svc := newTestAggregate(newFakeStore(newest, oldest), newFakeDevice())

	page, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.HeartRate, CalculateAverage: true, Filter: day5, Page: 1, Limit: 10})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 70.0, page.Items[0].Value)
	assert.Equal(t, "bpm", page.Items[0].Unit)
}

func TestQuery_AverageIncludesDeviceAndRounds(t *testing.T) {
	store := newFakeStore(healthLog(domain.SpO2, 97, at0.Add(time.Hour)))
	device := newFakeDevice()
	device.items[domain.SpO2] = []domain.LogItem{
		deviceItem(domain.SpO2, 96, at0.Add(2*time.Hour)),
		deviceItem(domain.SpO2, 96, at0.Add(3*time.Hour)),
	}
	svc := newTestAggregate(store, device)

	page, err := svc.Query(context.Background(), LogQuery{
		ActivityType:     domain.SpO2,
		CalculateAverage: true,
		Filter:           daterange.Filter{WeekStart: "2025-09-01", WeekEnd: "2025-09-07"},
	})

	require.NoError(t, err)
	assert.Equal(t, 96.33, page.Items[0].Value)
	assert.Equal(t, "Trung bình 3 bản ghi trong 7 ngày", page.Items[0].Note)
}

func TestQuery_AverageOnlyDevice(t *testing.T) {
	device := newFakeDevice()
	device.items[domain.Steps] = []domain.LogItem{deviceItem(domain.Steps, 4000, at0.Add(time.Hour))}
	svc := newTestAggregate(newFakeStore(), device)

	page, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.Steps, CalculateAverage: true, Filter: day5})

	require.NoError(t, err)
	assert.Equal(t, "steps", page.Items[0].Unit)
}

func TestQuery_RawMergesAndSorts(t *testing.T) {
	store := newFakeStore(
		healthLog(domain.HeartRate, 70, at0.Add(8*time.Hour)),
		healthLog(domain.HeartRate, 72, at0.Add(6*time.Hour)),
	)
	device := newFakeDevice()
	device.items[domain.HeartRate] = []domain.LogItem{deviceItem(domain.HeartRate, 75, at0.Add(7*time.Hour))}
	device.totals[domain.HeartRate] = 30
	svc := newTestAggregate(store, device)

	page, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.HeartRate, Filter: day5, Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(32), page.Total)
	assert.Equal(t, 4, page.Pages)
	require.Len(t, page.Items, 3)
	assert.Equal(t, []float64{70, 75, 72}, []float64{page.Items[0].Value, page.Items[1].Value, page.Items[2].Value})
	assert.Equal(t, domain.SourceHealthLog, page.Items[0].Source)
	assert.Equal(t, domain.SourceMiFit, page.Items[1].Source)
}

func TestQuery_RawKeepsSourceOrderOnTies(t *testing.T) {
	tie := at0.Add(9 * time.Hour)
	logs := []domain.HealthLog{healthLog(domain.HeartRate, 0, at0.Add(time.Hour))}
	device := newFakeDevice()
	var want []float64
	for i := 1; i <= 10; i++ {
		logs = append(logs, healthLog(domain.HeartRate, float64(i), tie))
		want = append(want, float64(i))
	}
	for i := 101; i <= 110; i++ {
		item := deviceItem(domain.HeartRate, float64(i), tie)
		item.ID = fmt.Sprintf("dev-%d", i)
		device.items[domain.HeartRate] = append(device.items[domain.HeartRate], item)
		want = append(want, float64(i))
	}
	want = append(want, 0)
	svc := newTestAggregate(newFakeStore(logs...), device)

	page, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.HeartRate, Filter: day5, Page: 1, Limit: 50})

	require.NoError(t, err)
	got := lo.Map(page.Items, func(item domain.LogItem, _ int) float64 { return item.Value })
	assert.Equal(t, want, got)
	for _, item := range page.Items[:10] {
		assert.Equal(t, domain.SourceHealthLog, item.Source)
	}
}

func TestQuery_RawSkipsDeviceForUnlistedTypes(t *testing.T) {
	device := newFakeDevice()
	svc := newTestAggregate(newFakeStore(healthLog(domain.Sleep, 420, at0)), device)

	page, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.Sleep, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = svc.Query(context.Background(), LogQuery{Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, 0, device.fetchCount())
}

func TestQuery_RawPagination(t *testing.T) {
	store := newFakeStore(
		healthLog(domain.Stress, 1, at0),
		healthLog(domain.Stress, 2, at0),
		healthLog(domain.Stress, 3, at0),
	)
	device := newFakeDevice()
	device.supported[domain.Stress] = true
	svc := newTestAggregate(store, device)

	page, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.Stress, Page: 2, Limit: 2})

	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, deviceFetch{activityType: domain.Stress, skip: 2, limit: 2}, device.fetches[0])
}

func TestQuery_InvalidDate(t *testing.T) {
	svc := newTestAggregate(newFakeStore(), newFakeDevice())

	_, err := svc.Query(context.Background(), LogQuery{Filter: daterange.Filter{WeekStart: "2025-09-01", WeekEnd: "next week"}})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Fields, "weekEnd")
	assert.NotContains(t, appErr.Fields, "weekStart")

	_, err = svc.Query(context.Background(), LogQuery{Filter: daterange.Filter{Date: "05.09.2025"}})
	appErr, _ = apperrors.AsAppError(err)
	assert.Contains(t, appErr.Fields, "date")
}

func TestQuery_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = apperrors.NewDatabaseError(errors.New("connection refused"))
	svc := newTestAggregate(store, newFakeDevice())

	_, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.Calories, Filter: day5})

	assert.Equal(t, apperrors.ErrorTypeDatabase, apperrors.TypeOf(err))
}

func TestQuery_NilDevice(t *testing.T) {
	svc := NewAggregateService(newFakeStore(healthLog(domain.HeartRate, 60, at0)), nil, time.UTC)

	page, err := svc.Query(context.Background(), LogQuery{ActivityType: domain.HeartRate, Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestQuery_CachesRawAndSum(t *testing.T) {
	store := newFakeStore(healthLog(domain.HeartRate, 70, at0.Add(time.Hour)))
	svc := newTestAggregate(store, newFakeDevice(), WithCache(cache.NewMemory(), time.Minute))
	ctx := context.Background()

	q := LogQuery{ActivityType: domain.HeartRate, Filter: day5, Page: 1, Limit: 10}
	first, err := svc.Query(ctx, q)
	require.NoError(t, err)
	second, err := svc.Query(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, 1, store.called("ListPage"))
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Items[0].ID, second.Items[0].ID)
	assert.True(t, first.Items[0].OccurredAt.Time.Equal(second.Items[0].OccurredAt.Time))

	sum := LogQuery{ActivityType: domain.Calories, Filter: daterange.Filter{Date: "2025-09-05T00:00:00Z"}}
	_, err = svc.Query(ctx, sum)
	require.NoError(t, err)
	hit, err := svc.Query(ctx, sum)
	require.NoError(t, err)

	assert.Equal(t, 1, store.called("Sum"))
	assert.Equal(t, domain.Echo("2025-09-05T00:00:00Z"), hit.Items[0].OccurredAt)
}

func TestQuery_AverageIsNotCached(t *testing.T) {
	store := newFakeStore(healthLog(domain.HeartRate, 70, at0.Add(time.Hour)))
	svc := newTestAggregate(store, newFakeDevice(), WithCache(cache.NewMemory(), time.Minute))
	q := LogQuery{ActivityType: domain.HeartRate, CalculateAverage: true, Filter: day5}

	for i := 0; i < 2; i++ {
		_, err := svc.Query(context.Background(), q)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, store.called("FindAll"))
}
