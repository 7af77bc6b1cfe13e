package mifit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	"github.com/vladimiradmaev/health-tracker/internal/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeFinder struct {
	records []Record
	total   int64
	err     error
	queries []Query
}

func (f *fakeFinder) Find(ctx context.Context, q Query) ([]Record, int64, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.records, f.total, nil
}

func TestAdapter_Supports(t *testing.T) {
	a := NewAdapter(&fakeFinder{}, nil)

	for _, typ := range []domain.ActivityType{domain.HeartRate, domain.Steps, domain.Calories, domain.Stress, domain.SpO2, domain.RestingHeartRate} {
		assert.True(t, a.Supports(typ), typ)
	}
	assert.False(t, a.Supports(domain.Sleep))
	assert.False(t, a.Supports("weight"))
}

func TestAdapter_Fetch(t *testing.T) {
	oid := primitive.NewObjectID()
	finder := &fakeFinder{
		records: []Record{
			{ID: oid, Key: "heart_rate", Time: 1757059200, Value: bson.M{"bpm": int32(75)}},
			{ID: "legacy-1", Key: "heart_rate", Time: 0, Value: bson.M{"value": 70.0}},
		},
		total: 42,
	}
	a := NewAdapter(finder, nil)
	iv := daterange.Day(time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC))

	result := a.Fetch(context.Background(), domain.HeartRate, &iv, 10, 5)

	require.Len(t, finder.queries, 1)
	q := finder.queries[0]
	assert.Equal(t, "heart_rate", q.Collection)
	assert.Equal(t, int64(10), q.Skip)
	assert.Equal(t, int64(5), q.Limit)
	assert.Equal(t, KeyFilter("heart_rate", &iv), q.Filter)

	assert.Equal(t, int64(42), result.Total)
	require.Len(t, result.Items, 2)

	first := result.Items[0]
	assert.Equal(t, oid.Hex(), first.ID)
	assert.Equal(t, 75.0, first.Value)
	assert.Equal(t, "bpm", first.Unit)
	assert.Equal(t, "MiFit heart_rate", first.Note)
	assert.Equal(t, domain.SourceMiFit, first.Source)
	assert.Equal(t, time.Unix(1757059200, 0).UTC(), first.OccurredAt.Time)

	second := result.Items[1]
	assert.Equal(t, "legacy-1", second.ID)
	assert.Equal(t, 70.0, second.Value)
	assert.True(t, second.OccurredAt.Time.IsZero())
}

func TestAdapter_FetchFailureIsEmpty(t *testing.T) {
	m := metrics.New()
	a := NewAdapter(&fakeFinder{err: errors.New("server selection timeout")}, m)

	result := a.Fetch(context.Background(), domain.Steps, nil, 0, 10)

	assert.Equal(t, int64(0), result.Total)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
}

func TestAdapter_FetchDisconnectedStore(t *testing.T) {
	a := NewAdapter(&Store{}, nil)

	result := a.Fetch(context.Background(), domain.Calories, nil, 0, 10)

	assert.Equal(t, int64(0), result.Total)
	assert.Empty(t, result.Items)
}

func TestKeyFilter(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "Key", Value: "steps"}}, KeyFilter("steps", nil))

	day := daterange.Day(time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, bson.D{
		{Key: "Key", Value: "steps"},
		{Key: "Time", Value: bson.D{
			{Key: "$gte", Value: day.StartEpoch()},
			{Key: "$lte", Value: day.EndEpoch()},
		}},
	}, KeyFilter("steps", &day))

	month := daterange.Month(2025, time.September)
	filter := KeyFilter("sleep", &month)
	bounds := filter[1].Value.(bson.D)
	assert.Equal(t, "$lt", bounds[1].Key)
	assert.Equal(t, month.End.Unix(), bounds[1].Value)
}

func TestEpochTime(t *testing.T) {
	assert.True(t, EpochTime(0).IsZero())
	assert.Equal(t, time.Date(2025, 9, 5, 8, 0, 0, 0, time.UTC), EpochTime(1757059200))
}
