// Package mifit reads the collections a Mi Fitness sync process writes into
// MongoDB and maps them onto the canonical health log shape. Nothing here
// ever writes to that database.
package mifit

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladimiradmaev/health-tracker/internal/config"
	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotConnected is returned by a Store that has no live database handle
var ErrNotConnected = errors.New("mifit store is not connected")

// Record is one synced sample. The collection name equals Key.
type Record struct {
	ID    interface{} `bson:"_id"`
	Key   string      `bson:"Key"`
	Time  int64       `bson:"Time"`
	UID   interface{} `bson:"Uid"`
	SID   interface{} `bson:"Sid"`
	Value bson.M      `bson:"Value"`
}

// document is the stored shape of a Record. Time and Value are read
// leniently so one malformed sample never fails the page it is on.
type document struct {
	ID    interface{}   `bson:"_id"`
	Key   string        `bson:"Key"`
	Time  interface{}   `bson:"Time"`
	UID   interface{}   `bson:"Uid"`
	SID   interface{}   `bson:"Sid"`
	Value bson.RawValue `bson:"Value"`
}

// record converts d; a non-numeric Time reads as 0 and a Value that is not
// an embedded document reads as an empty blob.
func (d document) record() Record {
	sec, _ := Number(d.Time)
	value := bson.M{}
	if d.Value.Type == bson.TypeEmbeddedDocument {
		var m bson.M
		if err := d.Value.Unmarshal(&m); err == nil {
			value = m
		}
	}
	return Record{
		ID:    d.ID,
		Key:   d.Key,
		Time:  int64(sec),
		UID:   d.UID,
		SID:   d.SID,
		Value: value,
	}
}

// IDString renders the record id; ObjectIDs use their hex form.
func (r Record) IDString() string {
	switch id := r.ID.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// Query selects a page of one collection
type Query struct {
	Collection string
	Filter     bson.D
	Skip       int64
	Limit      int64
}

// Finder is the read primitive the adapter and sleep reader depend on
type Finder interface {
	Find(ctx context.Context, q Query) ([]Record, int64, error)
}

// Store is a Finder over a MongoDB database
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and pings it. An empty URI yields a disconnected
// store whose reads fail with ErrNotConnected.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	if cfg.URI == "" {
		logger.Warn("MONGO_URI is empty, device data source disabled")
		return &Store{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("Device data source connected", "database", cfg.Database)
	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

func (s *Store) Connected() bool {
	return s != nil && s.db != nil
}

// Close disconnects the client, if any
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Find counts the matches of q.Filter and returns the requested page,
// newest first with _id breaking ties.
func (s *Store) Find(ctx context.Context, q Query) ([]Record, int64, error) {
	if !s.Connected() {
		return nil, 0, ErrNotConnected
	}
	coll := s.db.Collection(q.Collection)

	total, err := coll.CountDocuments(ctx, q.Filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", q.Collection, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "Time", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(q.Skip)
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cur, err := coll.Find(ctx, q.Filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find %s: %w", q.Collection, err)
	}
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", q.Collection, err)
	}
	records := make([]Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.record())
	}
	return records, total, nil
}

// KeyFilter matches records tagged key, restricted to iv in epoch seconds
// when iv is set.
func KeyFilter(key string, iv *daterange.Interval) bson.D {
	filter := bson.D{{Key: "Key", Value: key}}
	if iv == nil {
		return filter
	}
	upper := "$lte"
	if iv.HalfOpen {
		upper = "$lt"
	}
	return append(filter, bson.E{Key: "Time", Value: bson.D{
		{Key: "$gte", Value: iv.StartEpoch()},
		{Key: upper, Value: iv.EndEpoch()},
	}})
}
