package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection        = "users"
	tuitionsCollection     = "tuitions"
	applicationsCollection = "applications"
	paymentsCollection     = "payments"
)

// Observer wraps a logical store operation, e.g. for latency metrics.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

type noopObserver struct{}

func (noopObserver) ObserveDB(_ string, fn func() error) error { return fn() }

// Store holds the database handle shared by the repositories. It is built once at
// startup and handed to each repository constructor.
type Store struct {
	db  *mongo.Database
	obs Observer
}

func NewStore(db *mongo.Database, obs Observer) *Store {
	if obs == nil {
		obs = noopObserver{}
	}
	return &Store{db: db, obs: obs}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates the indexes the repositories rely on for uniqueness and sort order.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		tuitionsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "postedBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		applicationsCollection: {
			{Keys: bson.D{{Key: "tuitionId", Value: 1}, {Key: "tutorId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "tutorId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "tutorId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for name, models := range specs {
		if _, err := s.coll(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type groupCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

// countBy returns the number of documents per distinct value of field.
func countBy(ctx context.Context, coll *mongo.Collection, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []groupCount
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] += r.Count
	}
	return out, nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
