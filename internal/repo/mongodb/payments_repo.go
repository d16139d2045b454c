package mongodb

import (
	"context"

	"github.com/etuitionbd/server/internal/domain/payment"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaymentsRepo is append-only: payments are never updated or deleted.
type PaymentsRepo struct {
	coll *mongo.Collection
	obs  Observer
}

func NewPaymentsRepo(s *Store) *PaymentsRepo {
	return &PaymentsRepo{coll: s.coll(paymentsCollection), obs: s.obs}
}

func (r *PaymentsRepo) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	err := r.obs.ObserveDB("payments.create", func() error {
		_, err := r.coll.InsertOne(ctx, p)
		return err
	})

	if err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

func (r *PaymentsRepo) ListByStudent(ctx context.Context, student primitive.ObjectID) ([]payment.Payment, error) {
	return r.list(ctx, "payments.list_by_student", bson.M{"studentId": student})
}

func (r *PaymentsRepo) ListByTutor(ctx context.Context, tutor primitive.ObjectID) ([]payment.Payment, error) {
	return r.list(ctx, "payments.list_by_tutor", bson.M{"tutorId": tutor})
}

func (r *PaymentsRepo) ListAll(ctx context.Context) ([]payment.Payment, error) {
	return r.list(ctx, "payments.list_all", bson.M{})
}

func (r *PaymentsRepo) list(ctx context.Context, op string, filter bson.M) ([]payment.Payment, error) {
	var out []payment.Payment

	err := r.obs.ObserveDB(op, func() error {
		var err error
		out, err = findAll[payment.Payment](ctx, r.coll, filter, options.Find().SetSort(newestFirst))
		return err
	})
	return out, err
}

type paymentTotals struct {
	Count int64          `bson:"count"`
	Total payment.Amount `bson:"total"`
}

// Stats returns the number of payments and their summed amount in minor units.
func (r *PaymentsRepo) Stats(ctx context.Context) (int64, payment.Amount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	}

	var rows []paymentTotals

	err := r.obs.ObserveDB("payments.stats", func() error {
		cursor, err := r.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		return cursor.All(ctx, &rows)
	})

	if err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Count, rows[0].Total, nil
}
