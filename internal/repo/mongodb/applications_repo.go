package mongodb

import (
	"context"
	"time"

	"github.com/etuitionbd/server/internal/domain/analytics"
	"github.com/etuitionbd/server/internal/domain/application"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApplicationsRepo struct {
	coll *mongo.Collection
	obs  Observer
}

func NewApplicationsRepo(s *Store) *ApplicationsRepo {
	return &ApplicationsRepo{coll: s.coll(applicationsCollection), obs: s.obs}
}

// Create relies on the unique (tuitionId, tutorId) index to reject a second application.
func (r *ApplicationsRepo) Create(ctx context.Context, a application.Application) (application.Application, error) {
	err := r.obs.ObserveDB("applications.create", func() error {
		_, err := r.coll.InsertOne(ctx, a)
		return err
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return application.Application{}, application.ErrAlreadyApplied
		}
		return application.Application{}, err
	}
	return a, nil
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id primitive.ObjectID) (application.Application, error) {
	var a application.Application

	err := r.obs.ObserveDB("applications.get_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	})

	if err != nil {
		if isNoDocuments(err) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return a, nil
}

// ListByTutor returns the tutor's applications newest first, optionally of one status.
func (r *ApplicationsRepo) ListByTutor(ctx context.Context, tutor primitive.ObjectID, status *string) ([]application.Application, error) {
	filter := bson.M{"tutorId": tutor}
	if status != nil {
		filter["status"] = *status
	}
	return r.list(ctx, "applications.list_by_tutor", filter)
}

func (r *ApplicationsRepo) ListByTuition(ctx context.Context, tuitionID primitive.ObjectID) ([]application.Application, error) {
	return r.list(ctx, "applications.list_by_tuition", bson.M{"tuitionId": tuitionID})
}

func (r *ApplicationsRepo) list(ctx context.Context, op string, filter bson.M) ([]application.Application, error) {
	var out []application.Application

	err := r.obs.ObserveDB(op, func() error {
		var err error
		out, err = findAll[application.Application](ctx, r.coll, filter, options.Find().SetSort(newestFirst))
		return err
	})
	return out, err
}

func (r *ApplicationsRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (application.Application, error) {
	var a application.Application

	err := r.obs.ObserveDB("applications.set_status", func() error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&a)
	})

	if err != nil {
		if isNoDocuments(err) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return a, nil
}

func (r *ApplicationsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	var deleted int64

	err := r.obs.ObserveDB("applications.delete", func() error {
		res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		deleted = res.DeletedCount
		return nil
	})

	if err != nil {
		return err
	}
	if deleted == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationsRepo) CountByStatus(ctx context.Context) (analytics.Counts, error) {
	var out map[string]int64

	err := r.obs.ObserveDB("applications.count_by_status", func() error {
		var err error
		out, err = countBy(ctx, r.coll, "status")
		return err
	})
	return analytics.Counts(out), err
}
