package mongodb

import (
	"context"
	"regexp"
	"time"

	"github.com/etuitionbd/server/internal/domain/analytics"
	"github.com/etuitionbd/server/internal/domain/tuition"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TuitionsRepo struct {
	coll *mongo.Collection
	obs  Observer
}

func NewTuitionsRepo(s *Store) *TuitionsRepo {
	return &TuitionsRepo{coll: s.coll(tuitionsCollection), obs: s.obs}
}

func (r *TuitionsRepo) Create(ctx context.Context, t tuition.Tuition) (tuition.Tuition, error) {
	err := r.obs.ObserveDB("tuitions.create", func() error {
		_, err := r.coll.InsertOne(ctx, t)
		return err
	})

	if err != nil {
		return tuition.Tuition{}, err
	}
	return t, nil
}

func (r *TuitionsRepo) GetByID(ctx context.Context, id primitive.ObjectID) (tuition.Tuition, error) {
	var t tuition.Tuition

	err := r.obs.ObserveDB("tuitions.get_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	})

	if err != nil {
		if isNoDocuments(err) {
			return tuition.Tuition{}, tuition.ErrNotFound
		}
		return tuition.Tuition{}, err
	}
	return t, nil
}

// List returns one page of postings matching f together with the total match count.
func (r *TuitionsRepo) List(ctx context.Context, f tuition.ListFilter) ([]tuition.Tuition, int64, error) {
	filter := listFilter(f)

	dir := -1
	if f.SortAsc {
		dir = 1
	}

	// _id breaks ties so pages stay stable
	opts := options.Find().
		SetSort(bson.D{{Key: f.SortField, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(f.Skip())).
		SetLimit(int64(f.Limit))

	var (
		out   []tuition.Tuition
		total int64
	)

	err := r.obs.ObserveDB("tuitions.list", func() error {
		var err error
		out, err = findAll[tuition.Tuition](ctx, r.coll, filter, opts)
		if err != nil {
			return err
		}
		total, err = r.coll.CountDocuments(ctx, filter)
		return err
	})

	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func listFilter(f tuition.ListFilter) bson.M {
	filter := bson.M{}

	if f.Status != nil {
		filter["status"] = *f.Status
	}
	if f.Subject != nil {
		filter["subject"] = containsFold(*f.Subject)
	}
	if f.Location != nil {
		filter["location"] = containsFold(*f.Location)
	}
	if f.Class != nil {
		filter["class"] = containsFold(*f.Class)
	}
	return filter
}

// containsFold matches s anywhere in the field, ignoring case. s is taken literally.
func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// ListByStatus returns postings newest first. A nil status matches all; limit <= 0 means all.
func (r *TuitionsRepo) ListByStatus(ctx context.Context, status *string, limit int) ([]tuition.Tuition, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}

	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	var out []tuition.Tuition
	err := r.obs.ObserveDB("tuitions.list_by_status", func() error {
		var err error
		out, err = findAll[tuition.Tuition](ctx, r.coll, filter, opts)
		return err
	})
	return out, err
}

func (r *TuitionsRepo) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]tuition.Tuition, error) {
	var out []tuition.Tuition

	err := r.obs.ObserveDB("tuitions.list_by_owner", func() error {
		var err error
		out, err = findAll[tuition.Tuition](ctx, r.coll, bson.M{"postedBy": owner}, options.Find().SetSort(newestFirst))
		return err
	})
	return out, err
}

func (r *TuitionsRepo) GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]tuition.Tuition, error) {
	if len(ids) == 0 {
		return []tuition.Tuition{}, nil
	}

	var out []tuition.Tuition
	err := r.obs.ObserveDB("tuitions.get_many", func() error {
		var err error
		out, err = findAll[tuition.Tuition](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}})
		return err
	})
	return out, err
}

func (r *TuitionsRepo) Update(ctx context.Context, id primitive.ObjectID, req tuition.UpdateRequest) (tuition.Tuition, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}

	if req.Subject != nil {
		set["subject"] = *req.Subject
	}
	if req.Class != nil {
		set["class"] = *req.Class
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.Budget != nil {
		set["budget"] = *req.Budget
	}
	if req.Schedule != nil {
		set["schedule"] = *req.Schedule
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}

	return r.findOneAndSet(ctx, "tuitions.update", id, set)
}

func (r *TuitionsRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (tuition.Tuition, error) {
	return r.findOneAndSet(ctx, "tuitions.set_status", id, bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	})
}

func (r *TuitionsRepo) findOneAndSet(ctx context.Context, op string, id primitive.ObjectID, set bson.M) (tuition.Tuition, error) {
	var t tuition.Tuition

	err := r.obs.ObserveDB(op, func() error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&t)
	})

	if err != nil {
		if isNoDocuments(err) {
			return tuition.Tuition{}, tuition.ErrNotFound
		}
		return tuition.Tuition{}, err
	}
	return t, nil
}

func (r *TuitionsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	var deleted int64

	err := r.obs.ObserveDB("tuitions.delete", func() error {
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
		return tuition.ErrNotFound
	}
	return nil
}

func (r *TuitionsRepo) CountByStatus(ctx context.Context) (analytics.Counts, error) {
	var out map[string]int64

	err := r.obs.ObserveDB("tuitions.count_by_status", func() error {
		var err error
		out, err = countBy(ctx, r.coll, "status")
		return err
	})
	return analytics.Counts(out), err
}
