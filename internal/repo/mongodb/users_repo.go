package mongodb

import (
	"context"
	"time"

	"github.com/etuitionbd/server/internal/domain/analytics"
	"github.com/etuitionbd/server/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// listing never reads the credential hash
var withoutPassword = bson.M{"password": 0}

type UsersRepo struct {
	coll *mongo.Collection
	obs  Observer
}

func NewUsersRepo(s *Store) *UsersRepo {
	return &UsersRepo{coll: s.coll(usersCollection), obs: s.obs}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.obs.ObserveDB("users.create", func() error {
		_, err := r.coll.InsertOne(ctx, u)
		return err
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error) {
	return r.findOne(ctx, "users.get_by_id", bson.M{"_id": id})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, "users.get_by_email", bson.M{"email": email})
}

func (r *UsersRepo) findOne(ctx context.Context, op string, filter bson.M) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB(op, func() error {
		return r.coll.FindOne(ctx, filter).Decode(&u)
	})

	if err != nil {
		if isNoDocuments(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// List returns users newest first, optionally restricted to one role. limit <= 0 means all.
func (r *UsersRepo) List(ctx context.Context, role *string, limit int) ([]user.User, error) {
	filter := bson.M{}
	if role != nil {
		filter["role"] = *role
	}

	opts := options.Find().SetSort(newestFirst).SetProjection(withoutPassword)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	var out []user.User
	err := r.obs.ObserveDB("users.list", func() error {
		var err error
		out, err = findAll[user.User](ctx, r.coll, filter, opts)
		return err
	})
	return out, err
}

func (r *UsersRepo) GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]user.User, error) {
	if len(ids) == 0 {
		return []user.User{}, nil
	}

	var out []user.User
	err := r.obs.ObserveDB("users.get_many", func() error {
		var err error
		out, err = findAll[user.User](ctx, r.coll,
			bson.M{"_id": bson.M{"$in": ids}},
			options.Find().SetProjection(withoutPassword),
		)
		return err
	})
	return out, err
}

// Update merges the non-empty patch fields and returns the stored document.
func (r *UsersRepo) Update(ctx context.Context, id primitive.ObjectID, patch user.Patch) (user.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}

	if patch.Name != "" {
		set["name"] = patch.Name
	}
	if patch.Phone != "" {
		set["phone"] = patch.Phone
	}
	if patch.Role != "" {
		set["role"] = patch.Role
	}
	if patch.Status != "" {
		set["status"] = patch.Status
	}
	if patch.ProfileImage != "" {
		set["profileImage"] = patch.ProfileImage
	}

	var u user.User
	err := r.obs.ObserveDB("users.update", func() error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&u)
	})

	if err != nil {
		if isNoDocuments(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	var deleted int64

	err := r.obs.ObserveDB("users.delete", func() error {
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
		return user.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) CountByRole(ctx context.Context) (analytics.Counts, error) {
	var out map[string]int64

	err := r.obs.ObserveDB("users.count_by_role", func() error {
		var err error
		out, err = countBy(ctx, r.coll, "role")
		return err
	})
	return analytics.Counts(out), err
}
