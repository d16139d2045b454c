package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/etuitionbd/server/internal/domain/analytics"
	"github.com/etuitionbd/server/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UsersRepo struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[primitive.ObjectID]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.items[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id primitive.ObjectID) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(_ context.Context, role *string, limit int) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		if role == nil || u.Role == *role {
			u.PasswordHash = ""
			out = append(out, u)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *UsersRepo) GetManyByID(_ context.Context, ids []primitive.ObjectID) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			u.PasswordHash = ""
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UsersRepo) Update(_ context.Context, id primitive.ObjectID, patch user.Patch) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	patch.Apply(&u)
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u
	return u, nil
}

func (r *UsersRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *UsersRepo) CountByRole(_ context.Context) (analytics.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := analytics.Counts{}
	for _, u := range r.items {
		out[u.Role]++
	}
	return out, nil
}

// newer orders documents newest first, with the id breaking ties.
func newer(a, b time.Time, aID, bID primitive.ObjectID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID.Hex() > bID.Hex()
}
