package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/etuitionbd/server/internal/domain/analytics"
	"github.com/etuitionbd/server/internal/domain/application"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationsRepo struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]application.Application
}

func NewApplicationsRepo() *ApplicationsRepo {
	return &ApplicationsRepo{
		items: make(map[primitive.ObjectID]application.Application),
	}
}

func (r *ApplicationsRepo) Create(_ context.Context, a application.Application) (application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.TuitionID == a.TuitionID && existing.TutorID == a.TutorID {
			return application.Application{}, application.ErrAlreadyApplied
		}
	}

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	r.items[a.ID] = a
	return a, nil
}

func (r *ApplicationsRepo) GetByID(_ context.Context, id primitive.ObjectID) (application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	return a, nil
}

func (r *ApplicationsRepo) ListByTutor(_ context.Context, tutor primitive.ObjectID, status *string) ([]application.Application, error) {
	return r.newestFirst(func(a application.Application) bool {
		return a.TutorID == tutor && (status == nil || a.Status == *status)
	}), nil
}

func (r *ApplicationsRepo) ListByTuition(_ context.Context, tuitionID primitive.ObjectID) ([]application.Application, error) {
	return r.newestFirst(func(a application.Application) bool { return a.TuitionID == tuitionID }), nil
}

func (r *ApplicationsRepo) SetStatus(_ context.Context, id primitive.ObjectID, status string) (application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	r.items[id] = a
	return a, nil
}

func (r *ApplicationsRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return application.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ApplicationsRepo) CountByStatus(_ context.Context) (analytics.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := analytics.Counts{}
	for _, a := range r.items {
		out[a.Status]++
	}
	return out, nil
}

func (r *ApplicationsRepo) newestFirst(keep func(application.Application) bool) []application.Application {
	r.mu.RLock()
	out := make([]application.Application, 0)
	for _, a := range r.items {
		if keep(a) {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}
