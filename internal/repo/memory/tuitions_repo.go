package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/etuitionbd/server/internal/domain/analytics"
	"github.com/etuitionbd/server/internal/domain/tuition"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TuitionsRepo struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]tuition.Tuition
}

func NewTuitionsRepo() *TuitionsRepo {
	return &TuitionsRepo{
		items: make(map[primitive.ObjectID]tuition.Tuition),
	}
}

func (r *TuitionsRepo) Create(_ context.Context, t tuition.Tuition) (tuition.Tuition, error) {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}

	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return t, nil
}

func (r *TuitionsRepo) GetByID(_ context.Context, id primitive.ObjectID) (tuition.Tuition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return tuition.Tuition{}, tuition.ErrNotFound
	}
	return t, nil
}

func (r *TuitionsRepo) List(_ context.Context, f tuition.ListFilter) ([]tuition.Tuition, int64, error) {
	matched := r.filter(func(t tuition.Tuition) bool { return matches(t, f) })

	sort.SliceStable(matched, func(i, j int) bool {
		c := compareField(matched[i], matched[j], f.SortField)
		if c == 0 {
			c = strings.Compare(matched[i].ID.Hex(), matched[j].ID.Hex())
		}
		if f.SortAsc {
			return c < 0
		}
		return c > 0
	})

	total := int64(len(matched))

	start := f.Skip()
	if start < 0 || start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if f.Limit > 0 && f.Limit < end-start {
		end = start + f.Limit
	}

	return matched[start:end], total, nil
}

func matches(t tuition.Tuition, f tuition.ListFilter) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Subject != nil && !containsFold(t.Subject, *f.Subject) {
		return false
	}
	if f.Location != nil && !containsFold(t.Location, *f.Location) {
		return false
	}
	if f.Class != nil && !containsFold(t.Class, *f.Class) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func compareField(a, b tuition.Tuition, field string) int {
	switch field {
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "budget":
		switch {
		case a.Budget < b.Budget:
			return -1
		case a.Budget > b.Budget:
			return 1
		}
		return 0
	case "subject":
		return strings.Compare(a.Subject, b.Subject)
	case "class":
		return strings.Compare(a.Class, b.Class)
	case "location":
		return strings.Compare(a.Location, b.Location)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (r *TuitionsRepo) ListByStatus(_ context.Context, status *string, limit int) ([]tuition.Tuition, error) {
	out := r.newestFirst(func(t tuition.Tuition) bool {
		return status == nil || t.Status == *status
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TuitionsRepo) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]tuition.Tuition, error) {
	return r.newestFirst(func(t tuition.Tuition) bool { return t.PostedBy == owner }), nil
}

func (r *TuitionsRepo) GetManyByID(_ context.Context, ids []primitive.ObjectID) ([]tuition.Tuition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tuition.Tuition, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.items[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TuitionsRepo) Update(_ context.Context, id primitive.ObjectID, req tuition.UpdateRequest) (tuition.Tuition, error) {
	return r.mutate(id, func(t *tuition.Tuition) {
		req.Apply(t, time.Now().UTC())
	})
}

func (r *TuitionsRepo) SetStatus(_ context.Context, id primitive.ObjectID, status string) (tuition.Tuition, error) {
	return r.mutate(id, func(t *tuition.Tuition) {
		t.Status = status
		t.UpdatedAt = time.Now().UTC()
	})
}

func (r *TuitionsRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return tuition.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *TuitionsRepo) CountByStatus(_ context.Context) (analytics.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := analytics.Counts{}
	for _, t := range r.items {
		out[t.Status]++
	}
	return out, nil
}

func (r *TuitionsRepo) mutate(id primitive.ObjectID, fn func(*tuition.Tuition)) (tuition.Tuition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return tuition.Tuition{}, tuition.ErrNotFound
	}
	fn(&t)
	r.items[id] = t
	return t, nil
}

func (r *TuitionsRepo) filter(keep func(tuition.Tuition) bool) []tuition.Tuition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tuition.Tuition, 0, len(r.items))
	for _, t := range r.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (r *TuitionsRepo) newestFirst(keep func(tuition.Tuition) bool) []tuition.Tuition {
	out := r.filter(keep)
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}
