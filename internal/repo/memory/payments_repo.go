package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/etuitionbd/server/internal/domain/payment"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentsRepo struct {
	mu    sync.RWMutex
	items []payment.Payment
}

func NewPaymentsRepo() *PaymentsRepo {
	return &PaymentsRepo{}
}

func (r *PaymentsRepo) Create(_ context.Context, p payment.Payment) (payment.Payment, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}

	r.mu.Lock()
	r.items = append(r.items, p)
	r.mu.Unlock()

	return p, nil
}

func (r *PaymentsRepo) ListByStudent(_ context.Context, student primitive.ObjectID) ([]payment.Payment, error) {
	return r.newestFirst(func(p payment.Payment) bool { return p.StudentID == student }), nil
}

func (r *PaymentsRepo) ListByTutor(_ context.Context, tutor primitive.ObjectID) ([]payment.Payment, error) {
	return r.newestFirst(func(p payment.Payment) bool { return p.TutorID == tutor }), nil
}

func (r *PaymentsRepo) ListAll(_ context.Context) ([]payment.Payment, error) {
	return r.newestFirst(func(payment.Payment) bool { return true }), nil
}

func (r *PaymentsRepo) Stats(_ context.Context) (int64, payment.Amount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.items)), payment.Sum(r.items), nil
}

func (r *PaymentsRepo) newestFirst(keep func(payment.Payment) bool) []payment.Payment {
	r.mu.RLock()
	out := make([]payment.Payment, 0, len(r.items))
	for _, p := range r.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}
