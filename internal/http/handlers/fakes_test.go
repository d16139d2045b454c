package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etuitionbd/server/internal/auth"
	"github.com/etuitionbd/server/internal/domain/analytics"
	"github.com/etuitionbd/server/internal/domain/application"
	"github.com/etuitionbd/server/internal/domain/payment"
	"github.com/etuitionbd/server/internal/domain/tuition"
	"github.com/etuitionbd/server/internal/domain/user"
	"github.com/etuitionbd/server/internal/http/handlers"
	"github.com/etuitionbd/server/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

var testJWT = auth.NewManager("handler-test-secret", time.Hour)

func tokenFor(t *testing.T, id primitive.ObjectID, role string) string {
	t.Helper()

	tok, err := testJWT.GenerateToken(id.Hex(), "someone@example.com", role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

// setupRouter mounts one handler behind the real auth guard.
func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, middlewares.NewAuthMiddleware(testJWT).RequireAuth(), h)
	return r
}

// setupPublicRouter mounts one handler without authentication.
func setupPublicRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, h)
	return r
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response: %v body=%s", err, w.Body.String())
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Fake repository implementations of the handler interfaces

type fakeUsersRepo struct {
	createFn      func(ctx context.Context, u user.User) (user.User, error)
	getFn         func(ctx context.Context, id primitive.ObjectID) (user.User, error)
	getByEmailFn  func(ctx context.Context, email string) (user.User, error)
	updateFn      func(ctx context.Context, id primitive.ObjectID, patch user.Patch) (user.User, error)
	listFn        func(ctx context.Context, role *string, limit int) ([]user.User, error)
	getManyFn     func(ctx context.Context, ids []primitive.ObjectID) ([]user.User, error)
	deleteFn      func(ctx context.Context, id primitive.ObjectID) error
	countByRoleFn func(ctx context.Context) (analytics.Counts, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) Update(ctx context.Context, id primitive.ObjectID, patch user.Patch) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context, role *string, limit int) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx, role, limit)
	}
	return nil, nil
}

func (f *fakeUsersRepo) GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]user.User, error) {
	if f.getManyFn != nil {
		return f.getManyFn(ctx, ids)
	}
	return nil, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeUsersRepo) CountByRole(ctx context.Context) (analytics.Counts, error) {
	if f.countByRoleFn != nil {
		return f.countByRoleFn(ctx)
	}
	return analytics.Counts{}, nil
}

type fakeTuitionsRepo struct {
	createFn        func(ctx context.Context, t tuition.Tuition) (tuition.Tuition, error)
	getFn           func(ctx context.Context, id primitive.ObjectID) (tuition.Tuition, error)
	listFn          func(ctx context.Context, f tuition.ListFilter) ([]tuition.Tuition, int64, error)
	listByStatusFn  func(ctx context.Context, status *string, limit int) ([]tuition.Tuition, error)
	listByOwnerFn   func(ctx context.Context, owner primitive.ObjectID) ([]tuition.Tuition, error)
	getManyFn       func(ctx context.Context, ids []primitive.ObjectID) ([]tuition.Tuition, error)
	updateFn        func(ctx context.Context, id primitive.ObjectID, req tuition.UpdateRequest) (tuition.Tuition, error)
	setStatusFn     func(ctx context.Context, id primitive.ObjectID, status string) (tuition.Tuition, error)
	deleteFn        func(ctx context.Context, id primitive.ObjectID) error
	countByStatusFn func(ctx context.Context) (analytics.Counts, error)
}

func (f *fakeTuitionsRepo) Create(ctx context.Context, t tuition.Tuition) (tuition.Tuition, error) {
	if f.createFn != nil {
		return f.createFn(ctx, t)
	}
	return t, nil
}

func (f *fakeTuitionsRepo) GetByID(ctx context.Context, id primitive.ObjectID) (tuition.Tuition, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return tuition.Tuition{}, tuition.ErrNotFound
}

func (f *fakeTuitionsRepo) List(ctx context.Context, filter tuition.ListFilter) ([]tuition.Tuition, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (f *fakeTuitionsRepo) ListByStatus(ctx context.Context, status *string, limit int) ([]tuition.Tuition, error) {
	if f.listByStatusFn != nil {
		return f.listByStatusFn(ctx, status, limit)
	}
	return nil, nil
}

func (f *fakeTuitionsRepo) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]tuition.Tuition, error) {
	if f.listByOwnerFn != nil {
		return f.listByOwnerFn(ctx, owner)
	}
	return nil, nil
}

func (f *fakeTuitionsRepo) GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]tuition.Tuition, error) {
	if f.getManyFn != nil {
		return f.getManyFn(ctx, ids)
	}
	return nil, nil
}

func (f *fakeTuitionsRepo) Update(ctx context.Context, id primitive.ObjectID, req tuition.UpdateRequest) (tuition.Tuition, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return tuition.Tuition{}, nil
}

func (f *fakeTuitionsRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (tuition.Tuition, error) {
	if f.setStatusFn != nil {
		return f.setStatusFn(ctx, id, status)
	}
	return tuition.Tuition{ID: id, Status: status}, nil
}

func (f *fakeTuitionsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeTuitionsRepo) CountByStatus(ctx context.Context) (analytics.Counts, error) {
	if f.countByStatusFn != nil {
		return f.countByStatusFn(ctx)
	}
	return analytics.Counts{}, nil
}

type fakeApplicationsRepo struct {
	createFn        func(ctx context.Context, a application.Application) (application.Application, error)
	getFn           func(ctx context.Context, id primitive.ObjectID) (application.Application, error)
	listByTutorFn   func(ctx context.Context, tutor primitive.ObjectID, status *string) ([]application.Application, error)
	listByTuitionFn func(ctx context.Context, tuitionID primitive.ObjectID) ([]application.Application, error)
	setStatusFn     func(ctx context.Context, id primitive.ObjectID, status string) (application.Application, error)
	deleteFn        func(ctx context.Context, id primitive.ObjectID) error
	countByStatusFn func(ctx context.Context) (analytics.Counts, error)
}

func (f *fakeApplicationsRepo) Create(ctx context.Context, a application.Application) (application.Application, error) {
	if f.createFn != nil {
		return f.createFn(ctx, a)
	}
	return a, nil
}

func (f *fakeApplicationsRepo) GetByID(ctx context.Context, id primitive.ObjectID) (application.Application, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return application.Application{}, application.ErrNotFound
}

func (f *fakeApplicationsRepo) ListByTutor(ctx context.Context, tutor primitive.ObjectID, status *string) ([]application.Application, error) {
	if f.listByTutorFn != nil {
		return f.listByTutorFn(ctx, tutor, status)
	}
	return nil, nil
}

func (f *fakeApplicationsRepo) ListByTuition(ctx context.Context, tuitionID primitive.ObjectID) ([]application.Application, error) {
	if f.listByTuitionFn != nil {
		return f.listByTuitionFn(ctx, tuitionID)
	}
	return nil, nil
}

func (f *fakeApplicationsRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (application.Application, error) {
	if f.setStatusFn != nil {
		return f.setStatusFn(ctx, id, status)
	}
	return application.Application{ID: id, Status: status}, nil
}

func (f *fakeApplicationsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeApplicationsRepo) CountByStatus(ctx context.Context) (analytics.Counts, error) {
	if f.countByStatusFn != nil {
		return f.countByStatusFn(ctx)
	}
	return analytics.Counts{}, nil
}

type fakePaymentsRepo struct {
	createFn        func(ctx context.Context, p payment.Payment) (payment.Payment, error)
	listByStudentFn func(ctx context.Context, student primitive.ObjectID) ([]payment.Payment, error)
	listByTutorFn   func(ctx context.Context, tutor primitive.ObjectID) ([]payment.Payment, error)
	listAllFn       func(ctx context.Context) ([]payment.Payment, error)
	statsFn         func(ctx context.Context) (int64, payment.Amount, error)
}

func (f *fakePaymentsRepo) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return p, nil
}

func (f *fakePaymentsRepo) ListByStudent(ctx context.Context, student primitive.ObjectID) ([]payment.Payment, error) {
	if f.listByStudentFn != nil {
		return f.listByStudentFn(ctx, student)
	}
	return nil, nil
}

func (f *fakePaymentsRepo) ListByTutor(ctx context.Context, tutor primitive.ObjectID) ([]payment.Payment, error) {
	if f.listByTutorFn != nil {
		return f.listByTutorFn(ctx, tutor)
	}
	return nil, nil
}

func (f *fakePaymentsRepo) ListAll(ctx context.Context) ([]payment.Payment, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx)
	}
	return nil, nil
}

func (f *fakePaymentsRepo) Stats(ctx context.Context) (int64, payment.Amount, error) {
	if f.statsFn != nil {
		return f.statsFn(ctx)
	}
	return 0, 0, nil
}

type countingObserver struct{ n int }

func (c *countingObserver) PaymentRecorded() { c.n++ }

// Compile-time checks that the fakes satisfy the handler interfaces.
var (
	_ handlers.UserStore        = (*fakeUsersRepo)(nil)
	_ handlers.AdminUserStore   = (*fakeUsersRepo)(nil)
	_ handlers.UserFinder       = (*fakeUsersRepo)(nil)
	_ handlers.TutorDirectory   = (*fakeUsersRepo)(nil)
	_ handlers.TuitionStore     = (*fakeTuitionsRepo)(nil)
	_ handlers.TuitionFinder    = (*fakeTuitionsRepo)(nil)
	_ handlers.StatusCounter    = (*fakeTuitionsRepo)(nil)
	_ handlers.ApplicationStore = (*fakeApplicationsRepo)(nil)
	_ handlers.PaymentStore     = (*fakePaymentsRepo)(nil)
	_ handlers.PaymentLedger    = (*fakePaymentsRepo)(nil)
)
