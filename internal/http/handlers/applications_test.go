package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/etuitionbd/server/internal/domain/application"
	"github.com/etuitionbd/server/internal/domain/tuition"
	"github.com/etuitionbd/server/internal/domain/user"
	"github.com/etuitionbd/server/internal/http/handlers"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// applicationFixture wires one tuition, its owner and one tutor.
type applicationFixture struct {
	owner   primitive.ObjectID
	tutor   user.User
	tuition tuition.Tuition

	tuitions     *fakeTuitionsRepo
	users        *fakeUsersRepo
	applications *fakeApplicationsRepo
}

func newApplicationFixture() *applicationFixture {
	f := &applicationFixture{
		owner: primitive.NewObjectID(),
		tutor: user.NewPasswordUser("Tania", "tania@example.com", "hash", user.RoleTutor, ""),
	}
	f.tutor.ProfileImage = "http://img/tania"
	f.tuition = tuition.Tuition{ID: primitive.NewObjectID(), Subject: "Biology", PostedBy: f.owner, Status: tuition.StatusApproved}

	f.tuitions = &fakeTuitionsRepo{
		getFn: func(ctx context.Context, id primitive.ObjectID) (tuition.Tuition, error) {
			if id != f.tuition.ID {
				return tuition.Tuition{}, tuition.ErrNotFound
			}
			return f.tuition, nil
		},
		getManyFn: func(ctx context.Context, ids []primitive.ObjectID) ([]tuition.Tuition, error) {
			return []tuition.Tuition{f.tuition}, nil
		},
	}
	f.users = &fakeUsersRepo{
		getFn: func(ctx context.Context, id primitive.ObjectID) (user.User, error) {
			if id != f.tutor.ID {
				return user.User{}, user.ErrNotFound
			}
			return f.tutor, nil
		},
		getManyFn: func(ctx context.Context, ids []primitive.ObjectID) ([]user.User, error) {
			return []user.User{f.tutor}, nil
		},
	}
	f.applications = &fakeApplicationsRepo{}

	return f
}

func (f *applicationFixture) handler() *handlers.ApplicationsHandler {
	return handlers.NewApplicationsHandler(f.applications, f.tuitions, f.users)
}

func (f *applicationFixture) pending() application.Application {
	return application.Application{
		ID:        primitive.NewObjectID(),
		TuitionID: f.tuition.ID,
		TutorID:   f.tutor.ID,
		Status:    application.StatusPending,
	}
}

func TestSubmitApplicationHandler(t *testing.T) {
	f := newApplicationFixture()

	var stored application.Application
	f.applications.createFn = func(ctx context.Context, a application.Application) (application.Application, error) {
		if stored.ID != primitive.NilObjectID {
			return application.Application{}, application.ErrAlreadyApplied
		}
		stored = a
		return a, nil
	}

	r := setupRouter(http.MethodPost, "/api/applications", f.handler().Submit)
	token := tokenFor(t, f.tutor.ID, user.RoleTutor)

	body := `{"tuitionId":"` + f.tuition.ID.Hex() + `","qualifications":"BSc","expectedSalary":6000}`
	w := doJSON(r, http.MethodPost, "/api/applications", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if stored.Status != application.StatusPending {
		t.Fatalf("got status %q, want Pending", stored.Status)
	}
	if stored.TutorName != "Tania" || stored.TutorEmail != "tania@example.com" || stored.TutorImage != "http://img/tania" {
		t.Fatalf("tutor snapshot missing: %+v", stored)
	}

	w = doJSON(r, http.MethodPost, "/api/applications", token, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: got status %d, want 400", w.Code)
	}

	missing := `{"tuitionId":"` + primitive.NewObjectID().Hex() + `"}`
	w = doJSON(r, http.MethodPost, "/api/applications", token, missing)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown tuition: got status %d, want 404", w.Code)
	}
}

func TestListForTuitionHandler(t *testing.T) {
	f := newApplicationFixture()
	a := f.pending()
	f.applications.listByTuitionFn = func(ctx context.Context, tuitionID primitive.ObjectID) ([]application.Application, error) {
		return []application.Application{a}, nil
	}

	h := f.handler()
	path := "/api/tuitions/" + f.tuition.ID.Hex()

	tests := []struct {
		name       string
		route      string
		caller     primitive.ObjectID
		path       string
		wantStatus int
	}{
		{name: "owner lists applications", route: "/api/tuitions/:id/applications", caller: f.owner, path: path + "/applications", wantStatus: http.StatusOK},
		{name: "stranger lists applications", route: "/api/tuitions/:id/applications", caller: f.tutor.ID, path: path + "/applications", wantStatus: http.StatusForbidden},
		{name: "owner lists applied tutors", route: "/api/tuitions/:id/applied-tutors", caller: f.owner, path: path + "/applied-tutors", wantStatus: http.StatusOK},
		{name: "stranger lists applied tutors", route: "/api/tuitions/:id/applied-tutors", caller: f.tutor.ID, path: path + "/applied-tutors", wantStatus: http.StatusForbidden},
		{name: "missing tuition", route: "/api/tuitions/:id/applications", caller: f.owner, path: "/api/tuitions/" + primitive.NewObjectID().Hex() + "/applications", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handle := h.ListForTuition
			if tt.route == "/api/tuitions/:id/applied-tutors" {
				handle = h.AppliedTutors
			}
			r := setupRouter(http.MethodGet, tt.route, handle)

			w := doJSON(r, http.MethodGet, tt.path, tokenFor(t, tt.caller, user.RoleStudent), "")
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	t.Run("applied tutors carry the current profile", func(t *testing.T) {
		r := setupRouter(http.MethodGet, "/api/tuitions/:id/applied-tutors", h.AppliedTutors)
		w := doJSON(r, http.MethodGet, path+"/applied-tutors", tokenFor(t, f.owner, user.RoleStudent), "")

		var resp struct {
			Tutors []application.AppliedTutor `json:"tutors"`
		}
		decode(t, w, &resp)

		if len(resp.Tutors) != 1 || resp.Tutors[0].Tutor == nil || resp.Tutors[0].Tutor.ID != f.tutor.ID {
			t.Fatalf("unexpected tutors %+v", resp.Tutors)
		}
	})
}

func TestSetApplicationStatusHandler(t *testing.T) {
	f := newApplicationFixture()
	a := f.pending()

	var gotStatus string
	f.applications.getFn = func(ctx context.Context, id primitive.ObjectID) (application.Application, error) {
		if id != a.ID {
			return application.Application{}, application.ErrNotFound
		}
		return a, nil
	}
	f.applications.setStatusFn = func(ctx context.Context, id primitive.ObjectID, status string) (application.Application, error) {
		gotStatus = status
		out := a
		out.Status = status
		return out, nil
	}

	r := setupRouter(http.MethodPatch, "/api/applications/:id", f.handler().SetStatus)

	tests := []struct {
		name       string
		id         primitive.ObjectID
		caller     primitive.ObjectID
		body       string
		wantStatus int
	}{
		{name: "owner approves", id: a.ID, caller: f.owner, body: `{"status":"Approved"}`, wantStatus: http.StatusOK},
		{name: "owner rejects", id: a.ID, caller: f.owner, body: `{"status":"Rejected"}`, wantStatus: http.StatusOK},
		{name: "unknown status", id: a.ID, caller: f.owner, body: `{"status":"Hired"}`, wantStatus: http.StatusBadRequest},
		{name: "submitter cannot decide", id: a.ID, caller: f.tutor.ID, body: `{"status":"Approved"}`, wantStatus: http.StatusForbidden},
		{name: "missing application", id: primitive.NewObjectID(), caller: f.owner, body: `{"status":"Approved"}`, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStatus = ""
			w := doJSON(r, http.MethodPatch, "/api/applications/"+tt.id.Hex(), tokenFor(t, tt.caller, user.RoleStudent), tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK && gotStatus != "" {
				t.Fatalf("status must not change on a rejected request")
			}
		})
	}
}

func TestDeleteApplicationHandler(t *testing.T) {
	for _, status := range []string{application.StatusPending, application.StatusApproved, application.StatusRejected} {
		t.Run(status, func(t *testing.T) {
			f := newApplicationFixture()
			a := f.pending()
			a.Status = status

			deleted := false
			f.applications.getFn = func(ctx context.Context, id primitive.ObjectID) (application.Application, error) {
				return a, nil
			}
			f.applications.deleteFn = func(ctx context.Context, id primitive.ObjectID) error {
				deleted = true
				return nil
			}

			r := setupRouter(http.MethodDelete, "/api/applications/:id", f.handler().Delete)

			w := doJSON(r, http.MethodDelete, "/api/applications/"+a.ID.Hex(), tokenFor(t, f.owner, user.RoleStudent), "")
			if w.Code != http.StatusForbidden {
				t.Fatalf("non-submitter: got status %d, want 403", w.Code)
			}

			w = doJSON(r, http.MethodDelete, "/api/applications/"+a.ID.Hex(), tokenFor(t, f.tutor.ID, user.RoleTutor), "")

			want := http.StatusBadRequest
			if status == application.StatusPending {
				want = http.StatusOK
			}
			if w.Code != want {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
			}
			if deleted != (status == application.StatusPending) {
				t.Fatalf("deleted=%v for status %s", deleted, status)
			}
		})
	}
}

func TestOngoingHandler(t *testing.T) {
	f := newApplicationFixture()
	a := f.pending()
	a.Status = application.StatusApproved
	orphan := f.pending()
	orphan.TuitionID = primitive.NewObjectID()
	orphan.Status = application.StatusApproved

	var gotStatus *string
	f.applications.listByTutorFn = func(ctx context.Context, tutor primitive.ObjectID, status *string) ([]application.Application, error) {
		gotStatus = status
		return []application.Application{a, orphan}, nil
	}

	r := setupRouter(http.MethodGet, "/api/tutor/ongoing-tuitions", f.handler().Ongoing)
	w := doJSON(r, http.MethodGet, "/api/tutor/ongoing-tuitions", tokenFor(t, f.tutor.ID, user.RoleTutor), "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if gotStatus == nil || *gotStatus != application.StatusApproved {
		t.Fatalf("expected Approved filter, got %v", gotStatus)
	}

	var resp struct {
		Tuitions []application.Ongoing `json:"tuitions"`
	}
	decode(t, w, &resp)

	// the orphaned application's tuition no longer exists
	if len(resp.Tuitions) != 1 {
		t.Fatalf("got %d ongoing tuitions, want 1", len(resp.Tuitions))
	}
	if resp.Tuitions[0].ID != f.tuition.ID || resp.Tuitions[0].Application.ID != a.ID {
		t.Fatalf("unexpected join %+v", resp.Tuitions[0])
	}
}
