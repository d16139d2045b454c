package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/etuitionbd/server/internal/domain/application"
	"github.com/etuitionbd/server/internal/domain/tuition"
	"github.com/etuitionbd/server/internal/domain/user"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationStore interface {
	Create(ctx context.Context, a application.Application) (application.Application, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (application.Application, error)
	ListByTutor(ctx context.Context, tutor primitive.ObjectID, status *string) ([]application.Application, error)
	ListByTuition(ctx context.Context, tuitionID primitive.ObjectID) ([]application.Application, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (application.Application, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TuitionFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (tuition.Tuition, error)
	GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]tuition.Tuition, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error)
	GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]user.User, error)
}

type ApplicationsHandler struct {
	applications ApplicationStore
	tuitions     TuitionFinder
	users        UserFinder
}

func NewApplicationsHandler(applications ApplicationStore, tuitions TuitionFinder, users UserFinder) *ApplicationsHandler {
	return &ApplicationsHandler{
		applications: applications,
		tuitions:     tuitions,
		users:        users,
	}
}

func (h *ApplicationsHandler) Submit(ctx *gin.Context) {
	tutorID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req application.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// the binding tag already validated the hex form
	tuitionID, _ := primitive.ObjectIDFromHex(req.TuitionID)

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	if _, err := h.tuitions.GetByID(cctx, tuitionID); err != nil {
		respondTuitionErr(ctx, err)
		return
	}

	tutor, err := h.users.GetByID(cctx, tutorID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not submit application", err)
		return
	}

	a, err := h.applications.Create(cctx, application.NewFromCreateRequest(req, tuitionID, tutor))
	if err != nil {
		if errors.Is(err, application.ErrAlreadyApplied) {
			RespondBadRequest(ctx, "Already applied", nil)
			return
		}
		RespondInternal(ctx, "Could not submit application", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":     "Application submitted successfully",
		"application": a,
	})
}

func (h *ApplicationsHandler) Mine(ctx *gin.Context) {
	tutorID, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	items, err := h.applications.ListByTutor(cctx, tutorID, nil)
	if err != nil {
		RespondInternal(ctx, "Could not list applications", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"applications": orEmpty(items)})
}

func (h *ApplicationsHandler) ListForTuition(ctx *gin.Context) {
	items, ok := h.ownedTuitionApplications(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"applications": items})
}

// AppliedTutors pairs each application with the tutor's current profile.
func (h *ApplicationsHandler) AppliedTutors(ctx *gin.Context) {
	items, ok := h.ownedTuitionApplications(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.TutorID)
	}

	tutors, err := h.users.GetManyByID(cctx, ids)
	if err != nil {
		RespondInternal(ctx, "Could not load tutors", err)
		return
	}

	byID := make(map[primitive.ObjectID]user.Public, len(tutors))
	for _, u := range tutors {
		byID[u.ID] = u.Public()
	}

	out := make([]application.AppliedTutor, 0, len(items))
	for _, a := range items {
		row := application.AppliedTutor{Application: a}
		if p, ok := byID[a.TutorID]; ok {
			row.Tutor = &p
		}
		out = append(out, row)
	}

	ctx.JSON(http.StatusOK, gin.H{"tutors": out})
}

func (h *ApplicationsHandler) ownedTuitionApplications(ctx *gin.Context) ([]application.Application, bool) {
	tuitionID, ok := ObjectIDParam(ctx, "id")
	if !ok {
		return nil, false
	}
	caller, ok := callerID(ctx)
	if !ok {
		return nil, false
	}

	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	t, err := h.tuitions.GetByID(cctx, tuitionID)
	if err != nil {
		respondTuitionErr(ctx, err)
		return nil, false
	}
	if !t.OwnedBy(caller.Hex()) {
		RespondForbidden(ctx, "Not authorized to view these applications")
		return nil, false
	}

	items, err := h.applications.ListByTuition(cctx, tuitionID)
	if err != nil {
		RespondInternal(ctx, "Could not list applications", err)
		return nil, false
	}
	return orEmpty(items), true
}

// SetStatus lets the tuition owner decide on an application.
func (h *ApplicationsHandler) SetStatus(ctx *gin.Context) {
	id, ok := ObjectIDParam(ctx, "id")
	if !ok {
		return
	}
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	a, err := h.applications.GetByID(cctx, id)
	if err != nil {
		respondApplicationErr(ctx, err)
		return
	}

	t, err := h.tuitions.GetByID(cctx, a.TuitionID)
	if err != nil {
		respondTuitionErr(ctx, err)
		return
	}
	if !t.OwnedBy(caller.Hex()) {
		RespondForbidden(ctx, "Not authorized to update this application")
		return
	}

	var req application.StatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.applications.SetStatus(cctx, id, req.Status)
	if err != nil {
		respondApplicationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Application " + req.Status,
		"application": updated,
	})
}

func (h *ApplicationsHandler) Delete(ctx *gin.Context) {
	id, ok := ObjectIDParam(ctx, "id")
	if !ok {
		return
	}
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	a, err := h.applications.GetByID(cctx, id)
	if err != nil {
		respondApplicationErr(ctx, err)
		return
	}
	if !a.SubmittedBy(caller.Hex()) {
		RespondForbidden(ctx, "Not authorized to delete this application")
		return
	}
	if !a.Deletable() {
		RespondBadRequest(ctx, "Invalid state: only pending applications can be withdrawn", nil)
		return
	}

	if err := h.applications.Delete(cctx, id); err != nil {
		respondApplicationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Application deleted successfully"})
}

// Ongoing lists the tuitions the caller has been approved for.
func (h *ApplicationsHandler) Ongoing(ctx *gin.Context) {
	tutorID, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	approved := application.StatusApproved
	apps, err := h.applications.ListByTutor(cctx, tutorID, &approved)
	if err != nil {
		RespondInternal(ctx, "Could not list ongoing tuitions", err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.TuitionID)
	}

	tuitions, err := h.tuitions.GetManyByID(cctx, ids)
	if err != nil {
		RespondInternal(ctx, "Could not list ongoing tuitions", err)
		return
	}

	byID := make(map[primitive.ObjectID]tuition.Tuition, len(tuitions))
	for _, t := range tuitions {
		byID[t.ID] = t
	}

	out := make([]application.Ongoing, 0, len(apps))
	for _, a := range apps {
		t, ok := byID[a.TuitionID]
		if !ok {
			continue
		}
		out = append(out, application.Ongoing{Tuition: t, Application: a})
	}

	ctx.JSON(http.StatusOK, gin.H{"tuitions": out})
}

func respondTuitionErr(ctx *gin.Context, err error) {
	if errors.Is(err, tuition.ErrNotFound) {
		RespondNotFound(ctx, "Tuition not found")
		return
	}
	RespondInternal(ctx, "Could not load tuition", err)
}

func respondApplicationErr(ctx *gin.Context, err error) {
	if errors.Is(err, application.ErrNotFound) {
		RespondNotFound(ctx, "Application not found")
		return
	}
	RespondInternal(ctx, "Application operation failed", err)
}
