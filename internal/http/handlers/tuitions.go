package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/etuitionbd/server/internal/domain/tuition"
	"github.com/etuitionbd/server/internal/domain/user"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TuitionStore interface {
	Create(ctx context.Context, t tuition.Tuition) (tuition.Tuition, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (tuition.Tuition, error)
	List(ctx context.Context, f tuition.ListFilter) ([]tuition.Tuition, int64, error)
	ListByStatus(ctx context.Context, status *string, limit int) ([]tuition.Tuition, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]tuition.Tuition, error)
	Update(ctx context.Context, id primitive.ObjectID, req tuition.UpdateRequest) (tuition.Tuition, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (tuition.Tuition, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserGetter resolves the poster of a tuition for the detail view.
type UserGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error)
}

type TuitionsHandler struct {
	tuitions TuitionStore
	users    UserGetter
}

func NewTuitionsHandler(tuitions TuitionStore, users UserGetter) *TuitionsHandler {
	return &TuitionsHandler{tuitions: tuitions, users: users}
}

func (h *TuitionsHandler) Create(ctx *gin.Context) {
	owner, ok := callerID(ctx)
	if !ok {
		return
	}

	var req tuition.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	t, err := h.tuitions.Create(cctx, tuition.NewFromCreateRequest(req, owner))
	if err != nil {
		RespondInternal(ctx, "Could not post tuition", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Tuition posted successfully",
		"tuition": t,
	})
}

// List is the public catalogue: Approved postings only, filtered and paginated.
func (h *TuitionsHandler) List(ctx *gin.Context) {
	f := tuition.ParseListQuery(
		ctx.Query("page"),
		ctx.Query("limit"),
		ctx.Query("subject"),
		ctx.Query("location"),
		ctx.Query("class"),
		ctx.Query("sortBy"),
		ctx.Query("order"),
	)

	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	items, total, err := h.tuitions.List(cctx, f)
	if err != nil {
		RespondInternal(ctx, "Could not list tuitions", err)
		return
	}

	page := tuition.NewPagination(f, total)
	v := tuitionsVersion("tuitions:"+ctx.Request.URL.RawQuery, items)
	v.page(page)

	respondListing(ctx, v, gin.H{
		"tuitions":   orEmpty(items),
		"pagination": page,
	})
}

func (h *TuitionsHandler) Latest(ctx *gin.Context) {
	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	approved := tuition.StatusApproved
	items, err := h.tuitions.ListByStatus(cctx, &approved, tuition.LatestLimit)
	if err != nil {
		RespondInternal(ctx, "Could not list tuitions", err)
		return
	}

	respondListing(ctx, tuitionsVersion("tuitions:latest", items), gin.H{"tuitions": orEmpty(items)})
}

func (h *TuitionsHandler) Get(ctx *gin.Context) {
	id, ok := ObjectIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	t, err := h.tuitions.GetByID(cctx, id)
	if err != nil {
		respondTuitionErr(ctx, err)
		return
	}

	view := tuition.WithPoster{Tuition: t}

	poster, err := h.users.GetByID(cctx, t.PostedBy)
	switch {
	case err == nil:
		s := poster.Summary()
		view.PostedByUser = &s
	case !errors.Is(err, user.ErrNotFound):
		// the posting is still worth returning without its poster
		slog.WarnContext(cctx, "poster lookup failed", "tuition_id", id.Hex(), "err", err)
	}

	ctx.JSON(http.StatusOK, gin.H{"tuition": view})
}

func (h *TuitionsHandler) Mine(ctx *gin.Context) {
	owner, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	items, err := h.tuitions.ListByOwner(cctx, owner)
	if err != nil {
		RespondInternal(ctx, "Could not list tuitions", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tuitions": orEmpty(items)})
}

func (h *TuitionsHandler) Update(ctx *gin.Context) {
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

	if !h.requireOwner(ctx, cctx, id, caller, "Not authorized to update this tuition") {
		return
	}

	var req tuition.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	t, err := h.tuitions.Update(cctx, id, req)
	if err != nil {
		respondTuitionErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Tuition updated successfully",
		"tuition": t,
	})
}

func (h *TuitionsHandler) Delete(ctx *gin.Context) {
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

	if !h.requireOwner(ctx, cctx, id, caller, "Not authorized to delete this tuition") {
		return
	}

	if err := h.tuitions.Delete(cctx, id); err != nil {
		respondTuitionErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Tuition deleted successfully"})
}

// Admin moderation

func (h *TuitionsHandler) ListPending(ctx *gin.Context) {
	pending := tuition.StatusPending
	h.listByStatus(ctx, &pending)
}

func (h *TuitionsHandler) ListAll(ctx *gin.Context) {
	h.listByStatus(ctx, nil)
}

func (h *TuitionsHandler) listByStatus(ctx *gin.Context, status *string) {
	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	items, err := h.tuitions.ListByStatus(cctx, status, 0)
	if err != nil {
		RespondInternal(ctx, "Could not list tuitions", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tuitions": orEmpty(items)})
}

func (h *TuitionsHandler) SetStatus(ctx *gin.Context) {
	id, ok := ObjectIDParam(ctx, "id")
	if !ok {
		return
	}

	var req tuition.StatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !tuition.IsModerationStatus(req.Status) {
		RespondBadRequest(ctx, "Invalid status", nil)
		return
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	t, err := h.tuitions.SetStatus(cctx, id, req.Status)
	if err != nil {
		respondTuitionErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Tuition " + req.Status,
		"tuition": t,
	})
}

// requireOwner loads the posting and answers 404/403 itself when the caller may not touch it.
func (h *TuitionsHandler) requireOwner(ctx *gin.Context, cctx context.Context, id, caller primitive.ObjectID, forbidden string) bool {
	t, err := h.tuitions.GetByID(cctx, id)
	if err != nil {
		respondTuitionErr(ctx, err)
		return false
	}

	if !t.OwnedBy(caller.Hex()) {
		RespondForbidden(ctx, forbidden)
		return false
	}
	return true
}
