package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/etuitionbd/server/internal/domain/user"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const latestTutorsLimit = 6

type TutorDirectory interface {
	List(ctx context.Context, role *string, limit int) ([]user.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error)
}

type TutorsHandler struct {
	users TutorDirectory
}

func NewTutorsHandler(users TutorDirectory) *TutorsHandler {
	return &TutorsHandler{users: users}
}

func (h *TutorsHandler) List(ctx *gin.Context) {
	h.list(ctx, 0)
}

func (h *TutorsHandler) Latest(ctx *gin.Context) {
	h.list(ctx, latestTutorsLimit)
}

func (h *TutorsHandler) list(ctx *gin.Context, limit int) {
	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	role := user.RoleTutor
	items, err := h.users.List(cctx, &role, limit)
	if err != nil {
		RespondInternal(ctx, "Could not list tutors", err)
		return
	}

	respondListing(ctx, tutorsVersion(fmt.Sprintf("tutors:%d", limit), items), gin.H{"tutors": publicProfiles(items)})
}

func (h *TutorsHandler) Get(ctx *gin.Context) {
	id, ok := ObjectIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not load tutor", err)
		return
	}
	if err != nil || u.Role != user.RoleTutor {
		RespondNotFound(ctx, "Tutor not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tutor": u.Public()})
}

func publicProfiles(users []user.User) []user.Public {
	out := make([]user.Public, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
