package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/etuitionbd/server/internal/domain/analytics"
	"github.com/etuitionbd/server/internal/domain/payment"
	"github.com/etuitionbd/server/internal/domain/user"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminUserStore interface {
	List(ctx context.Context, role *string, limit int) ([]user.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch user.Patch) (user.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByRole(ctx context.Context) (analytics.Counts, error)
}

type StatusCounter interface {
	CountByStatus(ctx context.Context) (analytics.Counts, error)
}

type PaymentLedger interface {
	ListAll(ctx context.Context) ([]payment.Payment, error)
	Stats(ctx context.Context) (int64, payment.Amount, error)
}

type AdminHandler struct {
	users        AdminUserStore
	tuitions     StatusCounter
	applications StatusCounter
	payments     PaymentLedger
}

func NewAdminHandler(users AdminUserStore, tuitions, applications StatusCounter, payments PaymentLedger) *AdminHandler {
	return &AdminHandler{
		users:        users,
		tuitions:     tuitions,
		applications: applications,
		payments:     payments,
	}
}

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	items, err := h.users.List(cctx, nil, 0)
	if err != nil {
		RespondInternal(ctx, "Could not list users", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": publicProfiles(items)})
}

func (h *AdminHandler) UpdateUser(ctx *gin.Context) {
	id, ok := ObjectIDParam(ctx, "id")
	if !ok {
		return
	}

	var req user.AdminUpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	u, err := h.users.Update(cctx, id, user.Patch{
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		Role:         req.Role,
		Status:       req.Status,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		respondUserErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    u.Public(),
	})
}

func (h *AdminHandler) DeleteUser(ctx *gin.Context) {
	id, ok := ObjectIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	if err := h.users.Delete(cctx, id); err != nil {
		respondUserErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// Analytics is computed on every call.
func (h *AdminHandler) Analytics(ctx *gin.Context) {
	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	byRole, err := h.users.CountByRole(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not compute analytics", err)
		return
	}
	tuitions, err := h.tuitions.CountByStatus(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not compute analytics", err)
		return
	}
	applications, err := h.applications.CountByStatus(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not compute analytics", err)
		return
	}
	count, earned, err := h.payments.Stats(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not compute analytics", err)
		return
	}

	ctx.JSON(http.StatusOK, analytics.NewReport(byRole, tuitions, applications, count, earned))
}

func (h *AdminHandler) Transactions(ctx *gin.Context) {
	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	items, err := h.payments.ListAll(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list transactions", err)
		return
	}

	ctx.JSON(http.StatusOK, analytics.NewTransactions(items))
}

func respondUserErr(ctx *gin.Context, err error) {
	if errors.Is(err, user.ErrNotFound) {
		RespondNotFound(ctx, "User not found")
		return
	}
	RespondInternal(ctx, "User operation failed", err)
}
