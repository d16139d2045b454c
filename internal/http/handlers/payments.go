package handlers

import (
	"context"
	"net/http"

	"github.com/etuitionbd/server/internal/domain/application"
	"github.com/etuitionbd/server/internal/domain/payment"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStore interface {
	Create(ctx context.Context, p payment.Payment) (payment.Payment, error)
	ListByStudent(ctx context.Context, student primitive.ObjectID) ([]payment.Payment, error)
	ListByTutor(ctx context.Context, tutor primitive.ObjectID) ([]payment.Payment, error)
}

// ApplicationApprover is the slice of the application store a payment touches.
type ApplicationApprover interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (application.Application, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (application.Application, error)
}

// PaymentObserver is notified after a payment is stored.
type PaymentObserver interface {
	PaymentRecorded()
}

type PaymentsHandler struct {
	payments     PaymentStore
	applications ApplicationApprover
	observer     PaymentObserver
}

func NewPaymentsHandler(payments PaymentStore, applications ApplicationApprover, observer PaymentObserver) *PaymentsHandler {
	return &PaymentsHandler{
		payments:     payments,
		applications: applications,
		observer:     observer,
	}
}

// Record stores the payment, then approves the application in a second, independent
// write. A failed second write leaves the payment in place and answers 500.
func (h *PaymentsHandler) Record(ctx *gin.Context) {
	payer, ok := callerID(ctx)
	if !ok {
		return
	}

	var req payment.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	appID, _ := primitive.ObjectIDFromHex(req.ApplicationID)
	tutorID := primitive.NilObjectID
	if req.TutorID != "" {
		tutorID, _ = primitive.ObjectIDFromHex(req.TutorID)
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	app, err := h.applications.GetByID(cctx, appID)
	if err != nil {
		respondApplicationErr(ctx, err)
		return
	}

	p, err := h.payments.Create(cctx, payment.New(app, payer, tutorID, req.Amount))
	if err != nil {
		RespondInternal(ctx, "Could not record payment", err)
		return
	}

	if h.observer != nil {
		h.observer.PaymentRecorded()
	}

	if _, err := h.applications.SetStatus(cctx, app.ID, application.StatusApproved); err != nil {
		RespondInternal(ctx, "Payment recorded but application approval failed", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Payment successful",
		"payment": p,
	})
}

func (h *PaymentsHandler) Mine(ctx *gin.Context) {
	h.summary(ctx, h.payments.ListByStudent)
}

func (h *PaymentsHandler) TutorRevenue(ctx *gin.Context) {
	h.summary(ctx, h.payments.ListByTutor)
}

func (h *PaymentsHandler) summary(ctx *gin.Context, list func(context.Context, primitive.ObjectID) ([]payment.Payment, error)) {
	id, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	items, err := list(cctx, id)
	if err != nil {
		RespondInternal(ctx, "Could not list payments", err)
		return
	}

	ctx.JSON(http.StatusOK, payment.Summarize(items))
}
