package payment

import (
	"fmt"
	"time"

	"github.com/etuitionbd/server/internal/domain/application"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusSuccess is the only status a payment is created with; no failure path is modelled.
const StatusSuccess = "Success"

type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ApplicationID primitive.ObjectID `bson:"applicationId" json:"applicationId"`
	TuitionID     primitive.ObjectID `bson:"tuitionId" json:"tuitionId"`
	TutorID       primitive.ObjectID `bson:"tutorId" json:"tutorId"`
	StudentID     primitive.ObjectID `bson:"studentId" json:"studentId"`
	Amount        Amount             `bson:"amount" json:"amount"`
	Status        string             `bson:"status" json:"status"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

type CreateRequest struct {
	ApplicationID string `json:"applicationId" binding:"required,objectid"`
	Amount        Amount `json:"amount" binding:"required,gt=0"`
	TutorID       string `json:"tutorId" binding:"omitempty,objectid"`
}

// TransactionID derives the transaction identifier from the creation time.
func TransactionID(at time.Time) string {
	return fmt.Sprintf("TXN%d", at.UnixMilli())
}

// New builds the immutable payment record for an application. tutorID falls back to
// the application's tutor when zero.
func New(app application.Application, payer, tutorID primitive.ObjectID, amount Amount) Payment {
	now := time.Now().UTC()

	if tutorID.IsZero() {
		tutorID = app.TutorID
	}

	return Payment{
		ID:            primitive.NewObjectID(),
		ApplicationID: app.ID,
		TuitionID:     app.TuitionID,
		TutorID:       tutorID,
		StudentID:     payer,
		Amount:        amount,
		Status:        StatusSuccess,
		TransactionID: TransactionID(now),
		CreatedAt:     now,
	}
}

// Summary is a list of payments with its total.
type Summary struct {
	Payments []Payment `json:"payments"`
	Total    Amount    `json:"total"`
}

func Summarize(payments []Payment) Summary {
	if payments == nil {
		payments = []Payment{}
	}
	return Summary{Payments: payments, Total: Sum(payments)}
}
