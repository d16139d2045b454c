package application

import (
	"errors"
	"time"

	"github.com/etuitionbd/server/internal/domain/tuition"
	"github.com/etuitionbd/server/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

var (
	ErrNotFound       = errors.New("application not found")
	ErrAlreadyApplied = errors.New("tutor already applied to this tuition")
	ErrInvalidState   = errors.New("application is no longer pending")
)

type Application struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	TuitionID      primitive.ObjectID `bson:"tuitionId" json:"tuitionId"`
	TutorID        primitive.ObjectID `bson:"tutorId" json:"tutorId"`
	TutorName      string             `bson:"tutorName" json:"tutorName"`
	TutorEmail     string             `bson:"tutorEmail" json:"tutorEmail"`
	TutorImage     string             `bson:"tutorImage" json:"tutorImage"`
	Qualifications string             `bson:"qualifications" json:"qualifications"`
	Experience     string             `bson:"experience" json:"experience"`
	ExpectedSalary float64            `bson:"expectedSalary" json:"expectedSalary"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (a Application) SubmittedBy(userID string) bool {
	return a.TutorID.Hex() == userID
}

func (a Application) Deletable() bool {
	return a.Status == StatusPending
}

type CreateRequest struct {
	TuitionID      string  `json:"tuitionId" binding:"required,objectid"`
	Qualifications string  `json:"qualifications" binding:"omitempty,max=2000"`
	Experience     string  `json:"experience" binding:"omitempty,max=2000"`
	ExpectedSalary float64 `json:"expectedSalary" binding:"omitempty,min=0"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Approved Rejected"`
}

// AppliedTutor pairs an application with the tutor's current profile.
type AppliedTutor struct {
	Application Application  `json:"application"`
	Tutor       *user.Public `json:"tutor"`
}

// Ongoing is a tuition the tutor was approved for, with the approving application attached.
type Ongoing struct {
	tuition.Tuition
	Application Application `json:"application"`
}

// NewFromCreateRequest snapshots the tutor's display fields so later profile edits
// leave the historical record untouched.
func NewFromCreateRequest(req CreateRequest, tuitionID primitive.ObjectID, tutor user.User) Application {
	now := time.Now().UTC()
	return Application{
		ID:             primitive.NewObjectID(),
		TuitionID:      tuitionID,
		TutorID:        tutor.ID,
		TutorName:      tutor.Name,
		TutorEmail:     tutor.Email,
		TutorImage:     tutor.ProfileImage,
		Qualifications: req.Qualifications,
		Experience:     req.Experience,
		ExpectedSalary: req.ExpectedSalary,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
