package tuition

import (
	"errors"
	"math"
	"time"

	"github.com/etuitionbd/server/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	LatestLimit  = 6

	// MaxPage keeps (page-1)*limit inside int for every allowed limit.
	MaxPage = math.MaxInt / MaxLimit
)

var ErrNotFound = errors.New("tuition not found")

type Tuition struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Subject     string             `bson:"subject" json:"subject"`
	Class       string             `bson:"class" json:"class"`
	Location    string             `bson:"location" json:"location"`
	Budget      float64            `bson:"budget" json:"budget"`
	Schedule    string             `bson:"schedule" json:"schedule"`
	Description string             `bson:"description" json:"description"`
	PostedBy    primitive.ObjectID `bson:"postedBy" json:"postedBy"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OwnedBy reports whether userID is the poster. IDs are compared in hex form.
func (t Tuition) OwnedBy(userID string) bool {
	return t.PostedBy.Hex() == userID
}

// WithPoster is the single tuition view, joined at read time.
type WithPoster struct {
	Tuition
	PostedByUser *user.Summary `json:"postedByUser"`
}

type CreateRequest struct {
	Subject     string  `json:"subject" binding:"required,max=120"`
	Class       string  `json:"class" binding:"required,max=60"`
	Location    string  `json:"location" binding:"required,max=120"`
	Budget      float64 `json:"budget" binding:"omitempty,min=0"`
	Schedule    string  `json:"schedule" binding:"omitempty,max=200"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
}

// UpdateRequest is a partial update; nil fields are left as stored.
type UpdateRequest struct {
	Subject     *string  `json:"subject" binding:"omitempty,min=1,max=120"`
	Class       *string  `json:"class" binding:"omitempty,min=1,max=60"`
	Location    *string  `json:"location" binding:"omitempty,min=1,max=120"`
	Budget      *float64 `json:"budget" binding:"omitempty,min=0"`
	Schedule    *string  `json:"schedule" binding:"omitempty,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
}

// Apply merges the supplied fields into t and stamps updatedAt.
func (r UpdateRequest) Apply(t *Tuition, now time.Time) {
	if r.Subject != nil {
		t.Subject = *r.Subject
	}
	if r.Class != nil {
		t.Class = *r.Class
	}
	if r.Location != nil {
		t.Location = *r.Location
	}
	if r.Budget != nil {
		t.Budget = *r.Budget
	}
	if r.Schedule != nil {
		t.Schedule = *r.Schedule
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	t.UpdatedAt = now
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// IsModerationStatus reports whether an admin may move a posting to status.
func IsModerationStatus(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

func NewFromCreateRequest(req CreateRequest, owner primitive.ObjectID) Tuition {
	now := time.Now().UTC()

	return Tuition{
		ID:          primitive.NewObjectID(),
		Subject:     req.Subject,
		Class:       req.Class,
		Location:    req.Location,
		Budget:      req.Budget,
		Schedule:    req.Schedule,
		Description: req.Description,
		PostedBy:    owner,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
