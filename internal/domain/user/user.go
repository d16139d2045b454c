package user

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleStudent = "Student"
	RoleTutor   = "Tutor"
	RoleAdmin   = "Admin"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password,omitempty" json:"-"` // never expose hash in JSON
	Role         string             `bson:"role" json:"role"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	ProfileImage string             `bson:"profileImage" json:"profileImage"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Public is the profile shape returned by the auth endpoints.
type Public struct {
	ID           primitive.ObjectID `json:"_id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	Phone        string             `json:"phone,omitempty"`
	ProfileImage string             `json:"profileImage"`
	Status       string             `json:"status,omitempty"`
}

func (u User) Public() Public {
	return Public{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
		Status:       u.Status,
	}
}

// Summary is the poster view joined onto a tuition.
type Summary struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	ProfileImage string             `bson:"profileImage" json:"profileImage"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
}

func IsRole(role string) bool {
	switch role {
	case RoleStudent, RoleTutor, RoleAdmin:
		return true
	}
	return false
}

// Patch carries the fields a profile edit may change. Empty strings are left untouched.
type Patch struct {
	Name         string
	Phone        string
	Role         string
	Status       string
	ProfileImage string
}

func (p Patch) Empty() bool {
	return p.Name == "" && p.Phone == "" && p.Role == "" && p.Status == "" && p.ProfileImage == ""
}

// Apply merges the non-empty fields of p into u.
func (p Patch) Apply(u *User) {
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Phone != "" {
		u.Phone = p.Phone
	}
	if p.Role != "" {
		u.Role = p.Role
	}
	if p.Status != "" {
		u.Status = p.Status
	}
	if p.ProfileImage != "" {
		u.ProfileImage = p.ProfileImage
	}
}

// NewPasswordUser builds an account created through email/password registration.
func NewPasswordUser(name, email, hash, role, phone string) User {
	if role == "" {
		role = RoleStudent
	}
	now := time.Now().UTC()
	return User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Phone:        phone,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewFederatedUser builds a passwordless account trusted from an identity provider.
func NewFederatedUser(name, email, role, phone, profileImage string) User {
	u := NewPasswordUser(name, email, "", role, phone)
	u.ProfileImage = profileImage
	return u
}

// Email is an address taken from a request body. It is trimmed and lowercased while
// decoding, before any validation runs.
type Email string

func (e *Email) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Email(strings.ToLower(strings.TrimSpace(raw)))
	return nil
}

func (e Email) String() string {
	return string(e)
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    Email  `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=Student Tutor"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
}

type LoginRequest struct {
	Email    Email  `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type FederatedLoginRequest struct {
	Email        Email  `json:"email" binding:"required,email"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`

	// IDToken is only checked when the server is configured with a Google client id.
	IDToken string `json:"idToken"`
}

type SaveProfileRequest struct {
	Name         string `json:"name"`
	Email        Email  `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"omitempty,max=32"`
	Role         string `json:"role" binding:"omitempty,oneof=Student Tutor"`
	ProfileImage string `json:"profileImage"`
}

type UpdateProfileRequest struct {
	Name         string `json:"name" binding:"omitempty,max=120"`
	Phone        string `json:"phone" binding:"omitempty,max=32"`
	ProfileImage string `json:"profileImage"`
}

type AdminUpdateRequest struct {
	Name         string `json:"name" binding:"omitempty,max=120"`
	Role         string `json:"role" binding:"omitempty,oneof=Student Tutor Admin"`
	Phone        string `json:"phone" binding:"omitempty,max=32"`
	Status       string `json:"status" binding:"omitempty,oneof=active suspended"`
	ProfileImage string `json:"profileImage"`
}
