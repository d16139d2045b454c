package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/etuitionbd/server/internal/auth"
	"github.com/etuitionbd/server/internal/domain/user"
	"github.com/etuitionbd/server/internal/http/middlewares"
	"github.com/etuitionbd/server/internal/security"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch user.Patch) (user.User, error)
}

type TokenIssuer interface {
	GenerateToken(userID, email, role string) (string, error)
}

type IdentityVerifier interface {
	VerifyIdentity(idToken string) (auth.Identity, error)
}

type AuthHandler struct {
	users    UserStore
	jwt      TokenIssuer
	identity IdentityVerifier
}

func NewAuthHandler(users UserStore, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

// WithIdentityVerifier makes Google login require a provider-signed ID token whose
// email matches the request.
func (h *AuthHandler) WithIdentityVerifier(v IdentityVerifier) *AuthHandler {
	h.identity = v
	return h
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	email := req.Email.String()

	_, err := h.users.GetByEmail(cctx, email)
	if err == nil {
		RespondBadRequest(ctx, "User already exists", nil)
		return
	}
	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Registration failed", err)
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondInternal(ctx, "Registration failed", err)
		return
	}

	u, err := h.users.Create(cctx, user.NewPasswordUser(strings.TrimSpace(req.Name), email, hash, req.Role, req.Phone))
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "User already exists", nil)
			return
		}
		RespondInternal(ctx, "Registration failed", err)
		return
	}

	token, err := h.jwt.GenerateToken(u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		RespondInternal(ctx, "Could not generate token", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    u.Public(),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, req.Email.String())
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "Invalid credentials")
			return
		}
		RespondInternal(ctx, "Login failed", err)
		return
	}

	// federated accounts have no hash and fail here too
	if err := security.CheckPassword(found.PasswordHash, req.Password); err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	if found.Status == user.StatusSuspended {
		RespondForbidden(ctx, "Account suspended")
		return
	}

	token, err := h.jwt.GenerateToken(found.ID.Hex(), found.Email, found.Role)
	if err != nil {
		RespondInternal(ctx, "Could not generate token", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    found.Public(),
	})
}

// Google upserts the user behind a provider identity. Without a verifier the client's
// claimed identity is trusted as is.
func (h *AuthHandler) Google(ctx *gin.Context) {
	var req user.FederatedLoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email := req.Email.String()

	if h.identity != nil {
		id, err := h.identity.VerifyIdentity(req.IDToken)
		if err != nil || id.Email != email {
			RespondUnauthorized(ctx, "Invalid identity token")
			return
		}
		if req.Name == "" {
			req.Name = id.Name
		}
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		u, err = h.users.Create(cctx, user.NewFederatedUser(req.Name, email, user.RoleStudent, "", req.ProfileImage))
		if errors.Is(err, user.ErrEmailTaken) {
			u, err = h.users.GetByEmail(cctx, email)
		}
		if err != nil {
			RespondInternal(ctx, "Google login failed", err)
			return
		}
	case err != nil:
		RespondInternal(ctx, "Google login failed", err)
		return
	}

	if u.Status == user.StatusSuspended {
		RespondForbidden(ctx, "Account suspended")
		return
	}

	token, err := h.jwt.GenerateToken(u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		RespondInternal(ctx, "Could not generate token", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Google login successful",
		"token":   token,
		"user":    u.Public(),
	})
}

// SaveProfile merges into the account registered under the email, which must be the
// caller's own unless the caller is an admin.
func (h *AuthHandler) SaveProfile(ctx *gin.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	var req user.SaveProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	email := req.Email.String()

	existing, err := h.users.GetByEmail(cctx, email)
	if err == nil {
		if role, _ := middlewares.RoleFromContext(ctx); existing.ID != caller && role != user.RoleAdmin {
			RespondForbidden(ctx, "You can only update your own profile")
			return
		}

		patch := user.Patch{
			Name:         strings.TrimSpace(req.Name),
			Phone:        req.Phone,
			Role:         req.Role,
			ProfileImage: req.ProfileImage,
		}

		updated := existing
		if !patch.Empty() {
			updated, err = h.users.Update(cctx, existing.ID, patch)
			if err != nil {
				RespondInternal(ctx, "Could not save profile", err)
				return
			}
		}

		ctx.JSON(http.StatusOK, gin.H{
			"message": "Profile updated",
			"user":    updated.Public(),
		})
		return
	}
	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not save profile", err)
		return
	}

	created, err := h.users.Create(cctx, user.NewFederatedUser(strings.TrimSpace(req.Name), email, req.Role, req.Phone, req.ProfileImage))
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "User already exists", nil)
			return
		}
		RespondInternal(ctx, "Could not save profile", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Profile created",
		"user":    created.Public(),
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx, readTimeout)
	defer cancel()

	// the token outlives a deleted account
	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not load user", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u.Public()})
}

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	id, ok := callerID(ctx)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeCtx(ctx, writeTimeout)
	defer cancel()

	u, err := h.users.Update(cctx, id, user.Patch{
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not update profile", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    u.Public(),
	})
}
