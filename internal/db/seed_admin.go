package db

import (
	"context"
	"errors"
	"strings"

	"github.com/etuitionbd/server/internal/config"
	"github.com/etuitionbd/server/internal/domain/user"
	"github.com/etuitionbd/server/internal/security"
)

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the configured admin account on first boot. It is a no-op when
// no admin credentials are configured or the account already exists.
func EnsureAdminUser(ctx context.Context, users AdminStore, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	if email == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := users.GetByEmail(ctx, email)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = users.Create(ctx, user.NewPasswordUser(cfg.AdminName, email, hash, user.RoleAdmin, ""))

	if errors.Is(err, user.ErrEmailTaken) {
		// another instance won the race
		return nil
	}
	return err
}
