// Package bootstrap handles one-time initialization tasks for the application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/aelshahawy/dokan/internal"
	"github.com/aelshahawy/dokan/internal/auth"
	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/repository"
)

// EnsureAdmin creates the initial admin account if it doesn't exist.
// It is idempotent and safe to call on every startup.
//
// When no admin email or password is configured it logs a warning and
// skips, which keeps local development friction-free.
func EnsureAdmin(ctx context.Context, repo *repository.Store, cfg internal.AdminConfig, logger *slog.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		logger.Warn("bootstrap: skipping admin creation, ADMIN_EMAIL or ADMIN_PASSWORD not set",
			slog.String("hint", "set both to create an admin account on first startup"),
		)
		return nil
	}

	existing, err := repo.GetUserByEmail(ctx, cfg.Email)
	if err == nil && existing.ID.Valid {
		logger.Info("bootstrap: admin account already exists", slog.String("email", cfg.Email))
		return nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user, err := repo.CreateUser(ctx, repository.CreateUserParams{
		Email:        cfg.Email,
		Name:         "Admin",
		PasswordHash: hash,
		Role:         string(domain.RoleAdmin),
	})
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info("bootstrap: admin account created",
		slog.String("email", cfg.Email),
		slog.String("user_id", domain.UUIDString(user.ID)),
	)
	return nil
}
