package labeling

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"photolabel/internal/bootstrap/logging"
	domain "photolabel/internal/domain/labeling"
	"photolabel/internal/ports"
)

// ProvisionUser creates or updates an account with the given role and
// password. Workers claiming tasks are auto-created as labelers; this is
// the path for reviewer and admin accounts.
func (s *Service) ProvisionUser(ctx context.Context, username, password string, role domain.Role) error {
	if !domain.ValidRole(string(role)) {
		return fmt.Errorf("provision user %s: unknown role %q", username, role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("provision user %s: %w", username, err)
	}
	if err := s.repo.UpsertUserAccount(ctx, username, role, string(hash), true); err != nil {
		return err
	}
	logging.Info(ctx, "user provisioned", slog.String("user", username), slog.String("role", string(role)))
	return nil
}

// Authenticate verifies a username and password. Disabled accounts fail
// even with the right password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (ports.User, error) {
	user, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return ports.User{}, err
	}
	if !user.Enabled {
		return ports.User{}, fmt.Errorf("authenticate %s: %w", username, domain.ErrUserDisabled)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ports.User{}, fmt.Errorf("authenticate %s: %w", username, domain.ErrPermissionDenied)
	}
	return user, nil
}

// SetUserEnabled toggles an account. Disabling does not release tasks the
// user holds; combine with the unlock tooling when needed.
func (s *Service) SetUserEnabled(ctx context.Context, username string, enabled bool) error {
	return s.repo.SetUserEnabled(ctx, username, enabled)
}

// ListUsers returns every account with its counters for the progress
// report.
func (s *Service) ListUsers(ctx context.Context) ([]ports.User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one account.
func (s *Service) GetUser(ctx context.Context, username string) (ports.User, error) {
	return s.repo.GetUser(ctx, username)
}
