package users

import (
	"context"
	"log/slog"
	"strings"

	"github.com/brewops/brewops/internal/auth"
	"github.com/brewops/brewops/internal/shared"
)

// Service handles profile and account maintenance.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Profile returns the full account of the caller.
func (s *Service) Profile(ctx context.Context, p shared.Principal) (User, error) {
	return s.repo.Get(ctx, p.UserID)
}

// BasicProfile returns the trimmed profile of the caller.
func (s *Service) BasicProfile(ctx context.Context, p shared.Principal) (BasicProfile, error) {
	u, err := s.repo.Get(ctx, p.UserID)
	if err != nil {
		return BasicProfile{}, err
	}
	return basicOf(u), nil
}

// UpdateProfile edits the caller's name, email and phone.
func (s *Service) UpdateProfile(ctx context.Context, p shared.Principal, in ProfileInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	return s.repo.UpdateProfile(ctx, p.UserID, in)
}

// ChangePassword verifies the current password before storing the new one.
func (s *Service) ChangePassword(ctx context.Context, p shared.Principal, in PasswordInput) error {
	if len(in.NewPassword) < MinNewPasswordLength {
		return shared.NewValidationError("new_password", "New password must be at least 8 characters long")
	}
	u, err := s.repo.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, in.CurrentPassword) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return err
	}
	s.logger.Info("password changed", slog.Int64("user_id", u.ID))
	return nil
}

// List returns accounts matching search.
func (s *Service) List(ctx context.Context, search string) ([]User, error) {
	return s.repo.List(ctx, search)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// SetActive enables or disables an account other than the caller's.
func (s *Service) SetActive(ctx context.Context, actor shared.Principal, id int64, active bool) error {
	if !active && actor.UserID == id {
		return ErrSelfDeactivation
	}
	ok, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !ok {
		return auth.ErrUserNotFound
	}
	s.logger.Info("user active flag changed", slog.Int64("user_id", id), slog.Bool("active", active),
		slog.Int64("actor_id", actor.UserID))
	return nil
}
