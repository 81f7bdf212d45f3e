package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/brewops/brewops/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo        Repository
	tokens      *TokenIssuer
	revocations Revocations
	logger      *slog.Logger
}

// NewService constructs a new Service. revocations may be nil, which disables logout.
func NewService(repo Repository, tokens *TokenIssuer, revocations Revocations, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, revocations: revocations, logger: logger}
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, shared.ErrInvalidCredentials
		}
		return User{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return User{}, shared.ErrInvalidCredentials
	}
	if !u.IsActive {
		return User{}, ErrAccountInactive
	}
	return u, nil
}

// Login authenticates and issues a bearer token.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	u, err := s.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("user signed in", slog.Int64("user_id", u.ID))
	return s.issue(u)
}

// Register creates an account and returns a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if len(in.Password) < MinPasswordLength {
		return Session{}, shared.NewValidationError("password", "Password must be at least 6 characters")
	}
	role := shared.RoleStaff
	if in.Role != "" {
		role = shared.NormalizeRole(strings.ToLower(in.Role))
		if role == "" {
			return Session{}, shared.NewValidationError("role", "Role must be admin, manager, staff or operator")
		}
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}
	u := User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         role,
		Phone:        strings.TrimSpace(in.Phone),
		SupplierID:   in.SupplierID,
	}
	if id := strings.TrimSpace(in.EmployeeID); id != "" {
		u.EmployeeID = &id
	}
	if _, err := s.repo.FindByEmail(ctx, u.Email); err == nil {
		return Session{}, ErrEmailTaken
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Session{}, err
	}
	created, err := s.repo.Insert(ctx, u)
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("user registered", slog.Int64("user_id", created.ID), slog.String("role", created.Role))
	return s.issue(created)
}

// Me returns the account behind the principal.
func (s *Service) Me(ctx context.Context, p shared.Principal) (User, error) {
	return s.repo.FindByID(ctx, p.UserID)
}

// Logout revokes the principal's token for the remainder of its lifetime.
func (s *Service) Logout(ctx context.Context, p shared.Principal) error {
	if s.revocations == nil || p.TokenID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, p.TokenID, s.tokens.TTL()); err != nil {
		return err
	}
	s.logger.Info("user signed out", slog.Int64("user_id", p.UserID))
	return nil
}

func (s *Service) issue(u User) (Session, error) {
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
