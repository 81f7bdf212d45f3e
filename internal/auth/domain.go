package auth

import (
	"time"

	"github.com/brewops/brewops/internal/shared"
)

// User represents an account able to sign in.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone"`
	EmployeeID   *string   `json:"employee_id"`
	SupplierID   *int64    `json:"supplier_id"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterInput creates a new account.
type RegisterInput struct {
	Name       string `json:"name" validate:"required,min=3,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"omitempty,oneof=admin manager staff operator"`
	Phone      string `json:"phone" validate:"max=20"`
	EmployeeID string `json:"employee_id" validate:"max=50"`
	SupplierID *int64 `json:"supplier_id" validate:"omitempty,gt=0"`
}

// LoginInput carries credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is the result of a successful login or registration.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 6

var (
	// ErrUserNotFound is returned for unknown user ids.
	ErrUserNotFound = shared.NewKindError(shared.ErrNotFound, "User not found")
	// ErrEmailTaken is returned when another account owns the email.
	ErrEmailTaken = shared.NewKindError(shared.ErrConflict, "User already exists with this email")
	// ErrAccountInactive blocks deactivated accounts from signing in.
	ErrAccountInactive = shared.NewKindError(shared.ErrUnauthorized, "Account is deactivated")
	// ErrInvalidToken covers malformed, expired and revoked tokens.
	ErrInvalidToken = shared.NewKindError(shared.ErrUnauthorized, "Invalid or expired token")
	// ErrMissingToken is returned when no bearer token is presented.
	ErrMissingToken = shared.NewKindError(shared.ErrUnauthorized, "Access denied. No token provided.")
)
