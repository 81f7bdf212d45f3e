package users

import (
	"time"

	"github.com/brewops/brewops/internal/auth"
	"github.com/brewops/brewops/internal/shared"
)

// User is the account record shared with the auth module.
type User = auth.User

// BasicProfile is the trimmed profile shown in headers and menus.
type BasicProfile struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Phone      string    `json:"phone"`
	EmployeeID *string   `json:"employee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func basicOf(u User) BasicProfile {
	return BasicProfile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Phone: u.Phone,
		EmployeeID: u.EmployeeID, CreatedAt: u.CreatedAt}
}

// ProfileInput updates the caller's own contact details.
type ProfileInput struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"max=20"`
}

// PasswordInput changes the caller's password.
type PasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ActiveInput toggles an account.
type ActiveInput struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// MinNewPasswordLength applies to password changes.
const MinNewPasswordLength = 8

var (
	// ErrWrongPassword is returned when the current password does not match.
	ErrWrongPassword = shared.NewKindError(shared.ErrValidation, "Current password is incorrect")
	// ErrSelfDeactivation stops an account from disabling itself.
	ErrSelfDeactivation = shared.NewKindError(shared.ErrValidation, "You cannot deactivate your own account")
)
