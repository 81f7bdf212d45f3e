package notifications

import (
	"time"

	"github.com/brewops/brewops/internal/shared"
)

// Priority ranks how prominently a notification is shown.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Notification types raised by the system itself.
const (
	TypeGeneral  = "general"
	TypePayment  = "payment"
	TypeReminder = "reminder"
)

// Notification is addressed to one user or, with a nil UserID, to everyone.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Type      string    `json:"type"`
	Priority  Priority  `json:"priority"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"timestamp"`
}

// Broadcast reports whether the notification targets every user.
func (n Notification) Broadcast() bool { return n.UserID == nil }

// Input creates a notification.
type Input struct {
	UserID   *int64   `json:"user_id" validate:"omitempty,gt=0"`
	Title    string   `json:"title" validate:"required,max=200"`
	Body     string   `json:"message" validate:"required"`
	Type     string   `json:"type" validate:"max=50"`
	Priority Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// Filter narrows List for one reader.
type Filter struct {
	UserID     int64
	UnreadOnly bool
	Type       string
	Limit      int
}

// MaxLimit caps List page size.
const MaxLimit = 200

var (
	// ErrNotificationNotFound covers unknown ids and notifications addressed to someone else.
	ErrNotificationNotFound = shared.NewKindError(shared.ErrNotFound, "Notification not found")
	// ErrBroadcastDelete blocks readers without broadcast rights from deleting broadcasts.
	ErrBroadcastDelete = shared.NewKindError(shared.ErrForbidden, "Only broadcasters can delete broadcast notifications")
)
