package messages

import (
	"time"

	"github.com/brewops/brewops/internal/shared"
)

// Message is a direct message between two users.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Body       string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"timestamp"`
}

// Conversation summarises the latest exchange with one counterpart.
type Conversation struct {
	CounterpartID   int64     `json:"user_id"`
	CounterpartName string    `json:"name"`
	CounterpartRole string    `json:"role"`
	LastMessageID   int64     `json:"id"`
	LastSenderID    int64     `json:"sender_id"`
	Body            string    `json:"body"`
	Read            bool      `json:"read"`
	Unread          bool      `json:"unread"`
	UnreadCount     int       `json:"unread_count"`
	Timestamp       time.Time `json:"timestamp"`
}

// SendInput is the payload of POST /send.
type SendInput struct {
	ReceiverID int64  `json:"receiver_id" validate:"required,gt=0"`
	Body       string `json:"message" validate:"required,max=2000"`
}

var (
	// ErrMessageNotFound covers unknown ids and messages addressed to someone else.
	ErrMessageNotFound = shared.NewKindError(shared.ErrNotFound, "Message not found")
	// ErrRecipientNotFound is returned when the receiver does not exist.
	ErrRecipientNotFound = shared.NewKindError(shared.ErrNotFound, "Recipient not found")
	// ErrSelfMessage rejects messages to oneself.
	ErrSelfMessage = shared.NewKindError(shared.ErrValidation, "You cannot message yourself")
	// ErrEmptyMessage rejects blank bodies.
	ErrEmptyMessage = shared.NewKindError(shared.ErrValidation, "Missing receiver or message")
)
