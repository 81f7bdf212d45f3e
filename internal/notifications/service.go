package notifications

import (
	"context"
	"log/slog"
	"strings"

	"github.com/brewops/brewops/internal/shared"
)

// Service exposes the notification inbox.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns the reader's notifications. Limit is clamped to MaxLimit.
func (s *Service) List(ctx context.Context, filter Filter) ([]Notification, error) {
	if filter.Limit <= 0 || filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}
	return s.repo.List(ctx, filter)
}

// Get returns one notification visible to the reader.
func (s *Service) Get(ctx context.Context, userID, id int64) (Notification, error) {
	return s.repo.Get(ctx, userID, id)
}

// UnreadCount counts the reader's unread notifications.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// Create stores a notification. A nil UserID broadcasts it.
func (s *Service) Create(ctx context.Context, in Input) (Notification, error) {
	n := Notification{
		UserID:   in.UserID,
		Title:    strings.TrimSpace(in.Title),
		Body:     strings.TrimSpace(in.Body),
		Type:     strings.TrimSpace(in.Type),
		Priority: in.Priority,
	}
	if n.Title == "" || n.Body == "" {
		return Notification{}, shared.NewKindError(shared.ErrValidation, "Title and message are required")
	}
	if n.Type == "" {
		n.Type = TypeGeneral
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	if !n.Priority.Valid() {
		return Notification{}, shared.NewValidationError("priority", "must be one of low, medium, high, urgent")
	}
	created, err := s.repo.Insert(ctx, n)
	if err != nil {
		return Notification{}, err
	}
	s.logger.Debug("notification created", slog.Int64("notification_id", created.ID), slog.String("type", created.Type),
		slog.Bool("broadcast", created.Broadcast()))
	return created, nil
}

// MarkRead marks one notification read for the reader.
func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks everything the reader can see as read.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes a notification visible to the reader. Broadcasts need canBroadcast.
func (s *Service) Delete(ctx context.Context, userID, id int64, canBroadcast bool) error {
	n, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if n.Broadcast() && !canBroadcast {
		return ErrBroadcastDelete
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}
