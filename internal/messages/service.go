package messages

import (
	"context"
	"log/slog"
	"strings"
)

// Service handles direct messaging between staff.
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

// Conversations lists the caller's threads.
func (s *Service) Conversations(ctx context.Context, userID int64) ([]Conversation, error) {
	return s.repo.Conversations(ctx, userID)
}

// Chat returns the thread between the caller and other.
func (s *Service) Chat(ctx context.Context, userID, otherID int64) ([]Message, error) {
	return s.repo.Chat(ctx, userID, otherID)
}

// Send delivers a message from the caller.
func (s *Service) Send(ctx context.Context, senderID int64, in SendInput) (Message, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" || in.ReceiverID <= 0 {
		return Message{}, ErrEmptyMessage
	}
	if in.ReceiverID == senderID {
		return Message{}, ErrSelfMessage
	}
	m, err := s.repo.Insert(ctx, Message{SenderID: senderID, ReceiverID: in.ReceiverID, Body: body})
	if err != nil {
		return Message{}, err
	}
	s.logger.Debug("message sent", slog.Int64("message_id", m.ID), slog.Int64("sender_id", senderID),
		slog.Int64("receiver_id", in.ReceiverID))
	return m, nil
}

// MarkRead marks one received message as read.
func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMessageNotFound
	}
	return nil
}

// MarkAllRead marks everything received from senderID as read.
func (s *Service) MarkAllRead(ctx context.Context, userID, senderID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, senderID)
}
