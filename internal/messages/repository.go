package messages

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/shared"
)

// Repository defines persistence for direct messages.
type Repository interface {
	Conversations(ctx context.Context, userID int64) ([]Conversation, error)
	Chat(ctx context.Context, userID, otherID int64) ([]Message, error)
	Insert(ctx context.Context, m Message) (Message, error)
	MarkRead(ctx context.Context, receiverID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, receiverID, senderID int64) (int64, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	q db.DBTX
}

// NewRepository constructs PGRepository.
func NewRepository(q db.DBTX) *PGRepository {
	return &PGRepository{q: q}
}

// Conversations returns the latest message per counterpart, newest conversation first.
func (r *PGRepository) Conversations(ctx context.Context, userID int64) ([]Conversation, error) {
	rows, err := r.q.Query(ctx, `WITH threads AS (
	SELECT DISTINCT ON (other_id) other_id, id, sender_id, body, is_read, created_at
	FROM (
		SELECT m.*, CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS other_id
		FROM messages m
		WHERE m.sender_id = $1 OR m.receiver_id = $1
	) scoped
	ORDER BY other_id, created_at DESC, id DESC
), unread AS (
	SELECT sender_id AS other_id, COUNT(*) AS n
	FROM messages
	WHERE receiver_id = $1 AND NOT is_read
	GROUP BY sender_id
)
SELECT t.other_id, u.name, u.role, t.id, t.sender_id, t.body, t.is_read, COALESCE(un.n, 0), t.created_at
FROM threads t
JOIN users u ON u.id = t.other_id
LEFT JOIN unread un ON un.other_id = t.other_id
ORDER BY t.created_at DESC`, userID)
	if err != nil {
		return nil, shared.Persistence("list conversations", err)
	}
	defer rows.Close()
	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.CounterpartID, &c.CounterpartName, &c.CounterpartRole, &c.LastMessageID,
			&c.LastSenderID, &c.Body, &c.Read, &c.UnreadCount, &c.Timestamp); err != nil {
			return nil, shared.Persistence("scan conversation", err)
		}
		c.Unread = !c.Read && c.LastSenderID != userID
		out = append(out, c)
	}
	return out, shared.Persistence("list conversations", rows.Err())
}

// Chat returns the thread between two users oldest first.
func (r *PGRepository) Chat(ctx context.Context, userID, otherID int64) ([]Message, error) {
	rows, err := r.q.Query(ctx, `SELECT id, sender_id, receiver_id, body, is_read, created_at
FROM messages
WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
ORDER BY created_at, id`, userID, otherID)
	if err != nil {
		return nil, shared.Persistence("chat history", err)
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, shared.Persistence("scan message", err)
		}
		out = append(out, m)
	}
	return out, shared.Persistence("chat history", rows.Err())
}

// Insert stores a message.
func (r *PGRepository) Insert(ctx context.Context, m Message) (Message, error) {
	out, err := scanMessage(r.q.QueryRow(ctx, `INSERT INTO messages (sender_id, receiver_id, body)
VALUES ($1, $2, $3)
RETURNING id, sender_id, receiver_id, body, is_read, created_at`, m.SenderID, m.ReceiverID, m.Body))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Message{}, ErrRecipientNotFound
		}
		return Message{}, shared.Persistence("insert message", err)
	}
	return out, nil
}

// MarkRead marks a message addressed to receiverID as read.
func (r *PGRepository) MarkRead(ctx context.Context, receiverID, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `UPDATE messages SET is_read = TRUE WHERE id = $1 AND receiver_id = $2`, id, receiverID)
	if err != nil {
		return false, shared.Persistence("mark message read", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAllRead marks every message from senderID to receiverID as read.
func (r *PGRepository) MarkAllRead(ctx context.Context, receiverID, senderID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `UPDATE messages SET is_read = TRUE
WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read`, receiverID, senderID)
	if err != nil {
		return 0, shared.Persistence("mark all messages read", err)
	}
	return tag.RowsAffected(), nil
}

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.Read, &m.CreatedAt)
	return m, err
}

var _ Repository = (*PGRepository)(nil)
