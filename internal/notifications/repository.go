package notifications

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/shared"
)

// Repository defines persistence for notifications. Reads are always scoped to a reader.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Notification, error)
	Get(ctx context.Context, userID, id int64) (Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	Insert(ctx context.Context, n Notification) (Notification, error)
	MarkRead(ctx context.Context, userID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	q db.DBTX
}

// NewRepository constructs PGRepository.
func NewRepository(q db.DBTX) *PGRepository {
	return &PGRepository{q: q}
}

// visible to $1: personal rows plus broadcasts; read flag folds in broadcast receipts
const selectVisible = `SELECT n.id, n.user_id, n.title, n.body, n.type, n.priority,
	(n.is_read OR r.user_id IS NOT NULL) AS read, n.created_at
FROM notifications n
LEFT JOIN notification_reads r ON r.notification_id = n.id AND r.user_id = $1
WHERE (n.user_id = $1 OR n.user_id IS NULL)`

// List returns the reader's notifications newest first.
func (r *PGRepository) List(ctx context.Context, filter Filter) ([]Notification, error) {
	query := selectVisible
	args := []any{filter.UserID}
	if filter.UnreadOnly {
		query += " AND NOT n.is_read AND r.user_id IS NULL"
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND n.type = $%d", len(args))
	}
	query += " ORDER BY n.created_at DESC, n.id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.Persistence("list notifications", err)
	}
	defer rows.Close()
	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, shared.Persistence("scan notification", err)
		}
		out = append(out, n)
	}
	return out, shared.Persistence("list notifications", rows.Err())
}

// Get returns one notification visible to the reader.
func (r *PGRepository) Get(ctx context.Context, userID, id int64) (Notification, error) {
	n, err := scanNotification(r.q.QueryRow(ctx, selectVisible+" AND n.id = $2", userID, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Notification{}, ErrNotificationNotFound
		}
		return Notification{}, shared.Persistence("get notification", err)
	}
	return n, nil
}

// UnreadCount counts unread notifications visible to the reader.
func (r *PGRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*)
FROM notifications n
LEFT JOIN notification_reads r ON r.notification_id = n.id AND r.user_id = $1
WHERE (n.user_id = $1 OR n.user_id IS NULL) AND NOT n.is_read AND r.user_id IS NULL`, userID).Scan(&count)
	if err != nil {
		return 0, shared.Persistence("count unread notifications", err)
	}
	return count, nil
}

// Insert stores a notification.
func (r *PGRepository) Insert(ctx context.Context, n Notification) (Notification, error) {
	err := r.q.QueryRow(ctx, `INSERT INTO notifications (user_id, title, body, type, priority)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`, n.UserID, n.Title, n.Body, n.Type, n.Priority).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Notification{}, shared.NewValidationError("user_id", "unknown user")
		}
		return Notification{}, shared.Persistence("insert notification", err)
	}
	return n, nil
}

// MarkRead flags a personal notification or records a broadcast receipt.
func (r *PGRepository) MarkRead(ctx context.Context, userID, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $2 AND user_id = $1`, userID, id)
	if err != nil {
		return false, shared.Persistence("mark notification read", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	tag, err = r.q.Exec(ctx, `INSERT INTO notification_reads (notification_id, user_id)
SELECT id, $1::bigint FROM notifications WHERE id = $2 AND user_id IS NULL
ON CONFLICT DO NOTHING`, userID, id)
	if err != nil {
		return false, shared.Persistence("mark broadcast read", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	// already-read broadcasts insert nothing
	var exists bool
	err = r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1 AND user_id IS NULL)`, id).Scan(&exists)
	if err != nil {
		return false, shared.Persistence("mark broadcast read", err)
	}
	return exists, nil
}

// MarkAllRead marks everything visible to the reader as read.
func (r *PGRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	personal, err := r.q.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, shared.Persistence("mark all read", err)
	}
	broadcast, err := r.q.Exec(ctx, `INSERT INTO notification_reads (notification_id, user_id)
SELECT id, $1::bigint FROM notifications WHERE user_id IS NULL
ON CONFLICT DO NOTHING`, userID)
	if err != nil {
		return 0, shared.Persistence("mark all broadcasts read", err)
	}
	return personal.RowsAffected() + broadcast.RowsAffected(), nil
}

// Delete removes a notification.
func (r *PGRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return false, shared.Persistence("delete notification", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	var priority string
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Type, &priority, &n.Read, &n.CreatedAt)
	n.Priority = Priority(priority)
	return n, err
}

var _ Repository = (*PGRepository)(nil)
