package users

import (
	"context"
	"strings"

	"github.com/brewops/brewops/internal/auth"
	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/shared"
)

// Repository defines persistence for account maintenance.
type Repository interface {
	Get(ctx context.Context, id int64) (User, error)
	List(ctx context.Context, search string) ([]User, error)
	UpdateProfile(ctx context.Context, id int64, in ProfileInput) (User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetActive(ctx context.Context, id int64, active bool) (bool, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	q db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(q db.DBTX) *PGRepository {
	return &PGRepository{q: q}
}

// Get fetches one account.
func (r *PGRepository) Get(ctx context.Context, id int64) (User, error) {
	u, err := auth.ScanUser(r.q.QueryRow(ctx, auth.SelectUser+" WHERE id = $1", id))
	if err != nil {
		if db.IsNoRows(err) {
			return User{}, auth.ErrUserNotFound
		}
		return User{}, shared.Persistence("get user", err)
	}
	return u, nil
}

// List returns accounts ordered by name, optionally filtered by name, email or employee id.
func (r *PGRepository) List(ctx context.Context, search string) ([]User, error) {
	query := auth.SelectUser
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		query += " WHERE lower(name) LIKE $1 OR lower(email) LIKE $1 OR lower(COALESCE(employee_id, '')) LIKE $1"
	}
	query += " ORDER BY name, id"
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.Persistence("list users", err)
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := auth.ScanUser(rows)
		if err != nil {
			return nil, shared.Persistence("scan user", err)
		}
		out = append(out, u)
	}
	return out, shared.Persistence("list users", rows.Err())
}

// UpdateProfile rewrites name, email and phone.
func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (User, error) {
	u, err := auth.ScanUser(r.q.QueryRow(ctx, `UPDATE users SET name = $2, email = $3, phone = $4, updated_at = NOW()
WHERE id = $1
RETURNING id, name, email, password_hash, role, phone, employee_id, supplier_id, is_active, created_at, updated_at`,
		id, in.Name, in.Email, in.Phone))
	if err != nil {
		switch {
		case db.IsNoRows(err):
			return User{}, auth.ErrUserNotFound
		case db.IsUniqueViolation(err, "users_email_key"):
			return User{}, auth.ErrEmailTaken
		}
		return User{}, shared.Persistence("update profile", err)
	}
	return u, nil
}

// UpdatePasswordHash stores a new bcrypt hash.
func (r *PGRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return shared.Persistence("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// SetActive toggles is_active. It reports false for unknown ids.
func (r *PGRepository) SetActive(ctx context.Context, id int64, active bool) (bool, error) {
	tag, err := r.q.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return false, shared.Persistence("set user active", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ Repository = (*PGRepository)(nil)
