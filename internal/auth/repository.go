package auth

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/shared"
)

const constraintEmail = "users_email_key"

// Repository defines persistence operations for accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	Insert(ctx context.Context, u User) (User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	q db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.DBTX) *PGRepository {
	return &PGRepository{q: q}
}

// SelectUser lists user columns in the order ScanUser expects.
const SelectUser = `SELECT id, name, email, password_hash, role, phone, employee_id, supplier_id, is_active,
	created_at, updated_at FROM users`

// FindByEmail fetches a user by email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, SelectUser+" WHERE lower(email) = $1", strings.ToLower(email))
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (User, error) {
	return r.findOne(ctx, SelectUser+" WHERE id = $1", id)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg any) (User, error) {
	u, err := ScanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if db.IsNoRows(err) {
			return User{}, ErrUserNotFound
		}
		return User{}, shared.Persistence("find user", err)
	}
	return u, nil
}

// Insert stores a new account.
func (r *PGRepository) Insert(ctx context.Context, u User) (User, error) {
	out, err := ScanUser(r.q.QueryRow(ctx, `INSERT INTO users (name, email, password_hash, role, phone, employee_id, supplier_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, name, email, password_hash, role, phone, employee_id, supplier_id, is_active, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Phone, u.EmployeeID, u.SupplierID))
	if err != nil {
		if db.IsUniqueViolation(err, constraintEmail) {
			return User{}, ErrEmailTaken
		}
		return User{}, shared.Persistence("insert user", err)
	}
	return out, nil
}

// ScanUser reads a row selected with SelectUser.
func ScanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.EmployeeID,
		&u.SupplierID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

var _ Repository = (*PGRepository)(nil)
