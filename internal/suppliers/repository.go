package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/shared"
)

const (
	constraintCode = "suppliers_code_key"
	constraintNIC  = "suppliers_nic_key"
)

// Repository defines persistence operations for suppliers.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Supplier, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	GetByCode(ctx context.Context, code string) (Supplier, error)
	LastCode(ctx context.Context) (string, error)
	Insert(ctx context.Context, s Supplier) (Supplier, error)
	Update(ctx context.Context, s Supplier) (Supplier, error)
	SetStatus(ctx context.Context, id int64, status Status) (bool, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	q db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.DBTX) *PGRepository {
	return &PGRepository{q: q}
}

const selectSupplier = `SELECT id, supplier_code, name, contact_number, nic_number, address,
	bank_account_number, bank_name, rate, status, created_at, updated_at
FROM suppliers`

// List returns suppliers ordered by name.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Supplier, error) {
	var (
		where []string
		args  []any
	)
	if !filter.IncludeInactive {
		where = append(where, "status = 'active'")
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%[1]d OR supplier_code ILIKE $%[1]d OR contact_number ILIKE $%[1]d)", len(args)))
	}
	query := selectSupplier
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.Persistence("list suppliers", err)
	}
	defer rows.Close()
	var out []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, shared.Persistence("scan supplier", err)
		}
		out = append(out, s)
	}
	return out, shared.Persistence("list suppliers", rows.Err())
}

// Get fetches a supplier by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Supplier, error) {
	return r.getOne(ctx, selectSupplier+" WHERE id = $1", id)
}

// GetByCode fetches a supplier by its SUP code.
func (r *PGRepository) GetByCode(ctx context.Context, code string) (Supplier, error) {
	return r.getOne(ctx, selectSupplier+" WHERE supplier_code = $1", code)
}

func (r *PGRepository) getOne(ctx context.Context, query string, arg any) (Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if db.IsNoRows(err) {
			return Supplier{}, ErrSupplierNotFound
		}
		return Supplier{}, shared.Persistence("get supplier", err)
	}
	return s, nil
}

// LastCode returns the most recently issued code, or "" when none exist.
func (r *PGRepository) LastCode(ctx context.Context) (string, error) {
	var code string
	err := r.q.QueryRow(ctx, `SELECT supplier_code FROM suppliers ORDER BY id DESC LIMIT 1`).Scan(&code)
	if err != nil {
		if db.IsNoRows(err) {
			return "", nil
		}
		return "", shared.Persistence("last supplier code", err)
	}
	return code, nil
}

// Insert stores a new supplier.
func (r *PGRepository) Insert(ctx context.Context, s Supplier) (Supplier, error) {
	err := r.q.QueryRow(ctx, `INSERT INTO suppliers
	(supplier_code, name, contact_number, nic_number, address, bank_account_number, bank_name, rate, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at, updated_at`,
		s.Code, s.Name, s.ContactNumber, s.NICNumber, s.Address, s.BankAccountNumber, s.BankName, s.Rate, string(s.Status),
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Supplier{}, translateWriteError("insert supplier", err)
	}
	s.IsActive = s.Status == StatusActive
	return s, nil
}

// Update rewrites a supplier's editable fields.
func (r *PGRepository) Update(ctx context.Context, s Supplier) (Supplier, error) {
	err := r.q.QueryRow(ctx, `UPDATE suppliers
SET name = $2, contact_number = $3, nic_number = $4, address = $5, bank_account_number = $6,
	bank_name = $7, rate = $8, status = $9, updated_at = NOW()
WHERE id = $1
RETURNING created_at, updated_at`,
		s.ID, s.Name, s.ContactNumber, s.NICNumber, s.Address, s.BankAccountNumber, s.BankName, s.Rate, string(s.Status),
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return Supplier{}, ErrSupplierNotFound
		}
		return Supplier{}, translateWriteError("update supplier", err)
	}
	s.IsActive = s.Status == StatusActive
	return s, nil
}

// SetStatus flips the activation state and reports whether a row matched.
func (r *PGRepository) SetStatus(ctx context.Context, id int64, status Status) (bool, error) {
	tag, err := r.q.Exec(ctx, `UPDATE suppliers SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return false, shared.Persistence("set supplier status", err)
	}
	return tag.RowsAffected() > 0, nil
}

func translateWriteError(op string, err error) error {
	switch {
	case db.IsUniqueViolation(err, constraintNIC):
		return ErrDuplicateNIC
	case db.IsUniqueViolation(err, constraintCode):
		return ErrDuplicateCode
	}
	return shared.Persistence(op, err)
}

func scanSupplier(row pgx.Row) (Supplier, error) {
	var (
		s      Supplier
		status string
	)
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.ContactNumber, &s.NICNumber, &s.Address,
		&s.BankAccountNumber, &s.BankName, &s.Rate, &status, &s.CreatedAt, &s.UpdatedAt)
	s.Status = Status(status)
	s.IsActive = s.Status == StatusActive
	return s, err
}

var _ Repository = (*PGRepository)(nil)
