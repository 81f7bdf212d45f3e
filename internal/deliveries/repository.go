package deliveries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/shared"
)

// Repository defines persistence operations for deliveries.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Delivery, error)
	Get(ctx context.Context, id int64) (Delivery, error)
	MonthlySummary(ctx context.Context, start, end time.Time) ([]MonthlySummaryRow, error)
	SupplierRate(ctx context.Context, supplierID int64) (float64, error)
	Insert(ctx context.Context, d Delivery) (Delivery, error)
	UpdateUnsettled(ctx context.Context, d Delivery) (bool, error)
	DeleteUnsettled(ctx context.Context, id int64) (bool, error)
}

// PGRepository implements Repository on any pgx query surface, so it also
// runs inside a caller-owned transaction.
type PGRepository struct {
	q db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.DBTX) *PGRepository {
	return &PGRepository{q: q}
}

const selectDelivery = `SELECT d.id, d.supplier_id, s.name, d.delivery_date, d.quantity, d.quality_score,
	d.rate_per_kg, d.total_amount, d.payment_method, d.notes, d.payment_id, d.created_at
FROM deliveries d
JOIN suppliers s ON s.id = d.supplier_id`

// List returns deliveries newest first.
func (r *PGRepository) List(ctx context.Context, filter Filter) ([]Delivery, error) {
	var (
		where []string
		args  []any
	)
	if filter.SupplierID > 0 {
		args = append(args, filter.SupplierID)
		where = append(where, fmt.Sprintf("d.supplier_id = $%d", len(args)))
	}
	if !filter.StartDate.IsZero() {
		args = append(args, filter.StartDate)
		where = append(where, fmt.Sprintf("d.delivery_date >= $%d", len(args)))
	}
	if !filter.EndDate.IsZero() {
		args = append(args, filter.EndDate)
		where = append(where, fmt.Sprintf("d.delivery_date <= $%d", len(args)))
	}
	query := selectDelivery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY d.delivery_date DESC, d.id DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.Persistence("list deliveries", err)
	}
	defer rows.Close()
	var out []Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, shared.Persistence("scan delivery", err)
		}
		out = append(out, d)
	}
	return out, shared.Persistence("list deliveries", rows.Err())
}

// Get fetches a single delivery.
func (r *PGRepository) Get(ctx context.Context, id int64) (Delivery, error) {
	d, err := scanDelivery(r.q.QueryRow(ctx, selectDelivery+" WHERE d.id = $1", id))
	if err != nil {
		if db.IsNoRows(err) {
			return Delivery{}, ErrDeliveryNotFound
		}
		return Delivery{}, shared.Persistence("get delivery", err)
	}
	return d, nil
}

// MonthlySummary aggregates deliveries in [start, end) for every active supplier.
func (r *PGRepository) MonthlySummary(ctx context.Context, start, end time.Time) ([]MonthlySummaryRow, error) {
	rows, err := r.q.Query(ctx, `SELECT s.id, s.supplier_code, s.name, s.contact_number, s.bank_account_number,
	s.bank_name, s.rate,
	COALESCE(SUM(d.quantity), 0), COALESCE(SUM(d.total_amount), 0), COUNT(d.id)
FROM suppliers s
LEFT JOIN deliveries d ON d.supplier_id = s.id AND d.delivery_date >= $1 AND d.delivery_date < $2
WHERE s.status = 'active'
GROUP BY s.id
ORDER BY s.name`, start, end)
	if err != nil {
		return nil, shared.Persistence("monthly summary", err)
	}
	defer rows.Close()
	var out []MonthlySummaryRow
	for rows.Next() {
		var row MonthlySummaryRow
		if err := rows.Scan(&row.SupplierID, &row.SupplierCode, &row.SupplierName, &row.ContactNumber,
			&row.BankAccountNumber, &row.BankName, &row.Rate,
			&row.MonthlyQuantity, &row.MonthlyAmount, &row.DeliveryCount); err != nil {
			return nil, shared.Persistence("scan monthly summary", err)
		}
		out = append(out, row)
	}
	return out, shared.Persistence("monthly summary", rows.Err())
}

// SupplierRate returns the configured per-kg rate of a supplier.
func (r *PGRepository) SupplierRate(ctx context.Context, supplierID int64) (float64, error) {
	var rate float64
	err := r.q.QueryRow(ctx, `SELECT rate FROM suppliers WHERE id = $1`, supplierID).Scan(&rate)
	if err != nil {
		if db.IsNoRows(err) {
			return 0, ErrSupplierNotFound
		}
		return 0, shared.Persistence("supplier rate", err)
	}
	return rate, nil
}

// Insert stores a delivery and returns it with generated fields populated.
func (r *PGRepository) Insert(ctx context.Context, d Delivery) (Delivery, error) {
	err := r.q.QueryRow(ctx, `INSERT INTO deliveries
	(supplier_id, delivery_date, quantity, quality_score, rate_per_kg, total_amount, payment_method, notes, payment_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at`,
		d.SupplierID, d.DeliveryDate, d.Quantity, d.QualityScore, d.RatePerKg, d.TotalAmount,
		d.PaymentMethod, d.Notes, d.PaymentID,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Delivery{}, ErrSupplierNotFound
		}
		return Delivery{}, shared.Persistence("insert delivery", err)
	}
	return d, nil
}

// UpdateUnsettled rewrites a delivery that no payment accounts for yet.
func (r *PGRepository) UpdateUnsettled(ctx context.Context, d Delivery) (bool, error) {
	tag, err := r.q.Exec(ctx, `UPDATE deliveries
SET supplier_id = $2, delivery_date = $3, quantity = $4, quality_score = $5, rate_per_kg = $6,
	total_amount = $7, payment_method = $8, notes = $9, updated_at = NOW()
WHERE id = $1 AND payment_id IS NULL`,
		d.ID, d.SupplierID, d.DeliveryDate, d.Quantity, d.QualityScore, d.RatePerKg,
		d.TotalAmount, d.PaymentMethod, d.Notes)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return false, ErrSupplierNotFound
		}
		return false, shared.Persistence("update delivery", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteUnsettled removes a delivery that no payment accounts for yet.
func (r *PGRepository) DeleteUnsettled(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM deliveries WHERE id = $1 AND payment_id IS NULL`, id)
	if err != nil {
		return false, shared.Persistence("delete delivery", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanDelivery(row pgx.Row) (Delivery, error) {
	var d Delivery
	err := row.Scan(&d.ID, &d.SupplierID, &d.SupplierName, &d.DeliveryDate, &d.Quantity, &d.QualityScore,
		&d.RatePerKg, &d.TotalAmount, &d.PaymentMethod, &d.Notes, &d.PaymentID, &d.CreatedAt)
	return d, err
}

var _ Repository = (*PGRepository)(nil)
