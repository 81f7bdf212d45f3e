package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewops/brewops/internal/deliveries"
	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/shared"
)

const (
	constraintMonthlyUnique   = "payments_supplier_month_type_key"
	constraintPaymentSupplier = "payments_supplier_id_fkey"
)

// Repository abstracts payment persistence for the service.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error)
	GetPayment(ctx context.Context, id int64) (Payment, error)
	UpdateStatus(ctx context.Context, id int64, status PaymentStatus) (bool, error)
	PaymentTotals(ctx context.Context) (Statistics, error)
	DeliveredQuantity(ctx context.Context, start, end time.Time) (float64, error)
	UnpaidSuppliers(ctx context.Context, month string, start, end time.Time) ([]SupplierRef, error)
}

// TxRepository exposes the writes that must share one transaction.
type TxRepository interface {
	LookupSupplier(ctx context.Context, id int64) (SupplierRef, error)
	MonthlyPaymentExists(ctx context.Context, supplierID int64, month string) (bool, error)
	InsertPayment(ctx context.Context, p Payment) (Payment, error)
	InsertDelivery(ctx context.Context, d deliveries.Delivery) (deliveries.Delivery, error)
}

// PGRepository persists payments in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type txRepo struct {
	tx         pgx.Tx
	deliveries *deliveries.PGRepository
}

// WithTx runs fn in a single transaction; any error rolls back every write.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, deliveries: deliveries.NewRepository(tx)})
	})
}

const selectPayment = `SELECT p.id, p.supplier_id, s.name, p.payment_type, p.payment_month, p.amount,
	p.payment_date, p.payment_method, p.status, p.notes, p.created_by, p.created_at
FROM payments p
JOIN suppliers s ON s.id = p.supplier_id`

// ListPayments returns payments newest first.
func (r *PGRepository) ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.Month != "" {
		add("p.payment_month = $%d", filter.Month)
	}
	if filter.SupplierID > 0 {
		add("p.supplier_id = $%d", filter.SupplierID)
	}
	if filter.Type != "" {
		add("p.payment_type = $%d", string(filter.Type))
	}
	if filter.Status != "" {
		add("p.status = $%d", string(filter.Status))
	}
	query := selectPayment
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.payment_date DESC, p.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.Persistence("list payments", err)
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, shared.Persistence("scan payment", err)
		}
		out = append(out, p)
	}
	return out, shared.Persistence("list payments", rows.Err())
}

// GetPayment fetches one payment with its supplier name.
func (r *PGRepository) GetPayment(ctx context.Context, id int64) (Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, selectPayment+" WHERE p.id = $1", id))
	if err != nil {
		if db.IsNoRows(err) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, shared.Persistence("get payment", err)
	}
	return p, nil
}

// UpdateStatus sets the status and reports whether a row matched.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status PaymentStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return false, shared.Persistence("update payment status", err)
	}
	return tag.RowsAffected() > 0, nil
}

// PaymentTotals reads the payment_statistics view.
func (r *PGRepository) PaymentTotals(ctx context.Context) (Statistics, error) {
	var s Statistics
	err := r.pool.QueryRow(ctx, `SELECT total_payments, total_amount, monthly_payments, spot_cash_payments,
	monthly_amount, spot_cash_amount, pending_payments, pending_amount, current_month_amount
FROM payment_statistics`).Scan(&s.TotalPayments, &s.TotalAmount, &s.MonthlyPayments, &s.SpotCashPayments,
		&s.MonthlyAmount, &s.SpotCashAmount, &s.PendingPayments, &s.PendingAmount, &s.CurrentMonthAmount)
	if err != nil {
		return Statistics{}, shared.Persistence("payment statistics", err)
	}
	return s, nil
}

// DeliveredQuantity sums delivered kilograms in [start, end).
func (r *PGRepository) DeliveredQuantity(ctx context.Context, start, end time.Time) (float64, error) {
	var qty float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM deliveries
WHERE delivery_date >= $1 AND delivery_date < $2`, start, end).Scan(&qty)
	if err != nil {
		return 0, shared.Persistence("delivered quantity", err)
	}
	return qty, nil
}

// UnpaidSuppliers lists active suppliers with deliveries in the month but no
// monthly payment for it.
func (r *PGRepository) UnpaidSuppliers(ctx context.Context, month string, start, end time.Time) ([]SupplierRef, error) {
	rows, err := r.pool.Query(ctx, `SELECT s.id, s.supplier_code, s.name
FROM suppliers s
WHERE s.status = 'active'
	AND EXISTS (SELECT 1 FROM deliveries d
		WHERE d.supplier_id = s.id AND d.delivery_date >= $2 AND d.delivery_date < $3)
	AND NOT EXISTS (SELECT 1 FROM payments p
		WHERE p.supplier_id = s.id AND p.payment_month = $1 AND p.payment_type = 'monthly')
ORDER BY s.supplier_code`, month, start, end)
	if err != nil {
		return nil, shared.Persistence("unpaid suppliers", err)
	}
	defer rows.Close()
	var out []SupplierRef
	for rows.Next() {
		var ref SupplierRef
		if err := rows.Scan(&ref.ID, &ref.Code, &ref.Name); err != nil {
			return nil, shared.Persistence("scan supplier", err)
		}
		out = append(out, ref)
	}
	return out, shared.Persistence("unpaid suppliers", rows.Err())
}

func (r *txRepo) LookupSupplier(ctx context.Context, id int64) (SupplierRef, error) {
	var ref SupplierRef
	err := r.tx.QueryRow(ctx, `SELECT id, supplier_code, name FROM suppliers WHERE id = $1`, id).
		Scan(&ref.ID, &ref.Code, &ref.Name)
	if err != nil {
		if db.IsNoRows(err) {
			return SupplierRef{}, ErrSupplierNotFound
		}
		return SupplierRef{}, shared.Persistence("lookup supplier", err)
	}
	return ref, nil
}

func (r *txRepo) MonthlyPaymentExists(ctx context.Context, supplierID int64, month string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payments
WHERE supplier_id = $1 AND payment_month = $2 AND payment_type = 'monthly')`, supplierID, month).Scan(&exists)
	if err != nil {
		return false, shared.Persistence("check monthly payment", err)
	}
	return exists, nil
}

func (r *txRepo) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO payments
	(supplier_id, payment_type, payment_month, amount, payment_date, payment_method, status, notes, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at`,
		p.SupplierID, string(p.Type), p.Month, p.Amount, p.PaymentDate, string(p.Method), string(p.Status), p.Notes, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return Payment{}, paymentInsertError(err)
	}
	return p, nil
}

// paymentInsertError maps constraint violations raised by a payment insert.
func paymentInsertError(err error) error {
	switch {
	case db.IsUniqueViolation(err, constraintMonthlyUnique):
		return ErrDuplicatePayment
	case db.IsForeignKeyViolation(err, constraintPaymentSupplier):
		return ErrSupplierNotFound
	}
	return shared.Persistence("insert payment", err)
}

func (r *txRepo) InsertDelivery(ctx context.Context, d deliveries.Delivery) (deliveries.Delivery, error) {
	return r.deliveries.Insert(ctx, d)
}

func scanPayment(row pgx.Row) (Payment, error) {
	var (
		p                   Payment
		typ, method, status string
	)
	err := row.Scan(&p.ID, &p.SupplierID, &p.SupplierName, &typ, &p.Month, &p.Amount,
		&p.PaymentDate, &method, &status, &p.Notes, &p.CreatedBy, &p.CreatedAt)
	p.Type = PaymentType(typ)
	p.Method = PaymentMethod(method)
	p.Status = PaymentStatus(status)
	return p, err
}

var _ Repository = (*PGRepository)(nil)
