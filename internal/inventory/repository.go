package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/shared"
)

const constraintNumber = "inventory_batches_inventory_number_key"

// Repository defines persistence for inventory batches.
type Repository interface {
	List(ctx context.Context) ([]Batch, error)
	Get(ctx context.Context, id int64) (Batch, error)
	Insert(ctx context.Context, b Batch) (Batch, error)
	Update(ctx context.Context, b Batch) (Batch, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// PGRepository persists batches in PostgreSQL.
type PGRepository struct {
	q db.DBTX
}

// NewRepository constructs PGRepository.
func NewRepository(q db.DBTX) *PGRepository {
	return &PGRepository{q: q}
}

const selectBatch = `SELECT id, inventory_number, batch_id, quantity, created_at, updated_at FROM inventory_batches`

// List returns batches newest first.
func (r *PGRepository) List(ctx context.Context) ([]Batch, error) {
	rows, err := r.q.Query(ctx, selectBatch+" ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, shared.Persistence("list inventory", err)
	}
	defer rows.Close()
	var out []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, shared.Persistence("scan inventory", err)
		}
		out = append(out, b)
	}
	return out, shared.Persistence("list inventory", rows.Err())
}

// Get fetches one batch.
func (r *PGRepository) Get(ctx context.Context, id int64) (Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, selectBatch+" WHERE id = $1", id))
	if err != nil {
		if db.IsNoRows(err) {
			return Batch{}, ErrBatchNotFound
		}
		return Batch{}, shared.Persistence("get inventory", err)
	}
	return b, nil
}

// Insert stores a new batch.
func (r *PGRepository) Insert(ctx context.Context, b Batch) (Batch, error) {
	out, err := scanBatch(r.q.QueryRow(ctx, `INSERT INTO inventory_batches (inventory_number, batch_id, quantity)
VALUES ($1, $2, $3)
RETURNING id, inventory_number, batch_id, quantity, created_at, updated_at`, b.InventoryNumber, b.BatchID, b.Quantity))
	if err != nil {
		if db.IsUniqueViolation(err, constraintNumber) {
			return Batch{}, ErrDuplicateNumber
		}
		return Batch{}, shared.Persistence("insert inventory", err)
	}
	return out, nil
}

// Update rewrites batch id and quantity. The inventory number never changes.
func (r *PGRepository) Update(ctx context.Context, b Batch) (Batch, error) {
	out, err := scanBatch(r.q.QueryRow(ctx, `UPDATE inventory_batches
SET batch_id = $2, quantity = $3, updated_at = NOW()
WHERE id = $1
RETURNING id, inventory_number, batch_id, quantity, created_at, updated_at`, b.ID, b.BatchID, b.Quantity))
	if err != nil {
		if db.IsNoRows(err) {
			return Batch{}, ErrBatchNotFound
		}
		return Batch{}, shared.Persistence("update inventory", err)
	}
	return out, nil
}

// Delete removes a batch.
func (r *PGRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory_batches WHERE id = $1`, id)
	if err != nil {
		return false, shared.Persistence("delete inventory", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanBatch(row pgx.Row) (Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.InventoryNumber, &b.BatchID, &b.Quantity, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

var _ Repository = (*PGRepository)(nil)
