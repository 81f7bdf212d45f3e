package settlement

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/shared"
)

func TestPaymentInsertErrorMapsConstraints(t *testing.T) {
	dup := fmt.Errorf("scan: %w", &pgconn.PgError{Code: db.CodeUniqueViolation, ConstraintName: constraintMonthlyUnique})
	require.ErrorIs(t, paymentInsertError(dup), ErrDuplicatePayment)

	fk := fmt.Errorf("scan: %w", &pgconn.PgError{Code: db.CodeForeignKeyViolation, ConstraintName: constraintPaymentSupplier})
	require.ErrorIs(t, paymentInsertError(fk), ErrSupplierNotFound)

	actorFK := &pgconn.PgError{Code: db.CodeForeignKeyViolation, ConstraintName: "payments_created_by_fkey"}
	require.NotErrorIs(t, paymentInsertError(actorFK), ErrSupplierNotFound)

	other := &pgconn.PgError{Code: db.CodeUniqueViolation, ConstraintName: "payments_pkey"}
	err := paymentInsertError(other)
	var pErr *shared.PersistenceError
	require.ErrorAs(t, err, &pErr)
	require.False(t, errors.Is(err, ErrDuplicatePayment))
}

func TestMonthlyUniqueConstraintMatchesSchema(t *testing.T) {
	schema, err := os.ReadFile("../platform/db/migrations/00001_core_schema.sql")
	require.NoError(t, err)
	require.Contains(t, string(schema),
		"CONSTRAINT "+constraintMonthlyUnique+" UNIQUE (supplier_id, payment_month, payment_type)")
}
