package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolationUnwrapsPgError(t *testing.T) {
	err := fmt.Errorf("insert payment: %w", &pgconn.PgError{
		Code:           CodeUniqueViolation,
		ConstraintName: "payments_supplier_month_type_key",
	})

	require.True(t, IsUniqueViolation(err))
	require.True(t, IsUniqueViolation(err, "payments_supplier_month_type_key"))
	require.True(t, IsUniqueViolation(err, "suppliers_code_key", "payments_supplier_month_type_key"))
	require.False(t, IsUniqueViolation(err, "suppliers_nic_key"))
	require.False(t, IsForeignKeyViolation(err))
}

func TestIsForeignKeyViolation(t *testing.T) {
	err := fmt.Errorf("tx: %w", &pgconn.PgError{Code: CodeForeignKeyViolation, ConstraintName: "payments_supplier_id_fkey"})

	require.True(t, IsForeignKeyViolation(err))
	require.True(t, IsForeignKeyViolation(err, "payments_supplier_id_fkey"))
	require.False(t, IsForeignKeyViolation(err, "deliveries_payment_id_fkey"))
	require.False(t, IsUniqueViolation(err))
}

func TestConstraintHelpersIgnoreOtherErrors(t *testing.T) {
	require.False(t, IsUniqueViolation(nil))
	require.False(t, IsUniqueViolation(errors.New("23505")))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "22003"}))
	require.False(t, IsForeignKeyViolation(pgx.ErrNoRows))
}

func TestIsNoRows(t *testing.T) {
	require.True(t, IsNoRows(pgx.ErrNoRows))
	require.True(t, IsNoRows(fmt.Errorf("get payment: %w", pgx.ErrNoRows)))
	require.False(t, IsNoRows(errors.New("no rows")))
}
