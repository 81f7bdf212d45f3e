package settlement

import "github.com/brewops/brewops/internal/shared"

var (
	// ErrDuplicatePayment is returned when a monthly payment already exists
	// for the supplier and month.
	ErrDuplicatePayment = shared.NewKindError(shared.ErrConflict, "Payment already exists for this supplier and month")
	// ErrInvalidStatus is returned for a status outside pending, paid, cancelled.
	ErrInvalidStatus = shared.NewKindError(shared.ErrValidation, "Invalid status")
	// ErrPaymentNotFound is returned when a payment id does not exist.
	ErrPaymentNotFound = shared.NewKindError(shared.ErrNotFound, "Payment not found")
	// ErrSupplierNotFound is returned when the referenced supplier does not exist.
	ErrSupplierNotFound = shared.NewKindError(shared.ErrNotFound, "Supplier not found")
)
