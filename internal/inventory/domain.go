package inventory

import (
	"fmt"
	"time"

	"github.com/brewops/brewops/internal/shared"
)

// Batch is a lot of processed tea held in the store.
type Batch struct {
	ID              int64     `json:"id"`
	InventoryNumber string    `json:"inventory_number"`
	BatchID         string    `json:"batch_id"`
	Quantity        float64   `json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Input is the create/update payload. Inventory numbers are always server generated.
type Input struct {
	BatchID  string  `json:"batch_id" validate:"max=50"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

// NumberLayout is the time layout behind INV-YYYYMMDD-HHMM.
const NumberLayout = "20060102-1504"

// GenerateNumber formats the inventory number for the minute of at.
func GenerateNumber(at time.Time) string {
	return "INV-" + at.Format(NumberLayout)
}

func withSuffix(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}

var (
	// ErrBatchNotFound is returned for unknown batch ids.
	ErrBatchNotFound = shared.NewKindError(shared.ErrNotFound, "Inventory item not found")
	// ErrDuplicateNumber is returned when the inventory number is already used.
	ErrDuplicateNumber = shared.NewKindError(shared.ErrConflict, "Inventory number already exists")
	// ErrInvalidQuantity rejects non-positive quantities.
	ErrInvalidQuantity = shared.NewValidationError("quantity", "must be greater than 0")
)
