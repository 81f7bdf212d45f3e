package deliveries

import (
	"time"

	"github.com/brewops/brewops/internal/shared"
)

// DateLayout is the wire format for delivery dates.
const DateLayout = "2006-01-02"

// Delivery is a quantity of leaf received from a supplier.
type Delivery struct {
	ID            int64     `json:"id"`
	SupplierID    int64     `json:"supplier_id"`
	SupplierName  string    `json:"supplier_name,omitempty"`
	DeliveryDate  time.Time `json:"delivery_date"`
	Quantity      float64   `json:"quantity"`
	QualityScore  *int      `json:"quality_score"`
	RatePerKg     float64   `json:"rate_per_kg"`
	TotalAmount   float64   `json:"total_amount"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	PaymentID     *int64    `json:"payment_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Settled reports whether the delivery was paid on the spot. Monthly payments
// are not linked to delivery rows, so deliveries in a paid month stay editable.
func (d Delivery) Settled() bool {
	return d.PaymentID != nil
}

// Filter narrows List results. Zero values are ignored.
type Filter struct {
	SupplierID int64
	StartDate  time.Time
	EndDate    time.Time
}

// Input is the payload for recording or editing a delivery.
type Input struct {
	SupplierID    int64    `json:"supplier_id" validate:"required,gt=0"`
	Quantity      float64  `json:"quantity" validate:"gte=0,lte=99999999.99"`
	QualityScore  *int     `json:"quality_score" validate:"omitempty,gte=0,lte=100"`
	RatePerKg     *float64 `json:"rate_per_kg" validate:"omitempty,gte=0,lte=99999999.99"`
	DeliveryDate  string   `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string   `json:"payment_method" validate:"max=50"`
	Notes         string   `json:"notes" validate:"max=500"`
}

// MonthlySummaryRow aggregates one active supplier's deliveries in a month.
type MonthlySummaryRow struct {
	SupplierID        int64   `json:"supplier_id"`
	SupplierCode      string  `json:"supplier_code"`
	SupplierName      string  `json:"supplier_name"`
	ContactNumber     string  `json:"contact_number"`
	BankAccountNumber string  `json:"bank_account_number"`
	BankName          string  `json:"bank_name"`
	Rate              float64 `json:"rate"`
	MonthlyQuantity   float64 `json:"monthly_quantity"`
	MonthlyAmount     float64 `json:"monthly_amount"`
	DeliveryCount     int64   `json:"delivery_count"`
}

var (
	// ErrDeliveryNotFound is returned when a delivery id does not exist.
	ErrDeliveryNotFound = shared.NewKindError(shared.ErrNotFound, "delivery not found")
	// ErrSupplierNotFound is returned when the referenced supplier does not exist.
	ErrSupplierNotFound = shared.NewKindError(shared.ErrNotFound, "supplier not found")
	// ErrDeliverySettled blocks edits to deliveries a payment accounts for.
	ErrDeliverySettled = shared.NewKindError(shared.ErrConflict, "delivery is linked to a payment and cannot be changed")
)

// MonthBounds returns the half-open [start, end) range covering a YYYY-MM month.
func MonthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, shared.NewValidationError("month", "must be in YYYY-MM format")
	}
	return start, start.AddDate(0, 1, 0), nil
}
