package settlement

import (
	"time"

	"github.com/brewops/brewops/internal/deliveries"
)

// PaymentType distinguishes monthly settlements from spot-cash ones.
type PaymentType string

const (
	// PaymentTypeMonthly settles a supplier's deliveries for one calendar month.
	PaymentTypeMonthly PaymentType = "monthly"
	// PaymentTypeSpotCash settles a delivery on the spot.
	PaymentTypeSpotCash PaymentType = "spot-cash"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	return t == PaymentTypeMonthly || t == PaymentTypeSpotCash
}

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusPaid      PaymentStatus = "paid"
	StatusCancelled PaymentStatus = "cancelled"
)

// Valid reports whether s is one of the enumerated statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod is how the supplier was paid.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "Cash"
	MethodBankTransfer PaymentMethod = "Bank Transfer"
	MethodCheque       PaymentMethod = "Cheque"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCheque:
		return true
	}
	return false
}

// Payment is a settlement recorded against a supplier.
type Payment struct {
	ID           int64         `json:"id"`
	SupplierID   int64         `json:"supplier_id"`
	SupplierName string        `json:"supplier_name,omitempty"`
	Type         PaymentType   `json:"payment_type"`
	Month        *string       `json:"payment_month"`
	Amount       float64       `json:"amount"`
	PaymentDate  time.Time     `json:"payment_date"`
	Method       PaymentMethod `json:"payment_method"`
	Status       PaymentStatus `json:"status"`
	Notes        string        `json:"notes,omitempty"`
	CreatedBy    *int64        `json:"created_by,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// SupplierRef is the slice of a supplier the engine needs.
type SupplierRef struct {
	ID   int64
	Code string
	Name string
}

// MonthlyPaymentInput is the request to settle a supplier's month.
type MonthlyPaymentInput struct {
	SupplierID int64         `json:"supplier_id" validate:"required,gt=0"`
	Month      string        `json:"month" validate:"required,yearmonth"`
	Amount     float64       `json:"amount" validate:"gte=0,lte=9999999999.99"`
	Method     PaymentMethod `json:"payment_method" validate:"omitempty,oneof=Cash 'Bank Transfer' Cheque"`
	Notes      string        `json:"notes" validate:"max=500"`
	ActorID    int64         `json:"-"`
}

// SpotCashInput is the request to pay for a delivery on the spot.
type SpotCashInput struct {
	SupplierID int64         `json:"supplier_id" validate:"required,gt=0"`
	Quantity   float64       `json:"quantity" validate:"gte=0,lte=99999999.99"`
	RatePerKg  float64       `json:"rate_per_kg" validate:"gte=0,lte=99999999.99"`
	Method     PaymentMethod `json:"payment_method" validate:"omitempty,oneof=Cash 'Bank Transfer' Cheque"`
	Notes      string        `json:"notes" validate:"max=500"`
	ActorID    int64         `json:"-"`
}

// SpotCashResult pairs the payment with the delivery recorded alongside it.
type SpotCashResult struct {
	Payment  Payment             `json:"payment"`
	Delivery deliveries.Delivery `json:"delivery"`
}

// PaymentFilter narrows ListPayments. Zero values are ignored.
type PaymentFilter struct {
	Month      string
	SupplierID int64
	Type       PaymentType
	Status     PaymentStatus
}

// Statistics is the dashboard aggregate over non-cancelled payments.
type Statistics struct {
	TotalPayments      int64   `json:"total_payments"`
	TotalAmount        float64 `json:"total_amount"`
	MonthlyPayments    int64   `json:"monthly_payments"`
	SpotCashPayments   int64   `json:"spot_cash_payments"`
	MonthlyAmount      float64 `json:"monthly_amount"`
	SpotCashAmount     float64 `json:"spot_cash_amount"`
	PendingPayments    int64   `json:"pending_payments"`
	PendingAmount      float64 `json:"pending_amount"`
	CurrentMonthAmount float64 `json:"current_month_amount"`
	MonthlyQuantity    float64 `json:"monthly_quantity"`
}
