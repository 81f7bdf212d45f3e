package settlement

import (
	"context"
	"time"
)

// EventKind names what happened to a payment.
type EventKind string

const (
	EventMonthlyRecorded  EventKind = "monthly.recorded"
	EventSpotCashRecorded EventKind = "spot_cash.recorded"
	EventStatusChanged    EventKind = "status.changed"
)

// SettlementEvent is emitted after a settlement change commits.
type SettlementEvent struct {
	Kind         EventKind     `json:"kind"`
	PaymentID    int64         `json:"payment_id"`
	SupplierID   int64         `json:"supplier_id"`
	SupplierName string        `json:"supplier_name,omitempty"`
	Type         PaymentType   `json:"payment_type,omitempty"`
	Month        string        `json:"payment_month,omitempty"`
	Amount       float64       `json:"amount"`
	Status       PaymentStatus `json:"status"`
	DeliveryID   int64         `json:"delivery_id,omitempty"`
	OccurredAt   time.Time     `json:"occurred_at"`
}

// EventPublisher delivers settlement events to downstream consumers.
type EventPublisher interface {
	PublishSettlement(ctx context.Context, evt SettlementEvent) error
}
