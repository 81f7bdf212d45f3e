package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/brewops/brewops/internal/jobs"
	"github.com/brewops/brewops/internal/notifications"
	"github.com/brewops/brewops/internal/settlement"
	"github.com/brewops/brewops/internal/shared"
)

// Notifier stores notifications.
type Notifier interface {
	Create(ctx context.Context, in notifications.Input) (notifications.Notification, error)
}

// SettlementNotifyJob turns settlement events into broadcast notifications.
type SettlementNotifyJob struct {
	Notifier Notifier
	Currency string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// Handle processes TaskSettlementRecorded tasks.
func (j *SettlementNotifyJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	var evt settlement.SettlementEvent
	if err := json.Unmarshal(t.Payload(), &evt); err != nil {
		return fmt.Errorf("decode settlement event: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskSettlementRecorded)
	defer func() { err = tracker.End(err) }()

	in, ok := j.describe(evt)
	if !ok {
		j.logger().Warn("unknown settlement event", slog.String("kind", string(evt.Kind)))
		return nil
	}
	n, err := j.Notifier.Create(ctx, in)
	if err != nil {
		j.logger().Error("settlement notification failed", slog.Int64("payment_id", evt.PaymentID), slog.Any("error", err))
		return err
	}
	j.logger().Info("settlement notification created",
		slog.Int64("notification_id", n.ID),
		slog.Int64("payment_id", evt.PaymentID),
		slog.String("kind", string(evt.Kind)),
	)
	return nil
}

func (j *SettlementNotifyJob) describe(evt settlement.SettlementEvent) (notifications.Input, bool) {
	supplier := evt.SupplierName
	if supplier == "" {
		supplier = fmt.Sprintf("supplier #%d", evt.SupplierID)
	}
	amount := shared.FormatMoney(j.currency(), evt.Amount)
	in := notifications.Input{Type: notifications.TypePayment, Priority: notifications.PriorityMedium}
	switch evt.Kind {
	case settlement.EventMonthlyRecorded:
		in.Title = "Monthly payment recorded"
		in.Body = fmt.Sprintf("%s recorded for %s for %s.", amount, supplier, evt.Month)
	case settlement.EventSpotCashRecorded:
		in.Title = "Spot cash payment"
		in.Body = fmt.Sprintf("%s paid in cash to %s for delivery #%d.", amount, supplier, evt.DeliveryID)
	case settlement.EventStatusChanged:
		in.Title = "Payment status updated"
		in.Body = fmt.Sprintf("Payment #%d is now %s.", evt.PaymentID, evt.Status)
		if evt.Status == settlement.StatusCancelled {
			in.Priority = notifications.PriorityHigh
		}
	default:
		return notifications.Input{}, false
	}
	return in, true
}

func (j *SettlementNotifyJob) currency() string {
	if j.Currency == "" {
		return "LKR"
	}
	return j.Currency
}

func (j *SettlementNotifyJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
