package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/brewops/brewops/internal/jobs"
	"github.com/brewops/brewops/internal/notifications"
	"github.com/brewops/brewops/internal/settlement"
	"github.com/brewops/brewops/internal/shared"
)

// reminderListLimit caps how many suppliers are named in one reminder.
const reminderListLimit = 10

// UnpaidLister finds suppliers with deliveries but no monthly payment.
type UnpaidLister interface {
	UnpaidSuppliers(ctx context.Context, month string) ([]settlement.SupplierRef, error)
}

// MonthlyReminderJob notifies everyone of suppliers still awaiting their monthly payment.
type MonthlyReminderJob struct {
	Unpaid   UnpaidLister
	Notifier Notifier
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewMonthlyReminderJob initialises the reminder handler.
func NewMonthlyReminderJob(unpaid UnpaidLister, notifier Notifier, logger *slog.Logger, metrics *jobmetrics.Metrics) *MonthlyReminderJob {
	return &MonthlyReminderJob{
		Unpaid:   unpaid,
		Notifier: notifier,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskMonthlyReminder tasks.
func (j *MonthlyReminderJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	var payload MonthlyReminderPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode reminder payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	month := payload.Month
	if month == "" {
		month = PreviousMonth(j.now())
	}
	if !shared.IsYearMonth(month) {
		return fmt.Errorf("reminder month %q must be YYYY-MM: %w", month, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskMonthlyReminder)
	defer func() { err = tracker.End(err) }()

	logger := j.logger().With(slog.String("month", month))
	unpaid, err := j.Unpaid.UnpaidSuppliers(ctx, month)
	if err != nil {
		logger.Error("list unpaid suppliers failed", slog.Any("error", err))
		if errors.Is(err, shared.ErrValidation) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}
	j.Metrics.SetUnpaidSuppliers(month, len(unpaid))
	if len(unpaid) == 0 {
		logger.Info("all suppliers settled")
		return nil
	}
	n, err := j.Notifier.Create(ctx, notifications.Input{
		Title:    fmt.Sprintf("Unpaid suppliers for %s", month),
		Body:     ReminderBody(month, unpaid),
		Type:     notifications.TypeReminder,
		Priority: notifications.PriorityHigh,
	})
	if err != nil {
		logger.Error("reminder notification failed", slog.Any("error", err))
		return err
	}
	logger.Info("monthly reminder sent", slog.Int("unpaid", len(unpaid)), slog.Int64("notification_id", n.ID))
	return nil
}

// PreviousMonth returns the YYYY-MM month before now.
func PreviousMonth(now time.Time) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0).Format("2006-01")
}

// ReminderBody summarises unpaid suppliers, naming at most reminderListLimit of them.
func ReminderBody(month string, unpaid []settlement.SupplierRef) string {
	names := make([]string, 0, reminderListLimit)
	for i, s := range unpaid {
		if i == reminderListLimit {
			break
		}
		names = append(names, fmt.Sprintf("%s %s", s.Code, s.Name))
	}
	noun := "suppliers"
	if len(unpaid) == 1 {
		noun = "supplier"
	}
	body := fmt.Sprintf("%d active %s delivered leaf in %s without a monthly payment: %s",
		len(unpaid), noun, month, strings.Join(names, ", "))
	if extra := len(unpaid) - len(names); extra > 0 {
		body += fmt.Sprintf(" and %d more", extra)
	}
	return body + "."
}

func (j *MonthlyReminderJob) now() time.Time {
	if j.clock == nil {
		return time.Now().UTC()
	}
	return j.clock()
}

func (j *MonthlyReminderJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
