package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brewops/brewops/internal/settlement"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSettlementRecorded fans a committed settlement out to notifications.
	TaskSettlementRecorded = "settlement:recorded"
	// TaskMonthlyReminder lists suppliers still unpaid for the previous month.
	TaskMonthlyReminder = "settlement:monthly-reminder"
	// MonthlyReminderCron runs the reminder at 06:00 UTC on the first of each month.
	MonthlyReminderCron = "0 6 1 * *"
)

// NewSettlementRecordedTask wraps a settlement event.
func NewSettlementRecordedTask(evt settlement.SettlementEvent) (*asynq.Task, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSettlementRecorded, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// MonthlyReminderPayload optionally pins the month to check. Empty means the previous month.
type MonthlyReminderPayload struct {
	Month string `json:"month,omitempty"`
}

// NewMonthlyReminderTask constructs the reminder task.
func NewMonthlyReminderTask(payload MonthlyReminderPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMonthlyReminder, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
