// Package cli implements the operator subcommands of the brewops binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brewops/brewops/internal/shared"
	"github.com/brewops/brewops/jobs"
)

// Enqueuer queues reminder runs.
type Enqueuer interface {
	EnqueueMonthlyReminder(ctx context.Context, payload jobs.MonthlyReminderPayload) (*asynq.TaskInfo, error)
}

// Inspector reads queue state.
type Inspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
}

// JobsCLI wraps manual management helpers for the job queue.
type JobsCLI struct {
	enqueuer  Enqueuer
	inspector Inspector
	now       func() time.Time
}

// NewJobsCLI builds the helpers over an existing client and inspector.
func NewJobsCLI(enqueuer Enqueuer, inspector Inspector) *JobsCLI {
	return &JobsCLI{enqueuer: enqueuer, inspector: inspector, now: time.Now}
}

// TriggerReminder enqueues a monthly reminder run. An empty month targets the
// previous calendar month.
func (c *JobsCLI) TriggerReminder(ctx context.Context, month string) (*asynq.TaskInfo, error) {
	if c == nil || c.enqueuer == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	if month == "" {
		month = jobs.PreviousMonth(c.now())
	}
	if !shared.IsYearMonth(month) {
		return nil, fmt.Errorf("jobs cli: month %q must be YYYY-MM", month)
	}
	return c.enqueuer.EnqueueMonthlyReminder(ctx, jobs.MonthlyReminderPayload{Month: month})
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Archived  int
}

// InspectQueue reports the metrics of the default queue.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Archived = info.Archived
	}
	return stats, nil
}

// ListScheduled returns the first page of scheduled tasks.
func (c *JobsCLI) ListScheduled(size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}

// Run dispatches `jobs <remind|stats|scheduled>` and returns a process exit code.
func (c *JobsCLI) Run(ctx context.Context, args []string, out io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(out, "usage: brewops jobs <remind [YYYY-MM]|stats|scheduled [n]>")
		return 2
	}
	switch args[0] {
	case "remind":
		month := ""
		if len(args) > 1 {
			month = args[1]
		}
		info, err := c.TriggerReminder(ctx, month)
		if err != nil {
			fmt.Fprintf(out, "remind: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "enqueued %s (%s) on queue %s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := c.InspectQueue()
		if err != nil {
			fmt.Fprintf(out, "stats: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
	case "scheduled":
		size := 10
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				fmt.Fprintf(out, "scheduled: invalid size %q\n", args[1])
				return 2
			}
			size = n
		}
		tasks, err := c.ListScheduled(size)
		if err != nil {
			fmt.Fprintf(out, "scheduled: %v\n", err)
			return 1
		}
		for _, t := range tasks {
			fmt.Fprintf(out, "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.UTC().Format(time.RFC3339))
		}
	default:
		fmt.Fprintf(out, "unknown jobs command %q\n", args[0])
		return 2
	}
	return 0
}
