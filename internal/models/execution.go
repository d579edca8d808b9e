package models

import "time"

type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
	ExecutionRunning ExecutionStatus = "running"
)

type CronMode string

const (
	ModeStandard CronMode = "standard"
	ModeInterval CronMode = "interval"
)

// ExecutionRecord summarizes one scheduler-triggered batch run.
// Records are append-only and consumed only for display.
type ExecutionRecord struct {
	ID           int64           `json:"id"`
	ExecutedAt   time.Time       `json:"executed_at"`
	Status       ExecutionStatus `json:"status"`
	EmailsSent   int             `json:"emails_sent"`
	EmailsFailed int             `json:"emails_failed"`
	ErrorMessage string          `json:"error_message,omitempty"`
	DurationMS   int64           `json:"execution_time_ms"`
	Mode         CronMode        `json:"cron_mode"`
}

// BatchResult aggregates one complete pass over the pending recipients.
type BatchResult struct {
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}
