package report

import (
	"time"
)

// TaskStatus represents the outcome of one read task
type TaskStatus string

const (
	StatusSuccess TaskStatus = "success"
	StatusFailed  TaskStatus = "failed"
)

// TaskRecord is the persisted outcome of one range read
type TaskRecord struct {
	Bucket     string     `json:"bucket"`
	Key        string     `json:"key"`
	Range      string     `json:"range"`
	Bytes      int64      `json:"bytes"`
	DurationMs int64      `json:"duration_ms"`
	Status     TaskStatus `json:"status"`
	LastError  string     `json:"last_error,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Summary aggregates the persisted results of a run.
type Summary struct {
	Success int64
	Failed  int64
	Bytes   int64
}

// Store defines the interface for result persistence
type Store interface {
	SaveTask(record *TaskRecord) error
	ListFailedTasks() ([]*TaskRecord, error)
	Summarize() (Summary, error)

	// Cleanup
	Close() error
}
