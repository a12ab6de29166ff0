package models

import "time"

// TaskStatus is the lifecycle state of a scrape task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

// TaskResponse is the API view of a persisted task.
type TaskResponse struct {
	TaskID          string     `json:"task_id"`
	City            string     `json:"city"`
	Region          string     `json:"region"`
	PropertyType    string     `json:"property_type"`
	MaxPages        int32      `json:"max_pages"`
	Status          TaskStatus `json:"status"`
	PropertiesFound int32      `json:"properties_found"`
	Error           *string    `json:"error,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds *int32     `json:"duration_seconds,omitempty"`
}

// TaskEvent is published on every task transition.
type TaskEvent struct {
	TaskID          string     `json:"task_id"`
	Status          TaskStatus `json:"status"`
	PropertiesFound int32      `json:"properties_found"`
	Error           string     `json:"error,omitempty"`
	Timestamp       time.Time  `json:"timestamp"`
}

// ScrapeAccepted is returned when a scrape job is submitted.
type ScrapeAccepted struct {
	TaskID  string     `json:"task_id"`
	Status  TaskStatus `json:"status"`
	Message string     `json:"message"`
}

type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int64          `json:"total"`
}

type LogsResponse struct {
	Logs []string `json:"logs"`
}
