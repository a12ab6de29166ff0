package models

import (
	"fmt"
	"strings"
	"time"
)

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelError LogLevel = "error"
)

// LogEntry is an in-memory task log line. It is never persisted.
type LogEntry struct {
	TaskID    string    `json:"task_id"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// String renders the entry as "[timestamp] LEVEL: message".
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Timestamp.Format(time.RFC3339), strings.ToUpper(string(e.Level)), e.Message)
}
