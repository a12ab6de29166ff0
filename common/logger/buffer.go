package logger

import (
	"sync"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
)

const DefaultBufferCapacity = 100

// LogBuffer keeps the most recent task log entries in memory.
type LogBuffer interface {
	Append(entry models.LogEntry)
	// ByTask returns up to limit entries for taskID, newest first.
	ByTask(taskID string, limit int) []models.LogEntry
	// Recent returns up to limit entries across all tasks, newest first.
	Recent(limit int) []models.LogEntry
	Len() int
}

// RingBuffer is a fixed-capacity LogBuffer that evicts the oldest entry on overflow.
type RingBuffer struct {
	mu      sync.Mutex
	entries []models.LogEntry
	head    int
	size    int
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &RingBuffer{
		entries: make([]models.LogEntry, capacity),
	}
}

func (b *RingBuffer) Append(entry models.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.head] = entry
	b.head = (b.head + 1) % len(b.entries)
	if b.size < len(b.entries) {
		b.size++
	}
}

func (b *RingBuffer) ByTask(taskID string, limit int) []models.LogEntry {
	return b.collect(limit, func(e models.LogEntry) bool {
		return e.TaskID == taskID
	})
}

func (b *RingBuffer) Recent(limit int) []models.LogEntry {
	return b.collect(limit, func(models.LogEntry) bool { return true })
}

func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

func (b *RingBuffer) Cap() int {
	return len(b.entries)
}

// collect walks from newest to oldest.
func (b *RingBuffer) collect(limit int, keep func(models.LogEntry) bool) []models.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 || limit > b.size {
		limit = b.size
	}
	out := make([]models.LogEntry, 0, limit)
	for i := 1; i <= b.size && len(out) < limit; i++ {
		idx := (b.head - i + len(b.entries)) % len(b.entries)
		if keep(b.entries[idx]) {
			out = append(out, b.entries[idx])
		}
	}
	return out
}
