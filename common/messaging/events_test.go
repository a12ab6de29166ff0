package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
)

type recordingPublisher struct {
	subject string
	data    []byte
	err     error
}

func (r *recordingPublisher) PublishSync(ctx context.Context, subject string, data []byte) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected publish deadline")
	}
	r.subject = subject
	r.data = data
	return r.err
}

func TestPublishTaskEvent(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewTaskEventPublisher(rec)

	event := models.TaskEvent{
		TaskID:          "ab12cd34",
		Status:          models.TaskStatusCompleted,
		PropertiesFound: 3,
		Timestamp:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := pub.PublishTaskEvent(context.Background(), event); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if rec.subject != "scraper.task.completed" {
		t.Errorf("Expected subject scraper.task.completed, got %s", rec.subject)
	}

	var got models.TaskEvent
	if err := json.Unmarshal(rec.data, &got); err != nil {
		t.Fatal(err)
	}
	if got.TaskID != event.TaskID || got.PropertiesFound != 3 {
		t.Errorf("Unexpected payload: %+v", got)
	}
}

func TestPublishTaskEventError(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("no responders")}
	pub := NewTaskEventPublisher(rec)

	err := pub.PublishTaskEvent(context.Background(), models.TaskEvent{Status: models.TaskStatusFailed})
	if err == nil {
		t.Error("Expected publish error to propagate")
	}
	if rec.subject != "scraper.task.failed" {
		t.Errorf("Expected subject scraper.task.failed, got %s", rec.subject)
	}
}
