package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	TaskEventStream = "SCRAPER_TASKS"
	taskSubjectRoot = "scraper.task"
	taskEventMaxAge = 7 * 24 * time.Hour
	publishTimeout  = 5 * time.Second
)

// TaskSubject returns the subject a task event with the given status goes to.
func TaskSubject(status models.TaskStatus) string {
	return fmt.Sprintf("%s.%s", taskSubjectRoot, status)
}

// TaskEventPublisher announces task transitions to other services.
type TaskEventPublisher interface {
	PublishTaskEvent(ctx context.Context, event models.TaskEvent) error
}

// Publisher is satisfied by NatsBroker.
type Publisher interface {
	PublishSync(ctx context.Context, subject string, data []byte) error
}

type natsEventPublisher struct {
	publisher Publisher
}

func NewTaskEventPublisher(publisher Publisher) TaskEventPublisher {
	return &natsEventPublisher{publisher: publisher}
}

func (p *natsEventPublisher) PublishTaskEvent(ctx context.Context, event models.TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal task event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.publisher.PublishSync(ctx, TaskSubject(event.Status), data)
}

// NopPublisher drops every event. Used when NATS is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishTaskEvent(context.Context, models.TaskEvent) error {
	return nil
}

// EnsureTaskStream declares the stream that captures task events.
func EnsureTaskStream(ctx context.Context, broker *NatsBroker) error {
	_, err := broker.CreateStream(ctx, jetstream.StreamConfig{
		Name:     TaskEventStream,
		Subjects: []string{taskSubjectRoot + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   taskEventMaxAge,
	})
	return err
}
