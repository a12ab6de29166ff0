package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common/logger"
	"github.com/LexiconIndonesia/property-scraper-service/common/messaging"
	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/LexiconIndonesia/property-scraper-service/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
)

// TaskStore is the persistence the tracker needs. *repository.Queries implements it.
type TaskStore interface {
	CreateTask(ctx context.Context, arg repository.CreateTaskParams) (repository.Task, error)
	GetTaskByID(ctx context.Context, id string) (repository.Task, error)
	ListTasks(ctx context.Context, arg repository.ListTasksParams) ([]repository.Task, error)
	CountTasks(ctx context.Context) (int64, error)
	UpdateTaskStatus(ctx context.Context, arg repository.UpdateTaskStatusParams) (repository.Task, error)
}

// TaskSpec describes a submitted scrape job.
type TaskSpec struct {
	ID           string
	City         string
	Region       string
	PropertyType string
	MaxPages     int
}

// TaskTracker owns task state transitions. Each transition is persisted
// and mirrored to the in-memory log buffer and the event publisher.
type TaskTracker struct {
	store  TaskStore
	logs   logger.LogBuffer
	events messaging.TaskEventPublisher
	now    func() time.Time
}

func NewTaskTracker(store TaskStore, logs logger.LogBuffer, events messaging.TaskEventPublisher) *TaskTracker {
	if events == nil {
		events = messaging.NopPublisher{}
	}
	return &TaskTracker{
		store:  store,
		logs:   logs,
		events: events,
		now:    time.Now,
	}
}

func (t *TaskTracker) Create(ctx context.Context, ts TaskSpec) (repository.Task, error) {
	task, err := t.store.CreateTask(ctx, repository.CreateTaskParams{
		ID:           ts.ID,
		City:         ts.City,
		Region:       ts.Region,
		PropertyType: ts.PropertyType,
		MaxPages:     int32(ts.MaxPages),
		Status:       string(models.TaskStatusPending),
		StartTime:    t.now(),
	})
	if err != nil {
		return repository.Task{}, fmt.Errorf("create task %s: %w", ts.ID, err)
	}

	t.record(ctx, task, models.LogLevelInfo, fmt.Sprintf(
		"Task created: %s in %s/%s, up to %d pages", ts.PropertyType, ts.City, ts.Region, ts.MaxPages))
	return task, nil
}

func (t *TaskTracker) MarkRunning(ctx context.Context, taskID string) error {
	current, err := t.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if models.TaskStatus(current.Status) != models.TaskStatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, models.TaskStatusRunning)
	}

	task, err := t.update(ctx, repository.UpdateTaskStatusParams{
		ID:     taskID,
		Status: string(models.TaskStatusRunning),
	})
	if err != nil {
		return err
	}

	t.record(ctx, task, models.LogLevelInfo, fmt.Sprintf(
		"Started scraping %s in %s/%s", task.PropertyType, task.City, task.Region))
	return nil
}

// Progress stores the cumulative count. A lower count than already stored is ignored.
func (t *TaskTracker) Progress(ctx context.Context, taskID string, found int) error {
	current, err := t.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if models.TaskStatus(current.Status) != models.TaskStatusRunning {
		return fmt.Errorf("%w: progress while %s", ErrInvalidTransition, current.Status)
	}

	found = max(found, int(current.PropertiesFound))
	task, err := t.update(ctx, repository.UpdateTaskStatusParams{
		ID:              taskID,
		Status:          string(models.TaskStatusRunning),
		PropertiesFound: int4(found),
	})
	if err != nil {
		return err
	}

	t.record(ctx, task, models.LogLevelInfo, fmt.Sprintf("Found %d properties so far", found))
	return nil
}

func (t *TaskTracker) Complete(ctx context.Context, taskID string, found int) error {
	task, err := t.finish(ctx, taskID, models.TaskStatusCompleted, int4(found), pgtype.Text{})
	if err != nil {
		return err
	}

	t.record(ctx, task, models.LogLevelInfo, fmt.Sprintf(
		"Scraping completed. Found %d properties in %ds", task.PropertiesFound, task.DurationSeconds.Int32))
	return nil
}

func (t *TaskTracker) Fail(ctx context.Context, taskID string, message string) error {
	task, err := t.finish(ctx, taskID, models.TaskStatusFailed, pgtype.Int4{}, pgtype.Text{String: message, Valid: true})
	if err != nil {
		return err
	}

	t.record(ctx, task, models.LogLevelError, "Scraping failed: "+message)
	return nil
}

func (t *TaskTracker) finish(ctx context.Context, taskID string, status models.TaskStatus, found pgtype.Int4, errMsg pgtype.Text) (repository.Task, error) {
	current, err := t.Get(ctx, taskID)
	if err != nil {
		return repository.Task{}, err
	}
	if models.TaskStatus(current.Status).IsTerminal() {
		return repository.Task{}, fmt.Errorf("%w: %s is %s", ErrTerminalTask, taskID, current.Status)
	}

	end := t.now()
	return t.update(ctx, repository.UpdateTaskStatusParams{
		ID:              taskID,
		Status:          string(status),
		PropertiesFound: found,
		Error:           errMsg,
		EndTime:         timestamptz(end),
		DurationSeconds: int4(DurationSeconds(current.StartTime, end)),
	})
}

// DurationSeconds is end - start rounded to whole seconds, never negative.
func DurationSeconds(start, end time.Time) int {
	d := end.Sub(start).Seconds()
	if d < 0 {
		return 0
	}
	return int(math.Round(d))
}

func (t *TaskTracker) update(ctx context.Context, arg repository.UpdateTaskStatusParams) (repository.Task, error) {
	task, err := t.store.UpdateTaskStatus(ctx, arg)
	if errors.Is(err, pgx.ErrNoRows) {
		// the row exists (checked by the caller) so the terminal guard in the query matched
		return repository.Task{}, fmt.Errorf("%w: %s", ErrTerminalTask, arg.ID)
	}
	if err != nil {
		return repository.Task{}, fmt.Errorf("update task %s: %w", arg.ID, err)
	}
	return task, nil
}

func (t *TaskTracker) record(ctx context.Context, task repository.Task, level models.LogLevel, msg string) {
	now := t.now()
	t.logs.Append(models.LogEntry{
		TaskID:    task.ID,
		Level:     level,
		Message:   msg,
		Timestamp: now,
	})

	ev := log.Info()
	if level == models.LogLevelError {
		ev = log.Error()
	}
	ev.Str("taskID", task.ID).Str("status", task.Status).Msg(msg)

	event := models.TaskEvent{
		TaskID:          task.ID,
		Status:          models.TaskStatus(task.Status),
		PropertiesFound: task.PropertiesFound,
		Error:           task.Error.String,
		Timestamp:       now,
	}
	if err := t.events.PublishTaskEvent(ctx, event); err != nil {
		log.Warn().Err(err).Str("taskID", task.ID).Msg("Failed to publish task event")
	}
}

func (t *TaskTracker) Get(ctx context.Context, taskID string) (repository.Task, error) {
	task, err := t.store.GetTaskByID(ctx, taskID)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if err != nil {
		return repository.Task{}, fmt.Errorf("get task %s: %w", taskID, err)
	}
	return task, nil
}

// List returns tasks newest first together with the total count.
func (t *TaskTracker) List(ctx context.Context, skip, limit int) ([]repository.Task, int64, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	tasks, err := t.store.ListTasks(ctx, repository.ListTasksParams{
		Limit:  int32(min(limit, MaxPageLimit)),
		Offset: int32(max(skip, 0)),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	total, err := t.store.CountTasks(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}
	return tasks, total, nil
}

// Logs returns up to limit buffered entries, newest first. An empty taskID
// returns entries of every task.
func (t *TaskTracker) Logs(taskID string, limit int) []models.LogEntry {
	if taskID == "" {
		return t.logs.Recent(limit)
	}
	return t.logs.ByTask(taskID, limit)
}
