package crawlers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LexiconIndonesia/property-scraper-service/common/work"
	"github.com/LexiconIndonesia/property-scraper-service/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	taskIDLength = 8
	poolID       = "scraper"
)

var (
	// ErrBusy is returned when no more jobs can be queued.
	ErrBusy = errors.New("scraper is busy, try again later")
	// ErrShutdown is recorded on tasks still queued or running when the dispatcher stops.
	ErrShutdown = errors.New("scraper shut down before the task finished")
)

// NewTaskID returns a short random task id.
func NewTaskID() string {
	return uuid.NewString()[:taskIDLength]
}

// Dispatcher accepts scrape requests and runs them in the background on a
// worker pool.
type Dispatcher struct {
	orchestrator *Orchestrator
	pool         *work.Pool[struct{}]

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewDispatcher(orchestrator *Orchestrator, pool *work.Pool[struct{}]) *Dispatcher {
	return &Dispatcher{
		orchestrator: orchestrator,
		pool:         pool,
		inflight:     make(map[string]struct{}),
	}
}

// Start launches the workers. Jobs run with ctx, so cancelling it stops
// the workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.pool.Start(ctx, poolID)
	go d.drain()
}

// Stop stops accepting jobs and waits for running ones. Tasks that are
// still queued or running afterwards are marked failed.
func (d *Dispatcher) Stop() {
	d.pool.Stop()

	d.mu.Lock()
	unfinished := make([]string, 0, len(d.inflight))
	for id := range d.inflight {
		unfinished = append(unfinished, id)
	}
	d.mu.Unlock()

	for _, id := range unfinished {
		log.Warn().Str("taskID", id).Msg("Failing unfinished task on shutdown")
		d.orchestrator.fail(context.Background(), id, ErrShutdown)
	}
}

func (d *Dispatcher) track(taskID string) {
	d.mu.Lock()
	d.inflight[taskID] = struct{}{}
	d.mu.Unlock()
}

func (d *Dispatcher) untrack(taskID string) {
	d.mu.Lock()
	delete(d.inflight, taskID)
	d.mu.Unlock()
}

func (d *Dispatcher) Stats() work.PoolStats {
	return d.pool.Stats()
}

func (d *Dispatcher) drain() {
	for res := range d.pool.Results() {
		if res.IsSuccess() {
			log.Info().Str("taskID", res.TaskID).Dur("duration", res.Duration).Msg("Scrape job finished")
			continue
		}
		log.Error().Err(res.Error).Str("taskID", res.TaskID).Dur("duration", res.Duration).Msg("Scrape job failed")
	}
}

// Submit creates the pending task and queues the job. A missing TaskID is
// generated. When the queue is full the task is marked failed and ErrBusy
// is returned.
func (d *Dispatcher) Submit(ctx context.Context, req ScrapeRequest) (repository.Task, error) {
	if req.TaskID == "" {
		req.TaskID = NewTaskID()
	}

	task, err := d.orchestrator.Prepare(ctx, req)
	if err != nil {
		return repository.Task{}, err
	}

	job, err := work.SimpleTask(func(jobCtx context.Context) error {
		defer d.untrack(req.TaskID)
		return d.orchestrator.Execute(jobCtx, req)
	}, work.WithID[struct{}](req.TaskID))
	if err != nil {
		d.orchestrator.fail(ctx, req.TaskID, err)
		return repository.Task{}, err
	}

	d.track(req.TaskID)
	if err := d.pool.TrySubmit(job); err != nil {
		d.untrack(req.TaskID)
		d.orchestrator.fail(ctx, req.TaskID, fmt.Errorf("could not queue task: %w", err))
		if errors.Is(err, work.ErrQueueFull) || errors.Is(err, work.ErrPoolStopped) {
			return repository.Task{}, fmt.Errorf("%w: %w", ErrBusy, err)
		}
		return repository.Task{}, err
	}

	log.Info().Str("taskID", req.TaskID).Msg("Scrape job queued")
	return task, nil
}
