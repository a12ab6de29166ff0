package work

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidQueueSize   = errors.New("invalid queue size")
	ErrPoolStopped        = errors.New("worker pool has been stopped")
	ErrQueueFull          = errors.New("task queue is full")
	ErrTaskTimeout        = errors.New("task execution timeout")
	ErrTaskPanicked       = errors.New("task panicked")
)

// TaskResult is the outcome of one executed task.
type TaskResult[T any] struct {
	TaskID    string
	Result    T
	Error     error
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

func (tr *TaskResult[T]) IsSuccess() bool {
	return tr.Error == nil
}

// Executor is a unit of work accepted by the pool.
type Executor[T any] interface {
	ExecutorID() string
	Execute(ctx context.Context) (T, error)
	OnError(error)
	// Timeout overrides the pool default; 0 keeps it.
	Timeout() time.Duration
}

type PoolConfig struct {
	NumWorkers int
	QueueSize  int
	ResultSize int
	// TaskTimeout bounds each task. Zero means tasks run until they return.
	TaskTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers:      4,
		QueueSize:       50,
		ResultSize:      8,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Pool runs queued tasks on a fixed set of goroutines.
type Pool[T any] struct {
	config  PoolConfig
	tasks   chan Executor[T]
	results chan TaskResult[T]
	quit    chan struct{}
	wg      sync.WaitGroup

	activeWorkers  int64
	tasksQueued    int64
	tasksCompleted int64
	tasksFailed    int64

	started bool
	stopped bool
	mu      sync.RWMutex
}

func NewWorkerPool[T any](numWorkers int, queueSize int) (*Pool[T], error) {
	config := DefaultPoolConfig()
	config.NumWorkers = numWorkers
	config.QueueSize = queueSize
	config.ResultSize = numWorkers * 2
	return NewWorkerPoolWithConfig[T](config)
}

func NewWorkerPoolWithConfig[T any](config PoolConfig) (*Pool[T], error) {
	if config.NumWorkers <= 0 {
		return nil, ErrInvalidWorkerCount
	}
	if config.QueueSize < 0 {
		return nil, ErrInvalidQueueSize
	}
	if config.ResultSize < 0 {
		config.ResultSize = config.NumWorkers * 2
	}
	if config.TaskTimeout < 0 {
		config.TaskTimeout = 0
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	return &Pool[T]{
		config:  config,
		tasks:   make(chan Executor[T], config.QueueSize),
		results: make(chan TaskResult[T], config.ResultSize),
		quit:    make(chan struct{}),
	}, nil
}

// Start launches the workers. Calling it again is a no-op.
func (p *Pool[T]) Start(ctx context.Context, poolID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.stopped {
		return
	}
	p.started = true

	for i := 0; i < p.config.NumWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, poolID, i)
	}

	log.Info().
		Str("workerPoolID", poolID).
		Int("numWorkers", p.config.NumWorkers).
		Msg("Worker pool started")
}

// Stop closes the queue and waits for running tasks up to ShutdownTimeout.
func (p *Pool[T]) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.quit)
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(p.results)
		log.Info().Msg("All workers stopped gracefully")
	case <-time.After(p.config.ShutdownTimeout):
		log.Warn().Dur("timeout", p.config.ShutdownTimeout).Msg("Shutdown timeout exceeded")
	}
}

// Submit queues a task, blocking until there is room or ctx is done.
func (p *Pool[T]) Submit(ctx context.Context, task Executor[T]) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- task:
		atomic.AddInt64(&p.tasksQueued, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit queues a task or fails with ErrQueueFull.
func (p *Pool[T]) TrySubmit(task Executor[T]) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- task:
		atomic.AddInt64(&p.tasksQueued, 1)
		return nil
	default:
		return ErrQueueFull
	}
}

// Results streams finished tasks. Results are dropped when nobody reads them.
func (p *Pool[T]) Results() <-chan TaskResult[T] {
	return p.results
}

type PoolStats struct {
	ActiveWorkers  int64 `json:"active_workers"`
	TasksQueued    int64 `json:"tasks_queued"`
	TasksCompleted int64 `json:"tasks_completed"`
	TasksFailed    int64 `json:"tasks_failed"`
	TasksInQueue   int64 `json:"tasks_in_queue"`
}

func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		ActiveWorkers:  atomic.LoadInt64(&p.activeWorkers),
		TasksQueued:    atomic.LoadInt64(&p.tasksQueued),
		TasksCompleted: atomic.LoadInt64(&p.tasksCompleted),
		TasksFailed:    atomic.LoadInt64(&p.tasksFailed),
		TasksInQueue:   int64(len(p.tasks)),
	}
}

func (p *Pool[T]) worker(ctx context.Context, poolID string, workerID int) {
	defer p.wg.Done()
	atomic.AddInt64(&p.activeWorkers, 1)
	defer atomic.AddInt64(&p.activeWorkers, -1)

	for {
		select {
		case <-ctx.Done():
			log.Info().
				Str("workerPoolID", poolID).
				Int("workerID", workerID).
				Msg("Worker stopped due to context cancellation")
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.execute(ctx, task, workerID, poolID)
		}
	}
}

func (p *Pool[T]) execute(ctx context.Context, task Executor[T], workerID int, poolID string) {
	taskID := task.ExecutorID()
	start := time.Now()

	timeout := p.config.TaskTimeout
	if t := task.Timeout(); t > 0 {
		timeout = t
	}

	var (
		taskCtx context.Context
		cancel  context.CancelFunc
	)
	if timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		taskCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	log.Debug().
		Str("workerPoolID", poolID).
		Int("workerID", workerID).
		Str("taskID", taskID).
		Msg("Executing task")

	result, err := runSafely(taskCtx, task)
	end := time.Now()

	if err != nil && errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", ErrTaskTimeout, err)
	}

	if err != nil {
		atomic.AddInt64(&p.tasksFailed, 1)
		task.OnError(err)
	}
	atomic.AddInt64(&p.tasksCompleted, 1)

	select {
	case p.results <- TaskResult[T]{
		TaskID:    taskID,
		Result:    result,
		Error:     err,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}:
	default:
		log.Debug().Str("taskID", taskID).Msg("Result channel full, dropping result")
	}

	log.Debug().
		Str("workerPoolID", poolID).
		Int("workerID", workerID).
		Str("taskID", taskID).
		Dur("duration", end.Sub(start)).
		Bool("success", err == nil).
		Msg("Task completed")
}

// runSafely keeps one misbehaving task from killing its worker.
func runSafely[T any](ctx context.Context, task Executor[T]) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task.Execute(ctx)
}
