package work

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	runKeyPrefix = "scraper:task:running:"
	runningState = "running"
	// runTTL clears keys left behind by a process that died mid-run.
	runTTL = 24 * time.Hour
)

var ErrAlreadyRunning = errors.New("task is already running")

// RunGuard ensures a task id executes at most once at a time.
type RunGuard interface {
	Acquire(ctx context.Context, taskID string) error
	Release(ctx context.Context, taskID string) error
}

// KeyStore is the subset of Redis the guard needs.
type KeyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// RedisGuard marks running tasks with a SETNX key so duplicates are rejected
// across processes sharing the same Redis.
type RedisGuard struct {
	store KeyStore
}

func NewRedisGuard(store KeyStore) *RedisGuard {
	return &RedisGuard{store: store}
}

func (g *RedisGuard) key(taskID string) string {
	return runKeyPrefix + taskID
}

func (g *RedisGuard) Acquire(ctx context.Context, taskID string) error {
	ok, err := g.store.SetNX(ctx, g.key(taskID), runningState, runTTL)
	if err != nil {
		return fmt.Errorf("failed to mark task %s running: %w", taskID, err)
	}
	if !ok {
		return fmt.Errorf("task %s: %w", taskID, ErrAlreadyRunning)
	}
	return nil
}

func (g *RedisGuard) Release(ctx context.Context, taskID string) error {
	if err := g.store.Delete(ctx, g.key(taskID)); err != nil {
		return fmt.Errorf("failed to release task %s: %w", taskID, err)
	}
	return nil
}

// MemoryGuard is the single-process RunGuard used when Redis is disabled.
type MemoryGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{running: make(map[string]struct{})}
}

func (g *MemoryGuard) Acquire(_ context.Context, taskID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.running[taskID]; ok {
		return fmt.Errorf("task %s: %w", taskID, ErrAlreadyRunning)
	}
	g.running[taskID] = struct{}{}
	return nil
}

func (g *MemoryGuard) Release(_ context.Context, taskID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.running, taskID)
	return nil
}
