package usecase

import (
	"context"
	"log/slog"
	"sync"
)

// Task is one detached unit of scrape work.
type Task func(ctx context.Context)

// Dispatcher runs tasks on a small fixed worker pool. It preserves the
// accept-immediately contract of background profiles while giving detached
// work a bounded queue and a drain on shutdown instead of silent loss.
type Dispatcher struct {
	tasks   chan Task
	workers int
	wg      sync.WaitGroup
	logger  *slog.Logger
	started bool
	mu      sync.Mutex
}

// NewDispatcher sizes the queue and worker count from configuration.
func NewDispatcher(workers, queueSize int, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		tasks:   make(chan Task, queueSize),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the workers; tasks receive ctx as their base context so a
// detached scrape outlives the request that spawned it but not the process.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for task := range d.tasks {
				task(ctx)
			}
		}()
	}
}

// Enqueue hands a task to the pool without blocking the caller. A full
// queue drops the task and reports false so the caller can sink the
// failure somewhere observable.
func (d *Dispatcher) Enqueue(task Task) bool {
	select {
	case d.tasks <- task:
		return true
	default:
		d.logger.Warn("dispatcher queue full")
		return false
	}
}

// Stop closes intake and waits for in-flight tasks to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return
	}
	d.started = false
	close(d.tasks)
	d.wg.Wait()
}
