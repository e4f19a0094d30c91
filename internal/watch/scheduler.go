package watch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// RunFunc executes one regeneration attempt.
type RunFunc func(ctx context.Context) error

// Scheduler coalesces change notifications into serialized regeneration
// runs. Each notification starts (or restarts) a quiet-period timer; only
// when the quiet period elapses uninterrupted does the run begin. Runs never
// overlap: a run fired while another is still executing waits its turn.
type Scheduler struct {
	ctx    context.Context
	quiet  time.Duration
	run    RunFunc
	logger *slog.Logger

	mu      sync.Mutex
	stopped bool
	pending *task

	// runMu serializes pipeline executions.
	runMu sync.Mutex
	wg    sync.WaitGroup
}

// task is one pending regeneration attempt. Its cancellation flag is
// consulted exactly once, after the quiet-period wait and before any
// pipeline work.
type task struct {
	cancelled atomic.Bool
	timer     *time.Timer
}

// NewScheduler creates a scheduler that waits for quiet of no notifications
// before invoking run. ctx is handed to every run.
func NewScheduler(ctx context.Context, quiet time.Duration, run RunFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		ctx:    ctx,
		quiet:  quiet,
		run:    run,
		logger: logger,
	}
}

// Notify records a change: the current pending task (if any) is cancelled
// and a fresh quiet period begins. Safe to call from any goroutine; it
// never blocks on the pipeline.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.replaceLocked()

	t := &task{}
	s.wg.Add(1)
	t.timer = time.AfterFunc(s.quiet, func() { s.fire(t) })
	s.pending = t
}

// replaceLocked cancels the current pending task. Runs under mu so that
// cancel-and-replace is a single atomic step and two timers never coexist.
func (s *Scheduler) replaceLocked() {
	t := s.pending
	if t == nil {
		return
	}

	s.pending = nil
	t.cancelled.Store(true)

	if t.timer.Stop() {
		// The timer never fired; its callback will not run, so release its
		// WaitGroup slot here.
		s.wg.Done()
	}
	// Otherwise the callback is already underway and the cancellation flag
	// stops it before the pipeline; it releases the WaitGroup itself.
}

// fire runs when a task's quiet period elapses.
func (s *Scheduler) fire(t *task) {
	defer s.wg.Done()

	if t.cancelled.Load() {
		return
	}

	s.mu.Lock()
	if s.pending == t {
		s.pending = nil
	}
	s.mu.Unlock()

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if err := s.run(s.ctx); err != nil {
		s.logger.Error("regeneration failed", slog.String("error", err.Error()))
	}
}

// Stop cancels any pending task and waits for an in-progress run to finish.
// The scheduler is terminal afterwards: further Notify calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.replaceLocked()
	s.mu.Unlock()

	s.wg.Wait()
}
