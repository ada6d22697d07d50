package scheduler

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// DefaultTaskTimeout bounds a single deferred task.
const DefaultTaskTimeout = 10 * time.Second

// TaskFunc is the work run once the delay elapses.
type TaskFunc func(ctx context.Context)

type pendingTask struct {
	timer *time.Timer
}

// Scheduler runs one-shot deferred tasks keyed by a string.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*pendingTask
	timeout time.Duration
	closed  bool
}

// New creates a scheduler whose tasks run with the given timeout (DefaultTaskTimeout when zero).
func New(timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	return &Scheduler{
		tasks:   make(map[string]*pendingTask),
		timeout: timeout,
	}
}

// After runs fn once after delay. Scheduling a key that is still pending replaces the earlier task.
func (s *Scheduler) After(key string, delay time.Duration, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		log.Printf("[Scheduler Task:%s] Scheduler is shut down, task dropped.", key)
		return
	}
	if prev, ok := s.tasks[key]; ok {
		prev.timer.Stop()
	}

	task := &pendingTask{}
	task.timer = time.AfterFunc(delay, func() {
		if !s.take(key, task) {
			return
		}
		s.run(key, fn)
	})
	s.tasks[key] = task
}

// take removes the task from the pending set. It returns false if the task was replaced meanwhile.
func (s *Scheduler) take(key string, task *pendingTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.tasks[key]; !ok || current != task {
		return false
	}
	delete(s.tasks, key)
	return true
}

func (s *Scheduler) run(key string, fn TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler Task:%s] PANIC recovered: %v\n%s", key, r, debug.Stack())
			sentry.CurrentHub().Recover(r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	fn(ctx)
}

// Pending returns the number of tasks that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Shutdown stops all pending timers. Tasks scheduled afterwards are dropped.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Println("[Scheduler] Shutting down, stopping pending timers...")
	stopped := 0
	for key, task := range s.tasks {
		if task.timer.Stop() {
			stopped++
		}
		delete(s.tasks, key)
	}
	s.closed = true
	log.Printf("[Scheduler] Shutdown complete. Stopped %d pending task(s).", stopped)
}
