package schedule

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Callback runs when a job comes due. The job is already gone from the
// pending set by the time it runs, so re-scheduling or cancelling from
// inside a callback behaves like any other caller.
type Callback func()

type job struct {
	id     string
	fireAt time.Time
	fn     Callback
}

// Scheduler owns the set of pending one-shot jobs. All access to the set
// goes through Schedule/Cancel/List/CancelAll; nothing else mutates it.
type Scheduler struct {
	clock  Clock
	logger *slog.Logger
	tick   time.Duration

	mu      sync.Mutex
	pending map[string]job
	closed  bool
}

// Option tweaks scheduler construction.
type Option func(*Scheduler)

// WithTick sets the due-check resolution. Default is one second.
func WithTick(d time.Duration) Option {
	return func(s *Scheduler) { s.tick = d }
}

func NewScheduler(clock Clock, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:   clock,
		logger:  logger,
		tick:    time.Second,
		pending: make(map[string]job),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule registers a one-shot job. It reports false when fireAt is not
// strictly in the future, when id already has a pending job, or after
// CancelAll has shut the scheduler down.
func (s *Scheduler) Schedule(id string, fireAt time.Time, fn Callback) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if !fireAt.After(s.clock.Now()) {
		return false
	}
	if _, exists := s.pending[id]; exists {
		return false
	}
	s.pending[id] = job{id: id, fireAt: fireAt, fn: fn}
	return true
}

// Cancel removes a pending job. Cancelling a job that already fired (or
// never existed) reports false; it is not an error.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	return true
}

// List returns the pending job ids, sorted for stable diagnostics output.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CancelAll drops every pending job and refuses new registrations. Used
// during graceful shutdown so no timer outlives the process teardown.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = make(map[string]job)
	s.closed = true
}

// Start runs the due-check loop until ctx is done, then cancels everything.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.CancelAll()
			return
		case <-ticker.C:
			s.FireDue(s.clock.Now())
		}
	}
}

// FireDue runs every job whose fireAt has passed. Due jobs are removed from
// the pending set before their callbacks start, so a callback observing the
// set never sees itself, and a concurrent Cancel on a firing id correctly
// reports not-found. Each callback runs on its own goroutine: a slow one
// delays only its own job, never other due jobs or the next due check.
// Callbacks are launched in fireAt order; only shared state behind the
// mutex is serialized, not the callbacks themselves.
func (s *Scheduler) FireDue(now time.Time) {
	s.mu.Lock()
	var due []job
	for id, j := range s.pending {
		if !j.fireAt.After(now) {
			due = append(due, j)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, k int) bool { return due[i].fireAt.Before(due[k].fireAt) })
	for _, j := range due {
		go s.run(j)
	}
}

// run invokes one callback, swallowing panics. The job already counts as
// fired; retries are the caller's policy, not the scheduler's.
func (s *Scheduler) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job callback panicked", "job_id", j.id, "panic", r)
		}
	}()
	j.fn()
}
