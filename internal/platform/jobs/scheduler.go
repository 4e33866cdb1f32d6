package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RetryPolicy bounds how a failed scheduled run is retried. Attempts
// beyond MaxAttempts are abandoned until the next scheduled trigger.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

type trigger struct {
	jobType string
	month   time.Month
	day     int
	hour    int
}

// The three policy triggers: the year-end grant at midnight on 31
// December, the carryforward cleanup at midnight on 31 March, and the
// expiry reminder on the morning of 15 March.
var triggers = []trigger{
	{JobYearEndGrant, time.December, 31, 0},
	{JobCarryforwardCleanup, time.March, 31, 0},
	{JobCarryforwardReminder, time.March, 15, 9},
}

// nextOccurrence finds the first instant of tr at or after now.
func nextOccurrence(now time.Time, tr trigger, loc *time.Location) time.Time {
	now = now.In(loc)
	candidate := time.Date(now.Year(), tr.month, tr.day, tr.hour, 0, 0, 0, loc)
	if candidate.Before(now) {
		candidate = time.Date(now.Year()+1, tr.month, tr.day, tr.hour, 0, 0, 0, loc)
	}
	return candidate
}

// Scheduler owns the long-running goroutines that fire the policy jobs.
// It is a plain value constructed and started by the server, so tests
// can build one against a fake clock and stop it deterministically.
type Scheduler struct {
	Runner   *Runner
	Retry    RetryPolicy
	Location *time.Location
	Logger   *slog.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(runner *Runner, retry RetryPolicy, loc *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{Runner: runner, Retry: retry, Location: loc, Logger: logger}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Start launches one goroutine per trigger. Calling Start twice is a
// no-op until Stop runs.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	for _, tr := range triggers {
		s.wg.Add(1)
		go func(tr trigger) {
			defer s.wg.Done()
			s.loop(ctx, tr)
		}(tr)
	}
	s.Logger.Info("policy scheduler started", "timezone", s.Location.String())
}

// Stop cancels the trigger goroutines and waits for them to exit. A run
// already in flight finishes its current ledger transaction.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.Logger.Info("policy scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, tr trigger) {
	for {
		next := nextOccurrence(s.now(), tr, s.Location)
		s.Logger.Info("policy job scheduled", "jobType", tr.jobType, "at", next)

		if !s.sleepUntil(ctx, next) {
			return
		}
		s.runWithRetry(ctx, tr.jobType)

		// Step past the trigger instant so the same occurrence is not
		// picked again on a fast clock.
		if !s.sleepUntil(ctx, next.Add(time.Minute)) {
			return
		}
	}
}

// sleepUntil blocks until the wall clock reaches t or ctx is cancelled.
// Returns false on cancellation.
func (s *Scheduler) sleepUntil(ctx context.Context, t time.Time) bool {
	for {
		d := t.Sub(s.now())
		if d <= 0 {
			return true
		}
		// Re-check periodically so a suspended host that jumps its clock
		// does not oversleep by months.
		if d > time.Hour {
			d = time.Hour
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runWithRetry(ctx context.Context, jobType string) {
	attempts := s.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		_, err := s.Runner.Run(ctx, jobType, TriggerScheduled, false, s.now().In(s.Location))
		if err == nil {
			return
		}
		s.Logger.Error("scheduled policy run failed",
			"jobType", jobType, "attempt", attempt, "maxAttempts", attempts, "error", err)

		if attempt == attempts {
			return
		}
		timer := time.NewTimer(s.Retry.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
