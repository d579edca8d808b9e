package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"JobReach/internal/metrics"
	"JobReach/internal/models"
	"JobReach/internal/store"
)

// BatchFunc is the in-process batch invocation the scheduler fires. Replaces
// the self-HTTP-call the service used to make against its own send endpoint.
type BatchFunc func(ctx context.Context) (*models.BatchResult, error)

// Config selects one of the two scheduling policies.
type Config struct {
	// IntervalMode picks the rolling "every N days after last success at
	// HH:MM" policy over the fixed cron expression.
	IntervalMode bool

	// Expression is a five-field cron spec (minute hour day month weekday),
	// standard mode only.
	Expression string

	IntervalDays int
	Hour         int
	Minute       int
}

// Describe renders the schedule for status responses.
func (c Config) Describe() string {
	if c.IntervalMode {
		return fmt.Sprintf("Every %d days at %d:%02d", c.IntervalDays, c.Hour, c.Minute)
	}
	return c.Expression
}

// Status is a pure read of in-memory scheduler state.
type Status struct {
	IsRunning bool            `json:"isRunning"`
	Mode      models.CronMode `json:"mode"`
	Schedule  string          `json:"schedule"`
	LastRun   *time.Time      `json:"lastRun,omitempty"`
}

// Scheduler owns the single active timer. Start, Stop and Status are safe for
// concurrent use; at most one schedule is armed at a time.
//
// The interval policy's last-run memory is in-process only: a restart resets
// the rolling schedule to "next occurrence of HH:MM".
type Scheduler struct {
	run        BatchFunc
	store      store.Store
	log        *zap.Logger
	now        func() time.Time
	retryDelay time.Duration

	mu      sync.Mutex
	cfg     Config
	active  bool
	gen     uint64
	cronJob *robfig.Cron
	timer   *time.Timer
	lastRun *time.Time
}

func New(run BatchFunc, st store.Store, log *zap.Logger) *Scheduler {
	return &Scheduler{
		run:        run,
		store:      st,
		log:        log,
		now:        time.Now,
		retryDelay: time.Hour,
	}
}

// ValidateExpression reports whether expr is a well-formed five-field cron
// spec. Pure function; used to reject bad input before arming anything.
func ValidateExpression(expr string) error {
	_, err := robfig.ParseStandard(expr)
	return err
}

// Start arms the schedule described by cfg. A schedule that is already active
// is cancelled first; only one may be armed at a time.
func (s *Scheduler) Start(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !cfg.IntervalMode {
		if err := ValidateExpression(cfg.Expression); err != nil {
			return fmt.Errorf("invalid cron schedule format: %w", err)
		}
	} else if cfg.IntervalDays < 1 {
		return fmt.Errorf("interval days must be >= 1, got %d", cfg.IntervalDays)
	}

	s.cancelLocked()
	s.cfg = cfg
	s.active = true
	s.gen++

	if cfg.IntervalMode {
		s.armIntervalLocked(s.gen)
		s.log.Info("interval schedule started",
			zap.Int("interval_days", cfg.IntervalDays),
			zap.Int("hour", cfg.Hour),
			zap.Int("minute", cfg.Minute),
		)
	} else {
		gen := s.gen
		job := robfig.New()
		if _, err := job.AddFunc(cfg.Expression, func() { s.fire(gen, models.ModeStandard) }); err != nil {
			s.active = false
			return fmt.Errorf("invalid cron schedule format: %w", err)
		}
		job.Start()
		s.cronJob = job
		s.log.Info("cron schedule started", zap.String("schedule", cfg.Expression))
	}

	metrics.SchedulerActive.Set(1)
	return nil
}

// Stop cancels any armed timer. An in-flight batch finishes but produces no
// further re-arm. Stopping an already-stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}

	s.cancelLocked()
	s.active = false
	s.gen++
	s.lastRun = nil
	metrics.SchedulerActive.Set(0)
	s.log.Info("schedule stopped")
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		IsRunning: s.active,
		Mode:      models.ModeStandard,
	}
	if s.cfg.IntervalMode {
		st.Mode = models.ModeInterval
		st.LastRun = s.lastRun
	}
	if s.active {
		st.Schedule = s.cfg.Describe()
	}
	return st
}

func (s *Scheduler) cancelLocked() {
	if s.cronJob != nil {
		s.cronJob.Stop()
		s.cronJob = nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// armIntervalLocked computes the next fire time from the last successful run
// and arms a single-shot timer for it.
func (s *Scheduler) armIntervalLocked(gen uint64) {
	if s.timer != nil {
		s.timer.Stop()
	}

	next := NextIntervalRun(s.now(), s.lastRun, s.cfg.IntervalDays, s.cfg.Hour, s.cfg.Minute)
	delay := next.Sub(s.now())

	s.log.Info("next run scheduled",
		zap.Time("next_run", next),
		zap.Duration("in", delay),
	)

	s.timer = time.AfterFunc(delay, func() { s.fire(gen, models.ModeInterval) })
}

// fire runs one batch and records the execution. Interval mode re-arms from
// the outcome: success rolls the schedule forward from the completion time,
// an invocation failure arms a flat retry instead and leaves last-run alone.
func (s *Scheduler) fire(gen uint64, mode models.CronMode) {
	s.mu.Lock()
	if !s.active || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	ctx := context.Background()
	started := s.now()

	s.log.Info("running scheduled email job", zap.String("mode", string(mode)))
	result, err := s.run(ctx)
	duration := s.now().Sub(started)

	rec := models.ExecutionRecord{
		ExecutedAt: started,
		Mode:       mode,
		DurationMS: duration.Milliseconds(),
	}
	if err != nil {
		rec.Status = models.ExecutionFailed
		rec.ErrorMessage = err.Error()
	} else {
		rec.Status = models.ExecutionSuccess
		rec.EmailsSent = result.Sent
		rec.EmailsFailed = result.Failed
	}
	s.record(ctx, rec)

	if mode != models.ModeInterval {
		if err != nil {
			s.log.Error("scheduled email job failed", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || gen != s.gen {
		return
	}

	if err != nil {
		s.log.Error("scheduled email job failed, retrying later",
			zap.Error(err),
			zap.Duration("retry_in", s.retryDelay),
		)
		s.timer = time.AfterFunc(s.retryDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !s.active || gen != s.gen {
				return
			}
			s.armIntervalLocked(gen)
		})
		return
	}

	completed := s.now()
	s.lastRun = &completed
	s.armIntervalLocked(gen)
}

// record persists the execution record best-effort. Logging failures must
// never break the schedule flow.
func (s *Scheduler) record(ctx context.Context, rec models.ExecutionRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.AppendExecutionRecord(ctx, rec); err != nil {
		s.log.Error("failed to log cron execution", zap.Error(err))
	}
}

// NextIntervalRun computes the interval policy's next fire time: with no
// prior successful run, the next occurrence of HH:MM; otherwise the smallest
// lastRun + k*intervalDays (k >= 1) at HH:MM strictly after now.
func NextIntervalRun(now time.Time, lastRun *time.Time, intervalDays, hour, minute int) time.Time {
	if lastRun == nil {
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	}

	base := lastRun.AddDate(0, 0, intervalDays)
	next := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
	for !next.After(now) {
		next = next.AddDate(0, 0, intervalDays)
	}
	return next
}
