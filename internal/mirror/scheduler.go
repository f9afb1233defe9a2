package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultPollInterval is how often a waiting Scheduler checks whether the
// sync interval has elapsed.
const DefaultPollInterval = time.Second

// State is the Scheduler's position in its Idle -> Running -> Waiting
// cycle. There is no terminal state; Run returns to Idle only when its
// context ends.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateWaiting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// SchedulerOptions configures a Scheduler. Interval is required.
type SchedulerOptions struct {
	// Interval is the time between the starts of consecutive passes.
	Interval time.Duration
	// PollInterval bounds how late a pass may start after Interval has
	// elapsed. Defaults to DefaultPollInterval.
	PollInterval time.Duration
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Scheduler runs a pass immediately and then again whenever Interval has
// elapsed since the previous pass started. Elapsed time is checked every
// PollInterval, so the interval is approximate: a pass starts up to one
// PollInterval (plus the previous pass's overrun) late. Passes never
// overlap.
type Scheduler struct {
	passer   Passer
	interval time.Duration
	poll     time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	state     atomic.Int32
	passes    atomic.Int64
	trigger   chan struct{}
	lastStart time.Time
}

// NewScheduler creates a Scheduler driving passer.
func NewScheduler(passer Passer, opts SchedulerOptions, logger *slog.Logger) (*Scheduler, error) {
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("sync interval must be positive, got %s", opts.Interval)
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return &Scheduler{
		passer:   passer,
		interval: opts.Interval,
		poll:     opts.PollInterval,
		clock:    opts.Clock,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}, nil
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Passes returns the number of passes started so far.
func (s *Scheduler) Passes() int64 {
	return s.passes.Load()
}

// Trigger requests a pass as soon as the scheduler is waiting. Requests
// made while a pass is running or another request is pending coalesce.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run performs the first pass, then loops until ctx is done. A pass is
// never interrupted; ctx is checked only while waiting.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.state.Store(int32(StateIdle))

	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.Info("scheduler started",
		slog.Duration("interval", s.interval),
		slog.Duration("poll_interval", s.poll),
	)

	s.runPass()

	timer := s.clock.NewTimer(s.poll)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped", slog.Int64("passes", s.Passes()))
			return ctx.Err()

		case <-s.trigger:
			s.logger.Debug("pass triggered early")
			s.runPass()

		case <-timer.Chan():
			if s.due() {
				s.runPass()
			}
		}

		timer.Reset(s.poll)
	}
}

func (s *Scheduler) due() bool {
	return s.clock.Now().Sub(s.lastStart) >= s.interval
}

// runPass runs one pass to completion and leaves the scheduler Waiting.
// Errors are logged and never stop the scheduler; the next pass runs on
// schedule.
func (s *Scheduler) runPass() {
	s.state.Store(int32(StateRunning))
	defer s.state.Store(int32(StateWaiting))

	s.lastStart = s.clock.Now()
	s.passes.Add(1)

	start := s.lastStart

	report, err := s.passer.Pass()
	if err != nil {
		s.logger.Error(fmt.Sprintf("Synchronization failed: %v", err),
			slog.String("error", err.Error()),
		)
		return
	}

	if report != nil {
		s.logger.Debug("pass finished",
			slog.Duration("elapsed", s.clock.Since(start)),
			slog.Int("failed", report.Failed),
		)
	}
}
