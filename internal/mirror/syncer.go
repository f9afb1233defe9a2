package mirror

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
)

//go:generate mockgen -source=syncer.go -destination=mock_passer_test.go -package=mirror

// Passer runs one synchronization pass. Scheduler depends on this
// rather than on Syncer so it can be driven by a mock in tests.
type Passer interface {
	Pass() (*Report, error)
}

// Syncer performs one-way synchronization of a replica directory from a
// source directory. Each pass plans against fresh listings and digests;
// nothing is cached between passes.
type Syncer struct {
	source   string
	replica  string
	planner  *Planner
	executor *Executor
	logger   *slog.Logger
}

// NewSyncer creates a Syncer for the given directories.
func NewSyncer(fsys afero.Fs, source, replica string, logger *slog.Logger) *Syncer {
	return &Syncer{
		source:   source,
		replica:  replica,
		planner:  NewPlanner(fsys),
		executor: NewExecutor(fsys, logger),
		logger:   logger,
	}
}

// Pass plans and executes one synchronization. The error is non-nil only
// when a directory could not be listed, in which case nothing was
// changed. Per-file failures are reported in the Report.
func (s *Syncer) Pass() (*Report, error) {
	s.logger.Info("Starting synchronization...",
		slog.String("source", s.source),
		slog.String("replica", s.replica),
	)

	plan, err := s.planner.Plan(s.source, s.replica)
	if err != nil {
		return nil, fmt.Errorf("planning sync: %w", err)
	}

	s.logger.Debug("sync plan",
		slog.Int("delete", len(plan.Deletes())),
		slog.Int("copy", len(plan.Copies())),
		slog.Int("skip", len(plan.Skipped)),
		slog.Int("failed", len(plan.Failures)),
	)

	return s.executor.Execute(plan), nil
}
