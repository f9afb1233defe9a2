package mirror

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"

	fserrors "github.com/alexjbarnes/folder-sync/internal/errors"
	"github.com/spf13/afero"
)

// tempPrefix names in-progress copies inside the replica directory. A
// temp file left behind by a crash is a replica-only regular file and is
// removed by the next pass.
const tempPrefix = ".folder-sync-"

// Outcome is the result of one attempted action or observation.
type Outcome string

const (
	OutcomeRemoved Outcome = "removed"
	OutcomeCopied  Outcome = "copied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Result records what happened to a single path during a pass. Action
// is the zero value for skipped files and planning failures.
type Result struct {
	Path    string
	Action  Action
	Outcome Outcome
	Err     error
}

// Report summarizes a pass.
type Report struct {
	Results []Result
	Removed int
	Copied  int
	Skipped int
	Failed  int
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)

	switch res.Outcome {
	case OutcomeRemoved:
		r.Removed++
	case OutcomeCopied:
		r.Copied++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Executor applies plans to the filesystem.
type Executor struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewExecutor creates an Executor writing through fsys.
func NewExecutor(fsys afero.Fs, logger *slog.Logger) *Executor {
	return &Executor{fs: fsys, logger: logger}
}

// Execute applies every action in order and logs one event per action,
// skipped file, and planning failure, followed by a completion event.
// A failed action never stops the remaining ones.
func (e *Executor) Execute(plan *Plan) *Report {
	report := &Report{}

	for _, a := range plan.Actions {
		report.add(e.apply(a))
	}

	for _, path := range plan.Skipped {
		e.logger.Info(fmt.Sprintf("Skipped file (already synced): %s", path), slog.String("path", path))
		report.add(Result{Path: path, Outcome: OutcomeSkipped})
	}

	for _, f := range plan.Failures {
		e.logger.Error(fmt.Sprintf("Failed to compare file: %s: %v", f.Path, f.Err),
			slog.String("path", f.Path),
			slog.String("error", f.Err.Error()),
		)
		report.add(Result{Path: f.Path, Outcome: OutcomeFailed, Err: f.Err})
	}

	e.logger.Info("Synchronization completed.",
		slog.Int("removed", report.Removed),
		slog.Int("copied", report.Copied),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
	)

	return report
}

func (e *Executor) apply(a Action) Result {
	switch a.Kind {
	case ActionDelete:
		if err := e.remove(a.Dest); err != nil {
			e.logger.Error(fmt.Sprintf("Failed to remove file: %s: %v", a.Dest, err),
				slog.String("path", a.Dest),
				slog.String("error", err.Error()),
			)
			return Result{Path: a.Dest, Action: a, Outcome: OutcomeFailed, Err: err}
		}

		e.logger.Info(fmt.Sprintf("Removed file: %s", a.Dest), slog.String("path", a.Dest))

		return Result{Path: a.Dest, Action: a, Outcome: OutcomeRemoved}

	case ActionCopy:
		if err := e.copyFile(a.Source, a.Dest); err != nil {
			e.logger.Error(fmt.Sprintf("Failed to copy file: %s -> %s: %v", a.Source, a.Dest, err),
				slog.String("source", a.Source),
				slog.String("dest", a.Dest),
				slog.String("error", err.Error()),
			)
			return Result{Path: a.Dest, Action: a, Outcome: OutcomeFailed, Err: err}
		}

		e.logger.Info(fmt.Sprintf("Copied file: %s -> %s", a.Source, a.Dest),
			slog.String("source", a.Source),
			slog.String("dest", a.Dest),
		)

		return Result{Path: a.Dest, Action: a, Outcome: OutcomeCopied}

	default:
		err := fmt.Errorf("unknown action kind %d", int(a.Kind))
		e.logger.Error(fmt.Sprintf("Failed to apply action: %v", err))

		return Result{Path: a.Dest, Action: a, Outcome: OutcomeFailed, Err: err}
	}
}

// remove deletes path if it is still a regular file. A file that is
// already gone counts as removed.
func (e *Executor) remove(path string) error {
	info, err := lstat(e.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("stat %s: %w: %w", path, fserrors.ErrIO, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is no longer a regular file: %w", path, fserrors.ErrIO)
	}

	err = e.fs.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w: %w", path, fserrors.ErrIO, err)
	}

	return nil
}

// copyFile copies content, permission bits, and modification time from
// src to dst. Content is written to a temp file in dst's directory and
// renamed into place, so dst is never observed half-written.
func (e *Executor) copyFile(src, dst string) error {
	info, err := e.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w: %w", src, fserrors.ErrIO, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file: %w", src, fserrors.ErrIO)
	}

	in, err := e.fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w: %w", src, fserrors.ErrIO, err)
	}
	defer in.Close()

	tmp, err := afero.TempFile(e.fs, filepath.Dir(dst), tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w: %w", fserrors.ErrIO, err)
	}
	tmpName := tmp.Name()

	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(tmp, onlyReader{in}, buf); err != nil {
		tmp.Close()
		e.fs.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w: %w", fserrors.ErrIO, err)
	}

	if err := tmp.Close(); err != nil {
		e.fs.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w: %w", fserrors.ErrIO, err)
	}

	if err := e.fs.Chmod(tmpName, info.Mode().Perm()); err != nil {
		e.fs.Remove(tmpName)
		return fmt.Errorf("setting file permissions: %w: %w", fserrors.ErrIO, err)
	}

	mtime := info.ModTime()
	if err := e.fs.Chtimes(tmpName, mtime, mtime); err != nil {
		e.fs.Remove(tmpName)
		return fmt.Errorf("setting mtime: %w: %w", fserrors.ErrIO, err)
	}

	if err := e.fs.Rename(tmpName, dst); err != nil {
		e.fs.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w: %w", fserrors.ErrIO, err)
	}

	return nil
}

// lstat uses LstatIfPossible when fsys supports it so symlinks are not
// followed.
func lstat(fsys afero.Fs, path string) (fs.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}

	return fsys.Stat(path)
}
