package mirror

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// ActionKind identifies what an Action does to the replica.
type ActionKind int

const (
	// ActionDelete removes a regular file that exists only in the replica.
	ActionDelete ActionKind = iota + 1
	// ActionCopy copies a source file over its replica counterpart.
	ActionCopy
)

func (k ActionKind) String() string {
	switch k {
	case ActionDelete:
		return "delete"
	case ActionCopy:
		return "copy"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is a single planned filesystem mutation. Delete actions only
// set Dest.
type Action struct {
	Kind   ActionKind
	Source string
	Dest   string
}

// DeleteAction plans removal of path.
func DeleteAction(path string) Action {
	return Action{Kind: ActionDelete, Dest: path}
}

// CopyAction plans copying src over dst.
func CopyAction(src, dst string) Action {
	return Action{Kind: ActionCopy, Source: src, Dest: dst}
}

func (a Action) String() string {
	if a.Kind == ActionCopy {
		return fmt.Sprintf("copy %s -> %s", a.Source, a.Dest)
	}

	return fmt.Sprintf("%s %s", a.Kind, a.Dest)
}

// PlanFailure records a file that could not be compared while planning.
// It produces no action; the next pass sees the file again.
type PlanFailure struct {
	Path string
	Err  error
}

// Plan is the outcome of comparing a source and replica directory.
// Actions holds every delete before every copy, each group ordered by
// name. Skipped holds source paths whose replica copy already matches.
type Plan struct {
	Source   string
	Replica  string
	Actions  []Action
	Skipped  []string
	Failures []PlanFailure
}

// Deletes returns the delete actions in plan order.
func (p *Plan) Deletes() []Action {
	return p.filter(ActionDelete)
}

// Copies returns the copy actions in plan order.
func (p *Plan) Copies() []Action {
	return p.filter(ActionCopy)
}

// Empty reports whether the plan mutates nothing.
func (p *Plan) Empty() bool {
	return len(p.Actions) == 0
}

func (p *Plan) filter(kind ActionKind) []Action {
	var out []Action

	for _, a := range p.Actions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}

	return out
}

// Planner computes the actions needed to make a replica directory match
// a source directory.
type Planner struct {
	fs afero.Fs
}

// NewPlanner creates a Planner reading through fsys.
func NewPlanner(fsys afero.Fs) *Planner {
	return &Planner{fs: fsys}
}

// Plan lists both directories and compares them by name and content
// digest. Listing either directory is the only failure that aborts
// planning. A file that cannot be hashed is recorded in Failures.
func (p *Planner) Plan(source, replica string) (*Plan, error) {
	src, err := ListEntries(p.fs, source)
	if err != nil {
		return nil, fmt.Errorf("listing source: %w", err)
	}

	dst, err := ListEntries(p.fs, replica)
	if err != nil {
		return nil, fmt.Errorf("listing replica: %w", err)
	}

	plan := &Plan{Source: source, Replica: replica}

	for _, name := range sortedNames(dst) {
		if _, inSource := src[name]; inSource {
			continue
		}

		if dst.IsRegular(name) {
			plan.Actions = append(plan.Actions, DeleteAction(filepath.Join(replica, name)))
		}
	}

	for _, name := range sortedNames(src) {
		if !src.IsRegular(name) {
			continue
		}

		srcPath := filepath.Join(source, name)
		dstPath := filepath.Join(replica, name)

		if !dst.IsRegular(name) {
			plan.Actions = append(plan.Actions, CopyAction(srcPath, dstPath))
			continue
		}

		same, err := p.sameContent(srcPath, dstPath)
		if err != nil {
			plan.Failures = append(plan.Failures, PlanFailure{Path: srcPath, Err: err})
			continue
		}

		if same {
			plan.Skipped = append(plan.Skipped, srcPath)
			continue
		}

		plan.Actions = append(plan.Actions, CopyAction(srcPath, dstPath))
	}

	return plan, nil
}

// sameContent compares digests of src and dst. An unreadable source is
// an error. An unreadable replica file counts as different so the copy
// replaces it.
func (p *Planner) sameContent(src, dst string) (bool, error) {
	srcDigest, err := HashFile(p.fs, src)
	if err != nil {
		return false, err
	}

	dstDigest, err := HashFile(p.fs, dst)
	if err != nil {
		return false, nil
	}

	return srcDigest == dstDigest, nil
}

func sortedNames(s Snapshot) []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
