package mirror

import (
	"fmt"
	"time"

	fserrors "github.com/alexjbarnes/folder-sync/internal/errors"
	"github.com/spf13/afero"
)

// FileEntry is one direct child of a directory. Only regular files take
// part in synchronization; directories, symlinks, and special files are
// listed with Regular set to false and otherwise ignored.
type FileEntry struct {
	Name    string
	Regular bool
	Size    int64
	ModTime time.Time
}

// Snapshot maps entry names to their entries for a single directory.
type Snapshot map[string]FileEntry

// IsRegular reports whether name exists in the snapshot as a regular file.
func (s Snapshot) IsRegular(name string) bool {
	e, ok := s[name]
	return ok && e.Regular
}

// ListEntries lists the immediate children of dir. Entry types come from
// lstat, so a symlink to a regular file is not itself regular.
func ListEntries(fsys afero.Fs, dir string) (Snapshot, error) {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w: %w", dir, fserrors.ErrIO, err)
	}

	snap := make(Snapshot, len(infos))
	for _, info := range infos {
		snap[info.Name()] = FileEntry{
			Name:    info.Name(),
			Regular: info.Mode().IsRegular(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
	}

	return snap, nil
}
