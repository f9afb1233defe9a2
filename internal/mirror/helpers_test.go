package mirror

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexjbarnes/folder-sync/internal/logging"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	srcDir = "/src"
	repDir = "/replica"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memDirs returns an in-memory filesystem with empty source and replica
// directories.
func memDirs(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(srcDir, 0o755))
	require.NoError(t, fsys.MkdirAll(repDir, 0o755))

	return fsys
}

// osDirs returns the real filesystem with fresh source and replica
// directories under t.TempDir.
func osDirs(t *testing.T) (afero.Fs, string, string) {
	t.Helper()

	root := t.TempDir()
	src := filepath.Join(root, "source")
	rep := filepath.Join(root, "replica")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.Mkdir(rep, 0o755))

	return afero.NewOsFs(), src, rep
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()

	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)

	return string(data)
}

// regularFiles returns name -> content for every regular file in dir.
func regularFiles(t *testing.T, fsys afero.Fs, dir string) map[string]string {
	t.Helper()

	snap, err := ListEntries(fsys, dir)
	require.NoError(t, err)

	out := make(map[string]string)
	for name, e := range snap {
		if e.Regular {
			out[name] = readFile(t, fsys, filepath.Join(dir, name))
		}
	}

	return out
}

// lineLogger returns a logger writing log-file lines into the returned
// buffer.
func lineLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(logging.NewLineHandler(&buf, slog.LevelInfo)), &buf
}

// logMessages strips the timestamp from each log line, leaving
// "LEVEL: message".
func logMessages(buf *bytes.Buffer) []string {
	var out []string

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		// "2006-01-02 15:04:05 " is 20 bytes.
		out = append(out, line[len(logging.LineTimeFormat)+1:])
	}

	return out
}

// faultyFs wraps an afero.Fs and fails selected operations by path.
type faultyFs struct {
	afero.Fs
	failRemove map[string]bool
	failOpen   map[string]bool
	failRename map[string]bool
}

func newFaultyFs(base afero.Fs) *faultyFs {
	return &faultyFs{
		Fs:         base,
		failRemove: make(map[string]bool),
		failOpen:   make(map[string]bool),
		failRename: make(map[string]bool),
	}
}

func (f *faultyFs) Remove(name string) error {
	if f.failRemove[name] {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrPermission}
	}

	return f.Fs.Remove(name)
}

func (f *faultyFs) Open(name string) (afero.File, error) {
	if f.failOpen[name] {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}

	return f.Fs.Open(name)
}

func (f *faultyFs) Rename(oldname, newname string) error {
	if f.failRename[newname] {
		return &fs.PathError{Op: "rename", Path: newname, Err: fs.ErrPermission}
	}

	return f.Fs.Rename(oldname, newname)
}
