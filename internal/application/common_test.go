package application

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/iwat/iostream/internal/infrastructure/tui"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	*App
	fs     billy.Filesystem
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// createTestApp builds an App over an in-memory filesystem. A nil journal
// disables journaling.
func createTestApp(t *testing.T, journal Journal) *testApp {
	t.Helper()
	fs := memfs.New()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	app := NewApp(fs, stdout, tui.NewLogger(stderr, slog.LevelDebug), journal, DefaultOptions())
	return &testApp{App: app, fs: fs, stdout: stdout, stderr: stderr}
}

func (a *testApp) writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(a.fs, name, []byte(content), 0644))
}

func (a *testApp) readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := util.ReadFile(a.fs, name)
	require.NoError(t, err)
	return string(data)
}

// failingFS fails every open of path with err
type failingFS struct {
	billy.Filesystem
	path string
	err  error
}

func (f *failingFS) Open(filename string) (billy.File, error) {
	if filename == f.path {
		return nil, &fs.PathError{Op: "open", Path: filename, Err: f.err}
	}
	return f.Filesystem.Open(filename)
}

func (f *failingFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if filename == f.path {
		return nil, &fs.PathError{Op: "open", Path: filename, Err: f.err}
	}
	return f.Filesystem.OpenFile(filename, flag, perm)
}

var errBrokenStdout = errors.New("broken stdout")

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errBrokenStdout
}
