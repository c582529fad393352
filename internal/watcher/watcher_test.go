package watcher

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMatches(t *testing.T) {
	w, err := New(time.Millisecond, []string{"*.vct", "prog?.tree"}, discard(), func([]string) {})
	be.Err(t, err, nil)
	defer w.Close()

	be.True(t, w.Matches("dir/a.vct"))
	be.True(t, w.Matches("prog1.tree"))
	be.True(t, !w.Matches("a.go"))
	be.True(t, !w.Matches("prog12.tree"))
}

func TestBadPattern(t *testing.T) {
	_, err := New(time.Millisecond, []string{"[a-"}, discard(), func([]string) {})
	be.True(t, err != nil)
}

func TestWatchReportsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan []string, 4)
	w, err := New(20*time.Millisecond, []string{"*.vct"}, discard(), func(paths []string) {
		changes <- paths
	})
	be.Err(t, err, nil)
	defer w.Close()
	be.Err(t, w.Watch([]string{dir}), nil)

	target := filepath.Join(dir, "a.vct")
	be.Err(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644), nil)
	be.Err(t, os.WriteFile(target, []byte("(block)"), 0o644), nil)

	select {
	case paths := <-changes:
		be.Equal(t, paths, []string{target})
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}
