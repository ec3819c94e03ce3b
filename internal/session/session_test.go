package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"lspcli/internal/descriptor"
)

func newTestSession(t *testing.T, projectRoot string) *Session {
	t.Helper()
	target := descriptor.Target{
		ProjectRoot: projectRoot,
		Descriptor:  descriptor.Descriptor{Kind: "go", Markers: []string{"go.mod"}},
	}
	return New("go-test-default", target, filepath.Join(t.TempDir(), "s.sock"), time.Minute, zerolog.Nop())
}

// TestWatchRootLivenessStopsOnMarkerRemoval proves the wiring the fsnotify
// dependency exists for: a session whose project root's claiming marker is
// removed out from under it stops itself rather than waiting out the full
// idle timeout (spec §4.2 resource cleanup).
func TestWatchRootLivenessStopsOnMarkerRemoval(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "go.mod")
	require.NoError(t, os.WriteFile(marker, []byte("module x\n"), 0o644))

	s := newTestSession(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.watchRootLiveness(ctx)
		close(done)
	}()

	require.NoError(t, os.Remove(marker))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watchRootLiveness to stop the session")
	}

	require.True(t, s.stopRequested())
}

// TestWatchRootLivenessExitsOnContextCancel proves the watcher goroutine
// doesn't leak when the session's run context is cancelled without its
// project root ever disappearing.
func TestWatchRootLivenessExitsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644))

	s := newTestSession(t, dir)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.watchRootLiveness(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watchRootLiveness to exit on context cancellation")
	}

	require.False(t, s.stopRequested())
}
