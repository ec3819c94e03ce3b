package descriptor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchRootFiresOnMarkerRemoval(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "go.mod")
	require.NoError(t, os.WriteFile(marker, []byte("module x\n"), 0o644))

	rw, err := WatchRoot(dir)
	require.NoError(t, err)
	defer rw.Close()

	d := Descriptor{Kind: "go", Markers: []string{"go.mod"}}
	require.True(t, d.StillClaims(dir))

	require.NoError(t, os.Remove(marker))

	select {
	case <-rw.Events:
	case err := <-rw.Errors:
		t.Fatalf("unexpected watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a removal event")
	}

	require.False(t, d.StillClaims(dir))
}

func TestStillClaimsFalseForEmptyRoot(t *testing.T) {
	d := Descriptor{Kind: "go", Markers: []string{"go.mod"}}
	require.False(t, d.StillClaims(""))
}
