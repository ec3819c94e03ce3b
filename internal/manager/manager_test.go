package manager

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"lspcli/internal/config"
	"lspcli/internal/descriptor"
	"lspcli/internal/session"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	reg := descriptor.NewDefaultRegistry()
	cfg := config.Config{Paths: config.ResolvePaths()}
	return New(reg, cfg, zerolog.Nop())
}

func TestInspectUnknownPathReturnsUnsupportedError(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Inspect(t.TempDir())
	if err == nil {
		t.Fatal("expected an unsupported-path error for a directory with no recognizable markers")
	}
}

func TestDeleteUnknownSessionIsNilNotError(t *testing.T) {
	m := newTestManager(t)
	dir := t.TempDir()

	// Plant a go.mod so the descriptor registry claims this path, but no
	// session has ever been created for it.
	writeFile(t, dir+"/go.mod", "module example\n")

	info, err := m.Delete(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info != nil {
		t.Fatalf("expected nil info for a path with no running session, got %+v", info)
	}
}

func TestListEmptyManagerReturnsEmptySlice(t *testing.T) {
	m := newTestManager(t)
	infos := m.List()
	if len(infos) != 0 {
		t.Fatalf("expected no sessions, got %d", len(infos))
	}
}

// TestResolveCreateSlotReusesSameRoot exercises the common path: a second
// Create for the same root must reuse the existing session rather than
// minting a new slot.
func TestResolveCreateSlotReusesSameRoot(t *testing.T) {
	existing := session.New("go-deadbeef-default", descriptor.Target{ProjectRoot: "/workspace/project-a"}, "/tmp/a.sock", time.Minute, zerolog.Nop())
	sessions := map[string]*session.Session{"go-deadbeef-default": existing}

	slotID, reuse := resolveCreateSlot(sessions, "go-deadbeef-default", "/workspace/project-a")
	if reuse != existing {
		t.Fatalf("expected reuse of the existing session serving the same root")
	}
	if slotID != "go-deadbeef-default" {
		t.Fatalf("expected the unchanged base id on reuse, got %q", slotID)
	}
}

// TestResolveCreateSlotDoesNotCollapseDistinctRoots plants a map entry under
// a shared base id to simulate the effect of a genuine 32-bit SessionID hash
// collision between two distinct project roots (hand-deriving a real FNV-1a
// 32-bit collision pair is not something this test can verify without
// running the hash algorithm, so the collision is simulated at the level
// resolveCreateSlot actually operates on: two different ProjectRoot values
// mapped under one shared base id). Spec §3 requires that such a collision
// must not collapse the two sessions into one slot.
func TestResolveCreateSlotDoesNotCollapseDistinctRoots(t *testing.T) {
	const sharedBaseID = "go-deadbeef-default"

	existing := session.New(sharedBaseID, descriptor.Target{ProjectRoot: "/workspace/project-a"}, "/tmp/a.sock", time.Minute, zerolog.Nop())
	sessions := map[string]*session.Session{sharedBaseID: existing}

	slotID, reuse := resolveCreateSlot(sessions, sharedBaseID, "/workspace/project-b")
	if reuse != nil {
		t.Fatalf("expected no reuse for a distinct root colliding on the base id")
	}
	if slotID == sharedBaseID {
		t.Fatalf("collision slot id must differ from the occupied base id, got %q", slotID)
	}
	if got, want := slotID, sharedBaseID+"-"+collisionSuffix("/workspace/project-b"); got != want {
		t.Fatalf("slot id = %q, want %q", got, want)
	}

	// The planted entry for project-a must survive untouched: simulating
	// Create actually inserting the second session must not disturb it.
	if sessions[sharedBaseID] != existing {
		t.Fatalf("existing slot for project-a must be left untouched")
	}
}

func TestCollisionSuffixDiffersForDistinctRoots(t *testing.T) {
	a := collisionSuffix("/workspace/project-a")
	b := collisionSuffix("/workspace/project-b")
	if a == b {
		t.Fatalf("expected distinct collision suffixes for distinct roots, both were %q", a)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
