package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindTargetAncestorInvariant(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644))

	sub := filepath.Join(dir, "pkg", "inner")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	file := filepath.Join(sub, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package inner\n"), 0o644))

	reg := NewDefaultRegistry()
	target, ok := reg.FindTarget(file)
	require.True(t, ok)
	require.Equal(t, "go", target.Descriptor.Kind)

	resolvedDir, err := filepath.Abs(dir)
	require.NoError(t, err)
	require.Equal(t, resolvedDir, target.ProjectRoot)
}

func TestFindTargetNoMatch(t *testing.T) {
	reg := NewDefaultRegistry()
	_, ok := reg.FindTarget("/nonexistent/file.xyz")
	require.False(t, ok)
}

func TestFindTargetTieBreakDenoBeforeJS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deno.json"), []byte("{}"), 0o644))

	reg := NewDefaultRegistry()
	target, ok := reg.FindTarget(dir)
	require.True(t, ok)
	require.Equal(t, "deno", target.Descriptor.Kind)
}

func TestSameRootSameTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644))
	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "sub", "b.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(b), 0o755))
	require.NoError(t, os.WriteFile(a, []byte("package x"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("package x"), 0o644))

	reg := NewDefaultRegistry()
	ta, ok := reg.FindTarget(a)
	require.True(t, ok)
	tb, ok := reg.FindTarget(b)
	require.True(t, ok)
	require.Equal(t, ta.ProjectRoot, tb.ProjectRoot)
}
