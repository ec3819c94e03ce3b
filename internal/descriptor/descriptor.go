// Package descriptor implements the language descriptor registry (spec
// §4.1): mapping a filesystem path to a project root and an LSP launch
// command, grounded on the original source's lsp_cli.clients.lang registry
// and the teacher's lsp/types.go LanguageServerConfig command/args shape.
package descriptor

import (
	"os"
	"path/filepath"
)

// Descriptor is configuration, not state (spec §3 LanguageDescriptor): a
// language kind tag, its root markers, and the command used to launch its
// LSP server. The set is frozen at process start.
type Descriptor struct {
	// Kind is the language-kind tag embedded in session ids (e.g. "go").
	Kind string
	// Markers are root-marker file names searched for up the parent chain.
	Markers []string
	// Command and Args launch the language server over stdio.
	Command string
	Args    []string
}

// LaunchCommand returns the exec.Command arguments for this descriptor's
// LSP server, matching the original's lang_clients registry and the
// teacher's LanguageServerConfig.GetCommand/GetArgs.
func (d Descriptor) LaunchCommand() (string, []string) {
	return d.Command, d.Args
}

// Target is the result of a successful FindTarget call: the resolved
// project root and the descriptor that claimed it.
type Target struct {
	ProjectRoot string
	Descriptor  Descriptor
}

// Registry is a frozen, ordered list of Descriptors. Iteration order is
// fixed at construction and is the tie-break policy for ambiguous trees
// (spec §4.1): most-specific-marker-first, so a repo carrying both
// package.json and deno.json resolves to deno first.
type Registry struct {
	descriptors []Descriptor
}

// DefaultDescriptors is the built-in set named in spec.md: go, python,
// rust, ts/js, deno, ordered deno > ts/js > go > rust > python
// (most-specific-marker-first, documented per spec §9's open question on
// find_client iteration order).
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{Kind: "deno", Markers: []string{"deno.json", "deno.jsonc"}, Command: "deno", Args: []string{"lsp"}},
		{Kind: "ts", Markers: []string{"tsconfig.json"}, Command: "typescript-language-server", Args: []string{"--stdio"}},
		{Kind: "js", Markers: []string{"package.json"}, Command: "typescript-language-server", Args: []string{"--stdio"}},
		{Kind: "go", Markers: []string{"go.mod"}, Command: "gopls", Args: []string{}},
		{Kind: "rust", Markers: []string{"Cargo.toml"}, Command: "rust-analyzer", Args: []string{}},
		{Kind: "python", Markers: []string{"pyproject.toml", "setup.py"}, Command: "pylsp", Args: []string{}},
	}
}

// NewRegistry builds a Registry from an explicit, ordered descriptor slice.
func NewRegistry(descriptors []Descriptor) *Registry {
	return &Registry{descriptors: descriptors}
}

// NewDefaultRegistry builds a Registry with DefaultDescriptors.
func NewDefaultRegistry() *Registry {
	return NewRegistry(DefaultDescriptors())
}

// FindTarget resolves path to a (project root, descriptor) pair (spec
// §4.1 find_target). It never errors: a path no descriptor claims yields
// (Target{}, false).
func (r *Registry) FindTarget(path string) (Target, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Target{}, false
	}

	for _, d := range r.descriptors {
		if root, ok := findProjectRoot(abs, d.Markers); ok {
			return Target{ProjectRoot: root, Descriptor: d}, true
		}
	}
	return Target{}, false
}

// findProjectRoot walks path's parent chain (including path itself when it
// is a directory) looking for one of markers, per spec §4.1: "If path is a
// file, its parent chain is walked; if a directory, the directory itself is
// included."
func findProjectRoot(path string, markers []string) (string, bool) {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}

	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
