package lspclient

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyWorkspaceEditReplacesIdentifier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc old() {}\n"), 0o644))

	uri := FilePathToURI(path)
	edit, err := json.Marshal(map[string]any{
		"changes": map[string]any{
			uri: []map[string]any{
				{
					"range": map[string]any{
						"start": map[string]any{"line": 2, "character": 5},
						"end":   map[string]any{"line": 2, "character": 8},
					},
					"newText": "new",
				},
			},
		},
	})
	require.NoError(t, err)

	n, err := ApplyWorkspaceEdit(edit)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc new() {}\n", string(content))
}

func TestApplyWorkspaceEditEmptyChanges(t *testing.T) {
	n, err := ApplyWorkspaceEdit([]byte(`{"changes":{}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestApplyWorkspaceEditMalformed(t *testing.T) {
	_, err := ApplyWorkspaceEdit([]byte(`not json`))
	require.Error(t, err)
}
