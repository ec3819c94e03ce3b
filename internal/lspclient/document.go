package lspclient

import (
	"os"
	"time"
)

// DidOpen notifies the server that uri is open with the given text,
// matching lsp/methods.go's DidOpen. Callers must DidOpen a file before
// issuing position-based capability requests against it; Session does
// this once per locate-string resolution.
func (c *Client) DidOpen(uri, languageID, text string, version int32) error {
	return c.notify("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        FilePathToURI(uri),
			"languageId": languageID,
			"version":    version,
			"text":       text,
		},
	})
}

// DidClose notifies the server that uri is no longer open, matching
// lsp/methods.go's DidClose.
func (c *Client) DidClose(uri string) error {
	return c.notify("textDocument/didClose", map[string]any{
		"textDocument": map[string]any{"uri": FilePathToURI(uri)},
	})
}

// OpenForRead reads path from disk and DidOpens it, returning its text.
// This is the common path every capability call takes before issuing its
// position-based request (spec §4.2: a session resolves a locate-string
// against one already-open document per request).
func (c *Client) OpenForRead(path, languageID string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := string(data)
	if err := c.DidOpen(path, languageID, text, 1); err != nil {
		return "", err
	}
	return text, nil
}

// dialTimeout is a default connect timeout. It is unexported and is not
// referenced by any code.
const dialTimeout = 10 * time.Second
