// Package rename implements the preview/execute round-trip (spec §8
// testable property, §4.5 rename/preview and rename/execute routes),
// supplemented from original_source's lsap.capability.rename
// (RenamePreviewCapability/RenameExecuteCapability, referenced from
// manager/client.py).
package rename

import (
	"container/list"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"lspcli/internal/lsperr"
	"lspcli/internal/lspclient"
)

// maxPending bounds the in-memory preview table; the oldest entry is
// evicted once this many previews are outstanding (SPEC_FULL.md's
// internal/rename entry: "bounded to the last 32 previews, evicted LRU").
const maxPending = 32

type pendingEntry struct {
	id   string
	edit json.RawMessage
}

// Table is a bounded LRU of pending rename previews, one per session
// (each session owns its own Table so an id from one workspace is never
// applied against another).
type Table struct {
	mu      sync.Mutex
	order   *list.List
	entries map[string]*list.Element
}

// NewTable builds an empty preview table.
func NewTable() *Table {
	return &Table{
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Preview computes the rename edit set for (uri, pos, newName) via client.
// It does not store the result; callers pass it to (*Table).Store to get
// an id.
func Preview(client *lspclient.Client, uri string, pos lspclient.Position, newName string) (*PreviewResult, error) {
	edit, err := client.Rename(uri, pos, newName)
	if err != nil {
		return nil, err
	}
	if edit == nil || string(edit) == "null" {
		return nil, lsperr.New(lsperr.KindProtocolError, "server returned no rename edit")
	}
	return &PreviewResult{Edit: edit}, nil
}

// PreviewResult is the not-yet-stored computed edit; callers call
// (*Table).Store to assign it an id.
type PreviewResult struct {
	Edit json.RawMessage
}

// Store assigns result a fresh uuid and inserts it into the table,
// evicting the oldest entry if at capacity.
func (t *Table) Store(result *PreviewResult) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.NewString()
	elem := t.order.PushFront(&pendingEntry{id: id, edit: result.Edit})
	t.entries[id] = elem

	for t.order.Len() > maxPending {
		oldest := t.order.Back()
		if oldest == nil {
			break
		}
		t.order.Remove(oldest)
		delete(t.entries, oldest.Value.(*pendingEntry).id)
	}

	return id
}

// Lookup returns the stored edit for id, if still present, moving it to
// the front of the LRU order.
func (t *Table) Lookup(id string) (json.RawMessage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	elem, ok := t.entries[id]
	if !ok {
		return nil, false
	}
	t.order.MoveToFront(elem)
	return elem.Value.(*pendingEntry).edit, true
}

// Execute looks up id and applies its stored edit to disk via
// lspclient.ApplyWorkspaceEdit (spec §1: "delegates the edit application
// to the LSP library"), returning the number of files changed.
func (t *Table) Execute(id string) (int, error) {
	edit, ok := t.Lookup(id)
	if !ok {
		return 0, lsperr.New(lsperr.KindParseError, "unknown rename preview id: "+id)
	}
	return lspclient.ApplyWorkspaceEdit(edit)
}
