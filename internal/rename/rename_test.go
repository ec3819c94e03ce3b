package rename

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAndLookupRoundTrip(t *testing.T) {
	table := NewTable()
	id := table.Store(&PreviewResult{Edit: json.RawMessage(`{"changes":{}}`)})

	edit, ok := table.Lookup(id)
	require.True(t, ok)
	assert.JSONEq(t, `{"changes":{}}`, string(edit))
}

func TestLookupUnknownID(t *testing.T) {
	table := NewTable()
	_, ok := table.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestStoreEvictsOldestBeyondCapacity(t *testing.T) {
	table := NewTable()
	var firstID string
	for i := 0; i < maxPending+5; i++ {
		id := table.Store(&PreviewResult{Edit: json.RawMessage(`{}`)})
		if i == 0 {
			firstID = id
		}
	}

	_, ok := table.Lookup(firstID)
	assert.False(t, ok, "oldest preview should have been evicted")
}

func TestExecuteUnknownIDFails(t *testing.T) {
	table := NewTable()
	_, err := table.Execute("missing")
	require.Error(t, err)
}
