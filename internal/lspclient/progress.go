package lspclient

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/myleshyson/lsprotocol-go/protocol"
)

// progressEvent is a normalized view of a $/progress payload, grounded on
// the teacher's lsp/progress.go ProgressEvent.
type progressEvent struct {
	tokenKey string
	kind     string
	title    string
	message  string
	time     time.Time
}

// progressTracker tracks server-initiated workDone progress streams.
type progressTracker struct {
	mu     sync.RWMutex
	active map[string]progressEvent
	last   *progressEvent
}

func newProgressTracker() *progressTracker {
	return &progressTracker{active: make(map[string]progressEvent)}
}

func progressTokenKey(t protocol.ProgressToken) string {
	switch v := t.Value.(type) {
	case int32:
		return fmt.Sprintf("%d", v)
	case string:
		return v
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func (pt *progressTracker) update(raw json.RawMessage) {
	var params protocol.ProgressParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return
	}

	key := progressTokenKey(params.Token)
	valueRaw, err := json.Marshal(params.Value)
	if err != nil {
		return
	}

	var base struct {
		Kind    string `json:"kind"`
		Title   string `json:"title,omitempty"`
		Message string `json:"message,omitempty"`
	}
	_ = json.Unmarshal(valueRaw, &base)
	if base.Kind == "" {
		base.Kind = "unknown"
	}

	ev := progressEvent{tokenKey: key, kind: base.Kind, title: base.Title, message: base.Message, time: time.Now()}

	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.last = &ev
	switch ev.kind {
	case "begin", "report":
		pt.active[key] = ev
	case "end":
		delete(pt.active, key)
	}
}

func (pt *progressTracker) snapshot() (active []progressEvent, last *progressEvent) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	for _, ev := range pt.active {
		active = append(active, ev)
	}
	if pt.last != nil {
		tmp := *pt.last
		last = &tmp
	}
	return active, last
}
