package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"lspcli/internal/session"
)

func TestSessionsPlainTextIncludesHeader(t *testing.T) {
	out := Sessions([]session.Info{
		{ID: "go-1-default", ProjectPath: "/p", Language: "go", RemainingTime: 90 * time.Second},
	}, false)
	if !strings.Contains(out, "LANGUAGE") || !strings.Contains(out, "90.0s") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSessionsMarkdownIsATable(t *testing.T) {
	out := Sessions([]session.Info{
		{ID: "go-1-default", ProjectPath: "/p", Language: "go", RemainingTime: 5 * time.Second},
	}, true)
	if !strings.HasPrefix(out, "| Language |") {
		t.Fatalf("expected markdown table header, got %q", out)
	}
}

func TestLocateFormatsFileLineColumn(t *testing.T) {
	raw, _ := json.Marshal(map[string]any{"file": "/a.go", "line": 4, "character": 2})
	out := Locate(raw, false)
	if out != "/a.go:5:3\n" {
		t.Fatalf("expected 1-based line:col, got %q", out)
	}
}

func TestLocationsHandlesSingleAndArray(t *testing.T) {
	single, _ := json.Marshal(map[string]any{"uri": "file:///a.go", "range": map[string]any{"start": map[string]any{"line": 0, "character": 0}}})
	out := Locations(single, false)
	if !strings.Contains(out, "file:///a.go") {
		t.Fatalf("expected single-location output, got %q", out)
	}

	arr, _ := json.Marshal([]map[string]any{
		{"uri": "file:///a.go", "range": map[string]any{"start": map[string]any{"line": 0, "character": 0}}},
		{"uri": "file:///b.go", "range": map[string]any{"start": map[string]any{"line": 1, "character": 0}}},
	})
	out = Locations(arr, false)
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected two lines, got %q", out)
	}
}

func TestLocationsEmptyArray(t *testing.T) {
	out := Locations(json.RawMessage(`[]`), false)
	if out != "(no results)\n" {
		t.Fatalf("expected no-results message, got %q", out)
	}
}

func TestHoverNullIsNoInformation(t *testing.T) {
	out := Hover(json.RawMessage(`null`), false)
	if out != "(no hover information)\n" {
		t.Fatalf("expected no-hover message, got %q", out)
	}
}

func TestHoverStringContents(t *testing.T) {
	raw, _ := json.Marshal(map[string]any{"contents": "**bold** text"})
	out := Hover(raw, false)
	if strings.Contains(out, "**") {
		t.Fatalf("expected markdown stripped in plain mode, got %q", out)
	}
}

func TestOutlineDefaultFiltersToStructuralKinds(t *testing.T) {
	raw, _ := json.Marshal([]map[string]any{
		{"name": "MyFunc", "kind": 12, "range": map[string]any{"start": map[string]any{"line": 0}}},
		{"name": "myVar", "kind": 13, "range": map[string]any{"start": map[string]any{"line": 1}}},
	})
	out := Outline(raw, false, false)
	if !strings.Contains(out, "MyFunc") {
		t.Fatalf("expected function in default outline, got %q", out)
	}
	if strings.Contains(out, "myVar") {
		t.Fatalf("expected variable filtered out of default outline, got %q", out)
	}
}

func TestOutlineAllIncludesEveryKind(t *testing.T) {
	raw, _ := json.Marshal([]map[string]any{
		{"name": "myVar", "kind": 13, "range": map[string]any{"start": map[string]any{"line": 1}}},
	})
	out := Outline(raw, true, false)
	if !strings.Contains(out, "myVar") {
		t.Fatalf("expected variable included with --all, got %q", out)
	}
}

func TestSearchTruncatesPastLimit(t *testing.T) {
	entries := make([]map[string]any, maxSearchResults+5)
	for i := range entries {
		entries[i] = map[string]any{"name": "sym", "kind": 12, "range": map[string]any{"start": map[string]any{"line": i}}}
	}
	raw, _ := json.Marshal(entries)
	out := Search(raw, false)
	if !strings.Contains(out, "truncated") {
		t.Fatalf("expected truncation notice, got %q", out)
	}
	// The overflow count must reflect what was actually cut (5 here), not
	// 0 — a bug where the count is computed after the slice is already
	// truncated always reports len(symbols)-maxSearchResults == 0.
	if !strings.Contains(out, "5 more result(s) truncated") {
		t.Fatalf("expected the real overflow count of 5 in the truncation notice, got %q", out)
	}
}

func TestRenameExecuteMessage(t *testing.T) {
	out := RenameExecute(3)
	if out != "applied rename to 3 file(s)\n" {
		t.Fatalf("unexpected message: %q", out)
	}
}
