package lspclient

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/myleshyson/lsprotocol-go/protocol"
)

type positionedEdit struct {
	start, end protocol.Position
	newText    string
}

// applyTextEdits rewrites path by applying edits (each a 0-based
// line/character range replaced with newText), returning the number of
// edits applied. Edits are applied from the bottom of the file upward so
// earlier offsets stay valid as later ones are rewritten — the standard
// approach LSP clients use for WorkspaceEdit application, since spec.md
// explicitly delegates this mechanics to "the LSP library" (internal/
// lspclient) rather than the core.
func applyTextEdits(path string, raw []struct {
	Range struct {
		Start protocol.Position `json:"start"`
		End   protocol.Position `json:"end"`
	} `json:"range"`
	NewText string `json:"newText"`
}) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	lines := strings.Split(string(content), "\n")

	edits := make([]positionedEdit, 0, len(raw))
	for _, e := range raw {
		edits = append(edits, positionedEdit{start: e.Range.Start, end: e.Range.End, newText: e.NewText})
	}
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].start.Line != edits[j].start.Line {
			return edits[i].start.Line > edits[j].start.Line
		}
		return edits[i].start.Character > edits[j].start.Character
	})

	for _, e := range edits {
		lines = applyOneEdit(lines, e)
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(raw), nil
}

func applyOneEdit(lines []string, e positionedEdit) []string {
	startLine, endLine := int(e.start.Line), int(e.end.Line)
	if startLine < 0 || endLine >= len(lines)+1 || startLine > endLine {
		return lines
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	startChar := clampChar(lines[startLine], int(e.start.Character))
	endChar := clampChar(lines[endLine], int(e.end.Character))

	prefix := lines[startLine][:startChar]
	suffix := lines[endLine][endChar:]
	replacement := prefix + e.newText + suffix

	newLines := make([]string, 0, len(lines)-(endLine-startLine))
	newLines = append(newLines, lines[:startLine]...)
	newLines = append(newLines, strings.Split(replacement, "\n")...)
	newLines = append(newLines, lines[endLine+1:]...)
	return newLines
}

func clampChar(line string, char int) int {
	if char < 0 {
		return 0
	}
	if char > len(line) {
		return len(line)
	}
	return char
}
