// Package render formats capability responses for terminal output (spec §6:
// "prints the response; exits"), one function per capability, grounded on
// the original source's ManagedClientInfo.format() (rich.Table) and the
// get_outline/search command bodies' symbol-kind filtering and pagination
// notice.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"lspcli/internal/session"
)

func newTabWriter(sb *strings.Builder) *tabwriter.Writer {
	return tabwriter.NewWriter(sb, 0, 4, 2, ' ', 0)
}

// Sessions formats `server list`'s output, grounded on
// ManagedClientInfo.format()'s three-column rich.Table (Language, Project
// Path, Remaining Time).
func Sessions(infos []session.Info, markdown bool) string {
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	if markdown {
		var sb strings.Builder
		sb.WriteString("| Language | Project Path | Remaining Time |\n")
		sb.WriteString("|---|---|---|\n")
		for _, info := range infos {
			fmt.Fprintf(&sb, "| %s | %s | %.1fs |\n", info.Language, info.ProjectPath, info.RemainingTime.Seconds())
		}
		return sb.String()
	}

	var sb strings.Builder
	w := newTabWriter(&sb)
	fmt.Fprintln(w, "LANGUAGE\tPROJECT PATH\tREMAINING TIME")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%.1fs\n", info.Language, info.ProjectPath, info.RemainingTime.Seconds())
	}
	_ = w.Flush()
	return sb.String()
}

// Locate formats the `lsp locate` capability's resolved file+position.
func Locate(raw json.RawMessage, markdown bool) string {
	var resolved struct {
		File      string `json:"file"`
		Line      uint32 `json:"line"`
		Character uint32 `json:"character"`
	}
	if err := json.Unmarshal(raw, &resolved); err != nil {
		return rawFallback(raw, markdown)
	}
	if markdown {
		return fmt.Sprintf("**%s** — line %d, column %d\n", resolved.File, resolved.Line+1, resolved.Character+1)
	}
	return fmt.Sprintf("%s:%d:%d\n", resolved.File, resolved.Line+1, resolved.Character+1)
}

type location struct {
	URI   string `json:"uri"`
	Range struct {
		Start struct {
			Line      uint32 `json:"line"`
			Character uint32 `json:"character"`
		} `json:"start"`
	} `json:"range"`
}

// Locations formats a Location | Location[] response, backing both
// `definition` and `reference` (spec §6), which the LSP spec allows a
// server to answer with either shape.
func Locations(raw json.RawMessage, markdown bool) string {
	locs, ok := decodeLocations(raw)
	if !ok {
		return rawFallback(raw, markdown)
	}
	if len(locs) == 0 {
		return "(no results)\n"
	}

	var sb strings.Builder
	if markdown {
		for _, l := range locs {
			fmt.Fprintf(&sb, "- `%s:%d:%d`\n", l.URI, l.Range.Start.Line+1, l.Range.Start.Character+1)
		}
		return sb.String()
	}
	w := newTabWriter(&sb)
	for _, l := range locs {
		fmt.Fprintf(w, "%s\t%d\t%d\n", l.URI, l.Range.Start.Line+1, l.Range.Start.Character+1)
	}
	_ = w.Flush()
	return sb.String()
}

func decodeLocations(raw json.RawMessage) ([]location, bool) {
	var list []location
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}
	var single location
	if err := json.Unmarshal(raw, &single); err == nil && single.URI != "" {
		return []location{single}, true
	}
	return nil, false
}

// Hover formats a Hover response's markdown/plaintext contents verbatim.
func Hover(raw json.RawMessage, markdown bool) string {
	var hover struct {
		Contents json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(raw, &hover); err != nil || len(raw) == 0 || string(raw) == "null" {
		return "(no hover information)\n"
	}

	var text string
	var asString string
	var asStruct struct {
		Kind  string `json:"kind"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(hover.Contents, &asString); err == nil {
		text = asString
	} else if err := json.Unmarshal(hover.Contents, &asStruct); err == nil {
		text = asStruct.Value
	} else {
		text = string(hover.Contents)
	}

	if markdown {
		return text + "\n"
	}
	return stripMarkdown(text) + "\n"
}

func stripMarkdown(s string) string {
	s = strings.ReplaceAll(s, "```", "")
	s = strings.ReplaceAll(s, "**", "")
	return s
}

// structuralSymbolKinds is the original's get_outline default filter: only
// classes/functions/methods/interfaces/enums/modules/namespaces/structs are
// shown unless --all is given. Kind numbers match the LSP SymbolKind enum.
var structuralSymbolKinds = map[int]bool{
	2:  true, // Module
	3:  true, // Namespace
	5:  true, // Class
	6:  true, // Method
	10: true, // Enum
	11: true, // Interface
	12: true, // Function
	23: true, // Struct
}

type symbol struct {
	Name     string   `json:"name"`
	Kind     int      `json:"kind"`
	Detail   string   `json:"detail,omitempty"`
	Range    rangeDoc `json:"range"`
	Children []symbol `json:"children,omitempty"`
}

type rangeDoc struct {
	Start struct {
		Line      uint32 `json:"line"`
		Character uint32 `json:"character"`
	} `json:"start"`
}

// Outline formats a DocumentSymbol tree, filtering to structural kinds by
// default (original's get_outline behavior) unless all is true.
func Outline(raw json.RawMessage, all bool, markdown bool) string {
	var symbols []symbol
	if err := json.Unmarshal(raw, &symbols); err != nil {
		return rawFallback(raw, markdown)
	}

	var sb strings.Builder
	writeOutline(&sb, symbols, 0, all, markdown)
	if sb.Len() == 0 {
		return "(no symbols)\n"
	}
	return sb.String()
}

func writeOutline(sb *strings.Builder, symbols []symbol, depth int, all bool, markdown bool) {
	for _, s := range symbols {
		if all || structuralSymbolKinds[s.Kind] {
			indent := strings.Repeat("  ", depth)
			if markdown {
				fmt.Fprintf(sb, "%s- **%s** (line %d)\n", indent, s.Name, s.Range.Start.Line+1)
			} else {
				fmt.Fprintf(sb, "%s%s\tline %d\n", indent, s.Name, s.Range.Start.Line+1)
			}
		}
		writeOutline(sb, s.Children, depth+1, all, markdown)
	}
}

// Symbol formats a single resolved symbol (the `symbol` capability's
// narrower answer to "what symbol is here", distinct from Outline's
// whole-file tree).
func Symbol(raw json.RawMessage, markdown bool) string {
	var s symbol
	if err := json.Unmarshal(raw, &s); err != nil {
		return Outline(raw, true, markdown)
	}
	if markdown {
		return fmt.Sprintf("**%s** — line %d\n", s.Name, s.Range.Start.Line+1)
	}
	return fmt.Sprintf("%s\tline %d\n", s.Name, s.Range.Start.Line+1)
}

// maxSearchResults caps how many workspace/symbol matches are printed
// before a truncation notice is shown, matching the original CLI's search
// command which warns rather than silently dropping results.
const maxSearchResults = 50

// Search formats a WorkspaceSymbol[] response with a truncation notice past
// maxSearchResults (original's search command pagination behavior).
func Search(raw json.RawMessage, markdown bool) string {
	var symbols []symbol
	if err := json.Unmarshal(raw, &symbols); err != nil {
		return rawFallback(raw, markdown)
	}
	if len(symbols) == 0 {
		return "(no matches)\n"
	}

	overflow := 0
	if len(symbols) > maxSearchResults {
		overflow = len(symbols) - maxSearchResults
		symbols = symbols[:maxSearchResults]
	}

	var sb strings.Builder
	w := newTabWriter(&sb)
	for _, s := range symbols {
		fmt.Fprintf(w, "%s\tline %d\n", s.Name, s.Range.Start.Line+1)
	}
	_ = w.Flush()

	if overflow > 0 {
		fmt.Fprintf(&sb, "... %d more result(s) truncated; narrow your query\n", overflow)
	}
	return sb.String()
}

// RenamePreview formats a rename/preview response: the preview id plus a
// per-file count of edits, the round-trip property spec §8 names.
func RenamePreview(id string, edit json.RawMessage, markdown bool) string {
	var parsed struct {
		Changes map[string][]json.RawMessage `json:"changes"`
	}
	_ = json.Unmarshal(edit, &parsed)

	var sb strings.Builder
	if markdown {
		fmt.Fprintf(&sb, "Preview id: `%s`\n\n", id)
		for uri, edits := range parsed.Changes {
			fmt.Fprintf(&sb, "- %s: %d edit(s)\n", uri, len(edits))
		}
	} else {
		fmt.Fprintf(&sb, "preview id: %s\n", id)
		for uri, edits := range parsed.Changes {
			fmt.Fprintf(&sb, "%s: %d edit(s)\n", uri, len(edits))
		}
	}
	return sb.String()
}

// RenameExecute formats a rename/execute response's file-count summary.
func RenameExecute(filesChanged int) string {
	return fmt.Sprintf("applied rename to %d file(s)\n", filesChanged)
}

func rawFallback(raw json.RawMessage, markdown bool) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "(no result)\n"
	}
	if markdown {
		return "```json\n" + string(raw) + "\n```\n"
	}
	return string(raw) + "\n"
}
