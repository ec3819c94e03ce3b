package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"lspcli/internal/lspclient"
	"lspcli/internal/locate"
	"lspcli/internal/lsperr"
	"lspcli/internal/rename"
)

// locateRequest is the shared request body shape for every capability that
// takes a locate-string (spec §4.7, §6: every `lsp <capability>` subcommand
// accepts the same positional locate-string plus a few capability-specific
// flags).
type locateRequest struct {
	Locate string `json:"locate"`
	Marker string `json:"marker,omitempty"`
}

type referenceRequest struct {
	locateRequest
	IncludeDeclaration bool `json:"include_declaration,omitempty"`
	Implementation     bool `json:"implementation,omitempty"`
}

type outlineRequest struct {
	File string `json:"file"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type renamePreviewRequest struct {
	locateRequest
	NewName string `json:"new_name"`
}

type renameExecuteRequest struct {
	ID string `json:"id"`
}

// docSymbol is a loose decode of a textDocument/documentSymbol entry
// (DocumentSymbol shape), enough to walk a dotted symbol path without
// committing to lsprotocol-go's exact struct layout (internal/lspclient's
// capability methods return json.RawMessage for the same reason).
type docSymbol struct {
	Name           string      `json:"name"`
	Kind           int         `json:"kind"`
	Range          docRange    `json:"range"`
	SelectionRange docRange    `json:"selectionRange"`
	Children       []docSymbol `json:"children,omitempty"`
}

type docRange struct {
	Start docPosition `json:"start"`
	End   docPosition `json:"end"`
}

type docPosition struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// resolveFile turns a locate-string's file segment into an absolute path
// rooted at the session's project root, matching spec §4.7's "file paths in
// a locate-string are relative to the session's project root unless
// already absolute".
func (s *Session) resolveFile(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.ProjectRoot, file)
}

// openDocument tells the LSP server path is open, as every position-based
// capability request (definition, hover, references, documentSymbol)
// requires: servers such as gopls, pylsp, rust-analyzer, and
// typescript-language-server track document state via
// textDocument/didOpen and otherwise return empty, stale, or erroring
// results for a URI they were never told is open.
func (s *Session) openDocument(path string) error {
	_, err := s.client.OpenForRead(path, s.Language)
	return err
}

// closeDocument notifies the server path is no longer open. Errors are
// logged rather than surfaced: a failed didClose notification must not
// turn an otherwise-successful capability response into an error.
func (s *Session) closeDocument(path string) {
	if err := s.client.DidClose(path); err != nil {
		s.log.Debug().Err(err).Str("path", path).Msg("didClose notification failed")
	}
}

// resolvePosition turns a parsed Locate's scope+find into a concrete
// Position, reading the file directly for line scopes and consulting
// DocumentSymbols for symbol scopes (spec §4.7: "a locate-string resolves
// to exactly one position before any capability call is made"). It opens
// the resolved file with the server first, since both the symbol-scope
// lookup below and every capability call the caller makes afterward are
// position-based requests against it.
func (s *Session) resolvePosition(loc locate.Locate) (string, lspclient.Position, error) {
	path := s.resolveFile(loc.File)

	if err := s.openDocument(path); err != nil {
		return "", lspclient.Position{}, lsperr.Wrap(lsperr.KindParseError, "opening document", err)
	}

	switch loc.Scope.Kind {
	case locate.ScopeNone:
		return s.resolveFindOnLine(path, 0, loc.Find)
	case locate.ScopeLine:
		return s.resolveFindOnLine(path, uint32(loc.Scope.Line-1), loc.Find)
	case locate.ScopeLineRange:
		return s.resolveFindOnLine(path, uint32(loc.Scope.Start-1), loc.Find)
	case locate.ScopeSymbol:
		pos, err := s.resolveSymbolPosition(path, loc.Scope.Symbol)
		if err != nil {
			return "", lspclient.Position{}, err
		}
		if loc.Find.Present {
			return s.resolveFindOnLine(path, pos.Line, loc.Find)
		}
		return path, pos, nil
	default:
		return s.resolveFindOnLine(path, 0, loc.Find)
	}
}

func (s *Session) resolveSymbolPosition(path, dotted string) (lspclient.Position, error) {
	raw, err := s.client.DocumentSymbols(path)
	if err != nil {
		return lspclient.Position{}, err
	}

	var symbols []docSymbol
	if err := json.Unmarshal(raw, &symbols); err != nil || len(symbols) == 0 {
		return lspclient.Position{}, lsperr.New(lsperr.KindParseError, "document has no symbol outline")
	}

	segments := strings.Split(dotted, ".")
	found, ok := findSymbolPath(symbols, segments)
	if !ok {
		return lspclient.Position{}, lsperr.New(lsperr.KindParseError, "symbol not found: "+dotted)
	}
	return lspclient.Position{Line: found.SelectionRange.Start.Line, Character: found.SelectionRange.Start.Character}, nil
}

func findSymbolPath(symbols []docSymbol, segments []string) (*docSymbol, bool) {
	if len(segments) == 0 {
		return nil, false
	}
	for i := range symbols {
		if symbols[i].Name != segments[0] {
			continue
		}
		if len(segments) == 1 {
			return &symbols[i], true
		}
		return findSymbolPath(symbols[i].Children, segments[1:])
	}
	return nil, false
}

// resolveFindOnLine reads path and, if find carries a snippet, searches for
// it starting at line (0-based), refining the column; otherwise returns the
// start of line. Spec §4.7: a find with a marker places the cursor at the
// marker's position within the matched snippet; a markerless find places it
// at the start of the first match.
func (s *Session) resolveFindOnLine(path string, line uint32, find locate.Find) (string, lspclient.Position, error) {
	if !find.Present {
		return path, lspclient.Position{Line: line, Character: 0}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", lspclient.Position{}, lsperr.Wrap(lsperr.KindParseError, "reading file for find", err)
	}
	lines := strings.Split(string(data), "\n")

	needle := find.Text
	cursorOffset := 0
	if find.HasMarker {
		needle = find.Before + find.After
		cursorOffset = len(find.Before)
	}

	for i := int(line); i < len(lines); i++ {
		idx := strings.Index(lines[i], needle)
		if idx < 0 {
			continue
		}
		return path, lspclient.Position{Line: uint32(i), Character: uint32(idx + cursorOffset)}, nil
	}

	return "", lspclient.Position{}, lsperr.New(lsperr.KindParseError, "find snippet not present in file")
}

func decodeLocate(body json.RawMessage, req *locateRequest) (locate.Locate, error) {
	if err := json.Unmarshal(body, req); err != nil {
		return locate.Locate{}, lsperr.Wrap(lsperr.KindParseError, "decoding request body", err)
	}
	marker := req.Marker
	if marker == "" {
		marker = locate.DefaultMarker
	}
	return locate.Parse(req.Locate, marker)
}

// handleLocate resolves a locate-string to a concrete file+position without
// issuing a position-based capability request, useful for verifying a
// locate-string resolves the way the caller expects (spec §6 "lsp locate").
// Resolution still opens the document with the server, and a symbol scope
// queries textDocument/documentSymbol.
func (s *Session) handleLocate(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var req locateRequest
	loc, err := decodeLocate(body, &req)
	if err != nil {
		return nil, err
	}

	path, pos, err := s.resolvePosition(loc)
	if err != nil {
		return nil, err
	}
	defer s.closeDocument(path)

	return json.Marshal(map[string]any{
		"file":      path,
		"line":      pos.Line,
		"character": pos.Character,
	})
}

func (s *Session) handleDefinition(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var req locateRequest
	loc, err := decodeLocate(body, &req)
	if err != nil {
		return nil, err
	}
	path, pos, err := s.resolvePosition(loc)
	if err != nil {
		return nil, err
	}
	defer s.closeDocument(path)
	return s.client.Definition(path, pos)
}

func (s *Session) handleHover(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var req locateRequest
	loc, err := decodeLocate(body, &req)
	if err != nil {
		return nil, err
	}
	path, pos, err := s.resolvePosition(loc)
	if err != nil {
		return nil, err
	}
	defer s.closeDocument(path)
	return s.client.Hover(path, pos)
}

func (s *Session) handleReference(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var req referenceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, lsperr.Wrap(lsperr.KindParseError, "decoding request body", err)
	}
	marker := req.Marker
	if marker == "" {
		marker = locate.DefaultMarker
	}
	loc, err := locate.Parse(req.Locate, marker)
	if err != nil {
		return nil, err
	}
	path, pos, err := s.resolvePosition(loc)
	if err != nil {
		return nil, err
	}
	defer s.closeDocument(path)

	if req.Implementation {
		return s.client.Implementation(path, pos)
	}
	return s.client.References(path, pos, req.IncludeDeclaration)
}

func (s *Session) handleOutline(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var req outlineRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, lsperr.Wrap(lsperr.KindParseError, "decoding request body", err)
	}

	path := s.resolveFile(req.File)
	if err := s.openDocument(path); err != nil {
		return nil, lsperr.Wrap(lsperr.KindParseError, "opening document", err)
	}
	defer s.closeDocument(path)

	return s.client.DocumentSymbols(path)
}

// handleSymbol resolves a locate-string with a dotted symbol scope down to
// the single matching document symbol, used by `lsp symbol` to answer "what
// symbol is at this location" (spec §6). Without a symbol scope it returns
// the file's whole documentSymbol response; the @find segment is not used.
func (s *Session) handleSymbol(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var req locateRequest
	loc, err := decodeLocate(body, &req)
	if err != nil {
		return nil, err
	}

	path := s.resolveFile(loc.File)
	if err := s.openDocument(path); err != nil {
		return nil, lsperr.Wrap(lsperr.KindParseError, "opening document", err)
	}
	defer s.closeDocument(path)

	raw, err := s.client.DocumentSymbols(path)
	if err != nil {
		return nil, err
	}

	if loc.Scope.Kind != locate.ScopeSymbol {
		return raw, nil
	}

	var symbols []docSymbol
	if err := json.Unmarshal(raw, &symbols); err != nil {
		return nil, lsperr.Wrap(lsperr.KindParseError, "decoding document symbols", err)
	}
	found, ok := findSymbolPath(symbols, strings.Split(loc.Scope.Symbol, "."))
	if !ok {
		return nil, lsperr.New(lsperr.KindParseError, "symbol not found: "+loc.Scope.Symbol)
	}
	return json.Marshal(found)
}

func (s *Session) handleSearch(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var req searchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, lsperr.Wrap(lsperr.KindParseError, "decoding request body", err)
	}
	return s.client.WorkspaceSymbols(req.Query)
}

func (s *Session) handleRenamePreview(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var req renamePreviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, lsperr.Wrap(lsperr.KindParseError, "decoding request body", err)
	}
	marker := req.Marker
	if marker == "" {
		marker = locate.DefaultMarker
	}
	loc, err := locate.Parse(req.Locate, marker)
	if err != nil {
		return nil, err
	}
	path, pos, err := s.resolvePosition(loc)
	if err != nil {
		return nil, err
	}
	defer s.closeDocument(path)

	result, err := rename.Preview(s.client, path, pos, req.NewName)
	if err != nil {
		return nil, err
	}
	id := s.renames.Store(result)

	return json.Marshal(map[string]any{"id": id, "edit": result.Edit})
}

func (s *Session) handleRenameExecute(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var req renameExecuteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, lsperr.Wrap(lsperr.KindParseError, "decoding request body", err)
	}

	applied, err := s.renames.Execute(req.ID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"files_changed": applied})
}
