package lspclient

import (
	"encoding/json"
	"time"

	"github.com/myleshyson/lsprotocol-go/protocol"
	"lspcli/internal/lsperr"
)

// Position is a 0-based line/character pair, the LSP on-the-wire shape.
type Position struct {
	Line      uint32
	Character uint32
}

func textDocumentPositionParams(uri string, pos Position) map[string]any {
	return map[string]any{
		"textDocument": map[string]any{"uri": FilePathToURI(uri)},
		"position":     map[string]any{"line": pos.Line, "character": pos.Character},
	}
}

// Each capability call below mirrors one of lsp/methods.go's typed
// methods (Definition/References/Hover/DocumentSymbols/WorkspaceSymbols/
// Rename/PrepareRename), but returns json.RawMessage rather than a
// lsprotocol-go struct: the teacher's own Definition method has to
// special-case raw JSON because the LSP response shape is a union
// (Location | LocationLink), and several other capability responses are
// similarly nullable-or-shaped-by-server-capability; decoding generically
// here and formatting in internal/render avoids over-committing to struct
// fields this module never reads.

// Definition calls textDocument/definition.
func (c *Client) Definition(uri string, pos Position) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.call("textDocument/definition", textDocumentPositionParams(uri, pos), &raw, 30*time.Second); err != nil {
		return nil, protocolErr(err)
	}
	return raw, nil
}

// Hover calls textDocument/hover. A null result (hover on whitespace) is
// spec-legal (spec §4.5) and returned as the raw JSON `null`, not an error.
func (c *Client) Hover(uri string, pos Position) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.call("textDocument/hover", textDocumentPositionParams(uri, pos), &raw, 30*time.Second); err != nil {
		return nil, protocolErr(err)
	}
	return raw, nil
}

// References calls textDocument/references.
func (c *Client) References(uri string, pos Position, includeDeclaration bool) (json.RawMessage, error) {
	params := textDocumentPositionParams(uri, pos)
	params["context"] = map[string]any{"includeDeclaration": includeDeclaration}

	var raw json.RawMessage
	if err := c.call("textDocument/references", params, &raw, 60*time.Second); err != nil {
		return nil, protocolErr(err)
	}
	return raw, nil
}

// DocumentSymbols calls textDocument/documentSymbol, backing both the
// `outline` and `symbol` capabilities (spec §6).
func (c *Client) DocumentSymbols(uri string) (json.RawMessage, error) {
	params := map[string]any{"textDocument": map[string]any{"uri": FilePathToURI(uri)}}

	var raw json.RawMessage
	if err := c.call("textDocument/documentSymbol", params, &raw, 30*time.Second); err != nil {
		return nil, protocolErr(err)
	}
	return raw, nil
}

// WorkspaceSymbols calls workspace/symbol, backing the `search` capability.
func (c *Client) WorkspaceSymbols(query string) (json.RawMessage, error) {
	params := map[string]any{"query": query}

	var raw json.RawMessage
	if err := c.call("workspace/symbol", params, &raw, 30*time.Second); err != nil {
		return nil, protocolErr(err)
	}
	return raw, nil
}

// Implementation calls textDocument/implementation, used by the `reference
// --impl` variant (spec §6), matching the teacher's session_adapter.go
// Implementation which forwards to the same shape as References.
func (c *Client) Implementation(uri string, pos Position) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.call("textDocument/implementation", textDocumentPositionParams(uri, pos), &raw, 30*time.Second); err != nil {
		return nil, protocolErr(err)
	}
	return raw, nil
}

// PrepareRename calls textDocument/prepareRename, used to validate a
// rename target before computing the edit set.
func (c *Client) PrepareRename(uri string, pos Position) (json.RawMessage, error) {
	if !c.supportsRename() {
		return nil, lsperr.New(lsperr.KindCapabilityUnsupported, "server does not support rename")
	}

	var raw json.RawMessage
	if err := c.call("textDocument/prepareRename", textDocumentPositionParams(uri, pos), &raw, 15*time.Second); err != nil {
		return nil, protocolErr(err)
	}
	return raw, nil
}

// Rename calls textDocument/rename, returning the WorkspaceEdit the
// rename/preview and rename/execute capabilities both consume (spec §8
// round-trip property, internal/rename's grounding).
func (c *Client) Rename(uri string, pos Position, newName string) (json.RawMessage, error) {
	if !c.supportsRename() {
		return nil, lsperr.New(lsperr.KindCapabilityUnsupported, "server does not support rename")
	}

	params := textDocumentPositionParams(uri, pos)
	params["newName"] = newName

	var raw json.RawMessage
	if err := c.call("textDocument/rename", params, &raw, 30*time.Second); err != nil {
		return nil, protocolErr(err)
	}
	return raw, nil
}

func (c *Client) supportsRename() bool {
	caps := c.ServerCapabilities()
	return caps.RenameProvider != nil
}

// protocolErr classifies an underlying jsonrpc2 error as a structured
// protocol-level error (spec §7.4), distinguishing it from transport-level
// failures the caller should treat as a server fault instead.
func protocolErr(err error) error {
	if err == nil {
		return nil
	}
	return lsperr.Wrap(lsperr.KindProtocolError, "lsp request failed", err)
}

// ApplyWorkspaceEdit applies a textDocument/rename-style WorkspaceEdit to
// disk and returns the number of files it changed. rename/execute is its
// only caller (spec §1: "delegates the edit application to the LSP
// library"); server-initiated workspace/applyEdit requests are not routed
// here and are answered with a method-not-found error by the handler.
func ApplyWorkspaceEdit(edit json.RawMessage) (int, error) {
	var parsed struct {
		Changes map[string][]struct {
			Range struct {
				Start protocol.Position `json:"start"`
				End   protocol.Position `json:"end"`
			} `json:"range"`
			NewText string `json:"newText"`
		} `json:"changes"`
	}
	if err := json.Unmarshal(edit, &parsed); err != nil {
		return 0, lsperr.Wrap(lsperr.KindProtocolError, "malformed workspace edit", err)
	}

	applied := 0
	for uri, edits := range parsed.Changes {
		path := URIToFilePath(uri)
		n, err := applyTextEdits(path, edits)
		if err != nil {
			return applied, err
		}
		if n > 0 {
			applied++
		}
	}
	return applied, nil
}
