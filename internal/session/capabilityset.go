package session

import (
	"context"
	"encoding/json"
)

// capFunc is the struct-of-function-pointers cell spec §9's Design Notes
// calls for ("a struct of optional function pointers"), replacing the
// original source's lazily-constructed per-request state-bag attributes
// (manager/client.py's _create_app capability wrappers).
type capFunc func(context.Context, json.RawMessage) (json.RawMessage, error)

// capabilitySet is built once at the starting->ready transition (spec §9
// Design Notes, "Per-session state-bag dispatch"): one field per
// capability named in spec §4.5, nil when the resolved LSP client/server
// doesn't support it, in which case the route returns the
// capability-unsupported error (spec §7 kind 2) without ever calling into
// the LSP client.
type capabilitySet struct {
	Locate        capFunc
	Definition    capFunc
	Hover         capFunc
	Reference     capFunc
	Outline       capFunc
	Symbol        capFunc
	Search        capFunc
	RenamePreview capFunc
	RenameExecute capFunc
}

func buildCapabilitySet(s *Session) capabilitySet {
	server := s.client.ServerCapabilities()

	return capabilitySet{
		Locate:        s.handleLocate,
		Definition:    capIf(server.DefinitionProvider != nil, s.handleDefinition),
		Hover:         capIf(server.HoverProvider != nil, s.handleHover),
		Reference:     capIf(server.ReferencesProvider != nil, s.handleReference),
		Outline:       capIf(server.DocumentSymbolProvider != nil, s.handleOutline),
		Symbol:        capIf(server.DocumentSymbolProvider != nil, s.handleSymbol),
		Search:        capIf(server.WorkspaceSymbolProvider != nil, s.handleSearch),
		RenamePreview: capIf(server.RenameProvider != nil, s.handleRenamePreview),
		RenameExecute: capIf(server.RenameProvider != nil, s.handleRenameExecute),
	}
}

func capIf(supported bool, fn capFunc) capFunc {
	if !supported {
		return nil
	}
	return fn
}

// dispatch wraps the capabilitySet field lookup the router performs
// (named here so router.go stays a thin HTTP shim).
func (s *Session) dispatch(name string) capFunc {
	switch name {
	case "locate":
		return s.caps.Locate
	case "definition":
		return s.caps.Definition
	case "hover":
		return s.caps.Hover
	case "reference":
		return s.caps.Reference
	case "outline":
		return s.caps.Outline
	case "symbol":
		return s.caps.Symbol
	case "search":
		return s.caps.Search
	case "rename/preview":
		return s.caps.RenamePreview
	case "rename/execute":
		return s.caps.RenameExecute
	default:
		return nil
	}
}
