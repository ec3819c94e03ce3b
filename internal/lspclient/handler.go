package lspclient

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
)

// notificationHandler dispatches server-initiated requests and
// notifications, grounded on the teacher's lsp/handler.go ClientHandler:
// publishDiagnostics and progress are tracked, registerCapability and
// configuration requests get empty replies, any other request is answered
// with a method-not-found error, and any other notification is logged as
// unhandled.
type notificationHandler struct {
	log      zerolog.Logger
	progress *progressTracker

	diagnosticsMu sync.Mutex
	diagnostics   map[string]json.RawMessage
}

func newNotificationHandler(log zerolog.Logger) *notificationHandler {
	return &notificationHandler{
		log:         log,
		progress:    newProgressTracker(),
		diagnostics: make(map[string]json.RawMessage),
	}
}

func (h *notificationHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	switch req.Method {
	case "$/progress":
		if req.Params != nil {
			h.progress.update(*req.Params)
		}
	case "textDocument/publishDiagnostics":
		if req.Params != nil {
			var params struct {
				URI string `json:"uri"`
			}
			_ = json.Unmarshal(*req.Params, &params)
			h.diagnosticsMu.Lock()
			h.diagnostics[params.URI] = *req.Params
			h.diagnosticsMu.Unlock()
		}
	case "window/showMessage", "window/logMessage":
		h.log.Debug().Str("method", req.Method).Msg("server message")
	case "client/registerCapability":
		if !req.Notif {
			_ = conn.Reply(ctx, req.ID, map[string]any{})
		}
	case "workspace/configuration":
		if !req.Notif {
			_ = conn.Reply(ctx, req.ID, []json.RawMessage{})
		}
	default:
		if !req.Notif {
			_ = conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeMethodNotFound,
				Message: "method not supported: " + req.Method,
			})
			return
		}
		h.log.Debug().Str("method", req.Method).Msg("unhandled notification")
	}
}

func (h *notificationHandler) diagnosticsFor(uri string) (json.RawMessage, bool) {
	h.diagnosticsMu.Lock()
	defer h.diagnosticsMu.Unlock()
	raw, ok := h.diagnostics[uri]
	return raw, ok
}
