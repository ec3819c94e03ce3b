package lspclient

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/myleshyson/lsprotocol-go/protocol"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
)

// Status mirrors the teacher's ClientStatus enum (lsp/types.go).
type Status int

const (
	StatusConnecting Status = iota
	StatusConnected
	StatusDisconnected
)

// Transport selects how the subprocess/server is reached, matching the
// three modes the teacher supports (stdio/tcp/websocket) in
// lsp/types.go's LanguageServerConfig.Mode.
type Transport string

const (
	TransportStdio     Transport = "stdio"
	TransportTCP       Transport = "tcp"
	TransportWebSocket Transport = "websocket"
)

// Target describes how to reach an LSP server: a stdio command, or a
// network address for tcp/websocket modes.
type Target struct {
	Transport Transport
	Command   string
	Args      []string
	Address   string // host:port for tcp, ws URL for websocket
}

// Client wraps one LSP server connection bound to a single workspace
// root, exposing the typed capability calls spec.md's core consumes as a
// library (spec §1's "out of scope" LSP protocol implementation).
// Grounded on the teacher's lsp/types.go LanguageClient struct, generalized
// from a single hardcoded transport to Target-selected stdio/tcp/ws.
type Client struct {
	mu sync.RWMutex

	conn jsonrpc2.Conn
	cmd  *exec.Cmd

	ctx    context.Context
	cancel context.CancelFunc

	log     zerolog.Logger
	handler *notificationHandler

	status             Status
	serverCapabilities protocol.ServerCapabilities

	dialAttempts int
	dialBackoff  time.Duration
}

// New dials target and returns a Client in StatusConnected, not yet
// initialized. Call Initialize to complete the LSP handshake.
func New(parent context.Context, target Target, log zerolog.Logger) (*Client, error) {
	ctx, cancel := context.WithCancel(parent)

	c := &Client{
		ctx:          ctx,
		cancel:       cancel,
		log:          log,
		handler:      newNotificationHandler(log),
		status:       StatusConnecting,
		dialAttempts: 5,
		dialBackoff:  2 * time.Second,
	}

	var err error
	switch target.Transport {
	case TransportTCP:
		c.conn, err = dialTCP(ctx, target.Address, c.dialAttempts, c.dialBackoff, c.handler)
	case TransportWebSocket:
		c.conn, err = dialWebSocket(ctx, target.Address, c.handler)
	default:
		c.conn, c.cmd, err = dialStdio(ctx, target.Command, target.Args, c.handler)
	}
	if err != nil {
		cancel()
		return nil, err
	}

	c.status = StatusConnected
	return c, nil
}

// call is the single internal request path, matching the teacher's
// lc.SendRequest(method, params, &result, timeout) signature used
// throughout lsp/methods.go.
func (c *Client) call(method string, params, result any, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	if err := c.conn.Call(ctx, method, params, result); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (c *Client) notify(method string, params any) error {
	return c.conn.Notify(c.ctx, method, params)
}

// Initialize performs the LSP initialize/initialized handshake against
// workspaceRoot. Request params are built as a plain map, matching the
// teacher's cmd/lsp-session-manager/main.go initialize() — which itself
// hand-builds the params map rather than a typed InitializeParams literal
// — so this avoids coupling to lsprotocol-go's exact struct field layout
// while still decoding the (typed) result via lsprotocol-go's
// InitializeResult, the same split the teacher's own Initialize method
// signature implies (typed in, typed out, map params underneath).
func (c *Client) Initialize(workspaceRoot string) (*protocol.InitializeResult, error) {
	uri := FilePathToURI(workspaceRoot)

	params := map[string]any{
		"processId": nil,
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"hover": map[string]any{
					"contentFormat": []string{"markdown", "plaintext"},
				},
				"definition":     map[string]any{"linkSupport": true},
				"references":     map[string]any{},
				"documentSymbol": map[string]any{},
				"rename":         map[string]any{"prepareSupport": true},
				"diagnostic":     map[string]any{},
			},
			"workspace": map[string]any{
				"workspaceFolders": true,
				"symbol":           map[string]any{},
				"applyEdit":        true,
			},
		},
		"rootUri": uri,
		"workspaceFolders": []map[string]string{
			{"uri": uri, "name": workspaceRoot},
		},
	}

	var result protocol.InitializeResult
	if err := c.call("initialize", params, &result, 60*time.Second); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.serverCapabilities = result.Capabilities
	c.mu.Unlock()

	if err := c.notify("initialized", map[string]any{}); err != nil {
		return nil, err
	}

	return &result, nil
}

// Shutdown/Exit perform the LSP shutdown handshake matching
// lsp/methods.go's Shutdown/Exit.
func (c *Client) Shutdown() error {
	return c.call("shutdown", nil, nil, 10*time.Second)
}

func (c *Client) Exit() error {
	return c.notify("exit", nil)
}

// Close tears down the subprocess/connection. Safe to call more than
// once.
func (c *Client) Close() error {
	c.cancel()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// ServerCapabilities returns the capabilities advertised by the server at
// initialize time, used by Session to build its capabilitySet.
func (c *Client) ServerCapabilities() protocol.ServerCapabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverCapabilities
}

// DiagnosticsFor returns the last published diagnostics for uri, if any.
func (c *Client) DiagnosticsFor(uri string) (any, bool) {
	raw, ok := c.handler.diagnosticsFor(uri)
	if !ok {
		return nil, false
	}
	return raw, true
}
