package lspclient

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/require"
)

// recordingHandler is a fake LSP server: it records the method name of
// every request/notification it receives, in order, and replies to calls
// with a canned null result so the client-side call unblocks.
type recordingHandler struct {
	mu      sync.Mutex
	methods []string
}

func (h *recordingHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	h.mu.Lock()
	h.methods = append(h.methods, req.Method)
	h.mu.Unlock()

	if req.Notif {
		return
	}
	_ = conn.Reply(ctx, req.ID, map[string]any{})
}

func (h *recordingHandler) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.methods))
	copy(out, h.methods)
	return out
}

// newPipedClient wires a Client directly to an in-process fake server over
// a net.Pipe, the same jsonrpc2.NewBufferedStream/VSCodeObjectCodec framing
// dialStdio/dialTCP/dialWebSocket use, bypassing the real subprocess/network
// dial so the ordering between document notifications and capability
// requests can be observed without a real language server binary.
func newPipedClient(t *testing.T) (*Client, *recordingHandler) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	t.Cleanup(func() {
		_ = clientSide.Close()
		_ = serverSide.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fake := &recordingHandler{}
	serverStream := jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{})
	jsonrpc2.NewConn(ctx, serverStream, fake)

	clientStream := jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, clientStream, newNotificationHandler(zerolog.Nop()))

	c := &Client{
		conn:    conn,
		ctx:     ctx,
		cancel:  cancel,
		log:     zerolog.Nop(),
		handler: newNotificationHandler(zerolog.Nop()),
		status:  StatusConnected,
	}
	return c, fake
}

// TestOpenForReadPrecedesDefinitionRequest proves that document.go's
// OpenForRead, when called before a position-based capability request,
// actually sends textDocument/didOpen to the server ahead of the request
// that depends on it (gopls, pylsp, rust-analyzer, and
// typescript-language-server all require the document to already be open).
func TestOpenForReadPrecedesDefinitionRequest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	c, fake := newPipedClient(t)

	_, err := c.OpenForRead(path, "go")
	require.NoError(t, err)

	_, err = c.Definition(path, Position{Line: 0, Character: 0})
	require.NoError(t, err)

	methods := fake.seen()
	require.Len(t, methods, 2)
	require.Equal(t, "textDocument/didOpen", methods[0])
	require.Equal(t, "textDocument/definition", methods[1])
}
