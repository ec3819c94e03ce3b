// Package lspclient wraps a single LSP server subprocess (or, for servers
// that expose LSP over a socket, a network connection) in a typed
// capability client. It is the "LSP library" spec.md declares out of
// scope and the core is allowed to consume — grounded on the teacher's
// lsp/tcp_client.go and lsp/websocket_client.go jsonrpc2 wiring pattern,
// generalized here to stdio transport since the teacher itself hand-rolls
// Content-Length framing for stdio instead of using jsonrpc2 for it.
package lspclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"os/exec"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
)

// stdioRWC adapts an exec.Cmd's stdin/stdout pipes into a single
// io.ReadWriteCloser, the same shape jsonrpc2.NewBufferedStream expects
// for the TCP/WebSocket transports in the teacher's lsp package — this is
// the one piece the teacher never generalized to stdio itself.
type stdioRWC struct {
	stdout io.ReadCloser
	stdin  io.WriteCloser
	cmd    *exec.Cmd
}

func (s *stdioRWC) Read(p []byte) (int, error)  { return s.stdout.Read(p) }
func (s *stdioRWC) Write(p []byte) (int, error) { return s.stdin.Write(p) }

func (s *stdioRWC) Close() error {
	err1 := s.stdin.Close()
	err2 := s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// dialStdio launches command with args, wiring its stdin/stdout into a
// jsonrpc2 connection over Content-Length framing (VSCodeObjectCodec,
// exactly as the teacher's TCP/WebSocket clients use it).
func dialStdio(ctx context.Context, command string, args []string, handler jsonrpc2.Handler) (jsonrpc2.Conn, *exec.Cmd, error) {
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting %s: %w", command, err)
	}

	rwc := &stdioRWC{stdout: stdout, stdin: stdin, cmd: cmd}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, handler)

	return conn, cmd, nil
}

// dialTCP connects to a TCP-mode language server, mirroring the teacher's
// lsp/tcp_client.go ConnectTCP with retry/backoff collapsed into a single
// bounded loop.
func dialTCP(ctx context.Context, addr string, attempts int, backoff time.Duration, handler jsonrpc2.Handler) (jsonrpc2.Conn, error) {
	var conn net.Conn
	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err = net.DialTimeout("tcp", addr, 10*time.Second)
		if err == nil {
			break
		}
		if attempt < attempts {
			time.Sleep(backoff * time.Duration(attempt))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("dial tcp %s after %d attempts: %w", addr, attempts, err)
	}

	stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{})
	return jsonrpc2.NewConn(ctx, stream, handler), nil
}

// wsReadWriteCloser adapts a gorilla websocket.Conn's message stream to
// io.ReadWriteCloser so it can be framed with VSCodeObjectCodec the same
// way as the stdio/TCP transports, mirroring the teacher's
// lsp/websocket_client.go dialGorillaWebSocket helper.
type wsReadWriteCloser struct {
	conn *websocket.Conn
	r    io.Reader
}

func (w *wsReadWriteCloser) Read(p []byte) (int, error) {
	for {
		if w.r != nil {
			n, err := w.r.Read(p)
			if err == io.EOF {
				w.r = nil
				continue
			}
			return n, err
		}
		_, r, err := w.conn.NextReader()
		if err != nil {
			return 0, err
		}
		w.r = r
	}
}

func (w *wsReadWriteCloser) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsReadWriteCloser) Close() error { return w.conn.Close() }

// dialWebSocket connects to a WebSocket-mode language server.
func dialWebSocket(ctx context.Context, url string, handler jsonrpc2.Handler) (jsonrpc2.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket %s: %w", url, err)
	}

	rwc := &wsReadWriteCloser{conn: conn}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	return jsonrpc2.NewConn(ctx, stream, handler), nil
}
