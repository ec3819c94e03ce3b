// Package socketprobe answers "is something listening on this unix socket
// right now", grounded on the original source's lsp_cli.utils.socket
// is_socket_alive (imported by manager/__init__.py's connect_manager to
// decide whether to spawn the broker).
package socketprobe

import (
	"net"
	"os"
	"time"
)

// Alive reports whether a process is accepting connections on path. A
// stale socket file left behind by a crashed process (one nothing is
// listening on) reports false, matching is_socket_alive's behavior of
// trying to connect rather than merely stat-ing the path.
func Alive(path string, timeout time.Duration) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}

	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
