// Package config resolves XDG runtime/config/log directories and the
// handful of environment-tunable knobs (idle timeout, log level, debug
// flag) the broker and CLI share.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds the resolved directories this program writes under.
type Paths struct {
	Runtime string // unix sockets live here
	Log     string // manager.log and clients/<id>.log live here
	Config  string // reserved for future on-disk config
}

const appDirName = "lsp-cli"

// ResolvePaths reads XDG_RUNTIME_DIR / XDG_STATE_HOME / XDG_CONFIG_HOME (with
// OS-specific fallbacks) and returns the directories this process uses,
// grounded on go-opencode's internal/config/paths.go GetPaths().
func ResolvePaths() Paths {
	return Paths{
		Runtime: filepath.Join(firstNonEmpty(os.Getenv("XDG_RUNTIME_DIR"), defaultRuntimeHome()), appDirName),
		Log:     filepath.Join(firstNonEmpty(os.Getenv("XDG_STATE_HOME"), defaultStateHome()), appDirName, "log"),
		Config:  filepath.Join(firstNonEmpty(os.Getenv("XDG_CONFIG_HOME"), defaultConfigHome()), appDirName),
	}
}

// EnsurePaths creates every directory in p (and the clients/ log subdir)
// if missing.
func EnsurePaths(p Paths) error {
	for _, dir := range []string{p.Runtime, p.Log, filepath.Join(p.Log, "clients"), p.Config} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// BrokerSocketPath is the well-known broker control socket (spec §6).
func (p Paths) BrokerSocketPath() string {
	return filepath.Join(p.Runtime, "lsp-cli-manager.sock")
}

// SessionSocketPath is a session's own socket, named after its id.
func (p Paths) SessionSocketPath(sessionID string) string {
	return filepath.Join(p.Runtime, sessionID+".sock")
}

// ManagerLogPath is the broker-wide log sink.
func (p Paths) ManagerLogPath() string {
	return filepath.Join(p.Log, "manager.log")
}

// SessionLogPath is a per-session log sink.
func (p Paths) SessionLogPath(sessionID string) string {
	return filepath.Join(p.Log, "clients", sessionID+".log")
}

func defaultRuntimeHome() string {
	if runtime.GOOS == "darwin" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state")
	}
	return os.TempDir()
}

func defaultStateHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Logs")
		}
		return filepath.Join(home, ".local", "state")
	}
	return os.TempDir()
}

func defaultConfigHome() string {
	if runtime.GOOS == "windows" {
		if v := os.Getenv("APPDATA"); v != "" {
			return v
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return os.TempDir()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
