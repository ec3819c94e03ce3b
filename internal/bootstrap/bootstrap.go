// Package bootstrap implements the CLI-side "ensure a broker is running"
// step (spec §4.6): probe the well-known socket, spawn a detached broker
// process if nothing answers, then dial with bounded retry, grounded on the
// original source's manager/__init__.py connect_manager (is_socket_alive
// probe + subprocess.Popen(start_new_session=True) + httpx retry
// transport).
package bootstrap

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
	"lspcli/internal/lsperr"
	"lspcli/internal/socketprobe"
)

const probeTimeout = 200 * time.Millisecond

// EnsureBroker makes sure a broker process is listening on socketPath,
// spawning one (detached, by running brokerCommand with brokerArgs, e.g.
// the path of the lsp-broker binary and no arguments) if the liveness probe
// fails, then blocks until the socket accepts connections or
// retries/backoff are exhausted.
func EnsureBroker(ctx context.Context, socketPath, brokerCommand string, brokerArgs []string, retries int, backoff time.Duration, log zerolog.Logger) error {
	if socketprobe.Alive(socketPath, probeTimeout) {
		return nil
	}

	if err := spawnDetached(brokerCommand, brokerArgs); err != nil {
		return lsperr.Wrap(lsperr.KindBrokerUnreachable, "spawning broker process", err)
	}
	log.Info().Str("socket", socketPath).Msg("spawned broker process")

	delay := backoff
	for attempt := 0; attempt < retries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		if socketprobe.Alive(socketPath, probeTimeout) {
			return nil
		}
		delay *= 2
	}

	return lsperr.New(lsperr.KindBrokerUnreachable, "broker did not come up after spawn")
}

// spawnDetached starts command in its own process group with its stdio
// connected to the null device, so it survives the CLI process exiting
// (spec §4.6 "the broker outlives the CLI invocation that spawned it"). It
// does not start a new session (no setsid), so the broker stays in the
// CLI's session and keeps its controlling terminal.
func spawnDetached(command string, args []string) error {
	cmd := exec.Command(command, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = sysProcAttr()
	return cmd.Start()
}

// SelfExecutable resolves the path to the currently running binary, used
// by the CLI to look for an lsp-broker binary in the same directory before
// falling back to one on PATH.
func SelfExecutable() (string, error) {
	return os.Executable()
}
