// Package session implements one Session (spec §4.2): it owns exactly one
// LSP subprocess, serves the capability HTTP routes over its own
// unix-domain socket, and enforces an idle timeout, grounded on the
// original source's manager/client.py ManagedClient and the teacher's
// cmd/lsp-session-manager/main.go SessionManager (one-subprocess
// lifecycle, request serialization via the wrapped jsonrpc2.Conn).
package session

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"lspcli/internal/descriptor"
	"lspcli/internal/lsperr"
	"lspcli/internal/lspclient"
	"lspcli/internal/rename"
)

// State is the session's server_state tag (spec §3, §4.2 state machine).
type State int

const (
	StateStarting State = iota
	StateReady
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Info is the derived, externally visible view of a session (spec §3
// Session "Derived info").
type Info struct {
	ID            string        `json:"id"`
	ProjectPath   string        `json:"project_path"`
	Language      string        `json:"language"`
	RemainingTime time.Duration `json:"remaining_time"`
}

// Session is the runtime entity described in spec §3: immutable identity
// fields fixed at construction, mutable deadline/state guarded by mu.
type Session struct {
	ID          string
	ProjectRoot string
	Language    string
	SocketPath  string

	idleTimeout time.Duration
	target      descriptor.Target
	log         zerolog.Logger

	mu        sync.Mutex
	deadline  time.Time
	state     State
	shouldEnd bool
	resetCh   chan struct{}

	client  *lspclient.Client
	caps    capabilitySet
	renames *rename.Table

	listener net.Listener
	server   *http.Server

	readyCh chan struct{}
	done    chan struct{}
	cancel  context.CancelFunc
}

// New constructs a Session for target, not yet started (spec §4.2
// Construction): records the given id and socket path, computes the
// initial deadline, and defers the subprocess launch to Run.
func New(id string, target descriptor.Target, socketPath string, idleTimeout time.Duration, log zerolog.Logger) *Session {
	return &Session{
		ID:          id,
		ProjectRoot: target.ProjectRoot,
		Language:    target.Descriptor.Kind,
		SocketPath:  socketPath,
		idleTimeout: idleTimeout,
		target:      target,
		log:         log,
		deadline:    time.Now().Add(idleTimeout),
		state:       StateStarting,
		resetCh:     make(chan struct{}, 1),
		renames:     rename.NewTable(),
		readyCh:     make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Info returns the session's current derived info (spec §3 "Derived
// info"), safe to call concurrently with Run.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := time.Until(s.deadline)
	if remaining < 0 {
		remaining = 0
	}
	return Info{
		ID:            s.ID,
		ProjectPath:   s.ProjectRoot,
		Language:      s.Language,
		RemainingTime: remaining,
	}
}

// State reports the session's current state machine position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Ready returns a channel closed once the session reaches StateReady, so
// handlers arriving before then can await readiness rather than failing
// outright (spec §4.2: "A handler invoked before ready either awaits
// readiness or rejects with a retryable error code" — this implementation
// awaits, bounded by the caller's own request context and by a 30-second
// limit after which capabilityHandler answers with a not-ready error).
func (s *Session) Ready() <-chan struct{} {
	return s.readyCh
}

// Done returns a channel closed once the session's run-task has fully
// exited (spec §3 invariant 1: the manager uses this to know when to
// remove the id from its table).
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// ResetDeadline extends the idle deadline by idleTimeout from now and
// wakes the watchdog loop (spec §4.2 "reset_deadline()"). Every capability
// handler calls this before dispatching (spec §4.2 invariant).
func (s *Session) ResetDeadline() {
	s.mu.Lock()
	s.deadline = time.Now().Add(s.idleTimeout)
	s.mu.Unlock()

	select {
	case s.resetCh <- struct{}{}:
	default:
	}
}

func (s *Session) deadlineAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline
}

// Stop triggers graceful shutdown (spec §4.2 Shutdown routes: explicit
// /shutdown and manager-initiated delete both funnel through this path).
// Idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.shouldEnd {
		s.mu.Unlock()
		return
	}
	s.shouldEnd = true
	s.state = StateStopping
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *Session) stopRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shouldEnd
}

// Run executes the session's full lifecycle (spec §4.2 Startup sequence):
// remove stale socket, launch+initialize the LSP client, bind the HTTP
// server, start the watchdog, serve until cancelled, then clean up on
// every exit path (spec §5 "Resource cleanup"). It blocks until the
// session has fully stopped or failed to start.
func (s *Session) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer close(s.done)
	defer s.teardown()

	if err := s.bindSocket(); err != nil {
		s.setState(StateStopped)
		return lsperr.Wrap(lsperr.KindServerFault, "binding session socket", err)
	}

	cmd, args := s.target.Descriptor.LaunchCommand()
	client, err := lspclient.New(ctx, lspclient.Target{
		Transport: lspclient.TransportStdio,
		Command:   cmd,
		Args:      args,
	}, s.log)
	if err != nil {
		s.setState(StateStopped)
		return lsperr.Wrap(lsperr.KindServerFault, "launching language server", err)
	}
	s.client = client

	if _, err := client.Initialize(s.ProjectRoot); err != nil {
		s.setState(StateStopped)
		return lsperr.Wrap(lsperr.KindServerFault, "lsp initialize handshake failed", err)
	}

	s.caps = buildCapabilitySet(s)
	s.setState(StateReady)
	close(s.readyCh)

	s.server = &http.Server{Handler: s.router()}

	var wg sync.WaitGroup
	wg.Add(4)

	serveErrCh := make(chan error, 1)
	go func() {
		defer wg.Done()
		serveErrCh <- s.server.Serve(s.listener)
	}()

	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	go func() {
		defer wg.Done()
		s.watchdog(ctx)
	}()

	go func() {
		defer wg.Done()
		s.watchRootLiveness(ctx)
	}()

	wg.Wait()

	select {
	case err := <-serveErrCh:
		if err != nil && err != http.ErrServerClosed {
			return lsperr.Wrap(lsperr.KindServerFault, "session http server", err)
		}
	default:
	}
	return nil
}

func (s *Session) bindSocket() error {
	_ = os.Remove(s.SocketPath)
	if err := os.MkdirAll(filepath.Dir(s.SocketPath), 0o755); err != nil {
		return err
	}

	l, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.SocketPath, err)
	}
	s.listener = l
	return nil
}

func (s *Session) serveHTTP() error {
	s.server = &http.Server{Handler: s.router()}
	return s.server.Serve(s.listener)
}

// watchdog is the idle-timeout loop (spec §4.2 "Idle-watchdog algorithm"):
// loop while not should_exit, sleeping for `remaining = deadline - now` and
// waking early on reset or cancellation — the Go rendering of the
// language-neutral "select on (timer, reset-channel)" equivalent from
// spec §9's Design Notes.
func (s *Session) watchdog(ctx context.Context) {
	for {
		if s.stopRequested() {
			return
		}

		remaining := time.Until(s.deadlineAt())
		if remaining <= 0 {
			s.Stop()
			return
		}

		timer := time.NewTimer(remaining)
		select {
		case <-timer.C:
			// Deadline genuinely elapsed with no reset in between.
			if time.Until(s.deadlineAt()) <= 0 {
				s.Stop()
				return
			}
		case <-s.resetCh:
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// watchRootLiveness stops the session early if its project root's claiming
// marker (go.mod, package.json, ...) disappears or is renamed out from
// under it — a deleted workspace or a `git checkout` onto a branch that
// lacks the marker — rather than waiting out the full idle timeout while
// serving an LSP server whose workspace no longer exists. A watcher that
// fails to start (e.g. the root was removed between Create and Run) just
// forgoes early detection; the session still tears down on idle timeout.
func (s *Session) watchRootLiveness(ctx context.Context) {
	rw, err := descriptor.WatchRoot(s.ProjectRoot)
	if err != nil {
		s.log.Debug().Err(err).Msg("root watcher unavailable, relying on idle timeout only")
		return
	}
	defer rw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-rw.Events:
			if !ok {
				return
			}
			if !s.target.Descriptor.StillClaims(s.ProjectRoot) {
				s.log.Info().Str("project_root", s.ProjectRoot).Msg("project root no longer claimed, stopping session")
				s.Stop()
				return
			}
		case err, ok := <-rw.Errors:
			if !ok {
				return
			}
			s.log.Debug().Err(err).Msg("root watcher error")
		}
	}
}

func (s *Session) teardown() {
	s.setState(StateStopped)
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.client != nil {
		_ = s.client.Shutdown()
		_ = s.client.Exit()
		_ = s.client.Close()
	}
	_ = os.Remove(s.SocketPath)
	s.log.Info().Str("session_id", s.ID).Msg("session stopped")
}
