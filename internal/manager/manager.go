// Package manager implements the broker's session table (spec §4.3): a
// single in-process registry mapping SessionId to a running *session.Session,
// created lazily on first request and torn down by idle timeout or explicit
// delete, grounded on the original source's manager/manager.py Manager
// (create_client/delete_client/inspect_client/list_clients) and the
// teacher's cmd/lsp-session-manager/main.go SessionManager supervision loop.
package manager

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"lspcli/internal/config"
	"lspcli/internal/descriptor"
	"lspcli/internal/lsperr"
	"lspcli/internal/logging"
	"lspcli/internal/session"
)

// Manager owns every live Session, keyed by SessionID (spec §4.3
// "sessions: mapping SessionId -> Session").
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session.Session

	registry *descriptor.Registry
	paths    config.Paths
	cfg      config.Config
	log      zerolog.Logger

	wg sync.WaitGroup
}

// New builds a Manager bound to registry and cfg, not yet serving requests.
func New(registry *descriptor.Registry, cfg config.Config, log zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*session.Session),
		registry: registry,
		paths:    cfg.Paths,
		cfg:      cfg,
		log:      log,
	}
}

// CreateResult is returned by Create: the resolved session's socket path
// and derived info, matching the original's CreateClientResponse.
type CreateResult struct {
	SocketPath string
	Info       session.Info
}

// Create resolves path to a (kind, root) target and returns the socket path
// of the session that serves it, starting a new one if none exists yet
// (spec §4.3 create_session / spec §4.4 POST /create). Reusing an existing
// session resets its idle deadline (original's "Reusing existing client"
// branch).
func (m *Manager) Create(ctx context.Context, path string) (CreateResult, error) {
	target, ok := m.registry.FindTarget(path)
	if !ok {
		return CreateResult{}, lsperr.New(lsperr.KindUnsupportedPath, "no language descriptor claims path: "+path)
	}

	baseID := SessionID(target.Descriptor.Kind, target.ProjectRoot)

	m.mu.Lock()
	id, existing := resolveCreateSlot(m.sessions, baseID, target.ProjectRoot)
	if existing != nil {
		m.mu.Unlock()
		existing.ResetDeadline()
		return CreateResult{SocketPath: existing.SocketPath, Info: existing.Info()}, nil
	}

	socketPath := m.paths.SessionSocketPath(id)
	sessionLog := logging.ForSession(m.log, id)
	s := session.New(id, target, socketPath, m.cfg.IdleTimeout, sessionLog)
	m.sessions[id] = s
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := s.Run(context.Background()); err != nil {
			sessionLog.Error().Err(err).Msg("session exited with error")
		}
		m.remove(id, s)
	}()

	select {
	case <-s.Ready():
	case <-s.Done():
	case <-ctx.Done():
		return CreateResult{}, ctx.Err()
	}

	return CreateResult{SocketPath: s.SocketPath, Info: s.Info()}, nil
}

func (m *Manager) remove(id string, s *session.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.sessions[id]; ok && cur == s {
		delete(m.sessions, id)
	}
}

// Delete stops the session serving path, if any, returning its last known
// info (spec §4.3 delete_session, original's DeleteClientResponse).
func (m *Manager) Delete(path string) (*session.Info, error) {
	target, ok := m.registry.FindTarget(path)
	if !ok {
		return nil, lsperr.New(lsperr.KindUnsupportedPath, "no language descriptor claims path: "+path)
	}

	id := SessionID(target.Descriptor.Kind, target.ProjectRoot)

	m.mu.Lock()
	s, found := m.sessions[id]
	m.mu.Unlock()
	if !found {
		return nil, nil
	}

	info := s.Info()
	s.Stop()
	return &info, nil
}

// Inspect returns the info of the session serving path, if one exists.
func (m *Manager) Inspect(path string) (*session.Info, error) {
	target, ok := m.registry.FindTarget(path)
	if !ok {
		return nil, lsperr.New(lsperr.KindUnsupportedPath, "no language descriptor claims path: "+path)
	}

	id := SessionID(target.Descriptor.Kind, target.ProjectRoot)

	m.mu.Lock()
	s, found := m.sessions[id]
	m.mu.Unlock()
	if !found {
		return nil, nil
	}
	info := s.Info()
	return &info, nil
}

// List returns the derived info of every live session (spec §4.3
// list_sessions, original's list_clients).
func (m *Manager) List() []session.Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]session.Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

// Shutdown stops every live session and waits for their run-goroutines to
// exit, bounded by ctx.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*session.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// resolveCreateSlot decides which table slot baseID should use given the
// sessions already present: reuse the existing entry (and signal it via the
// returned *session.Session) when it already serves projectRoot, or mint a
// disambiguated slot id when baseID is occupied by a session serving a
// *different* root — a 32-bit SessionID collision (spec §3) — so that two
// distinct roots never collapse into one session. Factored out of Create so
// the collision branch can be exercised directly in tests without needing to
// find two real paths whose 32-bit hashes actually coincide.
func resolveCreateSlot(sessions map[string]*session.Session, baseID, projectRoot string) (slotID string, reuse *session.Session) {
	existing, found := sessions[baseID]
	if !found {
		return baseID, nil
	}
	if existing.ProjectRoot == projectRoot {
		return baseID, existing
	}
	return baseID + "-" + collisionSuffix(projectRoot), nil
}
