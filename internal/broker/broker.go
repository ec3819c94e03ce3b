// Package broker implements the well-known-socket HTTP surface spec §4.4
// describes: POST /create, DELETE /delete, GET /list — a thin HTTP shim in
// front of a *manager.Manager, grounded on the original source's
// manager/__init__.py app (Litestar route handlers, manager_lifespan) and
// the teacher/go-opencode's internal/server Config/New/Start/Shutdown shape
// (chi + cors wiring idiom).
package broker

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"lspcli/internal/lsperr"
	"lspcli/internal/manager"
	"lspcli/internal/socketprobe"
)

// Broker serves the manager's HTTP surface over a single unix socket.
type Broker struct {
	mgr        *manager.Manager
	log        zerolog.Logger
	socketPath string

	listener net.Listener
	server   *http.Server
}

// New builds a Broker bound to socketPath, not yet listening.
func New(mgr *manager.Manager, socketPath string, log zerolog.Logger) *Broker {
	return &Broker{mgr: mgr, log: log, socketPath: socketPath}
}

// Serve binds the broker's socket and serves until ctx is cancelled,
// mirroring manager_lifespan's run-until-cancelled shape. If another broker
// is already accepting connections on the socket, Serve returns nil without
// binding; only a stale socket file is removed before binding.
func (b *Broker) Serve(ctx context.Context) error {
	if socketprobe.Alive(b.socketPath, 200*time.Millisecond) {
		b.log.Info().Str("socket", b.socketPath).Msg("another broker is already listening; exiting")
		return nil
	}
	_ = os.Remove(b.socketPath)
	if err := os.MkdirAll(filepath.Dir(b.socketPath), 0o755); err != nil {
		return lsperr.Wrap(lsperr.KindServerFault, "creating broker socket dir", err)
	}

	l, err := net.Listen("unix", b.socketPath)
	if err != nil {
		return lsperr.Wrap(lsperr.KindServerFault, "binding broker socket", err)
	}
	b.listener = l
	b.server = &http.Server{Handler: b.router()}

	errCh := make(chan error, 1)
	go func() { errCh <- b.server.Serve(l) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.mgr.Shutdown(shutdownCtx)
		_ = b.server.Shutdown(shutdownCtx)
		_ = os.Remove(b.socketPath)
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return lsperr.Wrap(lsperr.KindServerFault, "broker http server", err)
		}
		return nil
	}
}

func (b *Broker) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"ok"`))
	})

	r.Post("/create", b.handleCreate)
	r.Delete("/delete", b.handleDelete)
	r.Get("/list", b.handleList)

	return r
}

type createRequest struct {
	Path string `json:"path"`
}

// createResponseInfo and createResponse match spec §4.4's documented
// POST /create wire shape exactly: 201 {uds_path, info: {project_path,
// language, remaining_time}}.
type createResponseInfo struct {
	ProjectPath   string        `json:"project_path"`
	Language      string        `json:"language"`
	RemainingTime time.Duration `json:"remaining_time"`
}

type createResponse struct {
	UDSPath string             `json:"uds_path"`
	Info    createResponseInfo `json:"info"`
}

func (b *Broker) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, lsperr.Wrap(lsperr.KindParseError, "decoding create request", err))
		return
	}

	result, err := b.mgr.Create(r.Context(), req.Path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		UDSPath: result.SocketPath,
		Info: createResponseInfo{
			ProjectPath:   result.Info.ProjectPath,
			Language:      result.Info.Language,
			RemainingTime: result.Info.RemainingTime,
		},
	})
}

type deleteRequest struct {
	Path string `json:"path"`
}

func (b *Broker) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, lsperr.Wrap(lsperr.KindParseError, "decoding delete request", err))
		return
	}

	info, err := b.mgr.Delete(req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"info": info})
}

func (b *Broker) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.mgr.List())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind, ok := lsperr.KindOf(err)
	status := http.StatusInternalServerError
	if ok {
		status = lsperr.HTTPStatus(kind)
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
