package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"lspcli/internal/lsperr"
)

// router builds the session's HTTP surface (spec §4.5): /health,
// /shutdown, and one POST route per capability, grounded on
// go-opencode/internal/server's chi.NewRouter() wiring idiom.
func (s *Session) router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"ok"`))
	})

	r.Post("/shutdown", func(w http.ResponseWriter, r *http.Request) {
		s.Stop()
		w.WriteHeader(http.StatusOK)
	})

	for _, name := range []string{
		"locate", "definition", "hover", "reference", "outline",
		"symbol", "search", "rename/preview", "rename/execute",
	} {
		name := name
		r.Post("/"+name, s.capabilityHandler(func(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
			fn := s.dispatch(name)
			if fn == nil {
				return nil, lsperr.New(lsperr.KindCapabilityUnsupported, "capability not supported: "+name)
			}
			return fn(ctx, body)
		}))
	}

	return r
}

// capabilityHandler wraps a capabilitySet entry into an http.HandlerFunc:
// resets the idle deadline (spec §4.2 invariant), awaits readiness if
// invoked too early, decodes the request body, and writes either the
// JSON result or a structured error with the matching status code.
func (s *Session) capabilityHandler(fn func(context.Context, json.RawMessage) (json.RawMessage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ResetDeadline()

		if s.State() != StateReady {
			select {
			case <-s.Ready():
			case <-time.After(30 * time.Second):
				writeError(w, lsperr.New(lsperr.KindNotReady, "session not ready"))
				return
			case <-r.Context().Done():
				return
			}
		}

		var body json.RawMessage
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		if fn == nil {
			writeError(w, lsperr.New(lsperr.KindCapabilityUnsupported, "capability not supported"))
			return
		}

		result, err := fn(r.Context(), body)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if result == nil {
			_, _ = w.Write([]byte("null"))
			return
		}
		_, _ = w.Write(result)
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind, ok := lsperr.KindOf(err)
	status := http.StatusInternalServerError
	if ok {
		status = lsperr.HTTPStatus(kind)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": err.Error()})
}
