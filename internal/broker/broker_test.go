package broker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"lspcli/internal/config"
	"lspcli/internal/descriptor"
	"lspcli/internal/manager"
)

func newTestBroker(t *testing.T) *Broker {
	t.Helper()
	mgr := manager.New(descriptor.NewDefaultRegistry(), config.Config{Paths: config.ResolvePaths()}, zerolog.Nop())
	return New(mgr, t.TempDir()+"/broker.sock", zerolog.Nop())
}

func TestHealthzReportsOK(t *testing.T) {
	b := newTestBroker(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	b.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListEmptyManagerReturnsEmptyArray(t *testing.T) {
	b := newTestBroker(t)
	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	rec := httptest.NewRecorder()
	b.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty JSON array, got %q", rec.Body.String())
	}
}

func TestCreateMalformedBodyReturns400(t *testing.T) {
	b := newTestBroker(t)
	req := httptest.NewRequest(http.MethodPost, "/create", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	b.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// TestCreateResponseWireShape pins POST /create's successful wire shape to
// spec §4.4: 201 {uds_path, info: {project_path, language, remaining_time}},
// not the socket_path/id/language shape this used to return.
func TestCreateResponseWireShape(t *testing.T) {
	resp := createResponse{
		UDSPath: "/tmp/sessions/go-deadbeef-default.sock",
		Info: createResponseInfo{
			ProjectPath:   "/workspace/project",
			Language:      "go",
			RemainingTime: 10 * time.Minute,
		},
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshaling createResponse: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshaling createResponse: %v", err)
	}
	if _, ok := decoded["uds_path"]; !ok {
		t.Fatalf("expected top-level uds_path field, got %s", raw)
	}
	var info map[string]json.RawMessage
	if err := json.Unmarshal(decoded["info"], &info); err != nil {
		t.Fatalf("expected a nested info object, got %s", raw)
	}
	for _, field := range []string{"project_path", "language", "remaining_time"} {
		if _, ok := info[field]; !ok {
			t.Fatalf("expected info.%s field, got %s", field, raw)
		}
	}
}

func TestCreateUnsupportedPathReturns404(t *testing.T) {
	b := newTestBroker(t)
	body := `{"path":"` + t.TempDir() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/create", strings.NewReader(body))
	rec := httptest.NewRecorder()
	b.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a path no descriptor claims, got %d", rec.Code)
	}
}
