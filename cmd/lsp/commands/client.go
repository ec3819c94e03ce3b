package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"lspcli/internal/bootstrap"
	"lspcli/internal/config"
	"lspcli/internal/locate"
	"lspcli/internal/lsperr"
)

// locateFile extracts a locate-string's file segment, used to pick which
// project root the broker should resolve a session against before the
// full locate-string is re-parsed session-side.
func locateFile(locateStr string) (string, error) {
	loc, err := locate.Parse(locateStr, locate.DefaultMarker)
	if err != nil {
		return "", err
	}
	return loc.File, nil
}

// unixHTTPClient builds an *http.Client that dials socketPath for every
// request regardless of the URL's host, the same "HTTP over a unix
// socket" idiom the original's httpx.HTTPTransport(uds=...) implements.
func unixHTTPClient(socketPath string) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		},
		Timeout: 60 * time.Second,
	}
}

func postJSON(client *http.Client, path string, body any) (json.RawMessage, int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, 0, lsperr.Wrap(lsperr.KindParseError, "encoding request body", err)
		}
	}

	resp, err := client.Post("http://unix"+path, "application/json", &buf)
	if err != nil {
		return nil, 0, lsperr.Wrap(lsperr.KindBrokerUnreachable, "posting to "+path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, lsperr.Wrap(lsperr.KindProtocolError, "reading response body", err)
	}
	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, apiError(resp.StatusCode, data)
	}
	return data, resp.StatusCode, nil
}

func deleteJSON(client *http.Client, path string, body any) (json.RawMessage, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, lsperr.Wrap(lsperr.KindParseError, "encoding request body", err)
		}
	}

	req, err := http.NewRequest(http.MethodDelete, "http://unix"+path, &buf)
	if err != nil {
		return nil, lsperr.Wrap(lsperr.KindParseError, "building delete request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, lsperr.Wrap(lsperr.KindBrokerUnreachable, "issuing delete to "+path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, lsperr.Wrap(lsperr.KindProtocolError, "reading response body", err)
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, data)
	}
	return data, nil
}

func getJSON(client *http.Client, path string) (json.RawMessage, error) {
	resp, err := client.Get("http://unix" + path)
	if err != nil {
		return nil, lsperr.Wrap(lsperr.KindBrokerUnreachable, "getting "+path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, lsperr.Wrap(lsperr.KindProtocolError, "reading response body", err)
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, data)
	}
	return data, nil
}

func apiError(status int, body []byte) error {
	var detail struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &detail)
	if detail.Detail == "" {
		detail.Detail = fmt.Sprintf("request failed with status %d", status)
	}
	return lsperr.New(lsperr.KindFromStatus(status), detail.Detail)
}

// ensureBroker makes sure a broker is reachable, spawning the lsp-broker
// binary (looked up alongside this executable, falling back to PATH) if
// nothing answers the well-known socket yet.
func ensureBroker(ctx context.Context, cfg config.Config) error {
	brokerPath := resolveBrokerCommand()
	return bootstrap.EnsureBroker(ctx, cfg.Paths.BrokerSocketPath(), brokerPath, nil, cfg.DialRetries, cfg.DialBackoff, zerolog.Nop())
}

func resolveBrokerCommand() string {
	if self, err := bootstrap.SelfExecutable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), "lsp-broker")
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return "lsp-broker"
}

// createSession asks the broker to resolve path to a session, spawning the
// broker first if needed, and returns the session's own socket path.
func createSession(ctx context.Context, cfg config.Config, path string) (string, error) {
	if err := ensureBroker(ctx, cfg); err != nil {
		return "", err
	}

	brokerClient := unixHTTPClient(cfg.Paths.BrokerSocketPath())
	data, _, err := postJSON(brokerClient, "/create", map[string]string{"path": path})
	if err != nil {
		return "", err
	}

	var result struct {
		UDSPath string `json:"uds_path"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", lsperr.Wrap(lsperr.KindProtocolError, "decoding create response", err)
	}
	return result.UDSPath, nil
}

// callCapability resolves path's session, then POSTs body to route on the
// session's own socket, returning the raw JSON result.
func callCapability(ctx context.Context, cfg config.Config, path, route string, body any) (json.RawMessage, error) {
	sessionSocket, err := createSession(ctx, cfg, path)
	if err != nil {
		return nil, err
	}

	sessionClient := unixHTTPClient(sessionSocket)
	data, _, err := postJSON(sessionClient, "/"+route, body)
	return data, err
}
