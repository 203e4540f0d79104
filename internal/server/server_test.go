package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
	"github.com/njchilds90/symcalc/internal/config"
	"github.com/njchilds90/symcalc/internal/telemetry"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, config.ServerConfig{Port: 8080, LogLevel: "info", MaxBodyBytes: 1 << 16, ReadTimeout: 5, WriteTimeout: 5, Burst: 1})
}

func newTestServerWith(t *testing.T, cfg config.ServerConfig) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	s := New(
		cfg,
		symcalc.DefaultConfig(),
		slog.New(slog.DiscardHandler),
		telemetry.NewRecorder(reg),
		reg,
	)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postTool(t *testing.T, url string, body string) (*http.Response, symcalc.ToolResponse) {
	t.Helper()
	resp, err := http.Post(url+"/tool", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out symcalc.ToolResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestTool_Diff(t *testing.T) {
	ts := newTestServer(t)
	body := `{"tool":"diff","params":{"expr":{"type":"pow","base":{"type":"sym","name":"x"},"exp":{"type":"num","value":"3"}},"var":"x"}}`

	resp, out := postTool(t, ts.URL, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, out.Error)
	assert.Equal(t, "3*x^2", out.String)
	assert.NotEmpty(t, out.Steps)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestTool_RequestIDEchoed(t *testing.T) {
	ts := newTestServer(t)
	id := "4f9c2a4e-9f6a-4a53-8a0e-0d5ad4f0b1c2"
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/tool",
		strings.NewReader(`{"tool":"mcp_spec","params":{}}`))
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, id)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(requestIDHeader))
}

func TestTool_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	resp, out := postTool(t, ts.URL, `{"tool":"diff","bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out.Error, "bogus")

	resp, out = postTool(t, ts.URL, `{"tool":"nope","params":{}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, out.Error, "unknown tool")
}

func TestTool_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/tool")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSchemaAndHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/schema")
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(b, &spec))
	assert.NotEmpty(t, spec.Tools)

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics_CountsToolCalls(t *testing.T) {
	ts := newTestServer(t)
	body := `{"tool":"integrate","params":{"expr":{"type":"mul","factors":[{"type":"sym","name":"x"},{"type":"pow","base":{"type":"const","name":"e"},"exp":{"type":"sym","name":"x"}}]},"var":"x","constant":false}}`
	_, out := postTool(t, ts.URL, body)
	require.Empty(t, out.Error)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	text := buf.String()
	assert.Contains(t, text, `symcalc_tool_calls_total{result="ok",tool="integrate"} 1`)
	assert.Contains(t, text, `symcalc_techniques_total{technique="integration_by_parts"}`)
}

func TestTool_RateLimited(t *testing.T) {
	ts := newTestServerWith(t, config.ServerConfig{
		Port: 8080, LogLevel: "info", MaxBodyBytes: 1 << 16, ReadTimeout: 5, WriteTimeout: 5,
		RateLimit: 0.001, Burst: 1,
	})
	body := `{"tool":"mcp_spec","params":{}}`

	resp, out := postTool(t, ts.URL, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, out.Error)

	resp, out = postTool(t, ts.URL, body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate limit exceeded", out.Error)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))

	// other routes are not limited
	h, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	h.Body.Close()
	assert.Equal(t, http.StatusOK, h.StatusCode)
}
