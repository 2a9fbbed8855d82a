package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/api/handlers"
	"github.com/BaSui01/onboardflow/config"
	"github.com/BaSui01/onboardflow/session"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
)

type envelope[T any] struct {
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Error   *handlers.ErrorInfo `json:"error"`
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = "none"
	cfg.Chat.Enabled = false
	cfg.Server.RateLimitRPS = 0
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*App, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	app, err := buildApp(context.Background(), cfg, reg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, reg
}

func postEvent(t *testing.T, h http.Handler, id string, req handlers.EventRequest) session.Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/events", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope[session.Response]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	require.True(t, env.Success)
	return env.Data
}

func TestBuildApp_ManualOnboarding(t *testing.T) {
	app, reg := newTestApp(t, testConfig())
	h := app.Handler()

	var resp session.Response
	for _, s := range []string{"Onboard", "manual", "Jane Doe", "555-123-4567", "Engineer", "85000", "save"} {
		resp = postEvent(t, h, "s1", handlers.EventRequest{Value: s})
	}
	assert.Equal(t, workflow.Committed(), resp.State)
	require.NotNil(t, resp.Committed)
	assert.Equal(t, "Jane Doe", resp.Committed.Name)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane Doe")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	n, err := testutil.GatherAndCount(reg, "onboardflow_http_requests_total")
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestBuildApp_ExtractionUnavailableWithoutProvider(t *testing.T) {
	app, _ := newTestApp(t, testConfig())
	h := app.Handler()

	postEvent(t, h, "s1", handlers.EventRequest{Value: "Onboard"})
	postEvent(t, h, "s1", handlers.EventRequest{Value: "upload"})
	resp := postEvent(t, h, "s1", handlers.EventRequest{Value: "Name: Jane Doe, Phone: 555-123-4567"})

	require.NotNil(t, resp.Error)
	assert.Equal(t, "EXTRACTION_FAILED", string(resp.Error.Code))
}

// fakeOpenAI 以固定 JSON 回复所有 chat completion 请求
func fakeOpenAI(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"cmpl-1","object":"chat.completion","model":"test",`+
			`"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}],`+
			`"usage":{"prompt_tokens":10,"completion_tokens":10,"total_tokens":20}}`, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBuildApp_ExtractionThroughOpenAICompatibleServer(t *testing.T) {
	srv := fakeOpenAI(t, `{"name":"Jane Doe","phone":"555-123-4567","designation":"Engineer","salary":"85000"}`)

	cfg := testConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.BaseURL = srv.URL
	app, _ := newTestApp(t, cfg)
	require.NotNil(t, app.provider)
	h := app.Handler()

	postEvent(t, h, "s1", handlers.EventRequest{Value: "Onboard"})
	postEvent(t, h, "s1", handlers.EventRequest{Value: "upload"})
	resp := postEvent(t, h, "s1", handlers.EventRequest{Value: "Jane Doe, phone 555-123-4567, Engineer, salary 85000"})
	require.Nil(t, resp.Error)
	assert.Equal(t, workflow.ReviewingDraft(), resp.State)
	require.NotNil(t, resp.Draft)
	assert.Equal(t, "Jane Doe", resp.Draft.Record.Get(types.FieldName))

	resp = postEvent(t, h, "s1", handlers.EventRequest{Kind: workflow.EventConfirm})
	assert.Equal(t, workflow.Committed(), resp.State)
}

func TestBuildApp_UnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "mystery"
	_, err := buildApp(context.Background(), cfg, prometheus.NewRegistry(), zap.NewNop())
	assert.ErrorContains(t, err, "mystery")
}

func TestBuildApp_HealthEndpoints(t *testing.T) {
	app, _ := newTestApp(t, testConfig())
	h := app.Handler()

	for _, path := range []string{"/health", "/healthz", "/ready", "/version"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	require.NoError(t, app.store.Close())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCheckHealth(t *testing.T) {
	app, _ := newTestApp(t, testConfig())
	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	assert.NoError(t, checkHealth(srv.Client(), srv.URL))

	require.NoError(t, app.store.Close())
	assert.ErrorContains(t, checkHealth(srv.Client(), srv.URL), "503")
}
