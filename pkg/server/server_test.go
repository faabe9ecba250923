package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Port = 0
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("X-Seen-Request-Id", RequestIDFromContext(r.Context()))
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write(body)
}

func TestDefaultConfig_Env(t *testing.T) {
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvVendor, "Acme")
	t.Setenv(EnvOptionsSource, "cm://shop")

	cfg := DefaultConfig()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Acme", cfg.Vendor)
	assert.Equal(t, "cm://shop", cfg.OptionsSource)
	assert.Equal(t, ":9090", cfg.Addr())

	t.Setenv(EnvPort, "not-a-port")
	assert.Equal(t, 8080, DefaultConfig().Port)
}

func TestServer_Health(t *testing.T) {
	s := New(WithConfig(testConfig()))
	h := s.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s.SetReady(true)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
}

func TestServer_Index(t *testing.T) {
	s := New(
		WithConfig(testConfig()),
		WithName("pcbshopd"),
		WithVersion("v1.2.3"),
		WithHandler(map[string]http.HandlerFunc{"/v1/echo": echoHandler}),
	)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp indexResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pcbshopd", resp.Name)
	assert.Equal(t, "v1.2.3", resp.Version)
	assert.Contains(t, resp.Routes, "/v1/echo")
	assert.Contains(t, resp.Routes, "GET /metrics")

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v2/nothing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}

func TestServer_MiddlewareRequestID(t *testing.T) {
	s := New(WithConfig(testConfig()), WithHandler(map[string]http.HandlerFunc{"/v1/echo": echoHandler}))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/echo", strings.NewReader("hi")))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "hi", w.Body.String())
	id := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Header().Get("X-Seen-Request-Id"))
	assert.Equal(t, DefaultAPIVersion, w.Header().Get(HeaderAPIVersion))

	const given = "8a0f3d4c-1b2e-4f5a-9c6d-7e8f9a0b1c2d"
	req := httptest.NewRequest(http.MethodPost, "/v1/echo", nil)
	req.Header.Set(HeaderRequestID, given)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, given, w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodPost, "/v1/echo", nil)
	req.Header.Set(HeaderRequestID, "not a uuid")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid", w.Header().Get(HeaderRequestID))
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1
	cfg.RateLimitBurst = 1
	s := New(WithConfig(cfg), WithHandler(map[string]http.HandlerFunc{"/v1/echo": echoHandler}))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/echo", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/echo", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", resp.Code)
	assert.True(t, resp.Retryable)

	// System routes are not rate limited.
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 4
	s := New(WithConfig(cfg), WithHandler(map[string]http.HandlerFunc{
		"/v1/read": func(w http.ResponseWriter, r *http.Request) {
			if _, err := io.ReadAll(r.Body); err != nil {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}
			w.WriteHeader(http.StatusOK)
		},
	}))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/read", strings.NewReader("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServer_PanicRecovery(t *testing.T) {
	s := New(WithConfig(testConfig()), WithHandler(map[string]http.HandlerFunc{
		"/v1/panic": func(http.ResponseWriter, *http.Request) { panic("boom") },
	}))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL", resp.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s := New(WithConfig(testConfig()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/ready"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, s.isReady())
}
