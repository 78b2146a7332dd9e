package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/config"
	"github.com/pipelinecrm/crm-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestActor(t *testing.T) {
	actorID := uuid.New()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantActor  bool
	}{
		{name: "no header", header: "", wantStatus: http.StatusOK, wantActor: false},
		{name: "valid uuid", header: actorID.String(), wantStatus: http.StatusOK, wantActor: true},
		{name: "padded uuid", header: "  " + actorID.String() + " ", wantStatus: http.StatusOK, wantActor: true},
		{name: "malformed", header: "user-1", wantStatus: http.StatusBadRequest, wantActor: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen uuid.UUID
			var found bool
			handler := middleware.Actor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, found = middleware.ActorFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/notes", nil)
			if tt.header != "" {
				req.Header.Set(middleware.ActorHeader, tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantActor, found)
			if tt.wantActor {
				assert.Equal(t, actorID, seen)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	handler := middleware.Recovery(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	w := httptest.NewRecorder()

	require.NotPanics(t, func() { handler.ServeHTTP(w, req) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestLogging_PropagatesRequestID(t *testing.T) {
	handler := middleware.Logging(zap.NewNop())(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestLogging_RecordsRequestAndActor(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	actorID := uuid.New()
	handler := middleware.Actor(middleware.Logging(zap.New(core))(http.HandlerFunc(okHandler)))

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	req.Header.Set("X-Request-ID", "req-456")
	req.Header.Set("X-User-ID", actorID.String())
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-456", fields["request_id"])
	assert.Equal(t, "/api/opportunities", fields["path"])
	assert.Equal(t, actorID.String(), fields["actor_id"])
	assert.EqualValues(t, http.StatusOK, fields["status_code"])
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1}, zap.NewNop())
	handler := rl.LimitByIP(http.HandlerFunc(okHandler))

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_LimitsByIP(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:                true,
		RequestsPerMinute:      2,
		RequestsPerMinuteActor: 2,
	}, zap.NewNop())
	handler := rl.LimitByIP(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_Whitelists(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:                true,
		RequestsPerMinute:      1,
		RequestsPerMinuteActor: 1,
		WhitelistIPs:           []string{"127.0.0.1"},
		WhitelistPaths:         []string{"/health/*"},
	}, zap.NewNop())
	handler := rl.LimitByIP(http.HandlerFunc(okHandler))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "127.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		req = httptest.NewRequest(http.MethodGet, "/health/db", nil)
		req.RemoteAddr = "10.0.0.3:1234"
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_KeysByActor(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:                true,
		RequestsPerMinute:      100,
		RequestsPerMinuteActor: 1,
	}, zap.NewNop())
	handler := middleware.Actor(rl.Limit(http.HandlerFunc(okHandler)))

	send := func(actor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/notes", nil)
		req.RemoteAddr = "10.0.0.4:1234"
		req.Header.Set(middleware.ActorHeader, actor)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	first, second := uuid.NewString(), uuid.NewString()
	assert.Equal(t, http.StatusOK, send(first))
	assert.Equal(t, http.StatusTooManyRequests, send(first))
	assert.Equal(t, http.StatusOK, send(second))
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            600,
		HSTSIncludeSubdomains: true,
		ContentTypeNosniff:    true,
		FrameOptions:          "DENY",
		ContentSecurityPolicy: "default-src 'self'",
	}

	handler := middleware.SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/accounts", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "max-age=600; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	_, hasReferrer := w.Header()["Referrer-Policy"]
	assert.False(t, hasReferrer)
}

func TestCORS_AllowsActorHeader(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins: []string{"https://crm.example.com"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}
	handler := middleware.CORS(cfg, "production", zap.NewNop())(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/opportunities", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "X-User-ID")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://crm.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DeniesUnlistedOriginsInProduction(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedMethods: []string{http.MethodGet},
	}
	handler := middleware.CORS(cfg, "production", zap.NewNop())(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
