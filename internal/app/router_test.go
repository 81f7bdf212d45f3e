package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brewops/brewops/internal/auth"
	"github.com/brewops/brewops/internal/observability"
	"github.com/brewops/brewops/internal/rbac"
	"github.com/brewops/brewops/internal/shared"
	"github.com/brewops/brewops/jobs"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, db Pinger) (http.Handler, *auth.TokenIssuer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenIssuer("router-secret", time.Hour)
	require.NoError(t, err)
	rbacService := rbac.NewService()
	rbacMW := rbac.Middleware{Service: rbacService, Logger: logger}

	router := NewRouter(RouterParams{
		Logger:             logger,
		Config:             &Config{RateLimitPerMinute: 1000, AppRequestTimeout: time.Second},
		DB:                 db,
		Metrics:            observability.NewMetrics(),
		Authn:              auth.Middleware{Tokens: tokens, Logger: logger},
		PermissionsHandler: rbac.NewPermissionsHandler(rbacService, rbacMW),
		JobHandler:         jobs.NewHandler(nil, logger),
	})
	return router, tokens
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestHealthzReportsDatabaseOutage(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{err: errors.New("down")})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "unreachable")
}

func TestAPIRequiresBearerToken(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/permissions/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIAcceptsIssuedToken(t *testing.T) {
	router, tokens := newTestRouter(t, stubPinger{})
	token, _, err := tokens.Issue(auth.User{ID: 7, Role: shared.RoleStaff, IsActive: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/permissions/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/permissions/roles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnknownRouteIsProblem(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestMetricsAndJobsMounted(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "brewops_http_requests_total")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"queue":"default"`)
}
