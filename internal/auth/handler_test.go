package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/brewops/brewops/internal/auth"
	"github.com/brewops/brewops/internal/rbac"
	"github.com/brewops/brewops/internal/shared"
	_ "github.com/brewops/brewops/testing"
)

type stubRepo struct {
	users  map[int64]auth.User
	nextID int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: map[int64]auth.User{}}
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (auth.User, error) {
	u, ok := s.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

func (s *stubRepo) Insert(ctx context.Context, u auth.User) (auth.User, error) {
	s.nextID++
	u.ID = s.nextID
	u.IsActive = true
	s.users[u.ID] = u
	return u, nil
}

func (s *stubRepo) seed(t *testing.T, email, password, role string) auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u, err := s.Insert(context.Background(), auth.User{Name: "Seed", Email: email, PasswordHash: hash, Role: role})
	require.NoError(t, err)
	return u
}

type fixture struct {
	repo   *stubRepo
	redis  *miniredis.Miniredis
	router chi.Router
	tokens *auth.TokenIssuer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	revocations := auth.NewRedisRevocations(client)
	repo := newStubRepo()
	svc := auth.NewService(repo, tokens, revocations, logger)
	authn := auth.Middleware{Tokens: tokens, Revocations: revocations, Logger: logger}
	h := auth.NewHandler(logger, svc, authn, rbac.Middleware{Service: rbac.NewService(), Logger: logger})

	r := chi.NewRouter()
	h.MountRoutes(r)
	return fixture{repo: repo, redis: mr, router: r, tokens: tokens}
}

func (f fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, f fixture, email, password string) string {
	t.Helper()
	rec := f.do(http.MethodPost, "/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Data auth.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.repo.seed(t, "user@test.local", "correctpass", shared.RoleStaff)

	rec := f.do(http.MethodPost, "/login", "", `{"email":"user@test.local","password":"wrongpass"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid credentials")

	rec = f.do(http.MethodPost, "/login", "", `{"email":"ghost@test.local","password":"whatever"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/login", "", `{"email":"not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresBearerToken(t *testing.T) {
	f := newFixture(t)
	f.repo.seed(t, "user@test.local", "correctpass", shared.RoleStaff)

	rec := f.do(http.MethodGet, "/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/me", "garbage.token.value", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token := loginToken(t, f, "USER@test.local", "correctpass")
	rec = f.do(http.MethodGet, "/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"email":"user@test.local"`)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	f.repo.seed(t, "user@test.local", "correctpass", shared.RoleStaff)
	token := loginToken(t, f, "user@test.local", "correctpass")

	rec := f.do(http.MethodPost, "/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.redis.Keys(), 1)

	rec = f.do(http.MethodGet, "/me", token, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	f.redis.FastForward(2 * time.Hour)
	require.Empty(t, f.redis.Keys())
}

func TestRegisterIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	f.repo.seed(t, "staff@test.local", "staffpass", shared.RoleStaff)
	f.repo.seed(t, "admin@test.local", "adminpass", shared.RoleAdmin)

	payload := `{"name":"New Operator","email":"op@test.local","password":"secret1","role":"operator"}`

	rec := f.do(http.MethodPost, "/register", loginToken(t, f, "staff@test.local", "staffpass"), payload)
	require.Equal(t, http.StatusForbidden, rec.Code)

	adminToken := loginToken(t, f, "admin@test.local", "adminpass")
	rec = f.do(http.MethodPost, "/register", adminToken, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"role":"staff"`)

	rec = f.do(http.MethodPost, "/register", adminToken, payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "User already exists with this email")
}

func TestInactiveAccountCannotLogin(t *testing.T) {
	f := newFixture(t)
	u := f.repo.seed(t, "gone@test.local", "correctpass", shared.RoleStaff)
	u.IsActive = false
	f.repo.users[u.ID] = u

	rec := f.do(http.MethodPost, "/login", "", `{"email":"gone@test.local","password":"correctpass"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Account is deactivated")
}
