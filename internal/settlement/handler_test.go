package settlement

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewops/brewops/internal/rbac"
	"github.com/brewops/brewops/internal/shared"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Errors  map[string]string
}

func newTestRouter(t *testing.T, repo *memoryRepo, role string) http.Handler {
	t.Helper()
	svc, _ := newTestService(repo, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rbacSvc := rbac.NewService()
	h := NewHandler(logger, svc, rbac.Middleware{Service: rbacSvc, Logger: logger}, "LKR")

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 11, Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api/payments", h.MountRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

func TestHandlerSpotCash(t *testing.T) {
	repo := newMemoryRepo(SupplierRef{ID: 1, Code: "SUP00001", Name: "Green Hills Estate"})
	router := newTestRouter(t, repo, shared.RoleStaff)

	rr, env := do(t, router, http.MethodPost, "/api/payments/spot-cash", `{"supplier_id":1,"quantity":100,"rate_per_kg":150}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.True(t, env.Success)
	require.Equal(t, "Spot cash payment of LKR 15,000.00 processed successfully", env.Message)

	var res SpotCashResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, 15000.0, res.Payment.Amount)
	require.Equal(t, 15000.0, res.Delivery.TotalAmount)
	require.NotNil(t, res.Payment.CreatedBy)
	require.Equal(t, int64(11), *res.Payment.CreatedBy)
}

func TestHandlerMonthlyRequiresManager(t *testing.T) {
	repo := newMemoryRepo(SupplierRef{ID: 7})
	router := newTestRouter(t, repo, shared.RoleStaff)

	rr, env := do(t, router, http.MethodPost, "/api/payments/monthly", `{"supplier_id":7,"month":"2024-03","amount":45000}`)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.False(t, env.Success)
	require.Empty(t, repo.payments)
}

func TestHandlerMonthlyDuplicateIsBadRequest(t *testing.T) {
	repo := newMemoryRepo(SupplierRef{ID: 7, Name: "Uva Leaf Co"})
	router := newTestRouter(t, repo, shared.RoleManager)
	body := `{"supplier_id":7,"month":"2024-03","amount":45000}`

	rr, env := do(t, router, http.MethodPost, "/api/payments/monthly", body)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "Monthly payment processed successfully", env.Message)

	rr, env = do(t, router, http.MethodPost, "/api/payments/monthly", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Payment already exists for this supplier and month", env.Message)
}

func TestHandlerMonthlyValidation(t *testing.T) {
	router := newTestRouter(t, newMemoryRepo(), shared.RoleAdmin)

	rr, env := do(t, router, http.MethodPost, "/api/payments/monthly", `{"supplier_id":7,"month":"2024/03","amount":-1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, env.Errors, "month")
	assert.Contains(t, env.Errors, "amount")
}

func TestHandlerUpdateStatus(t *testing.T) {
	repo := newMemoryRepo(SupplierRef{ID: 7})
	router := newTestRouter(t, repo, shared.RoleAdmin)

	rr, _ := do(t, router, http.MethodPost, "/api/payments/monthly", `{"supplier_id":7,"month":"2024-03","amount":1}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, env := do(t, router, http.MethodPatch, "/api/payments/1/status", `{"status":"archived"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Invalid status", env.Message)

	rr, env = do(t, router, http.MethodPatch, "/api/payments/404/status", `{"status":"cancelled"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Payment not found", env.Message)

	rr, env = do(t, router, http.MethodPatch, "/api/payments/1/status", `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Payment status updated successfully", env.Message)
	require.Equal(t, StatusCancelled, repo.payments[0].Status)
}

func TestHandlerListAndGet(t *testing.T) {
	repo := newMemoryRepo(SupplierRef{ID: 7, Name: "Uva Leaf Co"})
	router := newTestRouter(t, repo, shared.RoleAdmin)
	do(t, router, http.MethodPost, "/api/payments/monthly", `{"supplier_id":7,"month":"2024-03","amount":1}`)

	rr, env := do(t, router, http.MethodGet, "/api/payments?supplier_id=7&payment_type=monthly", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, env.Count)
	require.Equal(t, 1, *env.Count)

	rr, _ = do(t, router, http.MethodGet, "/api/payments/1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = do(t, router, http.MethodGet, "/api/payments/99", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = do(t, router, http.MethodGet, "/api/payments?supplier_id=abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
