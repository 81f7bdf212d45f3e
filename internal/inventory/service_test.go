package inventory

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/brewops/brewops/internal/rbac"
	"github.com/brewops/brewops/internal/shared"
)

type memoryRepo struct {
	batches map[int64]Batch
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{batches: map[int64]Batch{}}
}

func (r *memoryRepo) List(ctx context.Context) ([]Batch, error) {
	var out []Batch
	for id := r.nextID; id > 0; id-- {
		if b, ok := r.batches[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Batch, error) {
	b, ok := r.batches[id]
	if !ok {
		return Batch{}, ErrBatchNotFound
	}
	return b, nil
}

func (r *memoryRepo) Insert(ctx context.Context, b Batch) (Batch, error) {
	for _, existing := range r.batches {
		if existing.InventoryNumber == b.InventoryNumber {
			return Batch{}, ErrDuplicateNumber
		}
	}
	r.nextID++
	b.ID = r.nextID
	r.batches[b.ID] = b
	return b, nil
}

func (r *memoryRepo) Update(ctx context.Context, b Batch) (Batch, error) {
	existing, ok := r.batches[b.ID]
	if !ok {
		return Batch{}, ErrBatchNotFound
	}
	existing.BatchID = b.BatchID
	existing.Quantity = b.Quantity
	r.batches[b.ID] = existing
	return existing, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := r.batches[id]; !ok {
		return false, nil
	}
	delete(r.batches, id)
	return true, nil
}

var fixedNow = time.Date(2024, 3, 7, 14, 5, 30, 0, time.UTC)

func newTestService() *Service {
	return NewService(newMemoryRepo(), slog.New(slog.NewTextHandler(io.Discard, nil)), func() time.Time { return fixedNow })
}

func TestGenerateNumber(t *testing.T) {
	require.Equal(t, "INV-20240307-1405", GenerateNumber(fixedNow))
}

func TestCreateSuffixesNumbersWithinSameMinute(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, Input{BatchID: " B-1 ", Quantity: 120.5})
	require.NoError(t, err)
	require.Equal(t, "INV-20240307-1405", first.InventoryNumber)
	require.Equal(t, "B-1", first.BatchID)

	second, err := svc.Create(ctx, Input{BatchID: "B-2", Quantity: 80})
	require.NoError(t, err)
	require.Equal(t, "INV-20240307-1405-2", second.InventoryNumber)
}

func TestCreateRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), Input{Quantity: 0})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Update(context.Background(), 1, Input{Quantity: -3})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateKeepsNumberAndDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	b, err := svc.Create(ctx, Input{BatchID: "B-1", Quantity: 10})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, b.ID, Input{BatchID: "B-9", Quantity: 25})
	require.NoError(t, err)
	require.Equal(t, b.InventoryNumber, updated.InventoryNumber)
	require.Equal(t, 25.0, updated.Quantity)

	require.NoError(t, svc.Delete(ctx, b.ID))
	require.ErrorIs(t, svc.Delete(ctx, b.ID), ErrBatchNotFound)
	_, err = svc.Get(ctx, b.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGenerateIDRoute(t *testing.T) {
	svc := newTestService()
	mw := rbac.Middleware{Service: rbac.NewService()}
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, mw)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 7, Role: shared.RoleStaff})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate-id", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"inventory_number":"INV-20240307-1405"`)
}
