package deliveries

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/brewops/brewops/internal/shared"
)

type memoryRepo struct {
	rates      map[int64]float64
	deliveries map[int64]Delivery
	nextID     int64
	summary    []MonthlySummaryRow
	lastStart  time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rates: map[int64]float64{1: 150, 2: 175.5}, deliveries: map[int64]Delivery{}}
}

func (r *memoryRepo) List(ctx context.Context, filter Filter) ([]Delivery, error) {
	var out []Delivery
	for _, d := range r.deliveries {
		if filter.SupplierID != 0 && d.SupplierID != filter.SupplierID {
			continue
		}
		if !filter.StartDate.IsZero() && d.DeliveryDate.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && d.DeliveryDate.After(filter.EndDate) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Delivery, error) {
	d, ok := r.deliveries[id]
	if !ok {
		return Delivery{}, ErrDeliveryNotFound
	}
	return d, nil
}

func (r *memoryRepo) MonthlySummary(ctx context.Context, start, end time.Time) ([]MonthlySummaryRow, error) {
	r.lastStart = start
	return r.summary, nil
}

func (r *memoryRepo) SupplierRate(ctx context.Context, supplierID int64) (float64, error) {
	rate, ok := r.rates[supplierID]
	if !ok {
		return 0, ErrSupplierNotFound
	}
	return rate, nil
}

func (r *memoryRepo) Insert(ctx context.Context, d Delivery) (Delivery, error) {
	if _, ok := r.rates[d.SupplierID]; !ok {
		return Delivery{}, ErrSupplierNotFound
	}
	r.nextID++
	d.ID = r.nextID
	r.deliveries[d.ID] = d
	return d, nil
}

func (r *memoryRepo) UpdateUnsettled(ctx context.Context, d Delivery) (bool, error) {
	cur, ok := r.deliveries[d.ID]
	if !ok || cur.Settled() {
		return false, nil
	}
	r.deliveries[d.ID] = d
	return true, nil
}

func (r *memoryRepo) DeleteUnsettled(ctx context.Context, id int64) (bool, error) {
	cur, ok := r.deliveries[id]
	if !ok || cur.Settled() {
		return false, nil
	}
	delete(r.deliveries, id)
	return true, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)), ServiceConfig{
		Currency: "LKR",
		Now:      func() time.Time { return time.Date(2024, time.March, 18, 15, 4, 0, 0, time.UTC) },
	})
}

func ptr[T any](v T) *T { return &v }

func TestCreateComputesTotalFromSupplierRate(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	d, err := svc.Create(context.Background(), Input{SupplierID: 2, Quantity: 10, QualityScore: ptr(87)})
	require.NoError(t, err)
	require.Equal(t, 175.5, d.RatePerKg)
	require.Equal(t, 1755.0, d.TotalAmount)
	require.Equal(t, time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC), d.DeliveryDate)
	require.False(t, d.Settled())
}

func TestCreateExplicitRateAndDate(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	d, err := svc.Create(context.Background(), Input{SupplierID: 1, Quantity: 12.345, RatePerKg: ptr(100.0), DeliveryDate: "2024-02-29"})
	require.NoError(t, err)
	require.Equal(t, 12.35, d.Quantity, "quantity is stored to two decimals")
	require.Equal(t, 1235.0, d.TotalAmount)
	require.Equal(t, "2024-02-29", d.DeliveryDate.Format(DateLayout))
}

func TestCreateRejectsValuesBeyondColumnPrecision(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{SupplierID: 1, Quantity: 1e9, RatePerKg: ptr(1e9)})
	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "quantity")
	require.Contains(t, vErr.Fields, "rate_per_kg")

	_, err = svc.Create(ctx, Input{SupplierID: 1, Quantity: 1e6, RatePerKg: ptr(1e6)})
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "quantity")
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Input{SupplierID: 1, Quantity: -1, QualityScore: ptr(101), DeliveryDate: "18/03/2024"})
	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "quantity")
	require.Contains(t, vErr.Fields, "quality_score")
	require.Contains(t, vErr.Fields, "delivery_date")

	_, err = svc.Create(context.Background(), Input{SupplierID: 99, Quantity: 1})
	require.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestSettledDeliveryIsImmutable(t *testing.T) {
	repo := newMemoryRepo()
	paymentID := int64(5)
	repo.deliveries[1] = Delivery{ID: 1, SupplierID: 1, Quantity: 100, RatePerKg: 150, TotalAmount: 15000, PaymentID: &paymentID}
	repo.nextID = 1
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), 1, Input{SupplierID: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrDeliverySettled)
	require.ErrorIs(t, err, shared.ErrConflict)

	err = svc.Delete(context.Background(), 1)
	require.ErrorIs(t, err, ErrDeliverySettled)
	require.Equal(t, 15000.0, repo.deliveries[1].TotalAmount)
}

func TestUpdateAndDeleteUnsettled(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	d, err := svc.Create(ctx, Input{SupplierID: 1, Quantity: 10, DeliveryDate: "2024-03-01"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, d.ID, Input{SupplierID: 1, Quantity: 20})
	require.NoError(t, err)
	require.Equal(t, 3000.0, updated.TotalAmount)
	require.Equal(t, "2024-03-01", updated.DeliveryDate.Format(DateLayout))

	require.Nil(t, updated.PaymentID, "monthly payments never link delivery rows")

	require.NoError(t, svc.Delete(ctx, d.ID))
	require.ErrorIs(t, svc.Delete(ctx, d.ID), shared.ErrNotFound)
	_, err = svc.Update(ctx, 404, Input{SupplierID: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrDeliveryNotFound)
}

func TestMonthlySummaryValidatesMonth(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.MonthlySummary(context.Background(), "2024-3")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.MonthlySummary(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), repo.lastStart)
}

func TestExportMonthlySummaryWritesWorkbook(t *testing.T) {
	repo := newMemoryRepo()
	repo.summary = []MonthlySummaryRow{
		{SupplierID: 1, SupplierCode: "SUP00001", SupplierName: "Green Hills", Rate: 150, MonthlyQuantity: 100, MonthlyAmount: 15000, DeliveryCount: 2},
		{SupplierID: 2, SupplierCode: "SUP00002", SupplierName: "Uva Leaf", Rate: 175.5, MonthlyQuantity: 10, MonthlyAmount: 1755, DeliveryCount: 1},
	}
	svc := newTestService(repo)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportMonthlySummary(context.Background(), "2024-03", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Summary 2024-03")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, "Amount (LKR)", rows[0][7])
	require.Equal(t, "SUP00002", rows[2][0])
	require.Equal(t, "Total", rows[3][1])
	require.Equal(t, "16755", rows[3][7])
}
