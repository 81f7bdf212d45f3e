package settlement

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brewops/brewops/internal/deliveries"
)

type memoryRepo struct {
	mu         sync.Mutex
	suppliers  map[int64]SupplierRef
	payments   []Payment
	deliveries []deliveries.Delivery
	nextID     int64

	// fault injection
	deliveryInsertErr error
	paymentInsertErr  error
	statsErr          error
	skipPrecheck      bool

	calls   int
	totals  Statistics
	qty     float64
	qtyFrom time.Time
}

type memoryTx struct {
	repo       *memoryRepo
	payments   []Payment
	deliveries []deliveries.Delivery
}

func newMemoryRepo(suppliers ...SupplierRef) *memoryRepo {
	r := &memoryRepo{suppliers: make(map[int64]SupplierRef)}
	for _, s := range suppliers {
		r.suppliers[s.ID] = s
	}
	return r
}

func (r *memoryRepo) touch() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

// WithTx stages writes and only applies them when fn succeeds.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.touch()
	tx := &memoryTx{repo: r}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, tx.payments...)
	r.deliveries = append(r.deliveries, tx.deliveries...)
	return nil
}

func (r *memoryRepo) ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error) {
	r.touch()
	var out []Payment
	for _, p := range r.payments {
		if filter.SupplierID != 0 && p.SupplierID != filter.SupplierID {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.Month != "" && (p.Month == nil || *p.Month != filter.Month) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) GetPayment(ctx context.Context, id int64) (Payment, error) {
	r.touch()
	for _, p := range r.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return Payment{}, ErrPaymentNotFound
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status PaymentStatus) (bool, error) {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.payments {
		if r.payments[i].ID == id {
			r.payments[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) PaymentTotals(ctx context.Context) (Statistics, error) {
	r.touch()
	if r.statsErr != nil {
		return Statistics{}, r.statsErr
	}
	return r.totals, nil
}

func (r *memoryRepo) DeliveredQuantity(ctx context.Context, start, end time.Time) (float64, error) {
	r.touch()
	r.mu.Lock()
	r.qtyFrom = start
	r.mu.Unlock()
	return r.qty, nil
}

func (r *memoryRepo) UnpaidSuppliers(ctx context.Context, month string, start, end time.Time) ([]SupplierRef, error) {
	r.touch()
	var out []SupplierRef
	for id, s := range r.suppliers {
		delivered := false
		for _, d := range r.deliveries {
			if d.SupplierID == id && !d.DeliveryDate.Before(start) && d.DeliveryDate.Before(end) {
				delivered = true
			}
		}
		if delivered && !r.hasMonthly(id, month) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memoryRepo) hasMonthly(supplierID int64, month string) bool {
	for _, p := range r.payments {
		if p.SupplierID == supplierID && p.Type == PaymentTypeMonthly && p.Month != nil && *p.Month == month {
			return true
		}
	}
	return false
}

func (tx *memoryTx) LookupSupplier(ctx context.Context, id int64) (SupplierRef, error) {
	s, ok := tx.repo.suppliers[id]
	if !ok {
		return SupplierRef{}, ErrSupplierNotFound
	}
	return s, nil
}

func (tx *memoryTx) MonthlyPaymentExists(ctx context.Context, supplierID int64, month string) (bool, error) {
	if tx.repo.skipPrecheck {
		return false, nil
	}
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	return tx.repo.hasMonthly(supplierID, month), nil
}

// InsertPayment enforces the (supplier, month, type) uniqueness a real
// constraint would.
func (tx *memoryTx) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	if tx.repo.paymentInsertErr != nil {
		return Payment{}, tx.repo.paymentInsertErr
	}
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	if p.Type == PaymentTypeMonthly && p.Month != nil && tx.repo.hasMonthly(p.SupplierID, *p.Month) {
		return Payment{}, ErrDuplicatePayment
	}
	tx.repo.nextID++
	p.ID = tx.repo.nextID
	p.CreatedAt = p.PaymentDate
	tx.payments = append(tx.payments, p)
	return p, nil
}

func (tx *memoryTx) InsertDelivery(ctx context.Context, d deliveries.Delivery) (deliveries.Delivery, error) {
	if tx.repo.deliveryInsertErr != nil {
		return deliveries.Delivery{}, tx.repo.deliveryInsertErr
	}
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	tx.repo.nextID++
	d.ID = tx.repo.nextID
	tx.deliveries = append(tx.deliveries, d)
	return d, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []SettlementEvent
	err    error
}

func (p *recordingPublisher) PublishSettlement(ctx context.Context, evt SettlementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

var errStoreDown = errors.New("store: connection reset")
