package settlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brewops/brewops/internal/deliveries"
	"github.com/brewops/brewops/internal/shared"
)

// Service is the settlement engine: it decides whether a payment may be
// created, computes its amount and persists it with any implied delivery.
type Service struct {
	repo      Repository
	publisher EventPublisher
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// ServiceConfig groups optional collaborators.
type ServiceConfig struct {
	Publisher EventPublisher
	Metrics   *Metrics
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewService builds Service.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, publisher: cfg.Publisher, metrics: cfg.Metrics, logger: logger, now: now}
}

// CreateMonthlyPayment records a paid monthly settlement. At most one exists
// per supplier and month; the store's unique constraint backs the pre-check.
func (s *Service) CreateMonthlyPayment(ctx context.Context, in MonthlyPaymentInput) (Payment, error) {
	if in.Method == "" {
		in.Method = MethodBankTransfer
	}
	in.Amount = shared.Round2(in.Amount)
	if err := validateMonthly(in); err != nil {
		s.metrics.observe(PaymentTypeMonthly, outcomeInvalid, 0)
		return Payment{}, err
	}

	month := in.Month
	payment := Payment{
		SupplierID:  in.SupplierID,
		Type:        PaymentTypeMonthly,
		Month:       &month,
		Amount:      in.Amount,
		PaymentDate: s.now().UTC(),
		Method:      in.Method,
		Status:      StatusPaid,
		Notes:       in.Notes,
		CreatedBy:   actor(in.ActorID),
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		supplier, err := tx.LookupSupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		exists, err := tx.MonthlyPaymentExists(ctx, in.SupplierID, in.Month)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicatePayment
		}
		created, err := tx.InsertPayment(ctx, payment)
		if err != nil {
			return err
		}
		created.SupplierName = supplier.Name
		payment = created
		return nil
	})
	if err != nil {
		s.metrics.observe(PaymentTypeMonthly, outcomeFor(err), 0)
		if errors.Is(err, ErrDuplicatePayment) {
			s.logger.Warn("duplicate monthly payment rejected",
				slog.Int64("supplier_id", in.SupplierID), slog.String("month", in.Month))
		}
		return Payment{}, err
	}

	s.metrics.observe(PaymentTypeMonthly, outcomeSuccess, payment.Amount)
	s.logger.Info("monthly payment recorded",
		slog.Int64("payment_id", payment.ID),
		slog.Int64("supplier_id", payment.SupplierID),
		slog.String("month", in.Month),
		slog.Float64("amount", payment.Amount))
	s.publish(ctx, SettlementEvent{
		Kind:         EventMonthlyRecorded,
		PaymentID:    payment.ID,
		SupplierID:   payment.SupplierID,
		SupplierName: payment.SupplierName,
		Type:         payment.Type,
		Month:        in.Month,
		Amount:       payment.Amount,
		Status:       payment.Status,
		OccurredAt:   payment.PaymentDate,
	})
	return payment, nil
}

// CreateSpotCashPayment records a paid spot-cash settlement and its delivery
// in one transaction. Either both rows commit or neither does.
func (s *Service) CreateSpotCashPayment(ctx context.Context, in SpotCashInput) (SpotCashResult, error) {
	if in.Method == "" {
		in.Method = MethodCash
	}
	// stored columns hold two decimals; the amount must match what is stored
	in.Quantity = shared.Round2(in.Quantity)
	in.RatePerKg = shared.Round2(in.RatePerKg)
	if err := validateSpotCash(in); err != nil {
		s.metrics.observe(PaymentTypeSpotCash, outcomeInvalid, 0)
		return SpotCashResult{}, err
	}

	now := s.now().UTC()
	amount := shared.MultiplyMoney(in.Quantity, in.RatePerKg)
	var result SpotCashResult

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		supplier, err := tx.LookupSupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		payment, err := tx.InsertPayment(ctx, Payment{
			SupplierID:  in.SupplierID,
			Type:        PaymentTypeSpotCash,
			Amount:      amount,
			PaymentDate: now,
			Method:      in.Method,
			Status:      StatusPaid,
			Notes:       in.Notes,
			CreatedBy:   actor(in.ActorID),
		})
		if err != nil {
			return err
		}
		payment.SupplierName = supplier.Name

		paymentID := payment.ID
		delivery, err := tx.InsertDelivery(ctx, deliveries.Delivery{
			SupplierID:    in.SupplierID,
			DeliveryDate:  now,
			Quantity:      in.Quantity,
			RatePerKg:     in.RatePerKg,
			TotalAmount:   amount,
			PaymentMethod: string(in.Method),
			Notes:         in.Notes,
			PaymentID:     &paymentID,
		})
		if err != nil {
			return err
		}
		delivery.SupplierName = supplier.Name

		result = SpotCashResult{Payment: payment, Delivery: delivery}
		return nil
	})
	if err != nil {
		s.metrics.observe(PaymentTypeSpotCash, outcomeFor(err), 0)
		s.logger.Error("spot cash payment rolled back",
			slog.Int64("supplier_id", in.SupplierID), slog.Any("error", err))
		return SpotCashResult{}, err
	}

	s.metrics.observe(PaymentTypeSpotCash, outcomeSuccess, amount)
	s.logger.Info("spot cash payment recorded",
		slog.Int64("payment_id", result.Payment.ID),
		slog.Int64("delivery_id", result.Delivery.ID),
		slog.Int64("supplier_id", in.SupplierID),
		slog.Float64("amount", amount))
	s.publish(ctx, SettlementEvent{
		Kind:         EventSpotCashRecorded,
		PaymentID:    result.Payment.ID,
		SupplierID:   in.SupplierID,
		SupplierName: result.Payment.SupplierName,
		Type:         PaymentTypeSpotCash,
		Amount:       amount,
		Status:       StatusPaid,
		DeliveryID:   result.Delivery.ID,
		OccurredAt:   now,
	})
	return result, nil
}

// UpdatePaymentStatus moves a payment to status. Any valid status may follow
// any other. It returns false when no payment has the id.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, status PaymentStatus) (bool, error) {
	if !status.Valid() {
		return false, ErrInvalidStatus
	}
	if id <= 0 {
		return false, nil
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil || !updated {
		return false, err
	}
	s.logger.Info("payment status updated", slog.Int64("payment_id", id), slog.String("status", string(status)))

	evt := SettlementEvent{Kind: EventStatusChanged, PaymentID: id, Status: status, OccurredAt: s.now().UTC()}
	if p, err := s.repo.GetPayment(ctx, id); err == nil {
		evt.SupplierID = p.SupplierID
		evt.SupplierName = p.SupplierName
		evt.Type = p.Type
		evt.Amount = p.Amount
		if p.Month != nil {
			evt.Month = *p.Month
		}
	}
	s.publish(ctx, evt)
	return true, nil
}

// GetStatistics merges the payment aggregate with the current month's
// delivered quantity.
func (s *Service) GetStatistics(ctx context.Context) (Statistics, error) {
	start, end := currentMonth(s.now())

	var (
		stats Statistics
		qty   float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.repo.PaymentTotals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		qty, err = s.repo.DeliveredQuantity(gctx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return Statistics{}, err
	}
	stats.MonthlyQuantity = qty
	return stats, nil
}

// ListPayments returns payments matching the filter.
func (s *Service) ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error) {
	fields := map[string]string{}
	if filter.Month != "" && !shared.IsYearMonth(filter.Month) {
		fields["month"] = "must be in YYYY-MM format"
	}
	if filter.Type != "" && !filter.Type.Valid() {
		fields["payment_type"] = "must be one of: monthly spot-cash"
	}
	if filter.Status != "" && !filter.Status.Valid() {
		fields["status"] = "must be one of: pending paid cancelled"
	}
	if len(fields) > 0 {
		return nil, &shared.ValidationError{Fields: fields}
	}
	return s.repo.ListPayments(ctx, filter)
}

// GetPayment returns a payment by id.
func (s *Service) GetPayment(ctx context.Context, id int64) (Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

// UnpaidSuppliers lists active suppliers that delivered in month but hold no
// monthly payment for it.
func (s *Service) UnpaidSuppliers(ctx context.Context, month string) ([]SupplierRef, error) {
	start, end, err := deliveries.MonthBounds(month)
	if err != nil {
		return nil, err
	}
	return s.repo.UnpaidSuppliers(ctx, month, start, end)
}

func (s *Service) publish(ctx context.Context, evt SettlementEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSettlement(ctx, evt); err != nil {
		s.logger.Warn("publish settlement event",
			slog.String("kind", string(evt.Kind)),
			slog.Int64("payment_id", evt.PaymentID),
			slog.Any("error", err))
	}
}

func validateMonthly(in MonthlyPaymentInput) error {
	fields := map[string]string{}
	if in.SupplierID < 1 {
		fields["supplier_id"] = "must be a positive integer"
	}
	if !shared.IsYearMonth(in.Month) {
		fields["month"] = "must be in YYYY-MM format"
	}
	switch {
	case in.Amount < 0:
		fields["amount"] = "must be at least 0"
	case in.Amount > shared.MaxAmount:
		fields["amount"] = "must be at most 9999999999.99"
	}
	if !in.Method.Valid() {
		fields["payment_method"] = "must be one of: Cash, Bank Transfer, Cheque"
	}
	if len(fields) > 0 {
		return &shared.ValidationError{Fields: fields}
	}
	return nil
}

func validateSpotCash(in SpotCashInput) error {
	fields := map[string]string{}
	if in.SupplierID < 1 {
		fields["supplier_id"] = "must be a positive integer"
	}
	switch {
	case in.Quantity < 0:
		fields["quantity"] = "must be at least 0"
	case in.Quantity > shared.MaxQuantity:
		fields["quantity"] = "must be at most 99999999.99"
	}
	switch {
	case in.RatePerKg < 0:
		fields["rate_per_kg"] = "must be at least 0"
	case in.RatePerKg > shared.MaxRate:
		fields["rate_per_kg"] = "must be at most 99999999.99"
	}
	if len(fields) == 0 && shared.MultiplyMoney(in.Quantity, in.RatePerKg) > shared.MaxAmount {
		fields["quantity"] = "quantity times rate must not exceed 9999999999.99"
	}
	if !in.Method.Valid() {
		fields["payment_method"] = "must be one of: Cash, Bank Transfer, Cheque"
	}
	if len(fields) > 0 {
		return &shared.ValidationError{Fields: fields}
	}
	return nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrDuplicatePayment):
		return outcomeDuplicate
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrNotFound):
		return outcomeInvalid
	default:
		return outcomeError
	}
}

func actor(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func currentMonth(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
