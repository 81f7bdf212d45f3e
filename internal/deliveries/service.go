package deliveries

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/brewops/brewops/internal/shared"
)

// Service coordinates delivery recording and reporting.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	currency string
	now      func() time.Time
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	Currency string
	Now      func() time.Time
}

// NewService builds Service.
func NewService(repo Repository, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, logger: logger, currency: cfg.Currency, now: now}
}

// List returns deliveries matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Delivery, error) {
	return s.repo.List(ctx, filter)
}

// ListBySupplier returns every delivery for one supplier.
func (s *Service) ListBySupplier(ctx context.Context, supplierID int64) ([]Delivery, error) {
	if supplierID <= 0 {
		return nil, shared.NewValidationError("supplier_id", "must be a positive integer")
	}
	return s.repo.List(ctx, Filter{SupplierID: supplierID})
}

// Get returns a delivery by id.
func (s *Service) Get(ctx context.Context, id int64) (Delivery, error) {
	return s.repo.Get(ctx, id)
}

// MonthlySummary aggregates the month's deliveries per active supplier.
func (s *Service) MonthlySummary(ctx context.Context, month string) ([]MonthlySummaryRow, error) {
	if !shared.IsYearMonth(month) {
		return nil, shared.NewValidationError("month", "must be in YYYY-MM format")
	}
	start, end, err := MonthBounds(month)
	if err != nil {
		return nil, err
	}
	return s.repo.MonthlySummary(ctx, start, end)
}

// ExportMonthlySummary writes the month's summary as an XLSX workbook.
func (s *Service) ExportMonthlySummary(ctx context.Context, month string, w io.Writer) error {
	rows, err := s.MonthlySummary(ctx, month)
	if err != nil {
		return err
	}
	return WriteMonthlySummaryXLSX(w, month, s.currency, rows)
}

// Create records a new delivery. A missing rate falls back to the supplier's rate.
func (s *Service) Create(ctx context.Context, in Input) (Delivery, error) {
	d, err := s.build(ctx, in)
	if err != nil {
		return Delivery{}, err
	}
	created, err := s.repo.Insert(ctx, d)
	if err != nil {
		return Delivery{}, err
	}
	s.logger.Info("delivery recorded",
		slog.Int64("delivery_id", created.ID),
		slog.Int64("supplier_id", created.SupplierID),
		slog.Float64("quantity", created.Quantity))
	return created, nil
}

// Update edits an unsettled delivery.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Delivery, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Delivery{}, err
	}
	if existing.Settled() {
		return Delivery{}, ErrDeliverySettled
	}
	d, err := s.build(ctx, in)
	if err != nil {
		return Delivery{}, err
	}
	d.ID = id
	d.CreatedAt = existing.CreatedAt
	if in.DeliveryDate == "" {
		d.DeliveryDate = existing.DeliveryDate
	}
	ok, err := s.repo.UpdateUnsettled(ctx, d)
	if err != nil {
		return Delivery{}, err
	}
	if !ok {
		return Delivery{}, s.missingOrSettled(ctx, id)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes an unsettled delivery.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.DeleteUnsettled(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return s.missingOrSettled(ctx, id)
	}
	return nil
}

func (s *Service) missingOrSettled(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return ErrDeliverySettled
}

func (s *Service) build(ctx context.Context, in Input) (Delivery, error) {
	fields := map[string]string{}
	if in.SupplierID <= 0 {
		fields["supplier_id"] = "is required"
	}
	quantity := shared.Round2(in.Quantity)
	switch {
	case quantity < 0:
		fields["quantity"] = "must be at least 0"
	case quantity > shared.MaxQuantity:
		fields["quantity"] = "must be at most 99999999.99"
	}
	if in.RatePerKg != nil {
		switch r := shared.Round2(*in.RatePerKg); {
		case r < 0:
			fields["rate_per_kg"] = "must be at least 0"
		case r > shared.MaxRate:
			fields["rate_per_kg"] = "must be at most 99999999.99"
		}
	}
	if in.QualityScore != nil && (*in.QualityScore < 0 || *in.QualityScore > 100) {
		fields["quality_score"] = "must be between 0 and 100"
	}
	date := s.now().UTC().Truncate(24 * time.Hour)
	if in.DeliveryDate != "" {
		parsed, err := time.Parse(DateLayout, in.DeliveryDate)
		if err != nil {
			fields["delivery_date"] = "must be YYYY-MM-DD"
		}
		date = parsed
	}
	if len(fields) > 0 {
		return Delivery{}, &shared.ValidationError{Fields: fields}
	}

	var rate float64
	if in.RatePerKg != nil {
		rate = shared.Round2(*in.RatePerKg)
	} else {
		r, err := s.repo.SupplierRate(ctx, in.SupplierID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Delivery{}, ErrSupplierNotFound
			}
			return Delivery{}, err
		}
		rate = r
	}
	total := shared.MultiplyMoney(quantity, rate)
	if total > shared.MaxAmount {
		return Delivery{}, shared.NewValidationError("quantity", "quantity times rate must not exceed 9999999999.99")
	}

	return Delivery{
		SupplierID:    in.SupplierID,
		DeliveryDate:  date,
		Quantity:      quantity,
		QualityScore:  in.QualityScore,
		RatePerKg:     rate,
		TotalAmount:   total,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}, nil
}
