package suppliers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/brewops/brewops/internal/shared"
)

const maxCodeAttempts = 2

// Service coordinates supplier registration and maintenance.
type Service struct {
	repo        Repository
	logger      *slog.Logger
	defaultRate float64
}

// NewService builds Service. defaultRate applies when a create omits the rate.
func NewService(repo Repository, logger *slog.Logger, defaultRate float64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, defaultRate: defaultRate}
}

// List returns suppliers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Supplier, error) {
	return s.repo.List(ctx, filter)
}

// ListActive returns active suppliers only.
func (s *Service) ListActive(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx, ListFilter{})
}

// Get returns a supplier by id.
func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.Get(ctx, id)
}

// GetByCode returns a supplier by its SUP code.
func (s *Service) GetByCode(ctx context.Context, code string) (Supplier, error) {
	return s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// Create registers a supplier under the next sequential code.
func (s *Service) Create(ctx context.Context, in Input) (Supplier, error) {
	sup, err := s.fromInput(in)
	if err != nil {
		return Supplier{}, err
	}
	if in.Rate == nil {
		sup.Rate = s.defaultRate
	}
	sup.Status = StatusActive

	for attempt := 1; ; attempt++ {
		last, err := s.repo.LastCode(ctx)
		if err != nil {
			return Supplier{}, err
		}
		sup.Code = NextCode(last)
		created, err := s.repo.Insert(ctx, sup)
		if err == nil {
			s.logger.Info("supplier registered", slog.Int64("supplier_id", created.ID), slog.String("code", created.Code))
			return created, nil
		}
		if !errors.Is(err, ErrDuplicateCode) || attempt >= maxCodeAttempts {
			return Supplier{}, err
		}
		s.logger.Warn("supplier code taken, retrying", slog.String("code", sup.Code))
	}
}

// Update edits a supplier. Omitted rate and is_active keep their values.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Supplier, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Supplier{}, err
	}
	sup, err := s.fromInput(in)
	if err != nil {
		return Supplier{}, err
	}
	sup.ID = id
	sup.Code = existing.Code
	sup.Status = existing.Status
	if in.Rate == nil {
		sup.Rate = existing.Rate
	}
	if in.IsActive != nil {
		sup.Status = StatusInactive
		if *in.IsActive {
			sup.Status = StatusActive
		}
	}
	return s.repo.Update(ctx, sup)
}

// Deactivate soft-deletes a supplier. Suppliers are never removed.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, StatusInactive)
}

// Reactivate restores a deactivated supplier.
func (s *Service) Reactivate(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, StatusActive)
}

func (s *Service) setStatus(ctx context.Context, id int64, status Status) error {
	ok, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSupplierNotFound
	}
	s.logger.Info("supplier status changed", slog.Int64("supplier_id", id), slog.String("status", string(status)))
	return nil
}

func (s *Service) fromInput(in Input) (Supplier, error) {
	name := strings.TrimSpace(in.Name)
	fields := map[string]string{}
	if len(name) < 2 || len(name) > 100 {
		fields["name"] = "must be between 2 and 100 characters"
	}
	if in.Rate != nil && *in.Rate < 0 {
		fields["rate"] = "must be at least 0"
	}
	if len(fields) > 0 {
		return Supplier{}, &shared.ValidationError{Fields: fields}
	}
	sup := Supplier{
		Name:              name,
		ContactNumber:     strings.TrimSpace(in.ContactNumber),
		Address:           strings.TrimSpace(in.Address),
		BankAccountNumber: strings.TrimSpace(in.BankAccountNumber),
		BankName:          strings.TrimSpace(in.BankName),
	}
	if nic := strings.ToUpper(strings.TrimSpace(in.NICNumber)); nic != "" {
		sup.NICNumber = &nic
	}
	if in.Rate != nil {
		sup.Rate = *in.Rate
	}
	return sup, nil
}
