package inventory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// numbers within one minute collide; later ones get a -N suffix
const maxNumberAttempts = 5

// Service coordinates inventory batch bookkeeping.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service. now may be nil.
func NewService(repo Repository, logger *slog.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, logger: logger, now: now}
}

// GenerateNumber previews the number the next batch would receive.
func (s *Service) GenerateNumber() string {
	return GenerateNumber(s.now())
}

// List returns all batches.
func (s *Service) List(ctx context.Context) ([]Batch, error) {
	return s.repo.List(ctx)
}

// Get returns a batch by id.
func (s *Service) Get(ctx context.Context, id int64) (Batch, error) {
	return s.repo.Get(ctx, id)
}

// Create records a batch under a freshly generated inventory number.
func (s *Service) Create(ctx context.Context, in Input) (Batch, error) {
	if in.Quantity <= 0 {
		return Batch{}, ErrInvalidQuantity
	}
	base := s.GenerateNumber()
	b := Batch{BatchID: strings.TrimSpace(in.BatchID), Quantity: in.Quantity}
	for attempt := 1; ; attempt++ {
		b.InventoryNumber = withSuffix(base, attempt)
		created, err := s.repo.Insert(ctx, b)
		if err == nil {
			s.logger.Info("inventory batch recorded", slog.String("inventory_number", created.InventoryNumber),
				slog.Float64("quantity", created.Quantity))
			return created, nil
		}
		if !errors.Is(err, ErrDuplicateNumber) || attempt >= maxNumberAttempts {
			return Batch{}, err
		}
	}
}

// Update changes batch id and quantity.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Batch, error) {
	if in.Quantity <= 0 {
		return Batch{}, ErrInvalidQuantity
	}
	return s.repo.Update(ctx, Batch{ID: id, BatchID: strings.TrimSpace(in.BatchID), Quantity: in.Quantity})
}

// Delete removes a batch.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBatchNotFound
	}
	return nil
}
