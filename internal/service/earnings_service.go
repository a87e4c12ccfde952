package service

import (
	"context"
	"time"

	"github.com/yourorg/earnings-tracker/internal/calendar"
	"github.com/yourorg/earnings-tracker/internal/model"

	"go.uber.org/zap"
)

// EarningsReader is the read-only slice of the persistence gateway used by
// the listing path.
type EarningsReader interface {
	FindFromDatePaged(ctx context.Context, date string, symbols []string, limit, offset int) ([]model.Earning, error)
	CountFromDate(ctx context.Context, date string, symbols []string) (int, error)
}

// EarningsService serves the persisted forward-looking calendar.
type EarningsService struct {
	store              EarningsReader
	easternOffsetHours int
	logger             *zap.Logger
	now                func() time.Time
}

// NewEarningsService creates a new earnings read service
func NewEarningsService(store EarningsReader, easternOffsetHours int, logger *zap.Logger) *EarningsService {
	return &EarningsService{
		store:              store,
		easternOffsetHours: easternOffsetHours,
		logger:             logger,
		now:                time.Now,
	}
}

// ListUpcoming returns a page of records with report_date >= today, ascending
// by report date, along with the total count. An empty symbols slice matches
// all symbols.
func (s *EarningsService) ListUpcoming(ctx context.Context, page, limit int, symbols []string) ([]model.Earning, int, error) {
	today := calendar.Today(s.now(), s.easternOffsetHours)

	total, err := s.store.CountFromDate(ctx, today, symbols)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	earnings, err := s.store.FindFromDatePaged(ctx, today, symbols, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return earnings, total, nil
}
