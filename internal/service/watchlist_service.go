package service

import (
	"context"
	"fmt"

	"github.com/yourorg/earnings-tracker/internal/model"

	"go.uber.org/zap"
)

// WatchlistStore is the keyed-set store behind user watchlists.
type WatchlistStore interface {
	List(ctx context.Context, userID int) ([]model.WatchEntry, error)
	Add(ctx context.Context, entry model.WatchEntry) error
	Remove(ctx context.Context, entry model.WatchEntry) error
}

// WatchlistService maintains per-user watched earnings.
type WatchlistService struct {
	store  WatchlistStore
	logger *zap.Logger
}

// NewWatchlistService creates a new watchlist service
func NewWatchlistService(store WatchlistStore, logger *zap.Logger) *WatchlistService {
	return &WatchlistService{
		store:  store,
		logger: logger,
	}
}

// List returns the user's watched earnings
func (s *WatchlistService) List(ctx context.Context, userID int) ([]model.WatchEntry, error) {
	entries, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.WatchEntry{}
	}
	return entries, nil
}

// Toggle applies an add or remove action idempotently and returns the
// updated set. Adding a watched pair and removing an absent pair are no-ops.
func (s *WatchlistService) Toggle(ctx context.Context, userID int, target model.WatchTarget, action string) ([]model.WatchEntry, error) {
	entry := model.WatchEntry{
		UserID:     userID,
		Symbol:     target.Symbol,
		ReportDate: target.ReportDate,
	}

	var err error
	switch action {
	case model.WatchActionAdd:
		err = s.store.Add(ctx, entry)
	case model.WatchActionRemove:
		err = s.store.Remove(ctx, entry)
	default:
		return nil, fmt.Errorf("unknown watchlist action %q", action)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Watchlist updated",
		zap.Int("user_id", userID),
		zap.String("symbol", target.Symbol),
		zap.String("report_date", target.ReportDate),
		zap.String("action", action))

	return s.List(ctx, userID)
}
