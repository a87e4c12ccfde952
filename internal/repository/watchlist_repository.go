package repository

import (
	"context"

	"github.com/yourorg/earnings-tracker/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// WatchlistRepository handles database operations for user watchlists
type WatchlistRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db *sqlx.DB, logger *zap.Logger) *WatchlistRepository {
	return &WatchlistRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves a user's watched earnings, ascending by report date
func (r *WatchlistRepository) List(ctx context.Context, userID int) ([]model.WatchEntry, error) {
	query := `
		SELECT user_id, symbol, to_char(report_date, 'YYYY-MM-DD') AS report_date
		FROM watchlist
		WHERE user_id = $1
		ORDER BY report_date, symbol
	`

	var entries []model.WatchEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		r.logger.Error("Failed to list watchlist",
			zap.Error(err),
			zap.Int("user_id", userID))
		return nil, err
	}

	return entries, nil
}

// Add inserts a watch entry. Adding an already-watched pair is a no-op.
func (r *WatchlistRepository) Add(ctx context.Context, entry model.WatchEntry) error {
	query := `
		INSERT INTO watchlist (user_id, symbol, report_date)
		VALUES ($1, $2, $3::date)
		ON CONFLICT (user_id, symbol, report_date) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, entry.UserID, entry.Symbol, entry.ReportDate)
	if err != nil {
		r.logger.Error("Failed to add watch entry",
			zap.Error(err),
			zap.Int("user_id", entry.UserID),
			zap.String("symbol", entry.Symbol))
		return err
	}

	return nil
}

// Remove deletes a watch entry. Removing an absent pair is a no-op.
func (r *WatchlistRepository) Remove(ctx context.Context, entry model.WatchEntry) error {
	query := `
		DELETE FROM watchlist
		WHERE user_id = $1 AND symbol = $2 AND report_date = $3::date
	`

	_, err := r.db.ExecContext(ctx, query, entry.UserID, entry.Symbol, entry.ReportDate)
	if err != nil {
		r.logger.Error("Failed to remove watch entry",
			zap.Error(err),
			zap.Int("user_id", entry.UserID),
			zap.String("symbol", entry.Symbol))
		return err
	}

	return nil
}
