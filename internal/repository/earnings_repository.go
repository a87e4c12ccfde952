package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yourorg/earnings-tracker/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const earningColumns = `
	symbol,
	company_name,
	to_char(report_date, 'YYYY-MM-DD') AS report_date,
	time_slot,
	estimated_eps,
	last_year_eps,
	last_year_report_date,
	fiscal_quarter_ending,
	market_cap,
	number_of_estimates,
	created_at,
	updated_at
`

// EarningsRepository handles database operations for earnings records
type EarningsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewEarningsRepository creates a new earnings repository
func NewEarningsRepository(db *sqlx.DB, logger *zap.Logger) *EarningsRepository {
	return &EarningsRepository{
		db:     db,
		logger: logger,
	}
}

// FindFromDate retrieves all records with report_date >= date, ascending
func (r *EarningsRepository) FindFromDate(ctx context.Context, date string) ([]model.Earning, error) {
	query := `
		SELECT ` + earningColumns + `
		FROM earnings
		WHERE report_date >= $1::date
		ORDER BY report_date, symbol
	`

	var earnings []model.Earning
	if err := r.db.SelectContext(ctx, &earnings, query, date); err != nil {
		r.logger.Error("Failed to get earnings from date",
			zap.Error(err),
			zap.String("from_date", date))
		return nil, err
	}

	return earnings, nil
}

// FindFromDatePaged retrieves a page of records with report_date >= date.
// An empty symbols slice matches all symbols.
func (r *EarningsRepository) FindFromDatePaged(ctx context.Context, date string, symbols []string, limit, offset int) ([]model.Earning, error) {
	query := `
		SELECT ` + earningColumns + `
		FROM earnings
		WHERE report_date >= $1::date
		  AND (cardinality($2::text[]) = 0 OR symbol = ANY($2))
		ORDER BY report_date, symbol
		LIMIT $3 OFFSET $4
	`

	var earnings []model.Earning
	if err := r.db.SelectContext(ctx, &earnings, query, date, symbolsParam(symbols), limit, offset); err != nil {
		r.logger.Error("Failed to get earnings page",
			zap.Error(err),
			zap.String("from_date", date))
		return nil, err
	}

	return earnings, nil
}

// CountFromDate counts records with report_date >= date, restricted to
// symbols when the slice is non-empty
func (r *EarningsRepository) CountFromDate(ctx context.Context, date string, symbols []string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM earnings
		WHERE report_date >= $1::date
		  AND (cardinality($2::text[]) = 0 OR symbol = ANY($2))
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, date, symbolsParam(symbols)); err != nil {
		r.logger.Error("Failed to count earnings", zap.Error(err))
		return 0, err
	}
	return count, nil
}

func symbolsParam(symbols []string) interface{} {
	if symbols == nil {
		symbols = []string{}
	}
	return pq.Array(symbols)
}

// FindLatestFromDate returns the record with the greatest report_date at or
// after date, or nil when none exists
func (r *EarningsRepository) FindLatestFromDate(ctx context.Context, date string) (*model.Earning, error) {
	query := `
		SELECT ` + earningColumns + `
		FROM earnings
		WHERE report_date >= $1::date
		ORDER BY report_date DESC
		LIMIT 1
	`

	var earning model.Earning
	err := r.db.GetContext(ctx, &earning, query, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get latest earning",
			zap.Error(err),
			zap.String("from_date", date))
		return nil, err
	}

	return &earning, nil
}

// Upsert creates the record or overwrites its mutable fields, keyed by
// (symbol, report_date)
func (r *EarningsRepository) Upsert(ctx context.Context, e model.Earning) error {
	query := `
		INSERT INTO earnings (
			symbol, company_name, report_date, time_slot,
			estimated_eps, last_year_eps, last_year_report_date,
			fiscal_quarter_ending, market_cap, number_of_estimates,
			created_at, updated_at
		)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (symbol, report_date)
		DO UPDATE SET
			company_name = EXCLUDED.company_name,
			time_slot = EXCLUDED.time_slot,
			estimated_eps = EXCLUDED.estimated_eps,
			last_year_eps = EXCLUDED.last_year_eps,
			last_year_report_date = EXCLUDED.last_year_report_date,
			fiscal_quarter_ending = EXCLUDED.fiscal_quarter_ending,
			market_cap = EXCLUDED.market_cap,
			number_of_estimates = EXCLUDED.number_of_estimates,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query,
		e.Symbol,
		e.CompanyName,
		e.ReportDate,
		e.Time,
		e.EstimatedEPS,
		e.LastYearEPS,
		e.LastYearReportDate,
		e.FiscalQuarterEnding,
		e.MarketCap,
		e.NumberOfEstimates,
	)
	if err != nil {
		r.logger.Error("Failed to upsert earning",
			zap.Error(err),
			zap.String("symbol", e.Symbol),
			zap.String("report_date", e.ReportDate))
		return err
	}

	return nil
}
