package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yourorg/earnings-tracker/internal/calendar"
	"github.com/yourorg/earnings-tracker/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRateLimited is returned when the upstream fetch cooldown is in effect.
var ErrRateLimited = errors.New("fetch cooldown in effect")

// upsertWorkers bounds concurrent writes so a large calendar does not drain
// the connection pool.
const upsertWorkers = 16

// EarningsStore is the persistence gateway consumed by the orchestrator.
type EarningsStore interface {
	FindFromDate(ctx context.Context, date string) ([]model.Earning, error)
	FindLatestFromDate(ctx context.Context, date string) (*model.Earning, error)
	Upsert(ctx context.Context, e model.Earning) error
}

// FeedClient fetches one calendar date from the upstream feed.
type FeedClient interface {
	FetchDate(ctx context.Context, date string) ([]model.RawEarningsRow, error)
}

// EventPublisher publishes ingestion events. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// IngestConfig holds ingestion pipeline settings
type IngestConfig struct {
	Cooldown           time.Duration
	HorizonMonths      int
	EasternOffsetHours int
	EventTopic         string
}

// IngestService coordinates the earnings ingestion pipeline: freshness and
// cooldown guards, date-parallel fetching, and upsert reconciliation.
type IngestService struct {
	store  EarningsStore
	feed   FeedClient
	events EventPublisher
	cfg    IngestConfig
	logger *zap.Logger

	now func() time.Time

	mu        sync.Mutex
	lastFetch time.Time
	inflight  *fetchCall
}

// fetchCall lets concurrent cache-miss callers share one upstream run.
type fetchCall struct {
	done    chan struct{}
	records []model.Earning
	err     error
}

// NewIngestService creates a new ingestion orchestrator. events may be nil.
func NewIngestService(
	store EarningsStore,
	feed FeedClient,
	events EventPublisher,
	cfg IngestConfig,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		store:  store,
		feed:   feed,
		events: events,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// FetchEarnings returns the current earnings calendar, fetching from the
// upstream feed when storage has no future-dated records. The second return
// value reports whether the result came from storage (cache hit).
func (s *IngestService) FetchEarnings(ctx context.Context) ([]model.Earning, bool, error) {
	today := calendar.Today(s.now(), s.cfg.EasternOffsetHours)

	// Existence of any future-dated record short-circuits the run. The guard
	// is coarse: it does not verify the stored horizon reaches the planner's
	// end date, so the latest stored date is logged for visibility.
	latest, err := s.store.FindLatestFromDate(ctx, today)
	if err != nil {
		return nil, false, fmt.Errorf("freshness check failed: %w", err)
	}
	if latest != nil {
		s.logger.Info("Recent earnings data exists, skipping fetch",
			zap.String("today", today),
			zap.String("stored_horizon_end", latest.ReportDate))

		existing, err := s.store.FindFromDate(ctx, today)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load cached earnings: %w", err)
		}
		return existing, true, nil
	}

	s.mu.Lock()
	if call := s.inflight; call != nil {
		// Another caller is already fetching; wait for its result.
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.records, false, call.err
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	now := s.now()
	if !s.lastFetch.IsZero() && now.Sub(s.lastFetch) < s.cfg.Cooldown {
		s.mu.Unlock()
		return nil, false, ErrRateLimited
	}

	// Stamped before the fetch begins so a failed run still enforces the
	// cooldown.
	s.lastFetch = now
	call := &fetchCall{done: make(chan struct{})}
	s.inflight = call
	s.mu.Unlock()

	records, err := s.ingest(ctx, now, today)

	call.records, call.err = records, err
	close(call.done)

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()

	return records, false, err
}

// ingest runs one full pipeline pass: plan, fan-out fetch, reconcile.
func (s *IngestService) ingest(ctx context.Context, now time.Time, today string) ([]model.Earning, error) {
	runID := uuid.NewString()
	dates := calendar.PlanDates(now, s.cfg.EasternOffsetHours, s.cfg.HorizonMonths)

	s.logger.Info("Starting earnings ingestion",
		zap.String("run_id", runID),
		zap.String("from", today),
		zap.Int("dates", len(dates)))

	// Fan out one fetch per date; results land at the date's index so the
	// fan-in preserves request order. Per-date failures are absorbed inside
	// the feed client and contribute zero rows.
	results := make([][]model.RawEarningsRow, len(dates))
	fetchErrs := make([]error, len(dates))

	var wg sync.WaitGroup
	for i, date := range dates {
		wg.Add(1)
		go func(i int, date string) {
			defer wg.Done()
			results[i], fetchErrs[i] = s.feed.FetchDate(ctx, date)
		}(i, date)
	}
	wg.Wait()

	for _, err := range fetchErrs {
		if err != nil {
			return nil, fmt.Errorf("ingestion aborted: %w", err)
		}
	}

	var records []model.Earning
	for _, rows := range results {
		for _, row := range rows {
			if row.Symbol == "" {
				continue
			}
			records = append(records, model.EarningFromRow(row))
		}
	}

	if err := s.reconcile(ctx, records); err != nil {
		return nil, err
	}

	s.logger.Info("Earnings ingestion complete",
		zap.String("run_id", runID),
		zap.Int("records", len(records)))

	s.publishEvent(ctx, model.IngestionEvent{
		RunID:     runID,
		Dates:     len(dates),
		Records:   len(records),
		FetchedAt: now,
	})

	return records, nil
}

// reconcile upserts every record concurrently. Upserts are independent per
// (symbol, report_date) key; the first error fails the run, but records
// already written stay committed.
func (s *IngestService) reconcile(ctx context.Context, records []model.Earning) error {
	sem := make(chan struct{}, upsertWorkers)
	upsertErrs := make([]error, len(records))

	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			upsertErrs[i] = s.store.Upsert(ctx, records[i])
		}(i)
	}
	wg.Wait()

	for i, err := range upsertErrs {
		if err != nil {
			return fmt.Errorf("failed to persist earning %s/%s: %w",
				records[i].Symbol, records[i].ReportDate, err)
		}
	}
	return nil
}

func (s *IngestService) publishEvent(ctx context.Context, event model.IngestionEvent) {
	if s.events == nil || s.cfg.EventTopic == "" {
		return
	}
	if err := s.events.Publish(ctx, s.cfg.EventTopic, event.RunID, event); err != nil {
		s.logger.Warn("Failed to publish ingestion event",
			zap.String("run_id", event.RunID),
			zap.Error(err))
	}
}
