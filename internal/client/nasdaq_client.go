package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yourorg/earnings-tracker/internal/model"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const DefaultCalendarURL = "https://api.nasdaq.com/api/calendar/earnings"

// browserHeaders mimics a standard browser request. The upstream endpoint
// rejects unadorned requests.
var browserHeaders = map[string]string{
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Referer":         "https://www.nasdaq.com/market-activity/earnings",
	"Origin":          "https://www.nasdaq.com",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
}

// calendarResponse is the upstream envelope. Absence of data.rows means zero
// rows, not an error.
type calendarResponse struct {
	Data *struct {
		Rows []model.RawEarningsRow `json:"rows"`
	} `json:"data"`
}

// NasdaqClient fetches the public earnings calendar, one request per date.
type NasdaqClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	logger     *zap.Logger
}

// NewNasdaqClient creates a new earnings calendar client
func NewNasdaqClient(baseURL string, timeout time.Duration, maxRetries int, logger *zap.Logger) *NasdaqClient {
	if baseURL == "" {
		baseURL = DefaultCalendarURL
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &NasdaqClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: uint64(maxRetries),
		logger:     logger,
	}
}

// FetchDate retrieves the earnings rows announced for a single calendar date.
// A failed or malformed response for one date contributes zero rows and is
// logged; it never aborts the run. The only returned error is context
// cancellation, so a single bad date cannot poison the fan-out.
func (c *NasdaqClient) FetchDate(ctx context.Context, date string) ([]model.RawEarningsRow, error) {
	reqURL := fmt.Sprintf("%s?date=%s", c.baseURL, url.QueryEscape(date))

	var resp *http.Response
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, v := range browserHeaders {
			req.Header.Set(k, v)
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			// Transport errors are retryable.
			return err
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("Failed to fetch earnings for date",
			zap.String("date", date),
			zap.Error(err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		c.logger.Warn("Upstream returned non-success status for date",
			zap.String("date", date),
			zap.Int("statusCode", resp.StatusCode))
		return nil, nil
	}

	var envelope calendarResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.logger.Warn("Failed to decode earnings response",
			zap.String("date", date),
			zap.Error(err))
		return nil, nil
	}

	if envelope.Data == nil || len(envelope.Data.Rows) == 0 {
		c.logger.Debug("No earnings rows for date", zap.String("date", date))
		return nil, nil
	}

	// The upstream payload does not reliably echo the request date on each
	// row, so stamp every row with the date it was fetched for.
	rows := envelope.Data.Rows
	for i := range rows {
		rows[i].ReportDate = date
	}

	c.logger.Debug("Fetched earnings rows",
		zap.String("date", date),
		zap.Int("count", len(rows)))

	return rows, nil
}
