package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yourorg/earnings-tracker/internal/model"
	"github.com/yourorg/earnings-tracker/internal/service"
	"github.com/yourorg/earnings-tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EarningsFetcher runs the ingestion pipeline.
type EarningsFetcher interface {
	FetchEarnings(ctx context.Context) ([]model.Earning, bool, error)
}

// EarningsLister serves the persisted calendar.
type EarningsLister interface {
	ListUpcoming(ctx context.Context, page, limit int, symbols []string) ([]model.Earning, int, error)
}

// EarningsHandler handles earnings HTTP requests
type EarningsHandler struct {
	ingest EarningsFetcher
	reader EarningsLister
	logger *zap.Logger
}

// NewEarningsHandler creates a new earnings handler
func NewEarningsHandler(ingest EarningsFetcher, reader EarningsLister, logger *zap.Logger) *EarningsHandler {
	return &EarningsHandler{
		ingest: ingest,
		reader: reader,
		logger: logger,
	}
}

// FetchEarnings handles the ingestion entry point
// GET /api/v1/earnings/fetch
func (h *EarningsHandler) FetchEarnings(c *gin.Context) {
	data, cached, err := h.ingest.FetchEarnings(c.Request.Context())

	if errors.Is(err, service.ErrRateLimited) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success":   false,
			"message":   "Rate limit exceeded",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	if err != nil {
		h.logger.Error("Earnings ingestion failed", zap.Error(err))
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Failed to ingest earnings calendar",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	if data == nil {
		data = []model.Earning{}
	}

	c.Header("Cache-Control", "public, s-maxage=3600, stale-while-revalidate=7200")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"cached":  cached,
	})
}

// ListEarnings handles the read-only listing of upcoming earnings
// GET /api/v1/earnings?symbols=AAPL,MSFT
func (h *EarningsHandler) ListEarnings(c *gin.Context) {
	params := utils.ParsePaginationParams(c, 100, 1000)
	symbols := parseSymbolsParam(c.Query("symbols"))

	earnings, total, err := h.reader.ListUpcoming(c.Request.Context(), params.Page, params.Limit, symbols)
	if err != nil {
		h.logger.Error("Failed to list earnings", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch earnings")
		return
	}

	if earnings == nil {
		earnings = []model.Earning{}
	}

	utils.SendPaginatedResponse(c, http.StatusOK, earnings, total, params.Page, params.Limit)
}

// parseSymbolsParam splits a comma-separated symbols filter, upper-casing
// entries and dropping blanks. An empty result means no filter.
func parseSymbolsParam(raw string) []string {
	if raw == "" {
		return nil
	}

	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}
