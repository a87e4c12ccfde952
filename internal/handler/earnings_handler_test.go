package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourorg/earnings-tracker/internal/model"
	"github.com/yourorg/earnings-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	records []model.Earning
	cached  bool
	err     error
}

func (f *fakeFetcher) FetchEarnings(context.Context) ([]model.Earning, bool, error) {
	return f.records, f.cached, f.err
}

type fakeLister struct {
	records     []model.Earning
	total       int
	err         error
	lastSymbols []string
}

func (f *fakeLister) ListUpcoming(_ context.Context, page, limit int, symbols []string) ([]model.Earning, int, error) {
	f.lastSymbols = symbols
	return f.records, f.total, f.err
}

func newEarningsRouter(fetcher EarningsFetcher, lister EarningsLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewEarningsHandler(fetcher, lister, zap.NewNop())
	router.GET("/api/v1/earnings", h.ListEarnings)
	router.GET("/api/v1/earnings/fetch", h.FetchEarnings)
	return router
}

func TestFetchEarningsSuccess(t *testing.T) {
	fetcher := &fakeFetcher{
		records: []model.Earning{{Symbol: "AAPL", ReportDate: "2025-03-20"}},
		cached:  true,
	}
	router := newEarningsRouter(fetcher, &fakeLister{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/earnings/fetch", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, s-maxage=3600, stale-while-revalidate=7200" {
		t.Errorf("Cache-Control = %q", cc)
	}

	var body struct {
		Success bool            `json:"success"`
		Cached  bool            `json:"cached"`
		Data    []model.Earning `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Success || !body.Cached || len(body.Data) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestFetchEarningsRateLimited(t *testing.T) {
	router := newEarningsRouter(&fakeFetcher{err: service.ErrRateLimited}, &fakeLister{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/earnings/fetch", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}

	var body struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Success || body.Message == "" || body.Timestamp == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestFetchEarningsFailure(t *testing.T) {
	router := newEarningsRouter(&fakeFetcher{err: errors.New("storage unreachable")}, &fakeLister{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/earnings/fetch", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
}

func TestListEarningsPaginated(t *testing.T) {
	lister := &fakeLister{
		records: []model.Earning{
			{Symbol: "AAPL", ReportDate: "2025-03-20"},
			{Symbol: "MSFT", ReportDate: "2025-03-21"},
		},
		total: 2,
	}
	router := newEarningsRouter(&fakeFetcher{}, lister)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/earnings?page=1&limit=50", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Data       []model.Earning `json:"data"`
		Pagination struct {
			TotalItems int `json:"totalItems"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Data) != 2 || body.Pagination.TotalItems != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestListEarningsSymbolsFilter(t *testing.T) {
	lister := &fakeLister{}
	router := newEarningsRouter(&fakeFetcher{}, lister)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/earnings?symbols=aapl,%20msft,,", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(lister.lastSymbols) != 2 ||
		lister.lastSymbols[0] != "AAPL" || lister.lastSymbols[1] != "MSFT" {
		t.Errorf("symbols = %v, want [AAPL MSFT]", lister.lastSymbols)
	}
}
