package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourorg/earnings-tracker/internal/model"
	"github.com/yourorg/earnings-tracker/internal/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeWatchlist struct {
	entries    []model.WatchEntry
	lastAction string
}

func (f *fakeWatchlist) List(context.Context, int) ([]model.WatchEntry, error) {
	return f.entries, nil
}

func (f *fakeWatchlist) Toggle(_ context.Context, _ int, target model.WatchTarget, action string) ([]model.WatchEntry, error) {
	f.lastAction = action
	if action == model.WatchActionAdd {
		f.entries = append(f.entries, model.WatchEntry{Symbol: target.Symbol, ReportDate: target.ReportDate})
	}
	return f.entries, nil
}

func newWatchlistRouter(t *testing.T, manager WatchlistManager, userID *int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := validator.RegisterCustomValidations(); err != nil {
		t.Fatalf("failed to register validations: %v", err)
	}

	router := gin.New()
	if userID != nil {
		id := *userID
		router.Use(func(c *gin.Context) {
			c.Set("userID", id)
			c.Next()
		})
	}

	h := NewWatchlistHandler(manager, zap.NewNop())
	router.GET("/api/v1/watchlist", h.GetWatchlist)
	router.POST("/api/v1/watchlist", h.UpdateWatchlist)
	return router
}

func TestGetWatchlistRequiresUser(t *testing.T) {
	router := newWatchlistRouter(t, &fakeWatchlist{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/watchlist", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestUpdateWatchlistAdd(t *testing.T) {
	userID := 7
	manager := &fakeWatchlist{}
	router := newWatchlistRouter(t, manager, &userID)

	body := `{"earning":{"symbol":"AAPL","reportDate":"2025-03-20"},"action":"add"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/watchlist", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if manager.lastAction != model.WatchActionAdd {
		t.Errorf("action = %q, want add", manager.lastAction)
	}

	var resp struct {
		WatchedEarnings []model.WatchEntry `json:"watchedEarnings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(resp.WatchedEarnings) != 1 {
		t.Errorf("watchedEarnings = %+v, want 1 entry", resp.WatchedEarnings)
	}
}

func TestUpdateWatchlistRejectsBadRequests(t *testing.T) {
	userID := 7
	router := newWatchlistRouter(t, &fakeWatchlist{}, &userID)

	bodies := []string{
		`{"earning":{"symbol":"AAPL","reportDate":"2025-03-20"},"action":"toggle"}`,
		`{"earning":{"symbol":"aapl!","reportDate":"2025-03-20"},"action":"add"}`,
		`{"earning":{"symbol":"AAPL","reportDate":"03/20/2025"},"action":"add"}`,
		`{"action":"add"}`,
	}

	for _, body := range bodies {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/watchlist", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}
