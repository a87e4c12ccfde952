package handler

import (
	"context"
	"net/http"

	"github.com/yourorg/earnings-tracker/internal/model"
	"github.com/yourorg/earnings-tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WatchlistManager maintains per-user watched earnings.
type WatchlistManager interface {
	List(ctx context.Context, userID int) ([]model.WatchEntry, error)
	Toggle(ctx context.Context, userID int, target model.WatchTarget, action string) ([]model.WatchEntry, error)
}

// WatchlistHandler handles watchlist HTTP requests
type WatchlistHandler struct {
	watchlist WatchlistManager
	logger    *zap.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(watchlist WatchlistManager, logger *zap.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlist: watchlist,
		logger:    logger,
	}
}

// GetWatchlist handles retrieving the caller's watched earnings
// GET /api/v1/watchlist
func (h *WatchlistHandler) GetWatchlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.SendErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	entries, err := h.watchlist.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to fetch watchlist",
			zap.Error(err),
			zap.Int("user_id", userID))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch watchlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"watchedEarnings": entries})
}

// UpdateWatchlist handles idempotent add/remove of watched earnings
// POST /api/v1/watchlist
func (h *WatchlistHandler) UpdateWatchlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.SendErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var request model.WatchlistRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid watchlist request: "+err.Error())
		return
	}

	entries, err := h.watchlist.Toggle(c.Request.Context(), userID, request.Earning, request.Action)
	if err != nil {
		h.logger.Error("Failed to update watchlist",
			zap.Error(err),
			zap.Int("user_id", userID),
			zap.String("action", request.Action))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to update watchlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"watchedEarnings": entries})
}

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (int, bool) {
	val, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := val.(int)
	return userID, ok
}
