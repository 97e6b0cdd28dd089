package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	store ExtractionStore
}

func NewHistoryHandler(store ExtractionStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	limit := getQueryLimit(c)

	history, err := h.store.GetUserHistory(userID, limit)
	if err != nil {
		slog.Error("error fetching user history", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	requests := make([]HistoryEntryResponse, 0, len(history))
	for _, entry := range history {
		requests = append(requests, HistoryEntryResponse{
			RequestID:      entry.RequestID,
			CreatedAt:      entry.CreatedAt.Format(time.RFC3339),
			Context:        entry.Context,
			PunchlineCount: entry.PunchlineCount,
		})
	}

	c.JSON(http.StatusOK, HistoryResponse{
		UserID:        userID,
		Requests:      requests,
		TotalRequests: len(requests),
	})
}

func (h *HistoryHandler) GetHealth(c *gin.Context) {
	_, err := h.store.GetRequestTotal()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	param := c.Query(name)

	if param == "" {
		return defaultValue
	}

	parsedValue, err := strconv.Atoi(param)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", param, "error", err)
		return defaultValue
	}

	return parsedValue
}

func getQueryLimit(c *gin.Context) int {
	const (
		defaultLimit = 10
		maxLimit     = 100
	)

	limit := getQueryInt("limit", defaultLimit, c)
	if limit < 1 {
		slog.Warn("invalid query parameter, using default", "param", "limit", "value", limit, "default", defaultLimit)
		return defaultLimit
	}

	if limit > maxLimit {
		slog.Warn("query parameter exceeds max, clamping", "param", "limit", "value", limit, "max", maxLimit)
		return maxLimit
	}

	return limit
}
