package http

import (
	"net/http"
	"strconv"
	"time"

	leaderboardService "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/service"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	limit, _ := strconv.Atoi(limitStr)

	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	entries, err := h.service.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (h *LeaderboardHandler) GetSnapshots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	entries, err := h.service.SnapshotsForDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch snapshots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "data": entries})
}

// CaptureSnapshot is admin-only: records today's all-time ranking. Calling it
// again on the same date is a no-op.
func (h *LeaderboardHandler) CaptureSnapshot(c *gin.Context) {
	date := time.Now().Format("2006-01-02")

	created, err := h.service.CaptureSnapshot(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to capture snapshot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "created": created})
}
