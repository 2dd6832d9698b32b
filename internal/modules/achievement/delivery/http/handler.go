package http

import (
	"net/http"

	achievementService "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/service"
	"github.com/fitlogapp/fitlog-backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type AchievementHandler struct {
	service achievementService.AchievementService
}

func NewAchievementHandler(service achievementService.AchievementService) *AchievementHandler {
	return &AchievementHandler{service: service}
}

func (h *AchievementHandler) GetAchievements(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	statuses, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch achievements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": statuses})
}
