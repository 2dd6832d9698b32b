package http

import (
	"net/http"

	metricsService "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"
	"github.com/fitlogapp/fitlog-backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type MetricsHandler struct {
	service metricsService.MetricsService
}

func NewMetricsHandler(service metricsService.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

func (h *MetricsHandler) GetMyMetrics(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	m, err := h.service.ForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, m)
}
