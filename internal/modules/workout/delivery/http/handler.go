package http

import (
	"net/http"

	workoutDto "github.com/fitlogapp/fitlog-backend/internal/modules/workout/dto"
	workoutService "github.com/fitlogapp/fitlog-backend/internal/modules/workout/service"
	"github.com/fitlogapp/fitlog-backend/pkg/response"
	"github.com/fitlogapp/fitlog-backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type WorkoutHandler struct {
	service workoutService.WorkoutService
}

func NewWorkoutHandler(service workoutService.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{service: service}
}

func (h *WorkoutHandler) LogWorkout(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req workoutDto.LogWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.LogWorkout(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter workoutDto.ListWorkoutsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	events, err := h.service.ListWorkouts(c.Request.Context(), userID, filter.Since)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}
