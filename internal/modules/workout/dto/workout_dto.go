package dto

import (
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	achievement "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/service"
)

type LogWorkoutRequest struct {
	Category        string    `json:"category" binding:"required,oneof=run strength cycle swim yoga other"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,gt=0"`
	Calories        int       `json:"calories" binding:"gte=0"`
	OccurredAt      time.Time `json:"occurred_at" binding:"required"`
}

// LogWorkoutResponse always carries the stored event; Unlocked lists any
// achievements earned by this submission and may be empty even when rules
// fired, if the gamification pipeline failed downstream of the ledger write.
type LogWorkoutResponse struct {
	Event    entity.WorkoutEvent    `json:"event"`
	Unlocked []achievement.Unlocked `json:"unlocked_achievements"`
}

type ListWorkoutsFilter struct {
	Since *time.Time `form:"since" time_format:"2006-01-02"`
}
