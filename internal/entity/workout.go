package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkoutCategory is the fixed set of workout types the ledger accepts.
type WorkoutCategory string

const (
	CategoryRun      WorkoutCategory = "run"
	CategoryStrength WorkoutCategory = "strength"
	CategoryCycle    WorkoutCategory = "cycle"
	CategorySwim     WorkoutCategory = "swim"
	CategoryYoga     WorkoutCategory = "yoga"
	CategoryOther    WorkoutCategory = "other"
)

var AllCategories = []WorkoutCategory{
	CategoryRun,
	CategoryStrength,
	CategoryCycle,
	CategorySwim,
	CategoryYoga,
	CategoryOther,
}

func (c WorkoutCategory) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// WorkoutEvent is one row of the activity ledger. Rows are immutable once
// written; they are only removed by the cascade when a user is deleted.
type WorkoutEvent struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index:idx_workout_user_date,priority:1;not null" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	// Caller-supplied time of the workout, not the server clock
	OccurredAt      time.Time       `gorm:"index:idx_workout_user_date,priority:2;not null" json:"occurred_at"`
	Category        WorkoutCategory `gorm:"size:20;not null" json:"category"`
	DurationMinutes int             `gorm:"not null" json:"duration_minutes"`
	Calories        int             `gorm:"not null" json:"calories"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (e *WorkoutEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
