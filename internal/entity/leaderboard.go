package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserTotals is the maintained all-time running total per user, upserted on
// every ledger append. It backs snapshot capture and rank-drop detection; the
// user-facing leaderboard is computed from the ledger directly.
type UserTotals struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TotalCalories int       `gorm:"default:0" json:"total_calories"`
	LastUpdatedAt time.Time `gorm:"autoUpdateTime" json:"last_updated_at"`
}

// LeaderboardSnapshot is one row of a date-stamped ranking capture.
// At most one snapshot set exists per calendar date; rows are written once
// and never updated, so historical ranks cannot silently change.
type LeaderboardSnapshot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        string    `gorm:"size:10;index:idx_snapshot_date;not null" json:"date"` // YYYY-MM-DD
	UserID      uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Rank        int       `gorm:"not null" json:"rank"`
	MetricValue int       `gorm:"not null" json:"metric_value"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
