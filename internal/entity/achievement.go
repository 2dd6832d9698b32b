package entity

import (
	"time"

	"github.com/google/uuid"
)

// UnlockedAchievement records that a user satisfied an achievement rule.
// The composite primary key doubles as the uniqueness guarantee: at most one
// row per (user_id, rule_id), enforced by Postgres, so concurrent unlock
// attempts cannot produce duplicates. Unlocks are permanent and never revoked.
type UnlockedAchievement struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	RuleID     string    `gorm:"size:50;primaryKey" json:"rule_id"`
	UnlockedAt time.Time `gorm:"not null" json:"unlocked_at"`
}
