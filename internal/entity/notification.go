package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification event types
const (
	NotificationAchievementUnlocked = "achievement_unlocked"
	NotificationRankDropped         = "rank_dropped"
)

// Notification is the in-app feed row shown on the dashboard bell and pushed
// over the websocket stream.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	AssetRef  *string   `gorm:"type:text" json:"asset_ref,omitempty"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// DeliveryLog is the audit record for outbound deliveries: one row per
// successful send, keyed by user, event type and time. Failed sends are
// logged and dropped, never retried.
type DeliveryLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	EventType string    `gorm:"size:50;not null" json:"event_type"`
	SentAt    time.Time `gorm:"not null" json:"sent_at"`
}
