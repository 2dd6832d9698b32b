package entity

import (
	"time"

	"github.com/google/uuid"
)

// BotSessionState names the steps of the bot's workout-logging conversation.
// Transitions are explicit; the state is never inferred from message text.
type BotSessionState string

const (
	BotStateIdle             BotSessionState = "idle"
	BotStateAwaitingType     BotSessionState = "awaiting_type"
	BotStateAwaitingDuration BotSessionState = "awaiting_duration"
	BotStateAwaitingDate     BotSessionState = "awaiting_date"
	BotStateComplete         BotSessionState = "complete"
)

// BotSession holds the per-chat conversation state with typed draft fields,
// one row per chat.
type BotSession struct {
	ChatID          int64            `gorm:"primaryKey" json:"chat_id"`
	UserID          *uuid.UUID       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	State           BotSessionState  `gorm:"size:30;not null;default:idle" json:"state"`
	DraftCategory   *WorkoutCategory `gorm:"size:20" json:"draft_category,omitempty"`
	DraftDuration   *int             `json:"draft_duration,omitempty"`
	DraftOccurredAt *time.Time       `json:"draft_occurred_at,omitempty"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}
