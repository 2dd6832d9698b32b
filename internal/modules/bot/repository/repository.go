package repository

import (
	"context"
	"errors"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	"gorm.io/gorm"
)

type SessionRepository interface {
	// Get returns the session for a chat, creating an idle one on first
	// contact.
	Get(ctx context.Context, chatID int64) (*entity.BotSession, error)
	Save(ctx context.Context, session *entity.BotSession) error
	// Reset clears the draft fields and returns the session to idle.
	Reset(ctx context.Context, chatID int64) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Get(ctx context.Context, chatID int64) (*entity.BotSession, error) {
	var session entity.BotSession
	err := r.db.WithContext(ctx).First(&session, "chat_id = ?", chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			session = entity.BotSession{
				ChatID: chatID,
				State:  entity.BotStateIdle,
			}
			if err := r.db.WithContext(ctx).Create(&session).Error; err != nil {
				return nil, err
			}
			return &session, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *entity.BotSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) Reset(ctx context.Context, chatID int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.BotSession{}).
		Where("chat_id = ?", chatID).
		Updates(map[string]interface{}{
			"state":             entity.BotStateIdle,
			"draft_category":    nil,
			"draft_duration":    nil,
			"draft_occurred_at": nil,
		}).Error
}
