package repository

import (
	"context"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UnlockRepository interface {
	// ListUnlocked returns the rule IDs already unlocked for the user.
	ListUnlocked(ctx context.Context, userID uuid.UUID) ([]string, error)
	// TryUnlock inserts the unlock row if it does not exist yet. Returns true
	// when this call created the row, false when it already existed. The
	// primary key on (user_id, rule_id) makes this safe against concurrent
	// callers; a lost race is a benign no-op, not an error.
	TryUnlock(ctx context.Context, userID uuid.UUID, ruleID string, at time.Time) (bool, error)
	// ListUnlockedRows returns the full unlock rows, newest first.
	ListUnlockedRows(ctx context.Context, userID uuid.UUID) ([]entity.UnlockedAchievement, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type unlockRepository struct {
	db *gorm.DB
}

func NewUnlockRepository(db *gorm.DB) UnlockRepository {
	return &unlockRepository{db: db}
}

func (r *unlockRepository) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var ruleIDs []string
	err := r.db.WithContext(ctx).
		Model(&entity.UnlockedAchievement{}).
		Where("user_id = ?", userID).
		Pluck("rule_id", &ruleIDs).Error
	return ruleIDs, err
}

func (r *unlockRepository) TryUnlock(ctx context.Context, userID uuid.UUID, ruleID string, at time.Time) (bool, error) {
	row := entity.UnlockedAchievement{
		UserID:     userID,
		RuleID:     ruleID,
		UnlockedAt: at,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "rule_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (r *unlockRepository) ListUnlockedRows(ctx context.Context, userID uuid.UUID) ([]entity.UnlockedAchievement, error) {
	var rows []entity.UnlockedAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at desc").
		Find(&rows).Error
	return rows, err
}

func (r *unlockRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.UnlockedAchievement{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
