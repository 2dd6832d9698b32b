package repository

import (
	"context"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkoutRepository is the activity ledger: append and read, no updates.
type WorkoutRepository interface {
	Create(ctx context.Context, event *entity.WorkoutEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.WorkoutEvent, error)
	ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.WorkoutEvent, error)
	CountAll(ctx context.Context) (int64, error)
	SumCalories(ctx context.Context) (int64, error)
}

type workoutRepository struct {
	db *gorm.DB
}

func NewWorkoutRepository(db *gorm.DB) WorkoutRepository {
	return &workoutRepository{db: db}
}

func (r *workoutRepository) Create(ctx context.Context, event *entity.WorkoutEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *workoutRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.WorkoutEvent, error) {
	var events []entity.WorkoutEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at desc").
		Find(&events).Error
	return events, err
}

func (r *workoutRepository) ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.WorkoutEvent, error) {
	var events []entity.WorkoutEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND occurred_at >= ?", userID, since).
		Order("occurred_at desc").
		Find(&events).Error
	return events, err
}

func (r *workoutRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.WorkoutEvent{}).Count(&count).Error
	return count, err
}

func (r *workoutRepository) SumCalories(ctx context.Context) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&entity.WorkoutEvent{}).
		Select("SUM(calories)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
