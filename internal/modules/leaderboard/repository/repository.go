package repository

import (
	"context"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MetricRow is one user's value for a ranking metric, before ordering.
type MetricRow struct {
	UserID uuid.UUID
	Value  int
}

type LeaderboardRepository interface {
	// WindowMinutes sums duration_minutes per user over the ledger filtered
	// to occurred_at >= since. Powers the user-facing leaderboard.
	WindowMinutes(ctx context.Context, since time.Time) ([]MetricRow, error)
	// AllTimeTotals reads the maintained running totals. Powers snapshots and
	// rank-drop detection.
	AllTimeTotals(ctx context.Context) ([]MetricRow, error)
	// IncrementTotals upserts the running total for a user.
	IncrementTotals(ctx context.Context, userID uuid.UUID, calories int) error

	HasSnapshot(ctx context.Context, date string) (bool, error)
	WriteSnapshot(ctx context.Context, rows []entity.LeaderboardSnapshot) error
	SnapshotsByDate(ctx context.Context, date string) ([]entity.LeaderboardSnapshot, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) WindowMinutes(ctx context.Context, since time.Time) ([]MetricRow, error) {
	var rows []MetricRow
	err := r.db.WithContext(ctx).
		Model(&entity.WorkoutEvent{}).
		Select("user_id, SUM(duration_minutes) as value").
		Where("occurred_at >= ?", since).
		Group("user_id").
		Scan(&rows).Error
	return rows, err
}

func (r *leaderboardRepository) AllTimeTotals(ctx context.Context) ([]MetricRow, error) {
	var rows []MetricRow
	err := r.db.WithContext(ctx).
		Model(&entity.UserTotals{}).
		Select("user_id, total_calories as value").
		Scan(&rows).Error
	return rows, err
}

func (r *leaderboardRepository) IncrementTotals(ctx context.Context, userID uuid.UUID, calories int) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_calories":  gorm.Expr("user_totals.total_calories + ?", calories),
			"last_updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&entity.UserTotals{
		UserID:        userID,
		TotalCalories: calories,
	}).Error
}

func (r *leaderboardRepository) HasSnapshot(ctx context.Context, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.LeaderboardSnapshot{}).
		Where("date = ?", date).
		Count(&count).Error
	return count > 0, err
}

func (r *leaderboardRepository) WriteSnapshot(ctx context.Context, rows []entity.LeaderboardSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *leaderboardRepository) SnapshotsByDate(ctx context.Context, date string) ([]entity.LeaderboardSnapshot, error) {
	var rows []entity.LeaderboardSnapshot
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("rank asc").
		Find(&rows).Error
	return rows, err
}
