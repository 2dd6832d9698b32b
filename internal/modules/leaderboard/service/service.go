package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	leaderboardDto "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/dto"
	leaderboardRepo "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// UserLookup resolves display data for leaderboard rows.
type UserLookup interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error)
}

type LeaderboardService interface {
	// GetLeaderboard returns the user-facing board: minutes in the trailing
	// window, descending, ties by ascending user ID.
	GetLeaderboard(ctx context.Context, limit int) ([]leaderboardDto.LeaderboardEntry, error)
	// AllTimeRanks computes the all-time calorie ranking used for snapshot
	// capture and rank-drop detection.
	AllTimeRanks(ctx context.Context) (RankRecord, error)
	// AddCalories folds a new ledger append into the running totals.
	AddCalories(ctx context.Context, userID uuid.UUID, calories int) error
	// CaptureSnapshot writes today's all-time ranking once per calendar date.
	// Returns false without touching storage when the date already has one.
	CaptureSnapshot(ctx context.Context, date string) (bool, error)
	SnapshotsForDate(ctx context.Context, date string) ([]leaderboardDto.SnapshotEntry, error)
}

type leaderboardService struct {
	repo        leaderboardRepo.LeaderboardRepository
	users       UserLookup
	redisClient *redis.Client
	windowDays  int
	cacheTTL    time.Duration
	now         func() time.Time
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, users UserLookup, redisClient *redis.Client, windowDays int, cacheTTL time.Duration) LeaderboardService {
	return &leaderboardService{
		repo:        repo,
		users:       users,
		redisClient: redisClient,
		windowDays:  windowDays,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]leaderboardDto.LeaderboardEntry, error) {
	cacheKey := fmt.Sprintf("leaderboard:window:%d", limit)

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var entries []leaderboardDto.LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}

	since := s.now().AddDate(0, 0, -s.windowDays)
	rows, err := s.repo.WindowMinutes(ctx, since)
	if err != nil {
		return nil, err
	}

	sorted, _ := Rank(rows)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	ids := make([]uuid.UUID, 0, len(sorted))
	for _, row := range sorted {
		ids = append(ids, row.UserID)
	}

	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	userMap := make(map[uuid.UUID]entity.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	entries := make([]leaderboardDto.LeaderboardEntry, 0, len(sorted))
	for i, row := range sorted {
		entry := leaderboardDto.LeaderboardEntry{
			UserID:   row.UserID,
			Position: i + 1,
			Minutes:  row.Value,
		}
		if u, ok := userMap[row.UserID]; ok {
			entry.Username = u.Username
			entry.AvatarURL = u.AvatarURL
		}
		entries = append(entries, entry)
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				log.Printf("Failed to cache leaderboard: %v", err)
			}
		}
	}

	return entries, nil
}

func (s *leaderboardService) AllTimeRanks(ctx context.Context) (RankRecord, error) {
	rows, err := s.repo.AllTimeTotals(ctx)
	if err != nil {
		return nil, err
	}
	_, record := Rank(rows)
	return record, nil
}

func (s *leaderboardService) AddCalories(ctx context.Context, userID uuid.UUID, calories int) error {
	return s.repo.IncrementTotals(ctx, userID, calories)
}

func (s *leaderboardService) CaptureSnapshot(ctx context.Context, date string) (bool, error) {
	exists, err := s.repo.HasSnapshot(ctx, date)
	if err != nil {
		return false, err
	}
	if exists {
		// Ranks are a point-in-time fact; never overwrite a captured date.
		return false, nil
	}

	rows, err := s.repo.AllTimeTotals(ctx)
	if err != nil {
		return false, err
	}

	sorted, record := Rank(rows)
	snapshots := make([]entity.LeaderboardSnapshot, 0, len(sorted))
	for _, row := range sorted {
		snapshots = append(snapshots, entity.LeaderboardSnapshot{
			Date:        date,
			UserID:      row.UserID,
			Rank:        record[row.UserID],
			MetricValue: row.Value,
		})
	}

	if err := s.repo.WriteSnapshot(ctx, snapshots); err != nil {
		return false, err
	}

	return true, nil
}

func (s *leaderboardService) SnapshotsForDate(ctx context.Context, date string) ([]leaderboardDto.SnapshotEntry, error) {
	rows, err := s.repo.SnapshotsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboardDto.SnapshotEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, leaderboardDto.SnapshotEntry{
			UserID:      row.UserID,
			Rank:        row.Rank,
			MetricValue: row.MetricValue,
		})
	}

	return entries, nil
}
