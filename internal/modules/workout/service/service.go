package service

import (
	"context"
	"log"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	achievement "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/service"
	leaderboard "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/service"
	metrics "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"
	notifService "github.com/fitlogapp/fitlog-backend/internal/modules/notification/service"
	workoutDto "github.com/fitlogapp/fitlog-backend/internal/modules/workout/dto"
	workoutRepo "github.com/fitlogapp/fitlog-backend/internal/modules/workout/repository"
	"github.com/fitlogapp/fitlog-backend/pkg/apperror"
	"github.com/google/uuid"
)

type WorkoutService interface {
	// LogWorkout appends to the ledger and runs the gamification pipeline:
	// aggregate, achievement evaluation, rank-delta check, notification
	// dispatch. Once the append succeeds the submission succeeds; every
	// downstream failure is logged and swallowed.
	LogWorkout(ctx context.Context, userID uuid.UUID, req workoutDto.LogWorkoutRequest) (*workoutDto.LogWorkoutResponse, error)
	ListWorkouts(ctx context.Context, userID uuid.UUID, since *time.Time) ([]entity.WorkoutEvent, error)
}

type workoutService struct {
	repo         workoutRepo.WorkoutRepository
	metrics      metrics.MetricsService
	achievements achievement.AchievementService
	leaderboard  leaderboard.LeaderboardService
	notifier     notifService.NotificationService
}

func NewWorkoutService(
	repo workoutRepo.WorkoutRepository,
	metricsService metrics.MetricsService,
	achievements achievement.AchievementService,
	leaderboardService leaderboard.LeaderboardService,
	notifier notifService.NotificationService,
) WorkoutService {
	return &workoutService{
		repo:         repo,
		metrics:      metricsService,
		achievements: achievements,
		leaderboard:  leaderboardService,
		notifier:     notifier,
	}
}

func (s *workoutService) LogWorkout(ctx context.Context, userID uuid.UUID, req workoutDto.LogWorkoutRequest) (*workoutDto.LogWorkoutResponse, error) {
	category := entity.WorkoutCategory(req.Category)
	if !category.Valid() {
		return nil, apperror.ErrInvalidInput
	}
	if req.DurationMinutes <= 0 {
		return nil, apperror.ErrInvalidInput
	}
	calories := req.Calories
	if calories < 0 {
		calories = 0
	}

	// Pre-mutation ranking. If this fails we skip delta detection for this
	// submission rather than failing it.
	beforeRanks, err := s.leaderboard.AllTimeRanks(ctx)
	if err != nil {
		log.Printf("Failed to capture pre-submission ranks: %v", err)
		beforeRanks = nil
	}

	event := &entity.WorkoutEvent{
		UserID:          userID,
		OccurredAt:      req.OccurredAt,
		Category:        category,
		DurationMinutes: req.DurationMinutes,
		Calories:        calories,
	}

	// The only step allowed to fail the request. The ledger row is
	// authoritative and durable independent of everything below.
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	resp := &workoutDto.LogWorkoutResponse{Event: *event}

	if err := s.leaderboard.AddCalories(ctx, userID, calories); err != nil {
		log.Printf("Failed to update running totals for user %s: %v", userID, err)
	}

	m, err := s.metrics.ForUser(ctx, userID)
	if err != nil {
		log.Printf("Failed to compute metrics for user %s: %v", userID, err)
		return resp, nil
	}

	unlocked, err := s.achievements.Evaluate(ctx, userID, m)
	if err != nil {
		log.Printf("Achievement evaluation failed for user %s: %v", userID, err)
	}
	resp.Unlocked = unlocked

	for _, u := range unlocked {
		s.notifier.DispatchAchievementUnlocked(ctx, notifService.AchievementUnlockedEvent{
			UserID:   userID,
			Title:    u.Title,
			AssetRef: u.AssetRef,
		})
	}

	if beforeRanks != nil {
		afterRanks, err := s.leaderboard.AllTimeRanks(ctx)
		if err != nil {
			log.Printf("Failed to compute post-submission ranks: %v", err)
			return resp, nil
		}

		for _, drop := range leaderboard.RankDrops(beforeRanks, afterRanks) {
			s.notifier.DispatchRankDropped(ctx, notifService.RankDroppedEvent{
				UserID:  drop.UserID,
				OldRank: drop.OldRank,
				NewRank: drop.NewRank,
			})
		}
	}

	return resp, nil
}

func (s *workoutService) ListWorkouts(ctx context.Context, userID uuid.UUID, since *time.Time) ([]entity.WorkoutEvent, error) {
	if since != nil {
		return s.repo.ListByUserSince(ctx, userID, *since)
	}
	return s.repo.ListByUser(ctx, userID)
}
