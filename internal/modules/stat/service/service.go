package service

import (
	"context"

	"github.com/fitlogapp/fitlog-backend/internal/modules/user/repository"
	workoutRepo "github.com/fitlogapp/fitlog-backend/internal/modules/workout/repository"
)

type Overview struct {
	TotalUsers    int64 `json:"total_users"`
	TotalWorkouts int64 `json:"total_workouts"`
	TotalCalories int64 `json:"total_calories"`
}

type StatService interface {
	GetOverview(ctx context.Context) (*Overview, error)
}

type statService struct {
	userRepo    repository.UserRepository
	workoutRepo workoutRepo.WorkoutRepository
}

func NewStatService(userRepo repository.UserRepository, workoutRepo workoutRepo.WorkoutRepository) StatService {
	return &statService{
		userRepo:    userRepo,
		workoutRepo: workoutRepo,
	}
}

func (s *statService) GetOverview(ctx context.Context) (*Overview, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	workouts, err := s.workoutRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	calories, err := s.workoutRepo.SumCalories(ctx)
	if err != nil {
		return nil, err
	}

	return &Overview{
		TotalUsers:    users,
		TotalWorkouts: workouts,
		TotalCalories: calories,
	}, nil
}
