package metrics

import (
	"context"
	"sort"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	"github.com/google/uuid"
)

// UserMetrics is the derived per-user aggregate. It is always recomputed from
// the ledger and never stored; callers may cache at their own risk.
type UserMetrics struct {
	TotalCalories     int                            `json:"total_calories"`
	MinutesByCategory map[entity.WorkoutCategory]int `json:"minutes_by_category"`
	MaxStreakDays     int                            `json:"max_streak_days"`
}

// Ledger is the read side of the activity ledger this aggregator consumes.
type Ledger interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.WorkoutEvent, error)
}

type MetricsService interface {
	ForUser(ctx context.Context, userID uuid.UUID) (UserMetrics, error)
}

type metricsService struct {
	ledger Ledger
}

func NewMetricsService(ledger Ledger) MetricsService {
	return &metricsService{ledger: ledger}
}

func (s *metricsService) ForUser(ctx context.Context, userID uuid.UUID) (UserMetrics, error) {
	events, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return UserMetrics{}, err
	}
	return Compute(events), nil
}

// Compute derives UserMetrics from a set of ledger events. Pure: same events,
// same result.
func Compute(events []entity.WorkoutEvent) UserMetrics {
	m := UserMetrics{
		MinutesByCategory: make(map[entity.WorkoutCategory]int),
	}

	for _, ev := range events {
		m.TotalCalories += ev.Calories
		m.MinutesByCategory[ev.Category] += ev.DurationMinutes
	}

	m.MaxStreakDays = maxStreakDays(events)

	return m
}

// maxStreakDays returns the length of the longest run of consecutive calendar
// dates on which the user logged anything. This is the maximum historical
// streak; whether a streak is currently alive is deliberately not computed.
func maxStreakDays(events []entity.WorkoutEvent) int {
	if len(events) == 0 {
		return 0
	}

	seen := make(map[time.Time]struct{}, len(events))
	for _, ev := range events {
		y, mo, d := ev.OccurredAt.Date()
		seen[time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)] = struct{}{}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	best := 0
	run := 0
	for i := range dates {
		if i > 0 && dates[i-1].AddDate(0, 0, -1).Equal(dates[i]) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}

	return best
}
