package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func eventOn(day int, category entity.WorkoutCategory, minutes, calories int) entity.WorkoutEvent {
	return entity.WorkoutEvent{
		UserID:          uuid.Nil,
		OccurredAt:      time.Date(2026, time.March, day, 18, 30, 0, 0, time.UTC),
		Category:        category,
		DurationMinutes: minutes,
		Calories:        calories,
	}
}

func TestComputeEmptyLedger(t *testing.T) {
	m := Compute(nil)

	require.Equal(t, 0, m.TotalCalories)
	require.Empty(t, m.MinutesByCategory)
	require.Equal(t, 0, m.MaxStreakDays)
}

func TestComputeTotalsAndCategoryMinutes(t *testing.T) {
	events := []entity.WorkoutEvent{
		eventOn(1, entity.CategoryRun, 30, 300),
		eventOn(2, entity.CategoryRun, 20, 200),
		eventOn(2, entity.CategoryYoga, 60, 150),
	}

	m := Compute(events)

	require.Equal(t, 650, m.TotalCalories)
	require.Equal(t, 50, m.MinutesByCategory[entity.CategoryRun])
	require.Equal(t, 60, m.MinutesByCategory[entity.CategoryYoga])
	// Categories with no events are absent, not zero
	_, ok := m.MinutesByCategory[entity.CategorySwim]
	require.False(t, ok)
}

func TestStreakSingleDate(t *testing.T) {
	m := Compute([]entity.WorkoutEvent{eventOn(10, entity.CategoryRun, 30, 300)})
	require.Equal(t, 1, m.MaxStreakDays)
}

func TestStreakMultipleEventsSameDayCountOnce(t *testing.T) {
	events := []entity.WorkoutEvent{
		eventOn(10, entity.CategoryRun, 30, 300),
		eventOn(10, entity.CategoryStrength, 45, 250),
		eventOn(11, entity.CategorySwim, 40, 400),
	}
	m := Compute(events)
	require.Equal(t, 2, m.MaxStreakDays)
}

func TestStreakLongestRunWins(t *testing.T) {
	// Dates {1,2,3,5,6,7,8}: the longest consecutive run is days 5-8.
	var events []entity.WorkoutEvent
	for _, day := range []int{1, 2, 3, 5, 6, 7, 8} {
		events = append(events, eventOn(day, entity.CategoryCycle, 25, 180))
	}

	m := Compute(events)
	require.Equal(t, 4, m.MaxStreakDays)
}

func TestStreakAcrossMonthBoundary(t *testing.T) {
	events := []entity.WorkoutEvent{
		{OccurredAt: time.Date(2026, time.February, 28, 7, 0, 0, 0, time.UTC), Category: entity.CategoryRun, DurationMinutes: 30, Calories: 280},
		{OccurredAt: time.Date(2026, time.March, 1, 7, 0, 0, 0, time.UTC), Category: entity.CategoryRun, DurationMinutes: 30, Calories: 280},
		{OccurredAt: time.Date(2026, time.March, 2, 7, 0, 0, 0, time.UTC), Category: entity.CategoryRun, DurationMinutes: 30, Calories: 280},
	}

	m := Compute(events)
	require.Equal(t, 3, m.MaxStreakDays)
}

func TestStreakIsolatedDates(t *testing.T) {
	var events []entity.WorkoutEvent
	for _, day := range []int{2, 9, 16, 23} {
		events = append(events, eventOn(day, entity.CategoryOther, 10, 50))
	}

	m := Compute(events)
	require.Equal(t, 1, m.MaxStreakDays)
}

type stubLedger struct {
	events []entity.WorkoutEvent
	err    error
}

func (s *stubLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.WorkoutEvent, error) {
	return s.events, s.err
}

func TestForUserReadsLedger(t *testing.T) {
	svc := NewMetricsService(&stubLedger{events: []entity.WorkoutEvent{
		eventOn(3, entity.CategoryStrength, 50, 400),
	}})

	m, err := svc.ForUser(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, 400, m.TotalCalories)
	require.Equal(t, 50, m.MinutesByCategory[entity.CategoryStrength])
}

func TestForUserPropagatesLedgerError(t *testing.T) {
	svc := NewMetricsService(&stubLedger{err: errors.New("db down")})

	_, err := svc.ForUser(context.Background(), uuid.New())
	require.Error(t, err)
}
