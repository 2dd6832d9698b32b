package achievement

import (
	"context"
	"testing"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	metrics "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type unlockKey struct {
	userID uuid.UUID
	ruleID string
}

// stubUnlockStore mimics the storage-level uniqueness guarantee in memory.
type stubUnlockStore struct {
	rows     map[unlockKey]time.Time
	tryCalls []string
}

func newStubUnlockStore() *stubUnlockStore {
	return &stubUnlockStore{rows: make(map[unlockKey]time.Time)}
}

func (s *stubUnlockStore) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var ids []string
	for k := range s.rows {
		if k.userID == userID {
			ids = append(ids, k.ruleID)
		}
	}
	return ids, nil
}

func (s *stubUnlockStore) TryUnlock(ctx context.Context, userID uuid.UUID, ruleID string, at time.Time) (bool, error) {
	s.tryCalls = append(s.tryCalls, ruleID)
	key := unlockKey{userID: userID, ruleID: ruleID}
	if _, ok := s.rows[key]; ok {
		return false, nil
	}
	s.rows[key] = at
	return true, nil
}

func (s *stubUnlockStore) ListUnlockedRows(ctx context.Context, userID uuid.UUID) ([]entity.UnlockedAchievement, error) {
	var rows []entity.UnlockedAchievement
	for k, at := range s.rows {
		if k.userID == userID {
			rows = append(rows, entity.UnlockedAchievement{UserID: k.userID, RuleID: k.ruleID, UnlockedAt: at})
		}
	}
	return rows, nil
}

func (s *stubUnlockStore) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	rows, _ := s.ListUnlockedRows(ctx, userID)
	return int64(len(rows)), nil
}

func metricsWith(calories, streak int) metrics.UserMetrics {
	return metrics.UserMetrics{
		TotalCalories:     calories,
		MinutesByCategory: map[entity.WorkoutCategory]int{},
		MaxStreakDays:     streak,
	}
}

func TestEvaluateUnlocksSatisfiedRules(t *testing.T) {
	store := newStubUnlockStore()
	svc := NewAchievementService(store)
	userID := uuid.New()

	unlocked, err := svc.Evaluate(context.Background(), userID, metricsWith(1000, 3))
	require.NoError(t, err)

	var ids []string
	for _, u := range unlocked {
		ids = append(ids, u.RuleID)
	}
	require.Equal(t, []string{"streak_3", "cal_1000"}, ids)
}

func TestEvaluateExactThresholdBoundary(t *testing.T) {
	store := newStubUnlockStore()
	svc := NewAchievementService(store)
	userID := uuid.New()

	// Exactly 1000 calories unlocks cal_1000 but not cal_2000.
	unlocked, err := svc.Evaluate(context.Background(), userID, metricsWith(1000, 0))
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	require.Equal(t, "cal_1000", unlocked[0].RuleID)

	// A later submission pushing the total to 2000 unlocks cal_2000 only;
	// cal_1000 is not re-unlocked or re-reported.
	unlocked, err = svc.Evaluate(context.Background(), userID, metricsWith(2000, 0))
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	require.Equal(t, "cal_2000", unlocked[0].RuleID)
}

func TestEvaluateSkipsAlreadyUnlockedWithoutStoreCall(t *testing.T) {
	store := newStubUnlockStore()
	svc := NewAchievementService(store)
	userID := uuid.New()

	_, err := svc.Evaluate(context.Background(), userID, metricsWith(1500, 0))
	require.NoError(t, err)
	store.tryCalls = nil

	unlocked, err := svc.Evaluate(context.Background(), userID, metricsWith(1500, 0))
	require.NoError(t, err)
	require.Empty(t, unlocked)
	require.Empty(t, store.tryCalls)
}

func TestEvaluateLostRaceIsBenign(t *testing.T) {
	store := newStubUnlockStore()
	userID := uuid.New()

	// Simulate a concurrent submission that inserted the row between our
	// ListUnlocked and TryUnlock: the row exists but was not in the listing.
	raced := &racingStore{stubUnlockStore: store, hideFromList: "cal_1000"}
	store.rows[unlockKey{userID: userID, ruleID: "cal_1000"}] = time.Now()

	svc := NewAchievementService(raced)
	unlocked, err := svc.Evaluate(context.Background(), userID, metricsWith(1000, 0))
	require.NoError(t, err)
	require.Empty(t, unlocked)
}

type racingStore struct {
	*stubUnlockStore
	hideFromList string
}

func (s *racingStore) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]string, error) {
	ids, err := s.stubUnlockStore.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	filtered := ids[:0]
	for _, id := range ids {
		if id != s.hideFromList {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

func TestTryUnlockIdempotencyContract(t *testing.T) {
	store := newStubUnlockStore()
	userID := uuid.New()

	first, err := store.TryUnlock(context.Background(), userID, "streak_7", time.Now())
	require.NoError(t, err)
	require.True(t, first)

	second, err := store.TryUnlock(context.Background(), userID, "streak_7", time.Now())
	require.NoError(t, err)
	require.False(t, second)

	count, err := store.CountByUser(context.Background(), userID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestListForUserMarksUnlocked(t *testing.T) {
	store := newStubUnlockStore()
	svc := NewAchievementService(store)
	userID := uuid.New()

	_, err := svc.Evaluate(context.Background(), userID, metricsWith(1000, 0))
	require.NoError(t, err)

	statuses, err := svc.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, statuses, len(Rules))

	byID := make(map[string]bool)
	for _, st := range statuses {
		byID[st.RuleID] = st.Unlocked
	}
	require.True(t, byID["cal_1000"])
	require.False(t, byID["cal_2000"])
	require.False(t, byID["streak_3"])
}

func TestRulePredicatesThresholds(t *testing.T) {
	cases := []struct {
		ruleID string
		m      metrics.UserMetrics
		want   bool
	}{
		{"streak_3", metricsWith(0, 3), true},
		{"streak_3", metricsWith(0, 2), false},
		{"streak_30", metricsWith(0, 30), true},
		{"cal_5000", metricsWith(4999, 0), false},
		{"cal_5000", metricsWith(5000, 0), true},
		{"run_100", metrics.UserMetrics{MinutesByCategory: map[entity.WorkoutCategory]int{entity.CategoryRun: 100}}, true},
		{"run_100", metrics.UserMetrics{MinutesByCategory: map[entity.WorkoutCategory]int{entity.CategoryRun: 99}}, false},
		{"yoga_100", metrics.UserMetrics{MinutesByCategory: map[entity.WorkoutCategory]int{entity.CategoryYoga: 150}}, true},
	}

	for _, tc := range cases {
		rule, err := RuleByID(tc.ruleID)
		require.NoError(t, err)
		require.Equal(t, tc.want, rule.Predicate(tc.m), "rule %s with %+v", tc.ruleID, tc.m)
	}
}
