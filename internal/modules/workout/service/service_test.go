package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	achievement "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/service"
	leaderboardRepo "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/repository"
	leaderboard "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/service"
	metrics "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"
	notifService "github.com/fitlogapp/fitlog-backend/internal/modules/notification/service"
	workoutDto "github.com/fitlogapp/fitlog-backend/internal/modules/workout/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// In-memory ledger shared by the repository and metrics stubs.
type memLedger struct {
	events    []entity.WorkoutEvent
	createErr error
}

func (m *memLedger) Create(ctx context.Context, event *entity.WorkoutEvent) error {
	if m.createErr != nil {
		return m.createErr
	}
	event.ID = uuid.New()
	m.events = append(m.events, *event)
	return nil
}

func (m *memLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.WorkoutEvent, error) {
	var out []entity.WorkoutEvent
	for _, ev := range m.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memLedger) ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.WorkoutEvent, error) {
	var out []entity.WorkoutEvent
	for _, ev := range m.events {
		if ev.UserID == userID && !ev.OccurredAt.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memLedger) CountAll(ctx context.Context) (int64, error)    { return int64(len(m.events)), nil }
func (m *memLedger) SumCalories(ctx context.Context) (int64, error) { return 0, nil }

type memUnlockStore struct {
	rows map[string]struct{}
	err  error
}

func newMemUnlockStore() *memUnlockStore { return &memUnlockStore{rows: make(map[string]struct{})} }

func (s *memUnlockStore) key(userID uuid.UUID, ruleID string) string {
	return userID.String() + "/" + ruleID
}

func (s *memUnlockStore) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var ids []string
	prefix := userID.String() + "/"
	for k := range s.rows {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			ids = append(ids, k[len(prefix):])
		}
	}
	return ids, nil
}

func (s *memUnlockStore) TryUnlock(ctx context.Context, userID uuid.UUID, ruleID string, at time.Time) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	k := s.key(userID, ruleID)
	if _, ok := s.rows[k]; ok {
		return false, nil
	}
	s.rows[k] = struct{}{}
	return true, nil
}

func (s *memUnlockStore) ListUnlockedRows(ctx context.Context, userID uuid.UUID) ([]entity.UnlockedAchievement, error) {
	return nil, nil
}

func (s *memUnlockStore) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type memBoardRepo struct {
	totals map[uuid.UUID]int
}

func newMemBoardRepo() *memBoardRepo { return &memBoardRepo{totals: make(map[uuid.UUID]int)} }

func (r *memBoardRepo) WindowMinutes(ctx context.Context, since time.Time) ([]leaderboardRepo.MetricRow, error) {
	return nil, nil
}

func (r *memBoardRepo) AllTimeTotals(ctx context.Context) ([]leaderboardRepo.MetricRow, error) {
	var rows []leaderboardRepo.MetricRow
	for id, v := range r.totals {
		rows = append(rows, leaderboardRepo.MetricRow{UserID: id, Value: v})
	}
	return rows, nil
}

func (r *memBoardRepo) IncrementTotals(ctx context.Context, userID uuid.UUID, calories int) error {
	r.totals[userID] += calories
	return nil
}

func (r *memBoardRepo) HasSnapshot(ctx context.Context, date string) (bool, error) { return false, nil }
func (r *memBoardRepo) WriteSnapshot(ctx context.Context, rows []entity.LeaderboardSnapshot) error {
	return nil
}
func (r *memBoardRepo) SnapshotsByDate(ctx context.Context, date string) ([]entity.LeaderboardSnapshot, error) {
	return nil, nil
}

type noUsers struct{}

func (noUsers) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	return nil, nil
}

type recordingNotifier struct {
	unlocks []notifService.AchievementUnlockedEvent
	drops   []notifService.RankDroppedEvent
}

func (n *recordingNotifier) DispatchAchievementUnlocked(ctx context.Context, ev notifService.AchievementUnlockedEvent) {
	n.unlocks = append(n.unlocks, ev)
}

func (n *recordingNotifier) DispatchRankDropped(ctx context.Context, ev notifService.RankDroppedEvent) {
	n.drops = append(n.drops, ev)
}

func (n *recordingNotifier) GetNotifications(userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return nil, nil
}
func (n *recordingNotifier) MarkAsRead(id uuid.UUID) error        { return nil }
func (n *recordingNotifier) MarkAllAsRead(userID uuid.UUID) error { return nil }
func (n *recordingNotifier) UnreadCount(userID uuid.UUID) (int64, error) {
	return 0, nil
}

type pipeline struct {
	svc      WorkoutService
	ledger   *memLedger
	unlocks  *memUnlockStore
	board    *memBoardRepo
	notifier *recordingNotifier
}

func newPipeline() *pipeline {
	ledger := &memLedger{}
	unlocks := newMemUnlockStore()
	board := newMemBoardRepo()
	notifier := &recordingNotifier{}

	metricsSvc := metrics.NewMetricsService(ledger)
	achievementSvc := achievement.NewAchievementService(unlocks)
	boardSvc := leaderboard.NewLeaderboardService(board, noUsers{}, nil, 30, time.Minute)

	return &pipeline{
		svc:      NewWorkoutService(ledger, metricsSvc, achievementSvc, boardSvc, notifier),
		ledger:   ledger,
		unlocks:  unlocks,
		board:    board,
		notifier: notifier,
	}
}

func logReq(category string, minutes, calories int) workoutDto.LogWorkoutRequest {
	return workoutDto.LogWorkoutRequest{
		Category:        category,
		DurationMinutes: minutes,
		Calories:        calories,
		OccurredAt:      time.Date(2026, time.August, 20, 7, 0, 0, 0, time.UTC),
	}
}

func TestLogWorkoutAppendsAndUnlocks(t *testing.T) {
	p := newPipeline()
	userID := uuid.New()

	resp, err := p.svc.LogWorkout(context.Background(), userID, logReq("run", 120, 1000))
	require.NoError(t, err)
	require.Len(t, p.ledger.events, 1)

	var ids []string
	for _, u := range resp.Unlocked {
		ids = append(ids, u.RuleID)
	}
	// 1000 calories exactly reaches cal_1000; 120 run minutes reach run_100;
	// a single event-date makes streak 1, so no streak rule fires.
	require.Equal(t, []string{"cal_1000", "run_100"}, ids)
	require.Len(t, p.notifier.unlocks, 2)
}

func TestLogWorkoutSecondThresholdNotRenotified(t *testing.T) {
	p := newPipeline()
	userID := uuid.New()

	_, err := p.svc.LogWorkout(context.Background(), userID, logReq("other", 10, 1000))
	require.NoError(t, err)
	p.notifier.unlocks = nil

	resp, err := p.svc.LogWorkout(context.Background(), userID, logReq("other", 10, 1000))
	require.NoError(t, err)

	require.Len(t, resp.Unlocked, 1)
	require.Equal(t, "cal_2000", resp.Unlocked[0].RuleID)
	require.Len(t, p.notifier.unlocks, 1)
	require.Equal(t, "Double Kilo", p.notifier.unlocks[0].Title)
}

func TestLogWorkoutRejectsInvalidInput(t *testing.T) {
	p := newPipeline()

	_, err := p.svc.LogWorkout(context.Background(), uuid.New(), logReq("parkour", 30, 100))
	require.Error(t, err)

	_, err = p.svc.LogWorkout(context.Background(), uuid.New(), logReq("run", 0, 100))
	require.Error(t, err)

	require.Empty(t, p.ledger.events)
}

func TestLogWorkoutFailsOnlyOnLedgerError(t *testing.T) {
	p := newPipeline()
	p.ledger.createErr = errors.New("disk full")

	_, err := p.svc.LogWorkout(context.Background(), uuid.New(), logReq("run", 30, 100))
	require.Error(t, err)
}

func TestLogWorkoutSucceedsWhenAchievementCheckFails(t *testing.T) {
	p := newPipeline()
	p.unlocks.err = errors.New("unlock store down")

	resp, err := p.svc.LogWorkout(context.Background(), uuid.New(), logReq("run", 30, 1500))
	require.NoError(t, err)
	require.Len(t, p.ledger.events, 1)
	require.Empty(t, resp.Unlocked)
	require.Empty(t, p.notifier.unlocks)
}

func TestLogWorkoutNotifiesOvertakenUser(t *testing.T) {
	p := newPipeline()
	userA := uuid.New()
	userB := uuid.New()

	_, err := p.svc.LogWorkout(context.Background(), userA, logReq("run", 30, 500))
	require.NoError(t, err)
	_, err = p.svc.LogWorkout(context.Background(), userB, logReq("run", 30, 300))
	require.NoError(t, err)
	require.Empty(t, p.notifier.drops)

	// B passes A: A gets a rank-drop notification, B does not.
	_, err = p.svc.LogWorkout(context.Background(), userB, logReq("run", 30, 400))
	require.NoError(t, err)

	require.Len(t, p.notifier.drops, 1)
	require.Equal(t, userA, p.notifier.drops[0].UserID)
	require.Equal(t, 1, p.notifier.drops[0].OldRank)
	require.Equal(t, 2, p.notifier.drops[0].NewRank)
}

func TestLogWorkoutClampsNegativeCalories(t *testing.T) {
	p := newPipeline()
	userID := uuid.New()

	req := logReq("yoga", 45, 0)
	req.Calories = -50

	resp, err := p.svc.LogWorkout(context.Background(), userID, req)
	require.NoError(t, err)
	require.Equal(t, 0, resp.Event.Calories)
}
