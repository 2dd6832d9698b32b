package service

import (
	"context"
	"testing"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	achievement "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/service"
	botDto "github.com/fitlogapp/fitlog-backend/internal/modules/bot/dto"
	leaderboardDto "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/dto"
	leaderboard "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/service"
	metrics "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"
	workoutDto "github.com/fitlogapp/fitlog-backend/internal/modules/workout/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memSessions struct {
	rows map[int64]*entity.BotSession
}

func newMemSessions() *memSessions { return &memSessions{rows: make(map[int64]*entity.BotSession)} }

func (s *memSessions) Get(ctx context.Context, chatID int64) (*entity.BotSession, error) {
	if row, ok := s.rows[chatID]; ok {
		copied := *row
		return &copied, nil
	}
	row := &entity.BotSession{ChatID: chatID, State: entity.BotStateIdle}
	s.rows[chatID] = row
	copied := *row
	return &copied, nil
}

func (s *memSessions) Save(ctx context.Context, session *entity.BotSession) error {
	copied := *session
	s.rows[session.ChatID] = &copied
	return nil
}

func (s *memSessions) Reset(ctx context.Context, chatID int64) error {
	row, ok := s.rows[chatID]
	if !ok {
		return nil
	}
	row.State = entity.BotStateIdle
	row.DraftCategory = nil
	row.DraftDuration = nil
	row.DraftOccurredAt = nil
	return nil
}

type stubUsers struct {
	byEmail map[string]*entity.User
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUsers) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUsers) FindByChatID(ctx context.Context, chatID int64) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUsers) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUsers) Create(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return nil
}
func (s *stubUsers) Update(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return nil
}
func (s *stubUsers) Delete(ctx context.Context, id uuid.UUID) error       { return nil }
func (s *stubUsers) ListAll(ctx context.Context) ([]entity.User, error)   { return nil, nil }
func (s *stubUsers) Count(ctx context.Context) (int64, error)             { return 0, nil }
func (s *stubUsers) GetEmail(ctx context.Context, userID uuid.UUID) (*string, error) {
	return nil, nil
}
func (s *stubUsers) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	return nil, nil
}
func (s *stubUsers) SetChatID(ctx context.Context, userID uuid.UUID, chatID int64) error {
	return nil
}

type stubWorkouts struct {
	requests []workoutDto.LogWorkoutRequest
	unlocked []achievement.Unlocked
}

func (s *stubWorkouts) LogWorkout(ctx context.Context, userID uuid.UUID, req workoutDto.LogWorkoutRequest) (*workoutDto.LogWorkoutResponse, error) {
	s.requests = append(s.requests, req)
	return &workoutDto.LogWorkoutResponse{
		Event:    entity.WorkoutEvent{UserID: userID},
		Unlocked: s.unlocked,
	}, nil
}

func (s *stubWorkouts) ListWorkouts(ctx context.Context, userID uuid.UUID, since *time.Time) ([]entity.WorkoutEvent, error) {
	return nil, nil
}

type stubMetrics struct {
	m metrics.UserMetrics
}

func (s *stubMetrics) ForUser(ctx context.Context, userID uuid.UUID) (metrics.UserMetrics, error) {
	return s.m, nil
}

type stubBoard struct {
	entries []leaderboardDto.LeaderboardEntry
}

func (s *stubBoard) GetLeaderboard(ctx context.Context, limit int) ([]leaderboardDto.LeaderboardEntry, error) {
	return s.entries, nil
}
func (s *stubBoard) AllTimeRanks(ctx context.Context) (leaderboard.RankRecord, error) {
	return nil, nil
}
func (s *stubBoard) AddCalories(ctx context.Context, userID uuid.UUID, calories int) error {
	return nil
}
func (s *stubBoard) CaptureSnapshot(ctx context.Context, date string) (bool, error) {
	return false, nil
}
func (s *stubBoard) SnapshotsForDate(ctx context.Context, date string) ([]leaderboardDto.SnapshotEntry, error) {
	return nil, nil
}

type stubBadges struct{}

func (stubBadges) Evaluate(ctx context.Context, userID uuid.UUID, m metrics.UserMetrics) ([]achievement.Unlocked, error) {
	return nil, nil
}
func (stubBadges) ListForUser(ctx context.Context, userID uuid.UUID) ([]achievement.RuleStatus, error) {
	return nil, nil
}

type recordingSender struct {
	messages []string
}

func (s *recordingSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	s.messages = append(s.messages, text)
	return nil
}

type botFixture struct {
	svc      BotService
	sessions *memSessions
	workouts *stubWorkouts
	sender   *recordingSender
	userID   uuid.UUID
	chatID   int64
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()

	userID := uuid.New()
	sessions := newMemSessions()
	workouts := &stubWorkouts{}
	sender := &recordingSender{}
	users := &stubUsers{byEmail: map[string]*entity.User{
		"jo@example.com": {ID: userID, Username: "jo", Email: "jo@example.com"},
	}}

	svc := NewBotService(sessions, users, workouts, &stubMetrics{}, &stubBoard{}, stubBadges{}, sender)

	return &botFixture{
		svc:      svc,
		sessions: sessions,
		workouts: workouts,
		sender:   sender,
		userID:   userID,
		chatID:   42,
	}
}

func (f *botFixture) send(t *testing.T, text string) {
	t.Helper()
	update := botDto.Update{
		Message: &botDto.Message{
			Chat: botDto.Chat{ID: f.chatID},
			Text: text,
		},
	}
	require.NoError(t, f.svc.HandleUpdate(context.Background(), update))
}

func (f *botFixture) state() entity.BotSessionState {
	return f.sessions.rows[f.chatID].State
}

func TestBotLogFlowTransitions(t *testing.T) {
	f := newBotFixture(t)

	f.send(t, "/link jo@example.com")
	require.Equal(t, entity.BotStateIdle, f.state())

	f.send(t, "/log")
	require.Equal(t, entity.BotStateAwaitingType, f.state())

	f.send(t, "run")
	require.Equal(t, entity.BotStateAwaitingDuration, f.state())
	require.Equal(t, entity.CategoryRun, *f.sessions.rows[f.chatID].DraftCategory)

	f.send(t, "45")
	require.Equal(t, entity.BotStateAwaitingDate, f.state())
	require.Equal(t, 45, *f.sessions.rows[f.chatID].DraftDuration)

	f.send(t, "2026-08-30")

	// Flow completed: workout submitted and session back to idle.
	require.Len(t, f.workouts.requests, 1)
	req := f.workouts.requests[0]
	require.Equal(t, "run", req.Category)
	require.Equal(t, 45, req.DurationMinutes)
	require.Equal(t, 45*burnRatePerMinute[entity.CategoryRun], req.Calories)
	require.Equal(t, entity.BotStateIdle, f.state())
	require.Nil(t, f.sessions.rows[f.chatID].DraftCategory)
}

func TestBotInvalidTypeStaysInState(t *testing.T) {
	f := newBotFixture(t)

	f.send(t, "/link jo@example.com")
	f.send(t, "/log")
	f.send(t, "parkour")

	require.Equal(t, entity.BotStateAwaitingType, f.state())
	require.Empty(t, f.workouts.requests)
}

func TestBotInvalidDurationStaysInState(t *testing.T) {
	f := newBotFixture(t)

	f.send(t, "/link jo@example.com")
	f.send(t, "/log")
	f.send(t, "swim")
	f.send(t, "zero")
	require.Equal(t, entity.BotStateAwaitingDuration, f.state())

	f.send(t, "-5")
	require.Equal(t, entity.BotStateAwaitingDuration, f.state())
}

func TestBotCancelAbortsFlow(t *testing.T) {
	f := newBotFixture(t)

	f.send(t, "/link jo@example.com")
	f.send(t, "/log")
	f.send(t, "yoga")
	require.Equal(t, entity.BotStateAwaitingDuration, f.state())

	f.send(t, "/cancel")
	require.Equal(t, entity.BotStateIdle, f.state())
	require.Nil(t, f.sessions.rows[f.chatID].DraftCategory)
	require.Empty(t, f.workouts.requests)
}

func TestBotLogRequiresLinkedAccount(t *testing.T) {
	f := newBotFixture(t)

	f.send(t, "/log")

	require.Equal(t, entity.BotStateIdle, f.state())
	require.NotEmpty(t, f.sender.messages)
	require.Contains(t, f.sender.messages[len(f.sender.messages)-1], "/link")
}

func TestBotUnlockAnnouncedInReply(t *testing.T) {
	f := newBotFixture(t)
	f.workouts.unlocked = []achievement.Unlocked{{RuleID: "cal_1000", Title: "Kilo Burner"}}

	f.send(t, "/link jo@example.com")
	f.send(t, "/log")
	f.send(t, "cycle")
	f.send(t, "60")
	f.send(t, "today")

	last := f.sender.messages[len(f.sender.messages)-1]
	require.Contains(t, last, "Kilo Burner")
}

func TestBotLinkUnknownEmail(t *testing.T) {
	f := newBotFixture(t)

	f.send(t, "/link nobody@example.com")

	require.Nil(t, f.sessions.rows[f.chatID].UserID)
	require.Contains(t, f.sender.messages[len(f.sender.messages)-1], "No account")
}
