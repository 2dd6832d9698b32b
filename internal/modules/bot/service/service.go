package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	achievement "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/service"
	botDto "github.com/fitlogapp/fitlog-backend/internal/modules/bot/dto"
	botRepo "github.com/fitlogapp/fitlog-backend/internal/modules/bot/repository"
	leaderboard "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/service"
	metrics "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"
	userRepo "github.com/fitlogapp/fitlog-backend/internal/modules/user/repository"
	workoutDto "github.com/fitlogapp/fitlog-backend/internal/modules/workout/dto"
	workout "github.com/fitlogapp/fitlog-backend/internal/modules/workout/service"
	"gorm.io/gorm"
)

// Rough kcal-per-minute burn rates used when a workout arrives through chat,
// where asking for calories would make the flow tedious.
var burnRatePerMinute = map[entity.WorkoutCategory]int{
	entity.CategoryRun:      11,
	entity.CategoryStrength: 6,
	entity.CategoryCycle:    8,
	entity.CategorySwim:     10,
	entity.CategoryYoga:     4,
	entity.CategoryOther:    5,
}

type BotService interface {
	HandleUpdate(ctx context.Context, update botDto.Update) error
}

type botService struct {
	sessions botRepo.SessionRepository
	users    userRepo.UserRepository
	workouts workout.WorkoutService
	metrics  metrics.MetricsService
	board    leaderboard.LeaderboardService
	badges   achievement.AchievementService
	sender   Sender
	now      func() time.Time
}

func NewBotService(
	sessions botRepo.SessionRepository,
	users userRepo.UserRepository,
	workouts workout.WorkoutService,
	metricsService metrics.MetricsService,
	board leaderboard.LeaderboardService,
	badges achievement.AchievementService,
	sender Sender,
) BotService {
	return &botService{
		sessions: sessions,
		users:    users,
		workouts: workouts,
		metrics:  metricsService,
		board:    board,
		badges:   badges,
		sender:   sender,
		now:      time.Now,
	}
}

func (s *botService) HandleUpdate(ctx context.Context, update botDto.Update) error {
	if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
		return nil
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	session, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		return err
	}

	if strings.HasPrefix(text, "/") {
		return s.handleCommand(ctx, session, text)
	}
	return s.handleConversation(ctx, session, text)
}

func (s *botService) handleCommand(ctx context.Context, session *entity.BotSession, text string) error {
	parts := strings.Fields(text)
	command := strings.ToLower(parts[0])

	// Any command aborts a flow in progress.
	if session.State != entity.BotStateIdle {
		if err := s.sessions.Reset(ctx, session.ChatID); err != nil {
			return err
		}
		session.State = entity.BotStateIdle
	}

	switch command {
	case "/start":
		return s.reply(ctx, session.ChatID,
			"Welcome to FitLog! 💪 Link your account with /link <email>, then use /log to record a workout. Other commands: /stats, /top, /achievements, /cancel.")

	case "/link":
		if len(parts) < 2 {
			return s.reply(ctx, session.ChatID, "Usage: /link <email>")
		}
		return s.handleLink(ctx, session, parts[1])

	case "/log":
		if session.UserID == nil {
			return s.reply(ctx, session.ChatID, "Link your account first: /link <email>")
		}
		session.State = entity.BotStateAwaitingType
		if err := s.sessions.Save(ctx, session); err != nil {
			return err
		}
		return s.reply(ctx, session.ChatID,
			fmt.Sprintf("What kind of workout? (%s)", strings.Join(categoryNames(), ", ")))

	case "/stats":
		return s.handleStats(ctx, session)

	case "/top":
		return s.handleTop(ctx, session)

	case "/achievements":
		return s.handleAchievements(ctx, session)

	case "/cancel":
		return s.reply(ctx, session.ChatID, "Okay, nothing logged.")

	default:
		return s.reply(ctx, session.ChatID, "Unknown command. Try /log, /stats, /top, /achievements or /cancel.")
	}
}

func (s *botService) handleLink(ctx context.Context, session *entity.BotSession, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.reply(ctx, session.ChatID, "No account found for that email.")
		}
		return err
	}

	if user.ChatID != nil && *user.ChatID != session.ChatID {
		return s.reply(ctx, session.ChatID, "That account is already linked to another chat.")
	}

	if err := s.users.SetChatID(ctx, user.ID, session.ChatID); err != nil {
		return err
	}

	session.UserID = &user.ID
	if err := s.sessions.Save(ctx, session); err != nil {
		return err
	}

	return s.reply(ctx, session.ChatID, fmt.Sprintf("Linked to %s. You can now /log workouts here! 🎉", user.Username))
}

func (s *botService) handleConversation(ctx context.Context, session *entity.BotSession, text string) error {
	switch session.State {
	case entity.BotStateAwaitingType:
		category := entity.WorkoutCategory(strings.ToLower(text))
		if !category.Valid() {
			return s.reply(ctx, session.ChatID,
				fmt.Sprintf("I don't know that one. Pick one of: %s", strings.Join(categoryNames(), ", ")))
		}
		session.DraftCategory = &category
		session.State = entity.BotStateAwaitingDuration
		if err := s.sessions.Save(ctx, session); err != nil {
			return err
		}
		return s.reply(ctx, session.ChatID, "How many minutes?")

	case entity.BotStateAwaitingDuration:
		minutes, err := strconv.Atoi(text)
		if err != nil || minutes <= 0 {
			return s.reply(ctx, session.ChatID, "Please send the duration as a positive number of minutes.")
		}
		session.DraftDuration = &minutes
		session.State = entity.BotStateAwaitingDate
		if err := s.sessions.Save(ctx, session); err != nil {
			return err
		}
		return s.reply(ctx, session.ChatID, "When was it? Send a date like 2026-08-30, or \"today\".")

	case entity.BotStateAwaitingDate:
		occurredAt, err := s.parseDate(text)
		if err != nil {
			return s.reply(ctx, session.ChatID, "I couldn't read that date. Use YYYY-MM-DD or \"today\".")
		}
		session.DraftOccurredAt = &occurredAt
		session.State = entity.BotStateComplete
		if err := s.sessions.Save(ctx, session); err != nil {
			return err
		}
		return s.completeLog(ctx, session)

	default:
		return s.reply(ctx, session.ChatID, "Use /log to record a workout, or /start for help.")
	}
}

func (s *botService) completeLog(ctx context.Context, session *entity.BotSession) error {
	if session.UserID == nil || session.DraftCategory == nil || session.DraftDuration == nil || session.DraftOccurredAt == nil {
		if err := s.sessions.Reset(ctx, session.ChatID); err != nil {
			return err
		}
		return s.reply(ctx, session.ChatID, "Something went wrong with that flow. Start over with /log.")
	}

	req := workoutDto.LogWorkoutRequest{
		Category:        string(*session.DraftCategory),
		DurationMinutes: *session.DraftDuration,
		Calories:        burnRatePerMinute[*session.DraftCategory] * *session.DraftDuration,
		OccurredAt:      *session.DraftOccurredAt,
	}

	resp, err := s.workouts.LogWorkout(ctx, *session.UserID, req)
	if err != nil {
		if resetErr := s.sessions.Reset(ctx, session.ChatID); resetErr != nil {
			log.Printf("Failed to reset bot session for chat %d: %v", session.ChatID, resetErr)
		}
		return s.reply(ctx, session.ChatID, "Couldn't save that workout, sorry. Try again later.")
	}

	if err := s.sessions.Reset(ctx, session.ChatID); err != nil {
		return err
	}

	msg := fmt.Sprintf("Logged %d min of %s (~%d kcal). 💪", req.DurationMinutes, req.Category, req.Calories)
	for _, unlocked := range resp.Unlocked {
		msg += fmt.Sprintf("\n🏆 Achievement unlocked: %s!", unlocked.Title)
	}
	return s.reply(ctx, session.ChatID, msg)
}

func (s *botService) handleStats(ctx context.Context, session *entity.BotSession) error {
	if session.UserID == nil {
		return s.reply(ctx, session.ChatID, "Link your account first: /link <email>")
	}

	m, err := s.metrics.ForUser(ctx, *session.UserID)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Your stats:\n🔥 %d kcal total\n📅 best streak: %d days", m.TotalCalories, m.MaxStreakDays)
	for _, category := range entity.AllCategories {
		if minutes := m.MinutesByCategory[category]; minutes > 0 {
			fmt.Fprintf(&sb, "\n• %s: %d min", category, minutes)
		}
	}
	return s.reply(ctx, session.ChatID, sb.String())
}

func (s *botService) handleTop(ctx context.Context, session *entity.BotSession) error {
	entries, err := s.board.GetLeaderboard(ctx, 10)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return s.reply(ctx, session.ChatID, "The leaderboard is empty. Be the first to /log a workout!")
	}

	var sb strings.Builder
	sb.WriteString("🏅 Last 30 days:\n")
	for _, entry := range entries {
		fmt.Fprintf(&sb, "%d. %s — %d min\n", entry.Position, entry.Username, entry.Minutes)
	}
	return s.reply(ctx, session.ChatID, strings.TrimRight(sb.String(), "\n"))
}

func (s *botService) handleAchievements(ctx context.Context, session *entity.BotSession) error {
	if session.UserID == nil {
		return s.reply(ctx, session.ChatID, "Link your account first: /link <email>")
	}

	statuses, err := s.badges.ListForUser(ctx, *session.UserID)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("Your achievements:\n")
	for _, status := range statuses {
		mark := "🔒"
		if status.Unlocked {
			mark = "🏆"
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, status.Title)
	}
	return s.reply(ctx, session.ChatID, strings.TrimRight(sb.String(), "\n"))
}

func (s *botService) parseDate(text string) (time.Time, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	switch text {
	case "today":
		return s.now(), nil
	case "yesterday":
		return s.now().AddDate(0, 0, -1), nil
	}
	return time.Parse("2006-01-02", text)
}

func (s *botService) reply(ctx context.Context, chatID int64, text string) error {
	if err := s.sender.SendMessage(ctx, chatID, text); err != nil {
		log.Printf("Failed to send bot reply to chat %d: %v", chatID, err)
	}
	return nil
}

func categoryNames() []string {
	names := make([]string, 0, len(entity.AllCategories))
	for _, category := range entity.AllCategories {
		names = append(names, string(category))
	}
	return names
}
