package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	notifRepo "github.com/fitlogapp/fitlog-backend/internal/modules/notification/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AchievementUnlockedEvent is emitted by the workout pipeline for each rule
// newly unlocked in one submission.
type AchievementUnlockedEvent struct {
	UserID   uuid.UUID
	Title    string
	AssetRef string
}

// RankDroppedEvent is emitted when a user's all-time rank worsened after
// someone else's submission.
type RankDroppedEvent struct {
	UserID  uuid.UUID
	OldRank int
	NewRank int
}

// UserDirectory resolves a user's email. A nil email means the user is not
// deliverable and dispatch is silently skipped.
type UserDirectory interface {
	GetEmail(ctx context.Context, userID uuid.UUID) (*string, error)
}

type NotificationService interface {
	// Dispatcher boundary: best effort, never returns an error to the caller.
	DispatchAchievementUnlocked(ctx context.Context, ev AchievementUnlockedEvent)
	DispatchRankDropped(ctx context.Context, ev RankDroppedEvent)

	// In-app feed
	GetNotifications(userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(id uuid.UUID) error
	MarkAllAsRead(userID uuid.UUID) error
	UnreadCount(userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	directory   UserDirectory
	channel     Channel
	redisClient *redis.Client
	now         func() time.Time
}

func NewNotificationService(repo notifRepo.NotificationRepository, directory UserDirectory, channel Channel, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		directory:   directory,
		channel:     channel,
		redisClient: redisClient,
		now:         time.Now,
	}
}

func (s *notificationService) DispatchAchievementUnlocked(ctx context.Context, ev AchievementUnlockedEvent) {
	message := fmt.Sprintf("🏅 Achievement unlocked: %s!", ev.Title)
	assetRef := ev.AssetRef
	s.createInApp(ctx, &entity.Notification{
		UserID:   ev.UserID,
		Type:     entity.NotificationAchievementUnlocked,
		Message:  message,
		AssetRef: &assetRef,
	})

	s.deliver(ctx, ev.UserID, entity.NotificationAchievementUnlocked,
		"You unlocked an achievement!",
		fmt.Sprintf("Congratulations — you just earned \"%s\". Keep it up!", ev.Title))
}

func (s *notificationService) DispatchRankDropped(ctx context.Context, ev RankDroppedEvent) {
	message := fmt.Sprintf("📉 You dropped from #%d to #%d on the leaderboard.", ev.OldRank, ev.NewRank)
	s.createInApp(ctx, &entity.Notification{
		UserID:  ev.UserID,
		Type:    entity.NotificationRankDropped,
		Message: message,
	})

	s.deliver(ctx, ev.UserID, entity.NotificationRankDropped,
		"Someone passed you on the leaderboard",
		fmt.Sprintf("You slipped from rank %d to rank %d. Time to log a workout!", ev.OldRank, ev.NewRank))
}

// createInApp stores the feed row and publishes it for the websocket stream.
// Failures are logged, never propagated.
func (s *notificationService) createInApp(ctx context.Context, notification *entity.Notification) {
	if err := s.repo.Create(notification); err != nil {
		log.Printf("Failed to create notification for user %s: %v", notification.UserID, err)
		return
	}

	if s.redisClient != nil {
		channel := fmt.Sprintf("user_notifications:%s", notification.UserID.String())
		if payload, err := json.Marshal(notification); err == nil {
			s.redisClient.Publish(ctx, channel, payload)
		}
	}
}

// deliver attempts one outbound send. No email on file means skip quietly; a
// refused send is logged and dropped, never retried.
func (s *notificationService) deliver(ctx context.Context, userID uuid.UUID, eventType, subject, body string) {
	if s.directory == nil || s.channel == nil {
		return
	}

	email, err := s.directory.GetEmail(ctx, userID)
	if err != nil {
		log.Printf("Failed to resolve email for user %s: %v", userID, err)
		return
	}
	if email == nil {
		return
	}

	if !s.channel.Send(ctx, *email, subject, body) {
		log.Printf("Delivery failed for user %s (%s), dropping", userID, eventType)
		return
	}

	if err := s.repo.AppendDeliveryLog(&entity.DeliveryLog{
		UserID:    userID,
		EventType: eventType,
		SentAt:    s.now(),
	}); err != nil {
		log.Printf("Failed to record delivery for user %s: %v", userID, err)
	}
}

func (s *notificationService) GetNotifications(userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(userID, limit, offset)
}

func (s *notificationService) MarkAsRead(id uuid.UUID) error {
	return s.repo.MarkAsRead(id)
}

func (s *notificationService) MarkAllAsRead(userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(userID)
}

func (s *notificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(userID)
}
