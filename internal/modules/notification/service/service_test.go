package service

import (
	"context"
	"testing"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubNotifRepo struct {
	notifications []entity.Notification
	deliveries    []entity.DeliveryLog
}

func (s *stubNotifRepo) Create(n *entity.Notification) error {
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *stubNotifRepo) GetByUserID(userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.notifications, nil
}

func (s *stubNotifRepo) MarkAsRead(id uuid.UUID) error         { return nil }
func (s *stubNotifRepo) MarkAllAsRead(userID uuid.UUID) error  { return nil }
func (s *stubNotifRepo) CountUnread(userID uuid.UUID) (int64, error) {
	return int64(len(s.notifications)), nil
}

func (s *stubNotifRepo) AppendDeliveryLog(l *entity.DeliveryLog) error {
	s.deliveries = append(s.deliveries, *l)
	return nil
}

type stubDirectory struct {
	emails map[uuid.UUID]string
}

func (s *stubDirectory) GetEmail(ctx context.Context, userID uuid.UUID) (*string, error) {
	if email, ok := s.emails[userID]; ok {
		return &email, nil
	}
	return nil, nil
}

type stubChannel struct {
	accept bool
	sent   []string
}

func (s *stubChannel) Send(ctx context.Context, destination, subject, body string) bool {
	s.sent = append(s.sent, destination)
	return s.accept
}

func TestDispatchRecordsAuditOnSuccess(t *testing.T) {
	userID := uuid.New()
	repo := &stubNotifRepo{}
	channel := &stubChannel{accept: true}
	svc := NewNotificationService(repo, &stubDirectory{emails: map[uuid.UUID]string{userID: "ana@example.com"}}, channel, nil)

	svc.DispatchAchievementUnlocked(context.Background(), AchievementUnlockedEvent{
		UserID:   userID,
		Title:    "Kilo Burner",
		AssetRef: "badges/cal_1000.png",
	})

	require.Equal(t, []string{"ana@example.com"}, channel.sent)
	require.Len(t, repo.deliveries, 1)
	require.Equal(t, entity.NotificationAchievementUnlocked, repo.deliveries[0].EventType)
	require.Equal(t, userID, repo.deliveries[0].UserID)

	// In-app feed row is always written, regardless of delivery.
	require.Len(t, repo.notifications, 1)
	require.Equal(t, entity.NotificationAchievementUnlocked, repo.notifications[0].Type)
}

func TestDispatchSkipsUsersWithoutEmail(t *testing.T) {
	repo := &stubNotifRepo{}
	channel := &stubChannel{accept: true}
	svc := NewNotificationService(repo, &stubDirectory{}, channel, nil)

	svc.DispatchRankDropped(context.Background(), RankDroppedEvent{
		UserID:  uuid.New(),
		OldRank: 1,
		NewRank: 2,
	})

	require.Empty(t, channel.sent)
	require.Empty(t, repo.deliveries)
	// The in-app row still exists; only outbound delivery was skipped.
	require.Len(t, repo.notifications, 1)
}

func TestDispatchDropsFailedDeliveryWithoutAudit(t *testing.T) {
	userID := uuid.New()
	repo := &stubNotifRepo{}
	channel := &stubChannel{accept: false}
	svc := NewNotificationService(repo, &stubDirectory{emails: map[uuid.UUID]string{userID: "ben@example.com"}}, channel, nil)

	svc.DispatchRankDropped(context.Background(), RankDroppedEvent{
		UserID:  userID,
		OldRank: 2,
		NewRank: 5,
	})

	require.Len(t, channel.sent, 1)
	require.Empty(t, repo.deliveries)
}
