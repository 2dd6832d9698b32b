package achievement

import (
	"context"
	"time"

	achievementRepo "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/repository"
	metrics "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"
	"github.com/google/uuid"
)

// Unlocked is the payload for a rule newly unlocked in one evaluation. It
// feeds both the notification dispatcher and the synchronous response to the
// submitting client.
type Unlocked struct {
	RuleID   string `json:"rule_id"`
	Title    string `json:"title"`
	AssetRef string `json:"asset_ref"`
}

// RuleStatus is the dashboard view of one rule: definition plus unlock state.
type RuleStatus struct {
	RuleID   string `json:"rule_id"`
	Title    string `json:"title"`
	AssetRef string `json:"asset_ref"`
	Unlocked bool   `json:"unlocked"`
}

type AchievementService interface {
	// Evaluate runs every not-yet-unlocked rule against the given metrics and
	// persists the ones that pass. Returns only the unlocks this invocation
	// actually created: rules already unlocked are never reported again, and
	// unlocks are permanent even if later metrics stop satisfying the rule.
	Evaluate(ctx context.Context, userID uuid.UUID, m metrics.UserMetrics) ([]Unlocked, error)
	// ListForUser returns the full rule set with per-user unlock status.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]RuleStatus, error)
}

type achievementService struct {
	repo achievementRepo.UnlockRepository
	now  func() time.Time
}

func NewAchievementService(repo achievementRepo.UnlockRepository) AchievementService {
	return &achievementService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *achievementService) Evaluate(ctx context.Context, userID uuid.UUID, m metrics.UserMetrics) ([]Unlocked, error) {
	existing, err := s.repo.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	already := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		already[id] = struct{}{}
	}

	var unlocked []Unlocked
	for _, rule := range Rules {
		if _, ok := already[rule.ID]; ok {
			continue
		}
		if !rule.Predicate(m) {
			continue
		}

		// The storage layer owns the race: if a concurrent submission got
		// here first, inserted is false and we simply skip the rule.
		inserted, err := s.repo.TryUnlock(ctx, userID, rule.ID, s.now())
		if err != nil {
			return unlocked, err
		}
		if !inserted {
			continue
		}

		unlocked = append(unlocked, Unlocked{
			RuleID:   rule.ID,
			Title:    rule.Title,
			AssetRef: rule.AssetRef,
		})
	}

	return unlocked, nil
}

func (s *achievementService) ListForUser(ctx context.Context, userID uuid.UUID) ([]RuleStatus, error) {
	existing, err := s.repo.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	already := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		already[id] = struct{}{}
	}

	statuses := make([]RuleStatus, 0, len(Rules))
	for _, rule := range Rules {
		_, ok := already[rule.ID]
		statuses = append(statuses, RuleStatus{
			RuleID:   rule.ID,
			Title:    rule.Title,
			AssetRef: rule.AssetRef,
			Unlocked: ok,
		})
	}

	return statuses, nil
}
