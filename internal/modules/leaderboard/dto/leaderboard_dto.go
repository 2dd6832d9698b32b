package dto

import "github.com/google/uuid"

// LeaderboardEntry is a single row of the user-facing leaderboard, ranked by
// minutes in the trailing window. Position is 1-based.
type LeaderboardEntry struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Position  int       `json:"position"`
	Minutes   int       `json:"minutes"`
}

// SnapshotEntry is one row of a historical ranking capture.
type SnapshotEntry struct {
	UserID      uuid.UUID `json:"user_id"`
	Rank        int       `json:"rank"`
	MetricValue int       `json:"metric_value"`
}
