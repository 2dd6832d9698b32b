package service

import (
	"sort"

	leaderboardRepo "github.com/fitlogapp/fitlog-backend/internal/modules/leaderboard/repository"
	"github.com/google/uuid"
)

// RankRecord maps user ID to current 1-based rank. Ephemeral, always
// recomputed, never stored.
type RankRecord map[uuid.UUID]int

// RankDrop marks a user who moved to a worse position between two rankings.
type RankDrop struct {
	UserID  uuid.UUID
	OldRank int
	NewRank int
}

// Rank orders metric rows into a total order: descending by value, ties
// broken by ascending user ID so equal totals always rank the same way.
// Returns the sorted rows and the rank record.
func Rank(rows []leaderboardRepo.MetricRow) ([]leaderboardRepo.MetricRow, RankRecord) {
	sorted := make([]leaderboardRepo.MetricRow, len(rows))
	copy(sorted, rows)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].UserID.String() < sorted[j].UserID.String()
	})

	record := make(RankRecord, len(sorted))
	for i, row := range sorted {
		record[row.UserID] = i + 1
	}

	return sorted, record
}

// RankDrops compares two rank records and returns every user who is present
// in both and now holds a numerically larger (worse) rank. Improved or equal
// ranks produce nothing; users missing from the before map are first-time
// entrants and are skipped.
func RankDrops(before, after RankRecord) []RankDrop {
	var drops []RankDrop
	for userID, newRank := range after {
		oldRank, ok := before[userID]
		if !ok {
			continue
		}
		if newRank > oldRank {
			drops = append(drops, RankDrop{
				UserID:  userID,
				OldRank: oldRank,
				NewRank: newRank,
			})
		}
	}

	sort.Slice(drops, func(i, j int) bool {
		return drops[i].UserID.String() < drops[j].UserID.String()
	})

	return drops
}
