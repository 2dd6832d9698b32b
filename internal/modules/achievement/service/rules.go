package achievement

import (
	"fmt"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	metrics "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"
)

// Rule is a single achievement definition. Predicates are pure functions of
// an explicit UserMetrics value so each rule can be tested in isolation.
type Rule struct {
	ID        string
	Title     string
	AssetRef  string
	Predicate func(metrics.UserMetrics) bool
}

func streakAtLeast(days int) func(metrics.UserMetrics) bool {
	return func(m metrics.UserMetrics) bool {
		return m.MaxStreakDays >= days
	}
}

func caloriesAtLeast(total int) func(metrics.UserMetrics) bool {
	return func(m metrics.UserMetrics) bool {
		return m.TotalCalories >= total
	}
}

func categoryMinutesAtLeast(category entity.WorkoutCategory, minutes int) func(metrics.UserMetrics) bool {
	return func(m metrics.UserMetrics) bool {
		return m.MinutesByCategory[category] >= minutes
	}
}

// Rules is the shipped rule set, in display order. Evaluation is idempotent
// per rule, so the order only affects notification order, not correctness.
var Rules = []Rule{
	{ID: "streak_3", Title: "On a Roll", AssetRef: "badges/streak_3.png", Predicate: streakAtLeast(3)},
	{ID: "streak_7", Title: "Full Week", AssetRef: "badges/streak_7.png", Predicate: streakAtLeast(7)},
	{ID: "streak_30", Title: "Iron Month", AssetRef: "badges/streak_30.png", Predicate: streakAtLeast(30)},

	{ID: "cal_1000", Title: "Kilo Burner", AssetRef: "badges/cal_1000.png", Predicate: caloriesAtLeast(1000)},
	{ID: "cal_2000", Title: "Double Kilo", AssetRef: "badges/cal_2000.png", Predicate: caloriesAtLeast(2000)},
	{ID: "cal_3000", Title: "Furnace", AssetRef: "badges/cal_3000.png", Predicate: caloriesAtLeast(3000)},
	{ID: "cal_5000", Title: "Inferno", AssetRef: "badges/cal_5000.png", Predicate: caloriesAtLeast(5000)},

	{ID: "run_100", Title: "Road Runner", AssetRef: "badges/run_100.png", Predicate: categoryMinutesAtLeast(entity.CategoryRun, 100)},
	{ID: "strength_100", Title: "Iron Pumper", AssetRef: "badges/strength_100.png", Predicate: categoryMinutesAtLeast(entity.CategoryStrength, 100)},
	{ID: "cycle_100", Title: "Century Rider", AssetRef: "badges/cycle_100.png", Predicate: categoryMinutesAtLeast(entity.CategoryCycle, 100)},
	{ID: "swim_100", Title: "Pool Shark", AssetRef: "badges/swim_100.png", Predicate: categoryMinutesAtLeast(entity.CategorySwim, 100)},
	{ID: "yoga_100", Title: "Zen Master", AssetRef: "badges/yoga_100.png", Predicate: categoryMinutesAtLeast(entity.CategoryYoga, 100)},
}

// RuleByID looks up a rule in the shipped set.
func RuleByID(id string) (Rule, error) {
	for _, r := range Rules {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("unknown achievement rule: %s", id)
}
