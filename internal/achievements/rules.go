package achievements

import (
	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/models"
)

// Input is everything a rule may inspect
type Input struct {
	Stats      models.UserStats
	Habits     []models.Habit
	Definition models.AchievementDefinition
}

// Rule decides whether an achievement is earned. Value reports the metric the
// rule compares, which is stored as the unlock's progress.
type Rule struct {
	Met   func(Input) bool
	Value func(Input) float64
}

func bestStreak(in Input) float64 { return float64(in.Stats.BestStreak) }

func totalCompletions(in Input) float64 { return float64(in.Stats.TotalCompletions) }

func habitCount(in Input) float64 { return float64(len(in.Habits)) }

func perfectDays(in Input) float64 { return float64(in.Stats.PerfectDays) }

// atLeastRequirement compares value against the definition's requirement
func atLeastRequirement(value func(Input) float64) Rule {
	return Rule{
		Met:   func(in Input) bool { return value(in) >= float64(in.Definition.Requirement) },
		Value: value,
	}
}

// atLeast compares value against a fixed threshold
func atLeast(value func(Input) float64, threshold int) Rule {
	return Rule{
		Met:   func(in Input) bool { return value(in) >= float64(threshold) },
		Value: value,
	}
}

// never is used for achievements whose data is not tracked yet
var never = Rule{
	Met:   func(Input) bool { return false },
	Value: func(Input) float64 { return 0 },
}

var varietyRule = Rule{
	Met: func(in Input) bool {
		return habitTypeCount(in.Habits) == len(constants.HabitTypes)
	},
	Value: func(in Input) float64 { return float64(habitTypeCount(in.Habits)) },
}

var weekendRule = Rule{
	Met: func(in Input) bool { return in.Stats.HasWeekendCompletion },
	Value: func(in Input) float64 {
		if in.Stats.HasWeekendCompletion {
			return 1
		}
		return 0
	},
}

func habitTypeCount(habits []models.Habit) int {
	seen := make(map[constants.HabitType]struct{}, len(constants.HabitTypes))
	for _, h := range habits {
		for _, t := range constants.HabitTypes {
			if h.Type == t {
				seen[t] = struct{}{}
			}
		}
	}
	return len(seen)
}

// rules maps every catalog id to its predicate. Ids missing from this table
// evaluate false.
var rules = map[string]Rule{
	"first_completion": atLeast(totalCompletions, 1),

	"streak_3":   atLeastRequirement(bestStreak),
	"streak_7":   atLeastRequirement(bestStreak),
	"streak_14":  atLeastRequirement(bestStreak),
	"streak_30":  atLeastRequirement(bestStreak),
	"streak_60":  atLeastRequirement(bestStreak),
	"streak_100": atLeastRequirement(bestStreak),

	"completions_10":   atLeastRequirement(totalCompletions),
	"completions_50":   atLeastRequirement(totalCompletions),
	"completions_100":  atLeastRequirement(totalCompletions),
	"completions_500":  atLeastRequirement(totalCompletions),
	"completions_1000": atLeastRequirement(totalCompletions),

	"habits_created_5":  atLeastRequirement(habitCount),
	"habits_created_10": atLeastRequirement(habitCount),
	"habits_created_20": atLeastRequirement(habitCount),

	"perfect_week":  atLeast(perfectDays, constants.PerfectWeekDays),
	"perfect_month": atLeast(perfectDays, constants.PerfectMonthDays),

	// Completions carry no time of day
	"early_bird": never,
	"night_owl":  never,

	"weekend_warrior": weekendRule,
	"variety_pack":    varietyRule,
}

// RuleFor returns the rule registered for id
func RuleFor(id string) (Rule, bool) {
	r, ok := rules[id]
	return r, ok
}
