// Package achievements holds the static achievement catalog and the evaluator
// that grants unlocks from a user's habit statistics.
package achievements

import (
	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/models"
)

var catalog = []models.AchievementDefinition{
	// Milestones
	{
		ID:          "first_completion",
		Name:        "Getting Started",
		Description: "Complete your first habit",
		Icon:        "🎯",
		Category:    models.CategoryMilestone,
		Requirement: 1,
		Rarity:      models.RarityCommon,
	},

	// Streaks
	{
		ID:          "streak_3",
		Name:        "On a Roll",
		Description: "Maintain a 3-day streak",
		Icon:        "🔥",
		Category:    models.CategoryStreak,
		Requirement: 3,
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "streak_7",
		Name:        "Week Warrior",
		Description: "Maintain a 7-day streak",
		Icon:        "⭐",
		Category:    models.CategoryStreak,
		Requirement: 7,
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "streak_14",
		Name:        "Fortnight Fighter",
		Description: "Maintain a 14-day streak",
		Icon:        "💪",
		Category:    models.CategoryStreak,
		Requirement: 14,
		Rarity:      models.RarityRare,
	},
	{
		ID:          "streak_30",
		Name:        "Monthly Master",
		Description: "Maintain a 30-day streak",
		Icon:        "👑",
		Category:    models.CategoryStreak,
		Requirement: 30,
		Rarity:      models.RarityRare,
	},
	{
		ID:          "streak_60",
		Name:        "Two Month Titan",
		Description: "Maintain a 60-day streak",
		Icon:        "🏆",
		Category:    models.CategoryStreak,
		Requirement: 60,
		Rarity:      models.RarityEpic,
	},
	{
		ID:          "streak_100",
		Name:        "Century Champion",
		Description: "Maintain a 100-day streak",
		Icon:        "💯",
		Category:    models.CategoryStreak,
		Requirement: 100,
		Rarity:      models.RarityLegendary,
	},

	// Completions
	{
		ID:          "completions_10",
		Name:        "Decade of Dedication",
		Description: "Complete 10 habits",
		Icon:        "🔟",
		Category:    models.CategoryCompletion,
		Requirement: 10,
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "completions_50",
		Name:        "Half Century",
		Description: "Complete 50 habits",
		Icon:        "🎖️",
		Category:    models.CategoryCompletion,
		Requirement: 50,
		Rarity:      models.RarityRare,
	},
	{
		ID:          "completions_100",
		Name:        "Centurion",
		Description: "Complete 100 habits",
		Icon:        "💯",
		Category:    models.CategoryCompletion,
		Requirement: 100,
		Rarity:      models.RarityEpic,
	},
	{
		ID:          "completions_500",
		Name:        "Five Hundred Hero",
		Description: "Complete 500 habits",
		Icon:        "🌟",
		Category:    models.CategoryCompletion,
		Requirement: 500,
		Rarity:      models.RarityLegendary,
	},
	{
		ID:          "completions_1000",
		Name:        "Millennium Master",
		Description: "Complete 1000 habits",
		Icon:        "✨",
		Category:    models.CategoryCompletion,
		Requirement: 1000,
		Rarity:      models.RarityLegendary,
	},

	// Habit creation
	{
		ID:          "habits_created_5",
		Name:        "Habit Builder",
		Description: "Create 5 habits",
		Icon:        "📝",
		Category:    models.CategoryHabit,
		Requirement: 5,
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "habits_created_10",
		Name:        "Habit Collector",
		Description: "Create 10 habits",
		Icon:        "📚",
		Category:    models.CategoryHabit,
		Requirement: 10,
		Rarity:      models.RarityRare,
	},
	{
		ID:          "habits_created_20",
		Name:        "Habit Master",
		Description: "Create 20 habits",
		Icon:        "🎓",
		Category:    models.CategoryHabit,
		Requirement: 20,
		Rarity:      models.RarityEpic,
	},

	// Special
	{
		ID:          "perfect_week",
		Name:        "Perfect Week",
		Description: "Complete all habits for 7 consecutive days",
		Icon:        "🌙",
		Category:    models.CategorySpecial,
		Requirement: constants.PerfectWeekDays,
		Rarity:      models.RarityRare,
	},
	{
		ID:          "perfect_month",
		Name:        "Perfect Month",
		Description: "Complete all habits for 30 consecutive days",
		Icon:        "🌕",
		Category:    models.CategorySpecial,
		Requirement: constants.PerfectMonthDays,
		Rarity:      models.RarityEpic,
	},
	{
		ID:          "early_bird",
		Name:        "Early Bird",
		Description: "Complete a habit before 6 AM",
		Icon:        "🌅",
		Category:    models.CategorySpecial,
		Requirement: 1,
		Rarity:      models.RarityRare,
	},
	{
		ID:          "night_owl",
		Name:        "Night Owl",
		Description: "Complete a habit after 11 PM",
		Icon:        "🦉",
		Category:    models.CategorySpecial,
		Requirement: 1,
		Rarity:      models.RarityRare,
	},
	{
		ID:          "weekend_warrior",
		Name:        "Weekend Warrior",
		Description: "Complete habits on both Saturday and Sunday",
		Icon:        "🏖️",
		Category:    models.CategorySpecial,
		Requirement: 1,
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "variety_pack",
		Name:        "Variety Pack",
		Description: "Have at least one habit of each type (Good, Bad, To-Do)",
		Icon:        "🎨",
		Category:    models.CategorySpecial,
		Requirement: len(constants.HabitTypes),
		Rarity:      models.RarityCommon,
	},
}

var byID = func() map[string]models.AchievementDefinition {
	m := make(map[string]models.AchievementDefinition, len(catalog))
	for _, def := range catalog {
		m[def.ID] = def
	}
	return m
}()

// All returns a copy of the catalog in display order
func All() []models.AchievementDefinition {
	out := make([]models.AchievementDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks up a single definition
func ByID(id string) (models.AchievementDefinition, bool) {
	def, ok := byID[id]
	return def, ok
}

// ByCategory returns the definitions in category, in catalog order
func ByCategory(category models.AchievementCategory) []models.AchievementDefinition {
	var out []models.AchievementDefinition
	for _, def := range catalog {
		if def.Category == category {
			out = append(out, def)
		}
	}
	return out
}
