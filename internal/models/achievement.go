package models

import "time"

// AchievementCategory groups achievements by the statistic they track
type AchievementCategory string

// Rarity describes how hard an achievement is to earn
type Rarity string

const (
	CategoryStreak     AchievementCategory = "streak"
	CategoryCompletion AchievementCategory = "completion"
	CategoryHabit      AchievementCategory = "habit"
	CategoryMilestone  AchievementCategory = "milestone"
	CategorySpecial    AchievementCategory = "special"

	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AchievementDefinition is a catalog entry. Definitions are static and shared
// by every user.
type AchievementDefinition struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Category    AchievementCategory `json:"category"`
	Requirement int                 `json:"requirement"`
	Rarity      Rarity              `json:"rarity"`
}

// AchievementUnlock records that a user earned an achievement. At most one
// exists per (UserID, AchievementID).
type AchievementUnlock struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	AchievementID string    `json:"achievementId"`
	UnlockedAt    time.Time `json:"unlockedAt"`
	Progress      *float64  `json:"progress,omitempty"`
}

// AchievementStatus joins a definition with a user's unlock state
type AchievementStatus struct {
	AchievementDefinition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
	Progress   float64    `json:"progress"`
}

// UserStats are the aggregate statistics achievements are evaluated against
type UserStats struct {
	TotalCompletions     int  `json:"totalCompletions"`
	BestStreak           int  `json:"bestStreak"`
	CurrentStreak        int  `json:"currentStreak"`
	PerfectDays          int  `json:"perfectDays"`
	HasWeekendCompletion bool `json:"hasWeekendCompletion"`
}
