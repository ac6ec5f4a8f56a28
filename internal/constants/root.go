package constants

import "time"

// HabitType classifies a habit for display and for the variety achievement
type HabitType string

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName            = "keepstreak"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/keepstreak"
	DefaultConfigPath  = "~/.config/keepstreak/keepstreak.db"
	DefaultUserID      = "local"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Habit defaults
	DefaultHabitColor  = "#6C5CE7"
	DefaultHabitIcon   = "✅"
	DefaultHabitRepeat = "Every day"
	DefaultHabitGoal   = 1

	// Habit types
	HabitTypeGood HabitType = "Good"
	HabitTypeBad  HabitType = "Bad"
	HabitTypeTodo HabitType = "To-Do"

	// PerfectDayWindow is the number of trailing days (today inclusive) scanned for perfect days
	PerfectDayWindow = 30

	// Perfect streak thresholds used by the perfect_week and perfect_month rules
	PerfectWeekDays  = 7
	PerfectMonthDays = 30

	// Evaluation defaults
	DefaultEvaluationTimeout = 10 * time.Second

	// Event routing keys
	EventAchievementUnlocked = "achievement.unlocked"
	DefaultEventExchange     = "events"
)

// Session States
const (
	StateHabits SessionState = iota
	StateAchievements
	StateStats
)

// DefaultActiveDays is Monday through Friday (1=Monday, 7=Sunday)
var DefaultActiveDays = []int{1, 2, 3, 4, 5}

// HabitTypes lists every valid habit type
var HabitTypes = []HabitType{HabitTypeGood, HabitTypeBad, HabitTypeTodo}
