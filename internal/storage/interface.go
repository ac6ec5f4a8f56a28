package storage

import (
	"context"
	"time"

	"github.com/julianstephens/keepstreak/internal/models"
)

// CompletionFunc computes the new record for a habit's day. existing is nil
// when nothing has been recorded for that day yet. Returning an error aborts
// the upsert without writing.
type CompletionFunc func(habit models.Habit, existing *models.Completion) (models.Completion, error)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	AddHabit(ctx context.Context, habit models.Habit) error
	// GetHabit returns a live habit with its completions. It returns
	// errors.ErrNotFound when the habit is missing, deleted or owned by
	// another user.
	GetHabit(ctx context.Context, userID, habitID string) (models.Habit, error)
	GetHabitByName(ctx context.Context, userID, name string) (models.Habit, error)
	GetHabitsForUser(ctx context.Context, userID string, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) error
	DeleteHabit(ctx context.Context, userID, habitID string) error
	RestoreHabit(ctx context.Context, userID, habitID string) error

	// Completions
	// UpsertCompletion atomically reads the habit's record for day, applies fn
	// and writes the result keyed by (habit, day). Concurrent calls for the
	// same habit never produce two records for one day.
	UpsertCompletion(ctx context.Context, userID, habitID string, day time.Time, fn CompletionFunc) (models.Completion, error)
	DeleteCompletion(ctx context.Context, userID, habitID string, day time.Time) error

	// Achievement unlocks
	GetUnlocks(ctx context.Context, userID string) ([]models.AchievementUnlock, error)
	// CreateUnlock inserts a new unlock. It returns errors.ErrConflict when the
	// user already holds the achievement.
	CreateUnlock(ctx context.Context, unlock models.AchievementUnlock) error

	// Utils
	GetConfigPath() string
}
