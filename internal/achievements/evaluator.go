package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/events"
	"github.com/julianstephens/keepstreak/internal/logger"
	"github.com/julianstephens/keepstreak/internal/metrics"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/stats"
)

// Store is the slice of storage.Provider the evaluator needs
type Store interface {
	GetHabitsForUser(ctx context.Context, userID string, includeDeleted bool) ([]models.Habit, error)
	GetUnlocks(ctx context.Context, userID string) ([]models.AchievementUnlock, error)
	CreateUnlock(ctx context.Context, unlock models.AchievementUnlock) error
}

// Result lists the achievements newly unlocked by one evaluation
type Result struct {
	Unlocked []string `json:"unlocked"`
}

type Evaluator struct {
	store     Store
	publisher events.Publisher
	now       func() time.Time
	catalog   []models.AchievementDefinition
	rules     map[string]Rule
}

type Option func(*Evaluator)

// WithClock overrides the time source used for "today" and unlock timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// WithPublisher announces every new unlock on p
func WithPublisher(p events.Publisher) Option {
	return func(e *Evaluator) {
		if p != nil {
			e.publisher = p
		}
	}
}

func NewEvaluator(store Store, opts ...Option) *Evaluator {
	e := &Evaluator{
		store:     store,
		publisher: events.Noop{},
		now:       time.Now,
		catalog:   catalog,
		rules:     rules,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run loads the user's live habits and unlocks, then evaluates the catalog
func (e *Evaluator) Run(ctx context.Context, userID string) (Result, error) {
	start := time.Now()
	result := Result{Unlocked: []string{}}

	habits, err := e.store.GetHabitsForUser(ctx, userID, false)
	if err != nil {
		metrics.IncrementEvaluationError("load")
		metrics.RecordEvaluation(time.Since(start), err)
		return result, fmt.Errorf("failed to load habits: %w", err)
	}
	existing, err := e.store.GetUnlocks(ctx, userID)
	if err != nil {
		metrics.IncrementEvaluationError("load")
		metrics.RecordEvaluation(time.Since(start), err)
		return result, fmt.Errorf("failed to load unlocks: %w", err)
	}

	unlocked, err := e.Evaluate(ctx, userID, habits, existing)
	metrics.RecordEvaluation(time.Since(start), err)
	result.Unlocked = unlocked
	return result, err
}

// Evaluate checks every catalog entry the user does not hold yet and persists
// the ones that are met. Each entry is isolated: a failing rule or write is
// logged and the remaining entries still run. Ids that lose a concurrent
// insert race are not reported. The returned error joins the write failures.
func (e *Evaluator) Evaluate(ctx context.Context, userID string, habits []models.Habit, existing []models.AchievementUnlock) ([]string, error) {
	held := make(map[string]struct{}, len(existing))
	for _, u := range existing {
		held[u.AchievementID] = struct{}{}
	}

	userStats := stats.Calculate(habits, e.now())
	logger.Debug("Checking achievements",
		"user", userID,
		"habits", len(habits),
		"totalCompletions", userStats.TotalCompletions,
		"bestStreak", userStats.BestStreak,
		"perfectDays", userStats.PerfectDays,
		"weekend", userStats.HasWeekendCompletion,
	)

	unlocked := []string{}
	var errs []error
	for _, def := range e.catalog {
		if _, ok := held[def.ID]; ok {
			continue
		}

		met, value := e.check(def, Input{Stats: userStats, Habits: habits, Definition: def})
		if !met {
			continue
		}

		unlock := models.AchievementUnlock{
			UserID:        userID,
			AchievementID: def.ID,
			UnlockedAt:    e.now().UTC(),
			Progress:      &value,
		}
		if err := e.store.CreateUnlock(ctx, unlock); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				logger.Debug("Achievement already unlocked", "user", userID, "achievement", def.ID)
				continue
			}
			logger.Error("Failed to persist unlock", "user", userID, "achievement", def.ID, "error", err)
			metrics.IncrementEvaluationError("persist")
			errs = append(errs, fmt.Errorf("unlock %s: %w", def.ID, err))
			continue
		}

		logger.Info("Achievement unlocked", "user", userID, "achievement", def.ID, "name", def.Name)
		metrics.IncrementUnlocked(def.ID)
		unlocked = append(unlocked, def.ID)
		e.announce(ctx, def, unlock)
	}

	return unlocked, errors.Join(errs...)
}

// check runs the rule for def, treating an unknown id or a panicking rule as
// not met.
func (e *Evaluator) check(def models.AchievementDefinition, in Input) (met bool, value float64) {
	rule, ok := e.rules[def.ID]
	if !ok || rule.Met == nil {
		logger.Warn("Unknown achievement ID", "achievement", def.ID)
		return false, 0
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Achievement rule panicked", "achievement", def.ID, "panic", r)
			metrics.IncrementEvaluationError("rule")
			met, value = false, 0
		}
	}()

	if !rule.Met(in) {
		return false, 0
	}
	if rule.Value != nil {
		value = rule.Value(in)
	}
	return true, value
}

func (e *Evaluator) announce(ctx context.Context, def models.AchievementDefinition, unlock models.AchievementUnlock) {
	event := events.AchievementUnlocked{
		UserID:        unlock.UserID,
		AchievementID: def.ID,
		Name:          def.Name,
		Rarity:        string(def.Rarity),
		UnlockedAt:    unlock.UnlockedAt,
		Progress:      *unlock.Progress,
	}
	if err := e.publisher.Publish(ctx, constants.EventAchievementUnlocked, event); err != nil {
		logger.Warn("Failed to publish unlock event", "achievement", def.ID, "error", err)
		metrics.IncrementEvaluationError("publish")
	}
}
