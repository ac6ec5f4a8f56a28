// Package tracker records habit completions and progress and keeps a user's
// achievements in step with them.
package tracker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/julianstephens/keepstreak/internal/achievements"
	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/events"
	"github.com/julianstephens/keepstreak/internal/logger"
	"github.com/julianstephens/keepstreak/internal/metrics"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/stats"
	"github.com/julianstephens/keepstreak/internal/storage"
	"github.com/julianstephens/keepstreak/internal/utils"
)

type Service struct {
	store       storage.Provider
	evaluator   *achievements.Evaluator
	publisher   events.Publisher
	now         func() time.Time
	evalTimeout time.Duration
	pending     sync.WaitGroup
}

type Option func(*Service)

// WithClock overrides the time source. Today is the UTC calendar day of now().
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEvaluationTimeout bounds each background achievement evaluation
func WithEvaluationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.evalTimeout = d
		}
	}
}

// WithPublisher announces new unlocks on p
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:       store,
		publisher:   events.Noop{},
		now:         time.Now,
		evalTimeout: constants.DefaultEvaluationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.evaluator = achievements.NewEvaluator(store,
		achievements.WithClock(s.now),
		achievements.WithPublisher(s.publisher),
	)
	return s
}

// Today returns the current UTC calendar day
func (s *Service) Today() time.Time {
	return utils.DayOf(s.now())
}

// ProgressChange carries either an absolute progress value or a relative
// increment. When both are set the increment is applied.
type ProgressChange struct {
	Progress  *float64
	Increment *float64
}

// RecordCompletion marks a habit done or not done on date. A supplied
// progress is clamped to [0, goal] and forces the day complete once it
// reaches the goal.
func (s *Service) RecordCompletion(ctx context.Context, userID, habitID string, date time.Time, completed bool, progress *float64) (models.Completion, error) {
	if progress != nil && !finite(*progress) {
		return models.Completion{}, apperrors.ErrInvalidProgress
	}
	day, err := s.checkDay(date)
	if err != nil {
		return models.Completion{}, err
	}

	var habit models.Habit
	c, err := s.store.UpsertCompletion(ctx, userID, habitID, day, func(h models.Habit, existing *models.Completion) (models.Completion, error) {
		habit = h
		goal := float64(h.EffectiveGoal())

		var next models.Completion
		if existing != nil {
			next = *existing
		}
		next.Completed = completed
		if progress != nil {
			next.Progress = clamp(*progress, 0, goal)
			if next.Progress >= goal {
				next.Completed = true
			}
		}
		return next, nil
	})
	metrics.IncrementMutation("record", err)
	if err != nil {
		return models.Completion{}, err
	}

	c.Completed = habit.IsDone(c)
	logger.Debug("Recorded completion", "user", userID, "habit", habitID, "day", utils.FormatDay(day),
		"completed", c.Completed, "progress", c.Progress)
	s.scheduleEvaluation(ctx, userID)
	return c, nil
}

// AdjustProgress sets or increments a habit's progress on date. The result is
// clamped to [0, goal] and the completed flag is recomputed, so dropping below
// the goal un-completes the day.
func (s *Service) AdjustProgress(ctx context.Context, userID, habitID string, date time.Time, change ProgressChange) (models.Completion, error) {
	if change.Progress == nil && change.Increment == nil {
		return models.Completion{}, apperrors.ErrMissingArgument
	}
	for _, v := range []*float64{change.Progress, change.Increment} {
		if v != nil && !finite(*v) {
			return models.Completion{}, apperrors.ErrInvalidProgress
		}
	}
	day, err := s.checkDay(date)
	if err != nil {
		return models.Completion{}, err
	}

	c, err := s.store.UpsertCompletion(ctx, userID, habitID, day, func(h models.Habit, existing *models.Completion) (models.Completion, error) {
		goal := float64(h.EffectiveGoal())

		var next models.Completion
		if existing != nil {
			next = *existing
		}
		if change.Increment != nil {
			next.Progress = clamp(next.Progress+*change.Increment, 0, goal)
		} else {
			next.Progress = clamp(*change.Progress, 0, goal)
		}
		next.Completed = next.Progress >= goal
		return next, nil
	})
	metrics.IncrementMutation("adjust", err)
	if err != nil {
		return models.Completion{}, err
	}

	logger.Debug("Adjusted progress", "user", userID, "habit", habitID, "day", utils.FormatDay(day),
		"progress", c.Progress, "completed", c.Completed)
	s.scheduleEvaluation(ctx, userID)
	return c, nil
}

// ClearCompletion removes whatever was recorded for the habit on date.
// Unlocks are permanent, so no evaluation follows.
func (s *Service) ClearCompletion(ctx context.Context, userID, habitID string, date time.Time) error {
	day, err := s.checkDay(date)
	if err != nil {
		return err
	}
	err = s.store.DeleteCompletion(ctx, userID, habitID, day)
	metrics.IncrementMutation("clear", err)
	if err != nil {
		return err
	}
	logger.Debug("Cleared completion", "user", userID, "habit", habitID, "day", utils.FormatDay(day))
	return nil
}

// EvaluateAchievements grants every achievement the user has newly earned
func (s *Service) EvaluateAchievements(ctx context.Context, userID string) (achievements.Result, error) {
	return s.evaluator.Run(ctx, userID)
}

// ListAchievements evaluates first so out-of-band progress is picked up, then
// joins the catalog with the user's unlocks. Evaluation failures are logged.
func (s *Service) ListAchievements(ctx context.Context, userID string) ([]models.AchievementStatus, error) {
	if _, err := s.evaluator.Run(ctx, userID); err != nil {
		logger.Warn("Achievement evaluation failed while listing", "user", userID, "error", err)
	}

	unlocks, err := s.store.GetUnlocks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocks: %w", err)
	}
	byID := make(map[string]models.AchievementUnlock, len(unlocks))
	for _, u := range unlocks {
		byID[u.AchievementID] = u
	}

	defs := achievements.All()
	out := make([]models.AchievementStatus, 0, len(defs))
	for _, def := range defs {
		status := models.AchievementStatus{AchievementDefinition: def}
		if u, ok := byID[def.ID]; ok {
			at := u.UnlockedAt
			status.Unlocked = true
			status.UnlockedAt = &at
			if u.Progress != nil {
				status.Progress = *u.Progress
			}
		}
		out = append(out, status)
	}
	return out, nil
}

// Stats aggregates the user's live habits as of today
func (s *Service) Stats(ctx context.Context, userID string) (models.UserStats, error) {
	habits, err := s.store.GetHabitsForUser(ctx, userID, false)
	if err != nil {
		return models.UserStats{}, err
	}
	return stats.Calculate(habits, s.now()), nil
}

// Wait blocks until every scheduled evaluation has finished
func (s *Service) Wait() {
	s.pending.Wait()
}

// scheduleEvaluation runs an evaluation in the background. It outlives the
// caller's context but is bounded by the evaluation timeout.
func (s *Service) scheduleEvaluation(ctx context.Context, userID string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Background evaluation panicked", "user", userID, "panic", r)
				metrics.IncrementEvaluationError("async")
			}
		}()

		evalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.evalTimeout)
		defer cancel()

		res, err := s.evaluator.Run(evalCtx, userID)
		if err != nil {
			logger.Warn("Background evaluation failed", "user", userID, "error", err)
			metrics.IncrementEvaluationError("async")
			return
		}
		if len(res.Unlocked) > 0 {
			logger.Info("Unlocked achievements", "user", userID, "ids", res.Unlocked)
		}
	}()
}

func (s *Service) checkDay(date time.Time) (time.Time, error) {
	day := utils.DayOf(date)
	if day.After(s.Today()) {
		return time.Time{}, fmt.Errorf("%w: %s", apperrors.ErrFutureDate, utils.FormatDay(day))
	}
	return day, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
