// Package memory implements storage.Provider in process memory. It backs
// tests and the demo mode of the HTTP server.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/storage"
	"github.com/julianstephens/keepstreak/internal/utils"
)

type unlockKey struct {
	userID        string
	achievementID string
}

type Store struct {
	mu      sync.Mutex
	habits  map[string]*models.Habit
	order   []string
	unlocks map[unlockKey]models.AchievementUnlock
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		habits:  make(map[string]*models.Habit),
		unlocks: make(map[unlockKey]models.AchievementUnlock),
		now:     time.Now,
	}
}

func (s *Store) Init() error { return nil }
func (s *Store) Load() error { return nil }
func (s *Store) Close() error { return nil }
func (s *Store) GetConfigPath() string { return "memory" }

func cloneHabit(h *models.Habit) models.Habit {
	out := *h
	out.ActiveDays = slices.Clone(h.ActiveDays)
	out.Completions = slices.Clone(h.Completions)
	return out
}

// lookup returns the live habit owned by userID. Callers hold s.mu.
func (s *Store) lookup(userID, habitID string) (*models.Habit, error) {
	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID || h.DeletedAt != nil {
		return nil, fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}
	return h, nil
}

func (s *Store) AddHabit(_ context.Context, habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	if _, exists := s.habits[habit.ID]; exists {
		return fmt.Errorf("habit %s: %w", habit.ID, apperrors.ErrConflict)
	}
	h := cloneHabit(&habit)
	h.Completions = nil
	s.habits[h.ID] = &h
	s.order = append(s.order, h.ID)
	return nil
}

func (s *Store) UpdateHabit(_ context.Context, habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.lookup(habit.UserID, habit.ID)
	if err != nil {
		return err
	}
	completions, createdAt := h.Completions, h.CreatedAt
	*h = cloneHabit(&habit)
	h.Completions = completions
	h.CreatedAt = createdAt
	return nil
}

func (s *Store) GetHabit(_ context.Context, userID, habitID string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.lookup(userID, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	return cloneHabit(h), nil
}

func (s *Store) GetHabitByName(_ context.Context, userID, name string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		h := s.habits[id]
		if h.UserID == userID && h.DeletedAt == nil && strings.EqualFold(h.Name, name) {
			return cloneHabit(h), nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %q: %w", name, apperrors.ErrNotFound)
}

func (s *Store) GetHabitsForUser(_ context.Context, userID string, includeDeleted bool) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var habits []models.Habit
	for _, id := range s.order {
		h := s.habits[id]
		if h.UserID != userID || (!includeDeleted && h.DeletedAt != nil) {
			continue
		}
		habits = append(habits, cloneHabit(h))
	}
	return habits, nil
}

func (s *Store) DeleteHabit(_ context.Context, userID, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.lookup(userID, habitID)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	h.DeletedAt = &now
	h.UpdatedAt = now
	return nil
}

func (s *Store) RestoreHabit(_ context.Context, userID, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID || h.DeletedAt == nil {
		return fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}
	h.DeletedAt = nil
	h.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Store) UpsertCompletion(_ context.Context, userID, habitID string, day time.Time, fn storage.CompletionFunc) (models.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.lookup(userID, habitID)
	if err != nil {
		return models.Completion{}, err
	}

	key := utils.DayOf(day)
	idx := slices.IndexFunc(h.Completions, func(c models.Completion) bool { return c.Date.Equal(key) })
	var existing *models.Completion
	if idx >= 0 {
		c := h.Completions[idx]
		existing = &c
	}

	view := cloneHabit(h)
	view.Completions = nil
	next, err := fn(view, existing)
	if err != nil {
		return models.Completion{}, err
	}
	next = storage.PrepareCompletion(next, existing, habitID, key, s.now().UTC())

	if idx >= 0 {
		h.Completions[idx] = next
	} else {
		h.Completions = append(h.Completions, next)
		slices.SortFunc(h.Completions, func(a, b models.Completion) int { return a.Date.Compare(b.Date) })
	}
	return next, nil
}

func (s *Store) DeleteCompletion(_ context.Context, userID, habitID string, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.lookup(userID, habitID)
	if err != nil {
		return err
	}
	key := utils.DayOf(day)
	h.Completions = slices.DeleteFunc(h.Completions, func(c models.Completion) bool { return c.Date.Equal(key) })
	return nil
}

func (s *Store) GetUnlocks(_ context.Context, userID string) ([]models.AchievementUnlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unlocks []models.AchievementUnlock
	for key, u := range s.unlocks {
		if key.userID == userID {
			unlocks = append(unlocks, u)
		}
	}
	slices.SortFunc(unlocks, func(a, b models.AchievementUnlock) int {
		if c := a.UnlockedAt.Compare(b.UnlockedAt); c != 0 {
			return c
		}
		return strings.Compare(a.AchievementID, b.AchievementID)
	})
	return unlocks, nil
}

func (s *Store) CreateUnlock(_ context.Context, unlock models.AchievementUnlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := unlockKey{userID: unlock.UserID, achievementID: unlock.AchievementID}
	if _, exists := s.unlocks[key]; exists {
		return fmt.Errorf("achievement %s for user %s: %w", unlock.AchievementID, unlock.UserID, apperrors.ErrConflict)
	}
	if unlock.ID == "" {
		unlock.ID = uuid.New().String()
	}
	if unlock.UnlockedAt.IsZero() {
		unlock.UnlockedAt = s.now().UTC()
	}
	if unlock.Progress != nil {
		p := *unlock.Progress
		unlock.Progress = &p
	}
	s.unlocks[key] = unlock
	return nil
}
