package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/utils"
	"github.com/julianstephens/keepstreak/internal/validation"
)

// ApplyDefaults fills unset habit fields with the application defaults
func (s *Service) ApplyDefaults(h models.Habit) models.Habit {
	h.Name = strings.TrimSpace(h.Name)
	if h.Type == "" {
		h.Type = constants.HabitTypeGood
	}
	if h.Goal == 0 {
		h.Goal = constants.DefaultHabitGoal
	}
	if h.Color == "" {
		h.Color = constants.DefaultHabitColor
	}
	if h.Icon == "" {
		h.Icon = constants.DefaultHabitIcon
	}
	if h.Repeat == "" {
		h.Repeat = constants.DefaultHabitRepeat
	}
	if len(h.ActiveDays) == 0 {
		h.ActiveDays = append([]int(nil), constants.DefaultActiveDays...)
	}
	if h.StartDate.IsZero() {
		h.StartDate = s.Today()
	}
	h.StartDate = utils.DayOf(h.StartDate)
	if h.EndDate != nil {
		end := utils.DayOf(*h.EndDate)
		h.EndDate = &end
	}
	return h
}

// CreateHabit validates and stores a new habit for h.UserID. Names are unique
// per user, ignoring case.
func (s *Service) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	h = s.ApplyDefaults(h)
	if err := validation.ValidateHabit(h); err != nil {
		return models.Habit{}, err
	}

	if _, err := s.store.GetHabitByName(ctx, h.UserID, h.Name); err == nil {
		return models.Habit{}, fmt.Errorf("habit %q already exists: %w", h.Name, apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return models.Habit{}, err
	}

	now := s.now().UTC()
	h.ID = uuid.New().String()
	h.CreatedAt = now
	h.UpdatedAt = now
	h.Completions = nil
	h.DeletedAt = nil
	if err := s.store.AddHabit(ctx, h); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

// UpdateHabit validates and saves the editable fields of an existing habit
func (s *Service) UpdateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	h = s.ApplyDefaults(h)
	if err := validation.ValidateHabit(h); err != nil {
		return models.Habit{}, err
	}

	if other, err := s.store.GetHabitByName(ctx, h.UserID, h.Name); err == nil && other.ID != h.ID {
		return models.Habit{}, fmt.Errorf("habit %q already exists: %w", h.Name, apperrors.ErrConflict)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return models.Habit{}, err
	}

	h.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateHabit(ctx, h); err != nil {
		return models.Habit{}, err
	}
	return s.GetHabit(ctx, h.UserID, h.ID)
}

// GetHabit returns a live habit with normalized completions
func (s *Service) GetHabit(ctx context.Context, userID, habitID string) (models.Habit, error) {
	h, err := s.store.GetHabit(ctx, userID, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	return h.Normalize(), nil
}

// FindHabit resolves ref as a habit id first and then as a case-insensitive
// name. Deleted habits are only matched when includeDeleted is set.
func (s *Service) FindHabit(ctx context.Context, userID, ref string, includeDeleted bool) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, fmt.Errorf("%w: habit name is required", apperrors.ErrInvalidArgument)
	}

	if !includeDeleted {
		if h, err := s.store.GetHabit(ctx, userID, ref); err == nil {
			return h.Normalize(), nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return models.Habit{}, err
		}
		h, err := s.store.GetHabitByName(ctx, userID, ref)
		if err != nil {
			return models.Habit{}, err
		}
		return h.Normalize(), nil
	}

	habits, err := s.store.GetHabitsForUser(ctx, userID, true)
	if err != nil {
		return models.Habit{}, err
	}
	for _, h := range habits {
		if h.ID == ref {
			return h.Normalize(), nil
		}
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return h.Normalize(), nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %q: %w", ref, apperrors.ErrNotFound)
}

// Habits lists the user's habits with completed flags derived from progress
func (s *Service) Habits(ctx context.Context, userID string, includeDeleted bool) ([]models.Habit, error) {
	habits, err := s.store.GetHabitsForUser(ctx, userID, includeDeleted)
	if err != nil {
		return nil, err
	}
	out := make([]models.Habit, len(habits))
	for i, h := range habits {
		out[i] = h.Normalize()
	}
	return out, nil
}

func (s *Service) DeleteHabit(ctx context.Context, userID, habitID string) error {
	return s.store.DeleteHabit(ctx, userID, habitID)
}

// RestoreHabit brings back a soft-deleted habit. It fails with ErrConflict
// when a live habit already uses the same name.
func (s *Service) RestoreHabit(ctx context.Context, userID, habitID string) error {
	habits, err := s.store.GetHabitsForUser(ctx, userID, true)
	if err != nil {
		return err
	}
	var target *models.Habit
	for i := range habits {
		if habits[i].ID == habitID {
			target = &habits[i]
		}
	}
	if target != nil {
		for _, h := range habits {
			if h.ID != habitID && !h.IsDeleted() && strings.EqualFold(h.Name, target.Name) {
				return fmt.Errorf("habit %q already exists: %w", h.Name, apperrors.ErrConflict)
			}
		}
	}
	return s.store.RestoreHabit(ctx, userID, habitID)
}

// Check reports inconsistencies in the user's stored habits
func (s *Service) Check(ctx context.Context, userID string) (validation.ValidationResult, error) {
	habits, err := s.store.GetHabitsForUser(ctx, userID, false)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	return validation.New().ValidateHabits(habits), nil
}
