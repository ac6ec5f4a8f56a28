package models

import (
	"slices"
	"time"

	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/utils"
)

// Habit represents a recurring practice owned by one user
type Habit struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Color       string              `json:"color"`
	Icon        string              `json:"icon"`
	Type        constants.HabitType `json:"type"`
	Repeat      string              `json:"repeat"`
	Goal        int                 `json:"goal"`
	GoalUnit    string              `json:"goalUnit,omitempty"`
	ActiveDays  []int               `json:"activeDays"` // 1=Monday, 7=Sunday
	StartDate   time.Time           `json:"startDate"`
	EndDate     *time.Time          `json:"endDate,omitempty"`
	Completions []Completion        `json:"completions"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	DeletedAt   *time.Time          `json:"deletedAt,omitempty"`
}

// Completion is a habit's record for a single calendar day
type Completion struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habitId"`
	Date      time.Time `json:"date"` // UTC midnight
	Completed bool      `json:"completed"`
	Progress  float64   `json:"progress"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EffectiveGoal returns the habit's goal, treating unset or invalid goals as 1.
func (h Habit) EffectiveGoal() int {
	if h.Goal < 1 {
		return 1
	}
	return h.Goal
}

// IsQuantified reports whether completion is driven by progress toward a numeric goal.
func (h Habit) IsQuantified() bool {
	return h.EffectiveGoal() > 1
}

// IsDone decides whether c counts as a completed day for this habit. Boolean
// habits use the stored flag; quantified habits ignore it and compare progress
// with the goal.
func (h Habit) IsDone(c Completion) bool {
	goal := h.EffectiveGoal()
	if goal <= 1 {
		return c.Completed
	}
	return c.Progress >= float64(goal)
}

// CompletionOn returns the completion recorded for day, if any.
func (h Habit) CompletionOn(day time.Time) (Completion, bool) {
	key := utils.DayOf(day)
	for _, c := range h.Completions {
		if utils.DayOf(c.Date).Equal(key) {
			return c, true
		}
	}
	return Completion{}, false
}

// DoneOn reports whether the habit has a done completion on day.
func (h Habit) DoneOn(day time.Time) bool {
	c, ok := h.CompletionOn(day)
	return ok && h.IsDone(c)
}

// IsScheduledOn reports whether the habit is active on day: the day's weekday
// is one of ActiveDays and the habit has started.
func (h Habit) IsScheduledOn(day time.Time) bool {
	d := utils.DayOf(day)
	if !slices.Contains(h.ActiveDays, utils.ISOWeekday(d)) {
		return false
	}
	return !d.Before(utils.DayOf(h.StartDate))
}

// IsDeleted reports whether the habit has been soft-deleted
func (h Habit) IsDeleted() bool {
	return h.DeletedAt != nil
}

// Normalize returns a copy of the habit whose completions carry the derived
// completed flag. Stored flags of quantified habits may be stale.
func (h Habit) Normalize() Habit {
	out := h
	out.Completions = make([]Completion, len(h.Completions))
	for i, c := range h.Completions {
		c.Date = utils.DayOf(c.Date)
		c.Completed = h.IsDone(c)
		out.Completions[i] = c
	}
	return out
}
