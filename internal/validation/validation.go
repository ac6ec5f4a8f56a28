package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidHabit       ConflictType = "invalid_habit"
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictDuplicateDay       ConflictType = "duplicate_completion_day"
	ConflictProgressOutOfRange ConflictType = "progress_out_of_range"
	ConflictStaleCompleted     ConflictType = "stale_completed_flag"
)

// Conflict represents a detected problem in a user's habits
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Habit names involved
	HabitIDs    []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// habitFields mirrors the user-editable part of a habit with its constraints
type habitFields struct {
	Name       string `validate:"required,max=100"`
	Type       string `validate:"oneof=Good Bad To-Do"`
	Goal       int    `validate:"gte=1"`
	ActiveDays []int  `validate:"required,min=1,max=7,unique,dive,min=1,max=7"`
	Color      string `validate:"omitempty,rrggbb"`
	StartDate  time.Time
	EndDate    *time.Time
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("rrggbb", func(fl validator.FieldLevel) bool {
		return hexColor.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		h := sl.Current().Interface().(habitFields)
		if h.EndDate != nil && utils.DayOf(*h.EndDate).Before(utils.DayOf(h.StartDate)) {
			sl.ReportError(h.EndDate, "EndDate", "EndDate", "gtefield", "StartDate")
		}
	}, habitFields{})
	return v
}

// Struct validates any tagged struct with the shared validator instance
func Struct(v any) error {
	return validate.Struct(v)
}

// ValidateHabit checks the user-editable fields of a habit. The returned
// error wraps errors.ErrInvalidArgument.
func ValidateHabit(h models.Habit) error {
	err := validate.Struct(habitFields{
		Name:       strings.TrimSpace(h.Name),
		Type:       string(h.Type),
		Goal:       h.Goal,
		ActiveDays: h.ActiveDays,
		Color:      h.Color,
		StartDate:  h.StartDate,
		EndDate:    h.EndDate,
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "required" {
			return "name is required"
		}
		return "name must be at most 100 characters"
	case "Type":
		return fmt.Sprintf("type must be one of %s, %s or %s",
			constants.HabitTypeGood, constants.HabitTypeBad, constants.HabitTypeTodo)
	case "Goal":
		return "goal must be at least 1"
	case "Color":
		return "color must be a #RRGGBB hex string"
	case "EndDate":
		return "end date must not be before start date"
	}
	if fe.Field() == "ActiveDays" {
		switch fe.Tag() {
		case "unique":
			return "active days must not repeat"
		case "max":
			return "at most 7 active days are allowed"
		default:
			return "at least one active day is required"
		}
	}
	if strings.HasPrefix(fe.Field(), "ActiveDays[") {
		return "active days must be between 1 (Monday) and 7 (Sunday)"
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// Validator checks a user's stored habits for inconsistencies
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabits reports invalid habits, duplicate names, repeated completion
// days, progress outside [0, goal] and completed flags that disagree with
// progress. Deleted habits are skipped.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	nameIDs := make(map[string][]string)
	displayName := make(map[string]string)
	for _, h := range habits {
		if h.IsDeleted() {
			continue
		}

		if err := ValidateHabit(h); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidHabit,
				Description: fmt.Sprintf("Habit \"%s\" is invalid: %v", h.Name, err),
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		}

		if name := strings.ToLower(strings.TrimSpace(h.Name)); name != "" {
			nameIDs[name] = append(nameIDs[name], h.ID)
			displayName[name] = h.Name
		}

		result.Conflicts = append(result.Conflicts, v.checkCompletions(h)...)
	}

	names := make([]string, 0, len(nameIDs))
	for name := range nameIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ids := nameIDs[name]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("Duplicate habit name: \"%s\" (IDs: %v)", displayName[name], ids),
				Items:       []string{displayName[name]},
				HabitIDs:    ids,
			})
		}
	}

	return result
}

func (v *Validator) checkCompletions(h models.Habit) []Conflict {
	var conflicts []Conflict
	seen := make(map[string]bool)
	goal := float64(h.EffectiveGoal())

	for _, c := range h.Completions {
		date := utils.FormatDay(c.Date)
		if seen[date] {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDuplicateDay,
				Description: fmt.Sprintf("Habit \"%s\" has more than one completion on %s", h.Name, date),
				Date:        date,
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		}
		seen[date] = true

		if c.Progress < 0 || c.Progress > goal {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictProgressOutOfRange,
				Description: fmt.Sprintf("Habit \"%s\" has progress %g outside [0, %g] on %s", h.Name, c.Progress, goal, date),
				Date:        date,
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		}

		if h.IsQuantified() && c.Completed != h.IsDone(c) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictStaleCompleted,
				Description: fmt.Sprintf("Habit \"%s\" has a stale completed flag on %s (progress %g of %g)", h.Name, date, c.Progress, goal),
				Date:        date,
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		}
	}
	return conflicts
}
