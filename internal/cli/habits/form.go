package habits

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/utils"
)

// habitForm holds the string-typed values edited by the interactive form
type habitForm struct {
	Name        string
	Description string
	Type        constants.HabitType
	Goal        string
	Unit        string
	Days        string
}

func newHabitForm(fm *habitForm) *huh.Form {
	typeOptions := make([]huh.Option[constants.HabitType], 0, len(constants.HabitTypes))
	for _, t := range constants.HabitTypes {
		typeOptions = append(typeOptions, huh.NewOption(string(t), t))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
			huh.NewSelect[constants.HabitType]().
				Title("Type").
				Options(typeOptions...).
				Value(&fm.Type),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Daily goal").
				Description("1 for a simple done/not done habit").
				Value(&fm.Goal).
				Validate(func(s string) error {
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if i < 1 {
						return fmt.Errorf("goal must be at least 1")
					}
					return nil
				}),
			huh.NewInput().
				Title("Unit").
				Description("e.g. glasses, pages, minutes").
				Value(&fm.Unit),
			huh.NewInput().
				Title("Active days").
				Description("daily, weekdays, weekends or mon,wed,fri").
				Value(&fm.Days).
				Validate(func(s string) error {
					_, err := utils.ParseWeekdays(s)
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
