// Package habits holds the habit management and tracking commands.
package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/utils"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	List     HabitListCmd     `cmd:"" aliases:"ls" help:"List habits with today's status."`
	Edit     HabitEditCmd     `cmd:"" help:"Edit a habit."`
	Delete   HabitDeleteCmd   `cmd:"" aliases:"rm" help:"Delete a habit (soft delete)."`
	Restore  HabitRestoreCmd  `cmd:"" help:"Restore a deleted habit."`
	Done     HabitDoneCmd     `cmd:"" help:"Record a habit as done (or not done) for a day."`
	Progress HabitProgressCmd `cmd:"" help:"Set or increment a habit's progress for a day."`
	Clear    HabitClearCmd    `cmd:"" help:"Remove a habit's record for a day."`
	Log      HabitLogCmd      `cmd:"" help:"Show habit log (ASCII history)."`
}

// resolveDay parses an optional --date flag, defaulting to today
func resolveDay(ctx *cli.Context, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return ctx.Service.Today(), nil
	}
	return utils.ParseDate(value)
}

func parseType(value string) (constants.HabitType, error) {
	if value == "" {
		return "", nil
	}
	for _, t := range constants.HabitTypes {
		if strings.EqualFold(string(t), value) {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid habit type %q (expected Good, Bad or To-Do)", value)
}

func parseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := utils.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func progressLabel(h models.Habit, c models.Completion) string {
	if !h.IsQuantified() {
		return ""
	}
	label := fmt.Sprintf("%g/%d", c.Progress, h.EffectiveGoal())
	if h.GoalUnit != "" {
		label += " " + h.GoalUnit
	}
	return label
}
