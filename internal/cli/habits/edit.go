package habits

import (
	"context"
	"fmt"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/utils"
)

type HabitEditCmd struct {
	Name        string `arg:"" help:"Habit name or ID."`
	Rename      string `help:"New habit name."`
	Type        string `short:"t" help:"Habit type (Good|Bad|To-Do)."`
	Goal        int    `short:"g" help:"Daily goal."`
	Unit        string `short:"u" help:"Unit of the goal."`
	Days        string `short:"d" help:"Active days (daily|weekdays|weekends|mon,wed,...)."`
	End         string `help:"End date (YYYY-MM-DD)."`
	Color       string `help:"Display color."`
	Icon        string `help:"Display icon."`
	Description string `help:"Longer description."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	bg := context.Background()
	habit, err := ctx.Service.FindHabit(bg, ctx.UserID, c.Name, false)
	if err != nil {
		return err
	}

	changed := false
	if c.Rename != "" {
		habit.Name = c.Rename
		changed = true
	}
	if c.Type != "" {
		t, err := parseType(c.Type)
		if err != nil {
			return err
		}
		habit.Type = t
		changed = true
	}
	if c.Goal != 0 {
		habit.Goal = c.Goal
		changed = true
	}
	if c.Unit != "" {
		habit.GoalUnit = c.Unit
		changed = true
	}
	if c.Days != "" {
		days, err := utils.ParseWeekdays(c.Days)
		if err != nil {
			return err
		}
		habit.ActiveDays = days
		changed = true
	}
	if c.End != "" {
		end, err := parseOptionalDate(c.End)
		if err != nil {
			return err
		}
		habit.EndDate = end
		changed = true
	}
	if c.Color != "" {
		habit.Color = c.Color
		changed = true
	}
	if c.Icon != "" {
		habit.Icon = c.Icon
		changed = true
	}
	if c.Description != "" {
		habit.Description = c.Description
		changed = true
	}
	if !changed {
		return fmt.Errorf("nothing to update; pass at least one flag")
	}

	updated, err := ctx.Service.UpdateHabit(bg, habit)
	if err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", updated.Name)
	return nil
}
