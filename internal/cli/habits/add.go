package habits

import (
	"context"
	"strconv"
	"strings"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/utils"
)

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name."`
	Interactive bool   `short:"i" help:"Fill in the habit with an interactive form."`
	Type        string `short:"t" help:"Habit type (Good|Bad|To-Do)." default:"Good"`
	Goal        int    `short:"g" help:"Daily goal. Goals above 1 track progress." default:"1"`
	Unit        string `short:"u" help:"Unit of the goal (e.g. glasses)."`
	Days        string `short:"d" help:"Active days (daily|weekdays|weekends|mon,wed,...)." default:"weekdays"`
	Start       string `help:"Start date (YYYY-MM-DD). Defaults to today."`
	End         string `help:"End date (YYYY-MM-DD)."`
	Color       string `help:"Display color."`
	Icon        string `help:"Display icon."`
	Description string `help:"Longer description."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	if c.Interactive {
		if err := c.prompt(); err != nil {
			return err
		}
	}

	habitType, err := parseType(c.Type)
	if err != nil {
		return err
	}
	days, err := utils.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}
	start, err := parseOptionalDate(c.Start)
	if err != nil {
		return err
	}
	end, err := parseOptionalDate(c.End)
	if err != nil {
		return err
	}

	habit := models.Habit{
		UserID:      ctx.UserID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		Type:        habitType,
		Goal:        c.Goal,
		GoalUnit:    c.Unit,
		ActiveDays:  days,
		EndDate:     end,
	}
	if start != nil {
		habit.StartDate = *start
	}

	created, err := ctx.Service.CreateHabit(context.Background(), habit)
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (%s)\n", created.Name, utils.FormatWeekdays(created.ActiveDays))
	return nil
}

func (c *HabitAddCmd) prompt() error {
	fm := &habitForm{
		Name:        c.Name,
		Description: c.Description,
		Type:        constants.HabitType(c.Type),
		Goal:        strconv.Itoa(c.Goal),
		Unit:        c.Unit,
		Days:        c.Days,
	}
	if err := newHabitForm(fm).Run(); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(fm.Name)
	c.Description = fm.Description
	c.Type = string(fm.Type)
	c.Unit = fm.Unit
	c.Days = fm.Days
	goal, err := strconv.Atoi(strings.TrimSpace(fm.Goal))
	if err != nil {
		return err
	}
	c.Goal = goal
	return nil
}
