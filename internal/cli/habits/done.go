package habits

import (
	"context"
	"fmt"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/tracker"
	"github.com/julianstephens/keepstreak/internal/utils"
)

type HabitDoneCmd struct {
	Name     string   `arg:"" help:"Habit name or ID."`
	Date     string   `help:"Date in YYYY-MM-DD format (default: today)."`
	Progress *float64 `short:"p" help:"Progress toward the goal for quantified habits."`
	Undo     bool     `help:"Record the day as not done."`
}

func (c *HabitDoneCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	day, err := resolveDay(ctx, c.Date)
	if err != nil {
		return err
	}
	bg := context.Background()
	habit, err := ctx.Service.FindHabit(bg, ctx.UserID, c.Name, false)
	if err != nil {
		return err
	}

	completion, err := ctx.Service.RecordCompletion(bg, ctx.UserID, habit.ID, day, !c.Undo, c.Progress)
	if err != nil {
		return err
	}

	verb := "Marked"
	if !habit.IsDone(completion) {
		verb = "Unmarked"
	}
	msg := fmt.Sprintf("%s habit %q for %s", verb, habit.Name, utils.FormatDay(day))
	if label := progressLabel(habit, completion); label != "" {
		msg += fmt.Sprintf(" (%s)", label)
	}
	ctx.Println(msg)
	return nil
}

type HabitProgressCmd struct {
	Name string   `arg:"" help:"Habit name or ID."`
	Date string   `help:"Date in YYYY-MM-DD format (default: today)."`
	Set  *float64 `help:"Set progress to an absolute value." xor:"amount" required:""`
	Add  *float64 `help:"Add to the current progress (negative values subtract)." xor:"amount" required:""`
}

func (c *HabitProgressCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	day, err := resolveDay(ctx, c.Date)
	if err != nil {
		return err
	}
	bg := context.Background()
	habit, err := ctx.Service.FindHabit(bg, ctx.UserID, c.Name, false)
	if err != nil {
		return err
	}

	completion, err := ctx.Service.AdjustProgress(bg, ctx.UserID, habit.ID, day, tracker.ProgressChange{
		Progress:  c.Set,
		Increment: c.Add,
	})
	if err != nil {
		return err
	}

	status := "in progress"
	if habit.IsDone(completion) {
		status = cli.SuccessStyle.Render("done")
	}
	ctx.Printf("%s on %s: %g/%d %s\n", habit.Name, utils.FormatDay(day), completion.Progress, habit.EffectiveGoal(), status)
	return nil
}

type HabitClearCmd struct {
	Name string `arg:"" help:"Habit name or ID."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitClearCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	day, err := resolveDay(ctx, c.Date)
	if err != nil {
		return err
	}
	bg := context.Background()
	habit, err := ctx.Service.FindHabit(bg, ctx.UserID, c.Name, false)
	if err != nil {
		return err
	}
	if err := ctx.Service.ClearCompletion(bg, ctx.UserID, habit.ID, day); err != nil {
		return err
	}

	ctx.Printf("Cleared %q for %s\n", habit.Name, utils.FormatDay(day))
	return nil
}
