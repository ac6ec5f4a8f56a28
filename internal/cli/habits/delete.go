package habits

import (
	"context"
	"fmt"

	"github.com/julianstephens/keepstreak/internal/cli"
)

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name or ID to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	bg := context.Background()
	habit, err := ctx.Service.FindHabit(bg, ctx.UserID, c.Name, false)
	if err != nil {
		return err
	}
	if err := ctx.Service.DeleteHabit(bg, ctx.UserID, habit.ID); err != nil {
		return err
	}

	ctx.Printf("Deleted habit: %s\n", habit.Name)
	ctx.Println("(This is a soft delete. Use 'keepstreak habit restore' to undo)")
	return nil
}

type HabitRestoreCmd struct {
	Name string `arg:"" help:"Habit name or ID to restore."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	bg := context.Background()
	habit, err := ctx.Service.FindHabit(bg, ctx.UserID, c.Name, true)
	if err != nil {
		return err
	}
	if !habit.IsDeleted() {
		return fmt.Errorf("habit %q is not deleted", habit.Name)
	}
	if err := ctx.Service.RestoreHabit(bg, ctx.UserID, habit.ID); err != nil {
		return err
	}

	ctx.Printf("Restored habit: %s\n", habit.Name)
	return nil
}
