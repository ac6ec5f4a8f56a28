package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/models"
)

const logNameWidth = 20

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	if c.Days < 1 {
		return fmt.Errorf("days must be at least 1")
	}

	bg := context.Background()
	var habits []models.Habit
	if c.Habit != "" {
		h, err := ctx.Service.FindHabit(bg, ctx.UserID, c.Habit, false)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	} else {
		all, err := ctx.Service.Habits(bg, ctx.UserID, false)
		if err != nil {
			return err
		}
		habits = all
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	endDay := ctx.Service.Today()
	startDay := endDay.AddDate(0, 0, -(c.Days - 1))

	var b strings.Builder
	fmt.Fprintf(&b, "Habit log (last %d days):\n\n", c.Days)
	b.WriteString(pad("Habit", logNameWidth))
	for i := 0; i < c.Days; i++ {
		fmt.Fprintf(&b, " %5s", startDay.AddDate(0, 0, i).Format("01/02"))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", logNameWidth+6*c.Days))
	b.WriteString("\n")

	// x done, . scheduled but missed, blank not scheduled
	for _, h := range habits {
		b.WriteString(pad(h.Name, logNameWidth))
		for i := 0; i < c.Days; i++ {
			day := startDay.AddDate(0, 0, i)
			switch {
			case h.DoneOn(day):
				b.WriteString("  x   ")
			case h.IsScheduledOn(day):
				b.WriteString("  .   ")
			default:
				b.WriteString("      ")
			}
		}
		b.WriteString("\n")
	}

	ctx.Printf("%s", b.String())
	return nil
}

// pad truncates or right-pads name to width runes
func pad(name string, width int) string {
	r := []rune(name)
	if len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return name + strings.Repeat(" ", width-len(r))
}
