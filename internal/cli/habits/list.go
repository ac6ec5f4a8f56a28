package habits

import (
	"context"
	"fmt"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/stats"
	"github.com/julianstephens/keepstreak/internal/utils"
)

type HabitListCmd struct {
	Deleted bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	habits, err := ctx.Service.Habits(context.Background(), ctx.UserID, c.Deleted)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found. Add one with 'keepstreak habit add'.")
		return nil
	}

	today := ctx.Service.Today()
	rows := make([][]string, 0, len(habits))
	done := 0
	scheduled := 0
	for _, h := range habits {
		status := "[ ]"
		progress := ""
		if c, ok := h.CompletionOn(today); ok {
			progress = progressLabel(h, c)
			if h.IsDone(c) {
				status = "[x]"
			}
		} else if h.IsQuantified() {
			progress = fmt.Sprintf("0/%d", h.EffectiveGoal())
		}
		if h.IsDeleted() {
			status = "[DELETED]"
		} else if h.IsScheduledOn(today) {
			scheduled++
			if h.DoneOn(today) {
				done++
			}
		} else {
			status = cli.MutedStyle.Render("rest")
		}

		streak := stats.HabitStreak(h, today)
		current := "-"
		if streak.Active && streak.Current > 0 {
			current = fmt.Sprintf("%d", streak.Current)
		}

		rows = append(rows, []string{
			status,
			h.Icon + " " + h.Name,
			string(h.Type),
			utils.FormatWeekdays(h.ActiveDays),
			progress,
			current,
			fmt.Sprintf("%d", streak.Best),
		})
	}

	ctx.Println(cli.TitleStyle.Render(fmt.Sprintf("Habits for %s", utils.FormatDay(today))))
	ctx.Println(cli.Table([]string{"", "Habit", "Type", "Days", "Progress", "Streak", "Best"}, rows))
	ctx.Printf("Done today: %d/%d\n", done, scheduled)
	return nil
}
