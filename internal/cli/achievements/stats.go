package achievements

import (
	"context"
	"fmt"

	"github.com/julianstephens/keepstreak/internal/cli"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	s, err := ctx.Service.Stats(context.Background(), ctx.UserID)
	if err != nil {
		return err
	}

	weekend := "no"
	if s.HasWeekendCompletion {
		weekend = "yes"
	}
	rows := [][]string{
		{"Total completions", fmt.Sprintf("%d", s.TotalCompletions)},
		{"Current streak", fmt.Sprintf("%d", s.CurrentStreak)},
		{"Best streak", fmt.Sprintf("%d", s.BestStreak)},
		{"Perfect days (30d)", fmt.Sprintf("%d", s.PerfectDays)},
		{"Weekend completion", weekend},
	}
	ctx.Println(cli.TitleStyle.Render("Statistics"))
	ctx.Println(cli.Table([]string{"Metric", "Value"}, rows))
	return nil
}
