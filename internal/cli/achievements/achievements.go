// Package achievements holds the achievement and statistics commands.
package achievements

import (
	"context"
	"fmt"

	catalog "github.com/julianstephens/keepstreak/internal/achievements"
	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/utils"
)

type AchievementCmd struct {
	List  AchievementListCmd  `cmd:"" default:"withargs" help:"List achievements and progress."`
	Check AchievementCheckCmd `cmd:"" help:"Evaluate achievements now and show new unlocks."`
}

type AchievementListCmd struct {
	Locked   bool   `help:"Only show achievements not yet unlocked."`
	Category string `short:"c" help:"Only show one category (streak|completion|habit|milestone|special)."`
}

func (c *AchievementListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	statuses, err := ctx.Service.ListAchievements(context.Background(), ctx.UserID)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(statuses))
	unlocked := 0
	for _, s := range statuses {
		if s.Unlocked {
			unlocked++
		}
		if c.Locked && s.Unlocked {
			continue
		}
		if c.Category != "" && string(s.Category) != c.Category {
			continue
		}
		rows = append(rows, []string{
			s.Icon,
			s.Name,
			s.Description,
			string(s.Rarity),
			statusLabel(s),
		})
	}

	ctx.Println(cli.TitleStyle.Render(fmt.Sprintf("Achievements (%d/%d unlocked)", unlocked, len(statuses))))
	if len(rows) == 0 {
		ctx.Println("Nothing to show.")
		return nil
	}
	ctx.Println(cli.Table([]string{"", "Name", "Description", "Rarity", "Status"}, rows))
	return nil
}

func statusLabel(s models.AchievementStatus) string {
	if s.Unlocked {
		label := "unlocked"
		if s.UnlockedAt != nil {
			label += " " + utils.FormatDay(*s.UnlockedAt)
		}
		return cli.SuccessStyle.Render(label)
	}
	return cli.MutedStyle.Render("locked")
}

func describe(id string) string {
	def, ok := catalog.ByID(id)
	if !ok {
		return id
	}
	return fmt.Sprintf("%s %s: %s", def.Icon, def.Name, def.Description)
}

type AchievementCheckCmd struct{}

func (c *AchievementCheckCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	result, err := ctx.Service.EvaluateAchievements(context.Background(), ctx.UserID)
	if err != nil {
		return err
	}
	if len(result.Unlocked) == 0 {
		ctx.Println("No new achievements.")
		return nil
	}

	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("Unlocked %d new achievement(s):", len(result.Unlocked))))
	for _, id := range result.Unlocked {
		ctx.Printf("  %s\n", describe(id))
	}
	return nil
}
