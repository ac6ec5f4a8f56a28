package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	// Snapshot on startup, after the load succeeded
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(ctx.Service, ctx.UserID), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
