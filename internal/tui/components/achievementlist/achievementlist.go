// Package achievementlist renders the achievement catalog as a table.
package achievementlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/utils"
)

var columns = []table.Column{
	{Title: "", Width: 3},
	{Title: "Name", Width: 22},
	{Title: "Description", Width: 40},
	{Title: "Rarity", Width: 10},
	{Title: "Status", Width: 20},
}

type Model struct {
	table    table.Model
	unlocked int
	total    int
}

func New(width, height int) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)

	return Model{table: t}
}

func (m *Model) SetAchievements(statuses []models.AchievementStatus) {
	rows := make([]table.Row, 0, len(statuses))
	m.unlocked = 0
	for _, s := range statuses {
		status := "locked"
		icon := "·"
		if s.Unlocked {
			m.unlocked++
			icon = s.Icon
			status = "unlocked"
			if s.UnlockedAt != nil {
				status += " " + utils.FormatDay(*s.UnlockedAt)
			}
		}
		rows = append(rows, table.Row{icon, s.Name, s.Description, string(s.Rarity), status})
	}
	m.total = len(statuses)
	m.table.SetRows(rows)
}

// Summary returns the unlocked count line shown above the table
func (m Model) Summary() string {
	return fmt.Sprintf("%d/%d unlocked", m.unlocked, m.total)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.Summary() + "\n\n" + m.table.View()
}

func (m *Model) SetSize(width, height int) {
	m.table.SetWidth(width)
	// Leave room for the summary line
	m.table.SetHeight(max(height-2, 1))
}
