package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/keepstreak/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateHabits:
		content = m.habitList.View()
	case constants.StateAchievements:
		content = m.achievementTable.View()
	case constants.StateStats:
		content = m.statsView.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		docStyle.Render(content),
		m.viewFooter(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	rendered := make([]string, 0, len(tabs))
	for i, title := range tabs {
		if m.state == constants.SessionState(i) {
			rendered = append(rendered, activeTabStyle.Render(title))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) viewFooter() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return footerStyle.Render(fmt.Sprintf(
		"🔥 %d day streak | best %d | %d completions | %s",
		m.stats.CurrentStreak, m.stats.BestStreak, m.stats.TotalCompletions, m.achievementTable.Summary(),
	))
}
