package statsview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/stats"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginTop(1)
)

type Model struct {
	viewport viewport.Model
	stats    *models.UserStats
	habits   []models.Habit
	today    time.Time
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.stats == nil {
		return "Loading statistics..."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetStats(s models.UserStats, habits []models.Habit, today time.Time) {
	m.stats = &s
	m.habits = habits
	m.today = today
	m.Render()
}

func (m *Model) Render() {
	if m.stats == nil {
		m.viewport.SetContent("No statistics loaded.")
		return
	}

	var b strings.Builder
	line := func(label string, value any) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label), valueStyle.Render(fmt.Sprint(value)))
	}

	line("Total completions", m.stats.TotalCompletions)
	line("Current streak", m.stats.CurrentStreak)
	line("Best streak", m.stats.BestStreak)
	line("Perfect days (30d)", m.stats.PerfectDays)
	weekend := "no"
	if m.stats.HasWeekendCompletion {
		weekend = "yes"
	}
	line("Weekend completion", weekend)

	if len(m.habits) > 0 {
		b.WriteString(headingStyle.Render("Streaks by habit"))
		b.WriteString("\n")
		for _, h := range m.habits {
			s := stats.HabitStreak(h, m.today)
			current := 0
			if s.Active {
				current = s.Current
			}
			line(h.Name, fmt.Sprintf("%d current / %d best", current, s.Best))
		}
	}
	m.viewport.SetContent(b.String())
}
