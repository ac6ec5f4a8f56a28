package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/keepstreak/internal/achievements"
	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/tui/components/habitlist"
)

// chrome is the vertical space taken by tabs, footer and help
const chrome = 5

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := docStyle.GetFrameSize()
		w, ht := msg.Width-h, msg.Height-v-chrome
		m.habitList.SetSize(w, ht)
		m.achievementTable.SetSize(w, ht)
		m.statsView.SetSize(w, ht)
		return m, nil

	case dataLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		today := m.svc.Today()
		m.stats = msg.stats
		m.habitList.SetHabits(msg.habits, today)
		m.achievementTable.SetAchievements(msg.achievements)
		m.statsView.SetStats(msg.stats, msg.habits, today)
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.status
		return m, m.load()

	case checkedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = unlockStatus(msg.unlocked)
		return m, m.load()

	case habitlist.ToggleHabitMsg:
		return m, m.toggle(msg.Habit)

	case habitlist.AdjustHabitMsg:
		if !msg.Habit.IsQuantified() {
			m.status = fmt.Sprintf("%s has no numeric goal; use space to toggle", msg.Habit.Name)
			return m, nil
		}
		return m, m.adjust(msg.Habit, msg.Delta)

	case tea.KeyMsg:
		if m.state == constants.StateHabits && m.habitList.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % constants.SessionState(len(tabs))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state + constants.SessionState(len(tabs)) - 1) % constants.SessionState(len(tabs))
			return m, nil
		case key.Matches(msg, m.keys.Check):
			return m, m.check()
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			return m, m.load()
		}
	}

	switch m.state {
	case constants.StateHabits:
		m.habitList, cmd = m.habitList.Update(msg)
		cmds = append(cmds, cmd)
	case constants.StateAchievements:
		m.achievementTable, cmd = m.achievementTable.Update(msg)
		cmds = append(cmds, cmd)
	case constants.StateStats:
		m.statsView, cmd = m.statsView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func progressStatus(h models.Habit, c models.Completion) string {
	s := fmt.Sprintf("%s: %g/%d", h.Name, c.Progress, h.EffectiveGoal())
	if h.GoalUnit != "" {
		s += " " + h.GoalUnit
	}
	if h.IsDone(c) {
		s = "✓ " + s
	}
	return s
}

func unlockStatus(ids []string) string {
	if len(ids) == 0 {
		return "No new achievements"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if def, ok := achievements.ByID(id); ok {
			names = append(names, def.Name)
			continue
		}
		names = append(names, id)
	}
	return "🏆 Unlocked: " + strings.Join(names, ", ")
}
