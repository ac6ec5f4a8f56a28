// Package tui is the interactive terminal interface for tracking today's
// habits and browsing achievements.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/tracker"
	"github.com/julianstephens/keepstreak/internal/tui/components/achievementlist"
	"github.com/julianstephens/keepstreak/internal/tui/components/habitlist"
	"github.com/julianstephens/keepstreak/internal/tui/components/statsview"
)

var tabs = []string{"Habits", "Achievements", "Stats"}

// dataLoadedMsg carries a full refresh of everything the TUI shows
type dataLoadedMsg struct {
	habits       []models.Habit
	achievements []models.AchievementStatus
	stats        models.UserStats
	err          error
}

type mutationDoneMsg struct {
	status string
	err    error
}

type checkedMsg struct {
	unlocked []string
	err      error
}

type Model struct {
	svc              *tracker.Service
	userID           string
	state            constants.SessionState
	keys             KeyMap
	help             help.Model
	habitList        habitlist.Model
	achievementTable achievementlist.Model
	statsView        statsview.Model
	stats            models.UserStats
	status           string
	err              error
	quitting         bool
	width            int
	height           int
}

func NewModel(svc *tracker.Service, userID string) Model {
	return Model{
		svc:              svc,
		userID:           userID,
		state:            constants.StateHabits,
		keys:             DefaultKeyMap(),
		help:             help.New(),
		habitList:        habitlist.New(nil, svc.Today(), 0, 0),
		achievementTable: achievementlist.New(0, 0),
		statsView:        statsview.New(0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help, m.keys.Check}
	if m.state == constants.StateHabits {
		hk := m.habitList.Keys()
		keys = append(keys, hk.Toggle, hk.Increase, hk.Decrease)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	actions := []key.Binding{m.keys.Check, m.keys.Refresh}
	if m.state == constants.StateHabits {
		hk := m.habitList.Keys()
		actions = append(actions, hk.Toggle, hk.Increase, hk.Decrease)
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

// load reads habits, achievements and stats in one pass
func (m Model) load() tea.Cmd {
	svc, userID := m.svc, m.userID
	return func() tea.Msg {
		ctx := context.Background()
		habits, err := svc.Habits(ctx, userID, false)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		statuses, err := svc.ListAchievements(ctx, userID)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		s, err := svc.Stats(ctx, userID)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		return dataLoadedMsg{habits: habits, achievements: statuses, stats: s}
	}
}

// toggle flips today's state. Quantified habits jump to the goal or back to
// zero; the rest flip the completed flag.
func (m Model) toggle(h models.Habit) tea.Cmd {
	svc, userID, today := m.svc, m.userID, m.svc.Today()
	return func() tea.Msg {
		ctx := context.Background()
		done := h.DoneOn(today)
		if h.IsQuantified() {
			target := float64(h.EffectiveGoal())
			if done {
				target = 0
			}
			_, err := svc.AdjustProgress(ctx, userID, h.ID, today, tracker.ProgressChange{Progress: &target})
			return mutationDoneMsg{status: statusFor(h, !done), err: err}
		}
		_, err := svc.RecordCompletion(ctx, userID, h.ID, today, !done, nil)
		return mutationDoneMsg{status: statusFor(h, !done), err: err}
	}
}

func statusFor(h models.Habit, done bool) string {
	if done {
		return "✓ " + h.Name + " done"
	}
	return h.Name + " marked not done"
}

func (m Model) adjust(h models.Habit, delta float64) tea.Cmd {
	svc, userID, today := m.svc, m.userID, m.svc.Today()
	return func() tea.Msg {
		c, err := svc.AdjustProgress(context.Background(), userID, h.ID, today, tracker.ProgressChange{Increment: &delta})
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{status: progressStatus(h, c)}
	}
}

func (m Model) check() tea.Cmd {
	svc, userID := m.svc, m.userID
	return func() tea.Msg {
		result, err := svc.EvaluateAchievements(context.Background(), userID)
		return checkedMsg{unlocked: result.Unlocked, err: err}
	}
}
