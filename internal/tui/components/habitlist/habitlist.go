package habitlist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/stats"
	"github.com/julianstephens/keepstreak/internal/utils"
)

// ToggleHabitMsg asks for today's record of Habit to be flipped
type ToggleHabitMsg struct {
	Habit models.Habit
}

// AdjustHabitMsg asks for Delta to be added to today's progress of Habit
type AdjustHabitMsg struct {
	Habit models.Habit
	Delta float64
}

type Item struct {
	Habit models.Habit
	Today time.Time
}

func (i Item) Title() string {
	mark := "[ ]"
	if i.Habit.DoneOn(i.Today) {
		mark = "[x]"
	} else if !i.Habit.IsScheduledOn(i.Today) {
		mark = "[-]"
	}
	return fmt.Sprintf("%s %s %s", mark, i.Habit.Icon, i.Habit.Name)
}

func (i Item) Description() string {
	var parts []string
	if i.Habit.IsQuantified() {
		progress := 0.0
		if c, ok := i.Habit.CompletionOn(i.Today); ok {
			progress = c.Progress
		}
		p := fmt.Sprintf("%g/%d", progress, i.Habit.EffectiveGoal())
		if i.Habit.GoalUnit != "" {
			p += " " + i.Habit.GoalUnit
		}
		parts = append(parts, p)
	}
	streak := stats.HabitStreak(i.Habit, i.Today)
	if streak.Active && streak.Current > 0 {
		parts = append(parts, fmt.Sprintf("🔥 %d", streak.Current))
	}
	parts = append(parts, utils.FormatWeekdays(i.Habit.ActiveDays))
	return strings.Join(parts, " | ")
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Toggle   key.Binding
	Increase key.Binding
	Decrease key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle done"),
		),
		Increase: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "progress +1"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "progress -1"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(habits []models.Habit, today time.Time, width, height int) Model {
	l := list.New(items(habits, today), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Increase, keys.Decrease}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func items(habits []models.Habit, today time.Time) []list.Item {
	out := make([]list.Item, len(habits))
	for i, h := range habits {
		out[i] = Item{Habit: h, Today: today}
	}
	return out
}

// SetHabits replaces the listed habits, keeping the cursor position
func (m *Model) SetHabits(habits []models.Habit, today time.Time) {
	m.list.SetItems(items(habits, today))
}

// Filtering reports whether the user is typing a filter
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Selected returns the highlighted habit
func (m Model) Selected() (models.Habit, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Habit, ok
}

func (m Model) Keys() KeyMap { return m.keys }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		if h, selected := m.Selected(); selected {
			switch {
			case key.Matches(msg, m.keys.Toggle):
				return m, func() tea.Msg { return ToggleHabitMsg{Habit: h} }
			case key.Matches(msg, m.keys.Increase):
				return m, func() tea.Msg { return AdjustHabitMsg{Habit: h, Delta: 1} }
			case key.Matches(msg, m.keys.Decrease):
				return m, func() tea.Msg { return AdjustHabitMsg{Habit: h, Delta: -1} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No habits yet.\n  Add one with 'keepstreak habit add <name>'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
