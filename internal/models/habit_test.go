package models

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsDone(t *testing.T) {
	tests := []struct {
		name       string
		goal       int
		completion Completion
		want       bool
	}{
		{name: "boolean completed", goal: 1, completion: Completion{Completed: true}, want: true},
		{name: "boolean not completed", goal: 1, completion: Completion{Completed: false}, want: false},
		{name: "boolean ignores progress", goal: 1, completion: Completion{Completed: false, Progress: 5}, want: false},
		{name: "zero goal treated as boolean", goal: 0, completion: Completion{Completed: true}, want: true},
		{name: "quantified reached", goal: 8, completion: Completion{Progress: 8}, want: true},
		{name: "quantified exceeded", goal: 8, completion: Completion{Progress: 9.5}, want: true},
		{name: "quantified below goal ignores stale flag", goal: 8, completion: Completion{Completed: true, Progress: 7}, want: false},
		{name: "quantified reached ignores stale flag", goal: 3, completion: Completion{Completed: false, Progress: 3}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Habit{Goal: tt.goal}
			if got := h.IsDone(tt.completion); got != tt.want {
				t.Errorf("IsDone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeRecomputesCompleted(t *testing.T) {
	h := Habit{
		Goal: 8,
		Completions: []Completion{
			{Date: day("2024-01-01"), Completed: true, Progress: 5},
			{Date: day("2024-01-02").Add(13 * time.Hour), Completed: false, Progress: 8},
		},
	}

	n := h.Normalize()
	if n.Completions[0].Completed {
		t.Error("expected stale completed flag to be cleared")
	}
	if !n.Completions[1].Completed {
		t.Error("expected completed to be derived from progress")
	}
	if !n.Completions[1].Date.Equal(day("2024-01-02")) {
		t.Errorf("expected date to be normalized to midnight, got %v", n.Completions[1].Date)
	}
	if !h.Completions[0].Completed {
		t.Error("Normalize must not mutate the receiver")
	}
}

func TestCompletionOn(t *testing.T) {
	h := Habit{
		Goal:        1,
		Completions: []Completion{{Date: day("2024-01-03"), Completed: true}},
	}

	if _, ok := h.CompletionOn(day("2024-01-03").Add(20 * time.Hour)); !ok {
		t.Error("expected completion lookup to match by calendar day")
	}
	if _, ok := h.CompletionOn(day("2024-01-04")); ok {
		t.Error("unexpected completion on 2024-01-04")
	}
	if !h.DoneOn(day("2024-01-03")) {
		t.Error("expected DoneOn to be true")
	}
}

func TestIsScheduledOn(t *testing.T) {
	h := Habit{
		ActiveDays: []int{1, 2, 3, 4, 5},
		StartDate:  day("2024-01-02"),
	}

	tests := []struct {
		day  string
		want bool
	}{
		{day: "2024-01-01", want: false}, // Monday before start
		{day: "2024-01-02", want: true},  // Tuesday, start day
		{day: "2024-01-05", want: true},  // Friday
		{day: "2024-01-06", want: false}, // Saturday
		{day: "2024-01-07", want: false}, // Sunday
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			if got := h.IsScheduledOn(day(tt.day)); got != tt.want {
				t.Errorf("IsScheduledOn(%s) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

func TestEffectiveGoal(t *testing.T) {
	if (Habit{Goal: 0}).EffectiveGoal() != 1 {
		t.Error("goal 0 should be treated as 1")
	}
	if (Habit{Goal: -3}).IsQuantified() {
		t.Error("negative goal should not be quantified")
	}
	if !(Habit{Goal: 2}).IsQuantified() {
		t.Error("goal 2 should be quantified")
	}
}
