// Package stats derives aggregate streak and completion statistics from a
// user's habits. Everything here is pure: callers pass the habit set and the
// reference day explicitly.
package stats

import (
	"slices"
	"time"

	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/utils"
)

// Calculate aggregates statistics across every habit in the set.
//
// A day enters the done-day set when any habit has a done completion on it.
// TotalCompletions counts done completions, not days. Streaks are runs of
// consecutive done days; CurrentStreak is the run ending at the most recent
// done day, whether or not that day is today. PerfectDays counts the days in
// the trailing window ending today on which every scheduled, started habit
// was done.
func Calculate(habits []models.Habit, today time.Time) models.UserStats {
	var stats models.UserStats

	doneDays := make(map[time.Time]struct{})
	for _, h := range habits {
		for _, c := range h.Completions {
			if !h.IsDone(c) {
				continue
			}
			d := utils.DayOf(c.Date)
			doneDays[d] = struct{}{}
			stats.TotalCompletions++
			if utils.IsWeekend(d) {
				stats.HasWeekendCompletion = true
			}
		}
	}

	days := sortedDays(doneDays)
	stats.BestStreak, stats.CurrentStreak = streaks(days)
	stats.PerfectDays = perfectDays(habits, doneDays, utils.DayOf(today), constants.PerfectDayWindow)

	return stats
}

// DoneDays returns the distinct days on which any habit in the set was done,
// in ascending order.
func DoneDays(habits []models.Habit) []time.Time {
	set := make(map[time.Time]struct{})
	for _, h := range habits {
		for _, c := range h.Completions {
			if h.IsDone(c) {
				set[utils.DayOf(c.Date)] = struct{}{}
			}
		}
	}
	return sortedDays(set)
}

// Streak summarizes a single habit's runs of done days
type Streak struct {
	Best    int
	Current int
	// Active is true when the current run ends today or yesterday, so it can
	// still be extended.
	Active bool
}

// HabitStreak computes the streaks of one habit in isolation.
func HabitStreak(h models.Habit, today time.Time) Streak {
	days := DoneDays([]models.Habit{h})
	best, current := streaks(days)
	s := Streak{Best: best, Current: current}
	if len(days) > 0 {
		gap := utils.DaysBetween(days[len(days)-1], today)
		s.Active = gap == 0 || gap == 1
	}
	return s
}

func sortedDays(set map[time.Time]struct{}) []time.Time {
	days := make([]time.Time, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return days
}

// streaks walks ascending days and returns the longest run and the last run.
func streaks(days []time.Time) (best, current int) {
	if len(days) == 0 {
		return 0, 0
	}
	run := 1
	best = 1
	for i := 1; i < len(days); i++ {
		if utils.DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best, run
}

func perfectDays(habits []models.Habit, doneDays map[time.Time]struct{}, today time.Time, window int) int {
	count := 0
	for i := 0; i < window; i++ {
		d := today.AddDate(0, 0, -i)
		if _, ok := doneDays[d]; !ok {
			continue
		}
		if allScheduledDone(habits, d) {
			count++
		}
	}
	return count
}

func allScheduledDone(habits []models.Habit, d time.Time) bool {
	for _, h := range habits {
		if !h.IsScheduledOn(d) {
			continue
		}
		if !h.DoneOn(d) {
			return false
		}
	}
	return true
}
