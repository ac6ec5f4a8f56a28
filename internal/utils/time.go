package utils

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/keepstreak/internal/constants"
)

// DayOf returns the UTC calendar day containing t, as UTC midnight.
// Every day-keyed record in the application goes through this function.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDay returns the YYYY-MM-DD key of t's UTC calendar day.
func FormatDay(t time.Time) string {
	return DayOf(t).Format(constants.DateFormat)
}

// ParseDate accepts either a calendar date (YYYY-MM-DD) or an RFC 3339
// timestamp and returns the UTC day it falls on.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(constants.DateFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return DayOf(t), nil
}

// ISOWeekday returns the UTC weekday of t numbered 1 (Monday) through 7 (Sunday).
func ISOWeekday(t time.Time) int {
	wd := int(t.UTC().Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// IsWeekend reports whether t's UTC calendar day is a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.UTC().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DayOf(b).Sub(DayOf(a)).Hours() / 24)
}

var weekdayNames = map[string]int{
	"mon": 1, "monday": 1,
	"tue": 2, "tues": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thur": 4, "thurs": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"sun": 7, "sunday": 7,
}

var shortWeekdays = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ParseWeekdays parses a comma separated list of weekdays. Names ("mon"),
// ISO numbers ("1") and the shorthands "daily", "weekdays" and "weekends"
// are accepted. The result is sorted and free of duplicates.
func ParseWeekdays(s string) ([]int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return nil, fmt.Errorf("at least one weekday is required")
	case "daily", "everyday", "all":
		return []int{1, 2, 3, 4, 5, 6, 7}, nil
	case "weekdays":
		return []int{1, 2, 3, 4, 5}, nil
	case "weekends":
		return []int{6, 7}, nil
	}

	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, ok := weekdayNames[part]
		if !ok {
			n, err := strconv.Atoi(part)
			if err != nil || n < 1 || n > 7 {
				return nil, fmt.Errorf("invalid weekday %q", part)
			}
			day = n
		}
		if !slices.Contains(days, day) {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one weekday is required")
	}
	slices.Sort(days)
	return days, nil
}

// FormatWeekdays renders ISO weekday numbers as short names.
func FormatWeekdays(days []int) string {
	if len(days) == 7 {
		return "Daily"
	}
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 1 && d <= 7 {
			names = append(names, shortWeekdays[d])
		}
	}
	return strings.Join(names, ",")
}
