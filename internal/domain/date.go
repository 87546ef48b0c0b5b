package domain

import (
	"errors"
	"time"
)

// DateLayout is the textual calendar-date form used everywhere: planned
// dates, API path tokens, and week bounds. No time component.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// IsValidDate reports whether s is a well-formed calendar date in the fixed
// 10-character YYYY-MM-DD form.
func IsValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Today returns today's date in the local calendar.
func Today() string {
	return time.Now().Format(DateLayout)
}

// Tomorrow returns tomorrow's date in the local calendar.
func Tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format(DateLayout)
}

// NextDate returns the calendar day after date. Invalid input comes back
// unchanged; callers validate first.
func NextDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, 1).Format(DateLayout)
}

// WeekBounds returns the Monday and Sunday of the week containing ref.
// Monday is found by shifting back (weekday+6) mod 7 days, treating Sunday
// as weekday 0.
func WeekBounds(ref string) (weekStart, weekEnd string, err error) {
	t, err := time.Parse(DateLayout, ref)
	if err != nil {
		return "", "", ErrInvalidDate
	}
	monday := t.AddDate(0, 0, -((int(t.Weekday()) + 6) % 7))
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(DateLayout), sunday.Format(DateLayout), nil
}
