// Package calendar holds the day-level date helpers shared by fetchers and the merger.
// A day is a time.Time at UTC midnight.
package calendar

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Day truncates t to its calendar day, keeping t's wall-clock date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads the leading YYYY-MM-DD of s, so "2025-05-08 14:30:00" parses too.
func Parse(s string) (time.Time, error) {
	if len(s) < len(Layout) {
		return time.Time{}, fmt.Errorf("parse date %q: too short", s)
	}
	t, err := time.Parse(Layout, s[:len(Layout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Range returns every day in [start, end]. Empty when end precedes start.
func Range(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Quarters counts the calendar quarters touched by [start, end]:
// whole years*4 plus whole months/3 of the difference, plus one.
func Quarters(start, end time.Time) int {
	years, months := monthsBetween(Day(start), Day(end))
	if years < 0 || months < 0 {
		return 1
	}
	return years*4 + months/3 + 1
}

// monthsBetween returns the whole years and leftover whole months from a to b.
func monthsBetween(a, b time.Time) (int, int) {
	total := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		total--
	}
	return total / 12, total % 12
}
