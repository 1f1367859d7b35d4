// Package temporal extracts Italian time references ("ieri", "la settimana
// scorsa", "a marzo") from a message and turns them into date ranges.
//
// Matching is by lower-cased substring and the first rule that matches wins.
// All ranges are whole days in the location of the reference time.
package temporal

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// Weekdays indexed by time.Weekday.
var weekdays = [...]string{"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato"}

// Months indexed by time.Month - 1.
var months = [...]string{
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
}

// rule matches a set of phrases and builds the range relative to now.
type rule struct {
	phrases     []string
	description string
	fuzzy       bool
	span        func(now time.Time) (from, to time.Time)
}

var rules = []rule{
	{
		phrases:     []string{"l'altro ieri", "l’altro ieri", "altroieri"},
		description: "l'altro ieri",
		span:        func(now time.Time) (time.Time, time.Time) { return day(now, -2) },
	},
	{
		phrases:     []string{"ieri"},
		description: "ieri",
		span:        func(now time.Time) (time.Time, time.Time) { return day(now, -1) },
	},
	{
		phrases:     []string{"oggi", "stamattina", "stasera"},
		description: "oggi",
		span:        func(now time.Time) (time.Time, time.Time) { return day(now, 0) },
	},
	{
		phrases:     []string{"questa settimana"},
		description: "questa settimana",
		span: func(now time.Time) (time.Time, time.Time) {
			return startOfDay(weekStart(now)), endOfDay(now)
		},
	},
	{
		phrases:     []string{"settimana scorsa", "la scorsa settimana"},
		description: "la settimana scorsa",
		span: func(now time.Time) (time.Time, time.Time) {
			start := weekStart(now)
			return startOfDay(start.AddDate(0, 0, -7)), endOfDay(start.AddDate(0, 0, -1))
		},
	},
	{
		phrases:     []string{"questo mese"},
		description: "questo mese",
		span: func(now time.Time) (time.Time, time.Time) {
			return monthStart(now.Year(), now.Month(), now.Location()), endOfDay(now)
		},
	},
	{
		phrases:     []string{"mese scorso", "lo scorso mese"},
		description: "il mese scorso",
		span: func(now time.Time) (time.Time, time.Time) {
			return month(now.Year(), now.Month()-1, now.Location())
		},
	},
	{
		phrases:     []string{"qualche giorno fa", "alcuni giorni fa"},
		description: "qualche giorno fa",
		fuzzy:       true,
		span:        func(now time.Time) (time.Time, time.Time) { return days(now, -5, -2) },
	},
	{
		phrases:     []string{"di recente", "ultimamente", "negli ultimi giorni", "ultimi giorni"},
		description: "di recente",
		fuzzy:       true,
		span:        func(now time.Time) (time.Time, time.Time) { return days(now, -7, 0) },
	},
	{
		phrases:     []string{"tempo fa"},
		description: "tempo fa",
		fuzzy:       true,
		span:        func(now time.Time) (time.Time, time.Time) { return days(now, -30, -14) },
	},
}

// Parse returns the time range referenced by message, or nil if it has none.
func Parse(message string, now time.Time) *domain.TemporalRange {
	text := strings.ToLower(message)

	for _, r := range rules {
		if !containsAny(text, r.phrases) {
			continue
		}
		from, to := r.span(now)
		return &domain.TemporalRange{From: from, To: to, Fuzzy: r.fuzzy, Description: r.description}
	}

	for i, name := range weekdays {
		if !strings.Contains(text, name) {
			continue
		}
		back := int(now.Weekday()) - i
		if back <= 0 {
			back += 7
		}
		from, to := day(now, -back)
		return &domain.TemporalRange{From: from, To: to, Description: name}
	}

	for i, name := range months {
		if !strings.Contains(text, name) {
			continue
		}
		year := now.Year()
		m := time.Month(i + 1)
		// A month later in the year than now refers to last year.
		if m > now.Month() {
			year--
		}
		from, to := month(year, m, now.Location())
		return &domain.TemporalRange{From: from, To: to, Description: "a " + name}
	}

	return nil
}

// HasIntent reports whether message contains a recognised time reference.
func HasIntent(message string, now time.Time) bool {
	return Parse(message, now) != nil
}

// FormatDate formats t in Italian, e.g. "martedì 14 ottobre 2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year())
}

// FormatTime formats t as HH:MM.
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// Greeting returns the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "Buongiorno"
	case h >= 12 && h < 18:
		return "Buon pomeriggio"
	case h >= 18 && h < 22:
		return "Buonasera"
	default:
		return "Buonanotte"
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// day returns the bounds of the day offset days from now.
func day(now time.Time, offset int) (time.Time, time.Time) {
	return days(now, offset, offset)
}

// days returns the span from the start of day fromOffset to the end of day toOffset.
func days(now time.Time, fromOffset, toOffset int) (time.Time, time.Time) {
	return startOfDay(now.AddDate(0, 0, fromOffset)), endOfDay(now.AddDate(0, 0, toOffset))
}

// weekStart returns the Monday of now's week.
func weekStart(now time.Time) time.Time {
	offset := int(now.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return now.AddDate(0, 0, -offset)
}

func monthStart(year int, m time.Month, loc *time.Location) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, loc)
}

// month returns the bounds of a calendar month. Out-of-range months
// normalise, so month 0 is December of the previous year.
func month(year int, m time.Month, loc *time.Location) (time.Time, time.Time) {
	start := monthStart(year, m, loc)
	last := start.AddDate(0, 1, -1)
	return start, endOfDay(last)
}
