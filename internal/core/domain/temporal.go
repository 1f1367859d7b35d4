package domain

import "time"

// TemporalRange is a calendar interval derived from a natural-language
// time reference. It is computed per query and never persisted.
type TemporalRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	// Fuzzy is true for approximate idioms like "qualche giorno fa".
	Fuzzy bool `json:"fuzzy"`

	// Description is a short Italian label, e.g. "ieri".
	Description string `json:"description"`
}

// Contains reports whether t falls within the range, inclusive.
func (r TemporalRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}
