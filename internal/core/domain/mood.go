package domain

import "time"

// MoodLevel is one of five ordered sentiment categories.
type MoodLevel string

// Mood levels from most negative to most positive.
const (
	MoodVeryNegative MoodLevel = "molto_negativo"
	MoodNegative     MoodLevel = "negativo"
	MoodNeutral      MoodLevel = "neutro"
	MoodPositive     MoodLevel = "positivo"
	MoodVeryPositive MoodLevel = "molto_positivo"
)

// Valid returns true if the level is recognised.
func (m MoodLevel) Valid() bool {
	switch m {
	case MoodVeryNegative, MoodNegative, MoodNeutral, MoodPositive, MoodVeryPositive:
		return true
	default:
		return false
	}
}

// Number maps the level onto -2..2.
func (m MoodLevel) Number() int {
	switch m {
	case MoodVeryNegative:
		return -2
	case MoodNegative:
		return -1
	case MoodPositive:
		return 1
	case MoodVeryPositive:
		return 2
	default:
		return 0
	}
}

// Description returns an Italian phrase suitable for a prompt.
func (m MoodLevel) Description() string {
	switch m {
	case MoodVeryNegative:
		return "molto giù, in difficoltà"
	case MoodNegative:
		return "un po' giù o stressato"
	case MoodPositive:
		return "di buon umore"
	case MoodVeryPositive:
		return "molto positivo ed energico"
	default:
		return "tranquillo, nella norma"
	}
}

// String returns the string representation.
func (m MoodLevel) String() string {
	return string(m)
}

// MoodAnalysis is the heuristic reading of a single message.
type MoodAnalysis struct {
	Mood       MoodLevel `json:"mood"`
	Intensity  float64   `json:"intensity"`
	Confidence float64   `json:"confidence"`

	// Keywords are the matched terms of the winning level, at most five.
	Keywords []string `json:"keywords"`
}

// MoodEntry is the persisted form of an analysis.
// Storing it is the responsibility of the caller.
type MoodEntry struct {
	Mood      MoodLevel `json:"mood"`
	Intensity float64   `json:"intensity"`
	Keywords  []string  `json:"keywords"`
	Timestamp time.Time `json:"timestamp"`
}

// Entry derives a MoodEntry stamped at the given time.
func (a *MoodAnalysis) Entry(at time.Time) MoodEntry {
	keywords := make([]string, len(a.Keywords))
	copy(keywords, a.Keywords)
	return MoodEntry{
		Mood:      a.Mood,
		Intensity: a.Intensity,
		Keywords:  keywords,
		Timestamp: at,
	}
}
