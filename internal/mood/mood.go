// Package mood estimates the sentiment of an Italian message with a weighted
// keyword lexicon. It is passive and best-effort: no model calls are made.
package mood

import (
	"math"
	"strings"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// minTokens is the shortest message worth analysing.
const minTokens = 3

// negationWindow is how many runes before a keyword are searched for a negation.
const negationWindow = 15

// negationWeight scales the credit given to the inverted level.
const negationWeight = 0.7

// intensityBoost is added when the message contains an intensifier.
const intensityBoost = 0.2

// maxKeywords caps the keywords reported for the winning level.
const maxKeywords = 5

type group struct {
	words  []string
	weight float64
}

// levels fixes the scan order; ties go to the earlier level.
var levels = []domain.MoodLevel{
	domain.MoodVeryPositive,
	domain.MoodPositive,
	domain.MoodNeutral,
	domain.MoodNegative,
	domain.MoodVeryNegative,
}

var lexicon = map[domain.MoodLevel][]group{
	domain.MoodVeryPositive: {
		{[]string{"felicissimo", "fantastico", "meraviglioso", "stupendo", "incredibile"}, 1.0},
		{[]string{"entusiasta", "esaltato", "euforico", "al settimo cielo"}, 0.9},
		{[]string{"super", "wow", "grandioso", "perfetto", "eccezionale"}, 0.8},
	},
	domain.MoodPositive: {
		{[]string{"felice", "contento", "soddisfatto", "sereno", "tranquillo"}, 1.0},
		{[]string{"bene", "benissimo", "ottimo", "ok", "va bene"}, 0.7},
		{[]string{"grazie", "interessante", "bello", "carino", "piacevole"}, 0.5},
		{[]string{"speranza", "fiducia", "ottimista", "positivo"}, 0.8},
	},
	domain.MoodNeutral: {
		{[]string{"normale", "solito", "così così", "insomma", "mah"}, 1.0},
		{[]string{"non so", "forse", "vedremo", "dipende"}, 0.6},
	},
	domain.MoodNegative: {
		{[]string{"triste", "giù", "abbattuto", "demotivato", "sconfortato"}, 1.0},
		{[]string{"stanco", "esausto", "stressato", "nervoso", "irritato"}, 0.8},
		{[]string{"preoccupato", "ansioso", "agitato", "teso"}, 0.9},
		{[]string{"male", "non bene", "difficile", "dura", "faticoso"}, 0.7},
		{[]string{"deluso", "frustrato", "scocciato", "stufo"}, 0.8},
	},
	domain.MoodVeryNegative: {
		{[]string{"disperato", "devastato", "distrutto", "a pezzi"}, 1.0},
		{[]string{"depresso", "angosciato", "terrorizzato", "panico"}, 0.9},
		{[]string{"odio", "non ce la faccio", "voglio morire", "basta"}, 1.0},
		{[]string{"incubo", "orribile", "terribile", "pessimo"}, 0.8},
	},
}

var negations = []string{"non", "niente", "mai", "neanche", "nemmeno", "mica"}

var intensifiers = []string{"molto", "tanto", "troppo", "davvero", "veramente", "proprio", "così"}

var inversions = map[domain.MoodLevel]domain.MoodLevel{
	domain.MoodVeryPositive: domain.MoodNegative,
	domain.MoodPositive:     domain.MoodNegative,
	domain.MoodNeutral:      domain.MoodNeutral,
	domain.MoodNegative:     domain.MoodPositive,
	domain.MoodVeryNegative: domain.MoodPositive,
}

var baseIntensity = map[domain.MoodLevel]float64{
	domain.MoodVeryNegative: 0.9,
	domain.MoodNegative:     0.6,
	domain.MoodNeutral:      0.3,
	domain.MoodPositive:     0.6,
	domain.MoodVeryPositive: 0.9,
}

type score struct {
	total    float64
	keywords []string
}

// Analyze returns the dominant mood of message, or nil when the message is
// too short or matches nothing.
func Analyze(message string) *domain.MoodAnalysis {
	text := strings.ToLower(message)
	if len(strings.Fields(text)) < minTokens {
		return nil
	}

	scores := make(map[domain.MoodLevel]*score, len(levels))
	for _, l := range levels {
		scores[l] = &score{}
	}

	for _, level := range levels {
		for _, g := range lexicon[level] {
			for _, word := range g.words {
				idx := strings.Index(text, word)
				if idx < 0 {
					continue
				}
				if negated(text, idx) {
					s := scores[inversions[level]]
					s.total += g.weight * negationWeight
					s.keywords = append(s.keywords, "non "+word)
					continue
				}
				s := scores[level]
				s.total += g.weight
				s.keywords = append(s.keywords, word)
			}
		}
	}

	var (
		best    float64
		winner  domain.MoodLevel
		winning []string
	)
	for _, l := range levels {
		if s := scores[l]; s.total > best {
			best, winner, winning = s.total, l, s.keywords
		}
	}
	if best == 0 {
		return nil
	}

	intensity := baseIntensity[winner]
	if containsAny(text, intensifiers) {
		intensity += intensityBoost
	}

	return &domain.MoodAnalysis{
		Mood:       winner,
		Intensity:  math.Min(intensity, 1),
		Confidence: math.Min(best/2, 1),
		Keywords:   dedupe(winning, maxKeywords),
	}
}

// negated reports whether a negation occurs in the runes just before idx.
func negated(text string, idx int) bool {
	before := []rune(text[:idx])
	if len(before) > negationWindow {
		before = before[len(before)-negationWindow:]
	}
	return containsAny(string(before), negations)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// dedupe keeps the first occurrence of each keyword, up to limit.
func dedupe(words []string, limit int) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, min(len(words), limit))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}
