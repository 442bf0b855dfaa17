// Package mood defines the canonical mood enumeration used for
// classification, storage, and trend analytics.
package mood

import "strings"

// Mood is one of the fixed sentiment categories a conversation can carry.
type Mood string

// The canonical mood enumeration. Every layer (classification, storage,
// admin analytics) references this set; there is no display-only variant.
const (
	Happy        Mood = "happy"
	Frustrated   Mood = "frustrated"
	Confused     Mood = "confused"
	Angry        Mood = "angry"
	Satisfied    Mood = "satisfied"
	Neutral      Mood = "neutral"
	Excited      Mood = "excited"
	Disappointed Mood = "disappointed"
)

// All lists every valid mood, in display order.
var All = []Mood{Happy, Frustrated, Confused, Angry, Satisfied, Neutral, Excited, Disappointed}

// scores maps each mood to a sentiment score used for trend direction.
// Higher is better.
var scores = map[Mood]int{
	Angry:        1,
	Frustrated:   2,
	Disappointed: 2,
	Confused:     3,
	Neutral:      3,
	Satisfied:    4,
	Happy:        5,
	Excited:      5,
}

// Valid reports whether m is a member of the enumeration.
func (m Mood) Valid() bool {
	_, ok := scores[m]
	return ok
}

// Score returns the sentiment score for m. Unknown moods score as Neutral.
func (m Mood) Score() int {
	if s, ok := scores[m]; ok {
		return s
	}
	return scores[Neutral]
}

// Parse normalizes raw classifier output to a canonical mood. Anything that
// does not resolve to a member of the enumeration falls back to Neutral.
func Parse(raw string) Mood {
	m := Mood(strings.ToLower(strings.TrimSpace(raw)))
	if m.Valid() {
		return m
	}
	// Classifiers occasionally wrap the label in prose or punctuation;
	// accept the first word that matches.
	for _, field := range strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		if cand := Mood(field); cand.Valid() {
			return cand
		}
	}
	return Neutral
}

// Trend holds counts of adjacent mood-score transitions in a conversation's
// mood history. Improving + Declining + Stable always equals n-1 for a
// history of n entries.
type Trend struct {
	Improving int
	Declining int
	Stable    int
}

// ComputeTrend counts pairwise score transitions over a chronological
// sequence of moods.
func ComputeTrend(history []Mood) Trend {
	var t Trend
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1].Score(), history[i].Score()
		switch {
		case cur > prev:
			t.Improving++
		case cur < prev:
			t.Declining++
		default:
			t.Stable++
		}
	}
	return t
}
