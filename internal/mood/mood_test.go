package mood

import "testing"

func TestValid_AllMembers(t *testing.T) {
	for _, m := range All {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
}

func TestValid_Rejects(t *testing.T) {
	for _, raw := range []string{"curious", "", "ecstatic", "HAPPY "} {
		if Mood(raw).Valid() {
			t.Errorf("%q should not be valid", raw)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Mood
	}{
		{"exact", "angry", Angry},
		{"uppercase", "ANGRY", Angry},
		{"surrounding whitespace", "  satisfied\n", Satisfied},
		{"wrapped in prose", "The customer seems frustrated.", Frustrated},
		{"quoted", `"excited"`, Excited},
		{"unknown falls back", "curious", Neutral},
		{"empty falls back", "", Neutral},
		{"garbage falls back", "{}!!$%", Neutral},
		{"json-ish output", `{"mood": "disappointed"}`, Disappointed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.raw); got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParse_AlwaysInEnumeration(t *testing.T) {
	adversarial := []string{
		"", "null", "I cannot classify this", "mood: unknown",
		"happy sad angry", string([]byte{0xff, 0xfe}), "42",
	}
	for _, raw := range adversarial {
		if got := Parse(raw); !got.Valid() {
			t.Errorf("Parse(%q) = %q, not in enumeration", raw, got)
		}
	}
}

func TestScore_UnknownIsNeutral(t *testing.T) {
	if got := Mood("curious").Score(); got != Neutral.Score() {
		t.Errorf("unknown mood score = %d, want %d", got, Neutral.Score())
	}
}

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name    string
		history []Mood
		want    Trend
	}{
		{"empty", nil, Trend{}},
		{"single entry", []Mood{Neutral}, Trend{}},
		{"improving", []Mood{Angry, Frustrated, Happy}, Trend{Improving: 2}},
		{"declining", []Mood{Excited, Neutral, Angry}, Trend{Declining: 2}},
		{"stable equal scores", []Mood{Happy, Excited}, Trend{Stable: 1}},
		{
			"mixed",
			[]Mood{Neutral, Angry, Satisfied, Satisfied, Happy},
			Trend{Improving: 2, Declining: 1, Stable: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeTrend(tt.history); got != tt.want {
				t.Errorf("ComputeTrend() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeTrend_CountsSumToNMinusOne(t *testing.T) {
	histories := [][]Mood{
		{Angry, Happy, Neutral, Neutral, Excited, Disappointed},
		{Neutral, Neutral},
		All,
	}
	for _, h := range histories {
		tr := ComputeTrend(h)
		if sum := tr.Improving + tr.Declining + tr.Stable; sum != len(h)-1 {
			t.Errorf("trend counts sum = %d, want %d for history %v", sum, len(h)-1, h)
		}
	}
}
