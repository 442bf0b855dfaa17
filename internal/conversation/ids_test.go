package conversation

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateID()
		if err != nil {
			t.Fatalf("GenerateID: %v", err)
		}
		if !strings.HasPrefix(id, "cv-") {
			t.Fatalf("id %q missing cv- prefix", id)
		}
		if !ValidID(id) {
			t.Fatalf("generated id %q fails ValidID", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"cv-mf1x2a3b4c5d", true},
		{"cv-z", true},
		{"", false},
		{"cv-", false},
		{"mf1x2a3b4c5d", false},
		{"cv-UPPER", false},
		{"cv-has space", false},
		{"cv-semi;colon", false},
		{"cv-" + strings.Repeat("a", 30), false},
	}
	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
