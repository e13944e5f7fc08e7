package strings

import "testing"

func TestPluralize(t *testing.T) {
	tests := []struct {
		word  string
		count int
		want  string
	}{
		{"course", 0, "courses"},
		{"course", 1, "course"},
		{"course", 2, "courses"},
	}
	for _, tt := range tests {
		if got := Pluralize(tt.word, tt.count); got != tt.want {
			t.Errorf("Pluralize(%q, %d) = %q, want %q", tt.word, tt.count, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	if got := Count(1, "Order bump"); got != "1 order bump" {
		t.Errorf("Count(1) = %q", got)
	}
	if got := Count(3, "Sales page"); got != "3 sales pages" {
		t.Errorf("Count(3) = %q", got)
	}
}
