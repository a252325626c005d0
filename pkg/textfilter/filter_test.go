package textfilter

import (
	"testing"
)

func TestReplyFilter_Filter(t *testing.T) {
	f := NewReplyFilter()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple replacement",
			input:    "What the hell is this price?",
			expected: "What the heck is this price?",
		},
		{
			name:     "uppercase",
			input:    "DAMN, fine.",
			expected: "DANG, fine.",
		},
		{
			name:     "title case",
			input:    "Hell no, sixty is my price.",
			expected: "Heck no, sixty is my price.",
		},
		{
			name:     "longest match first",
			input:    "You asshole.",
			expected: "You jerk.",
		},
		{
			name:     "word boundaries",
			input:    "A classical lantern, passed down.",
			expected: "A classical lantern, passed down.",
		},
		{
			name:     "clean text untouched",
			input:    "Eighty coins and not a copper less.",
			expected: "Eighty coins and not a copper less.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Filter(tt.input); got != tt.expected {
				t.Errorf("Filter(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestReplyFilter_Contains(t *testing.T) {
	f := NewReplyFilter()
	if !f.Contains("oh crap") {
		t.Error("expected profanity to be detected")
	}
	if f.Contains("a scrappy deal") {
		t.Error("partial words must not match")
	}
}

func TestAppliesTo(t *testing.T) {
	for rating, want := range map[string]bool{
		"G": true, "pg": true, " PG-13 ": true, "PG13": true,
		"R": false, "": false,
	} {
		if got := AppliesTo(rating); got != want {
			t.Errorf("AppliesTo(%q) = %v, want %v", rating, got, want)
		}
	}
}
