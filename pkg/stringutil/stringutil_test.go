package stringutil

import (
	"testing"
)

func TestEllipsis(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{"fits", "hello world", 20, "hello world"},
		{"cut with ellipsis", "The quick brown fox jumps over the lazy dog", 16, "The quick bro..."},
		{"too short for ellipsis", "abcdefg", 3, "abc"},
		{"trims spaces first", "   padded string   ", 10, "padded ..."},
		{"flattens lines", "foo\nbar\r\nbaz", 10, "foo bar..."},
		{"empty", "", 5, ""},
		{"negative length", "abc", -1, ""},
		{"zero length", "abc", 0, ""},
		{"counts runes", "héllo wörld", 8, "héllo..."},
		{"multibyte fits", "日本語", 3, "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ellipsis(tt.input, tt.maxLength); got != tt.expected {
				t.Errorf("Ellipsis(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.expected)
			}
		})
	}
}
