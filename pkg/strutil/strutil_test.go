package strutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short unchanged", "OFAC", 10, "OFAC"},
		{"exact boundary unchanged", "exactly10!", 10, "exactly10!"},
		{"one over boundary", "exactly11!x", 10, "exactly..."},
		{"zero maxLen", "anything", 0, ""},
		{"tiny maxLen no marker", "abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestCut(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"short unchanged", "1.5 ETH", 30, "1.5 ETH"},
		{"long cut without marker", strings.Repeat("x", 40), 30, strings.Repeat("x", 30)},
		{"multibyte runes kept whole", "ação-ação", 3, "açã"},
		{"zero", "abc", 0, ""},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cut(tt.input, tt.n)
			if got != tt.want {
				t.Errorf("Cut(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Cut produced invalid UTF-8: %q", got)
			}
			if again := Cut(got, tt.n); again != got {
				t.Errorf("Cut is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestAbbrev(t *testing.T) {
	hash := "0x" + strings.Repeat("ab", 32)
	if got := Abbrev(hash, 20); got != hash[:20]+"..." {
		t.Errorf("Abbrev(hash, 20) = %q", got)
	}
	if got := Abbrev("0xshort", 20); got != "0xshort" {
		t.Errorf("Abbrev short = %q, want unchanged", got)
	}
	exact := strings.Repeat("a", 20)
	if got := Abbrev(exact, 20); got != exact {
		t.Errorf("Abbrev exact = %q, want unchanged", got)
	}
}
