package cleaner

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestShorten(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		maxLen int
		want   string
	}{
		{"empty", "", 60, ""},
		{"plain", "Wireless Mouse", 60, "Wireless Mouse"},
		{"retailer prefix", "Amazon.com: Wireless Mouse", 60, "Wireless Mouse"},
		{"regional prefix", "amazon.co.uk : Kettle", 60, "Kettle"},
		{"by clause", "The Go Programming Language by Alan Donovan", 60, "The Go Programming Language"},
		{"only the last by clause", "Stand by Me by Ben E. King", 60, "Stand by Me"},
		{"by inside a one-word head", "Stand by Me", 60, "Stand by Me"},
		{"long tail after by", "Side by Side Refrigerator, Stainless", 60, "Side by Side Refrigerator, Stainless"},
		{"by clause with brand words", "Espresso Machine by De Longhi", 60, "Espresso Machine"},
		{"pipe", "Wireless Mouse | Electronics | Amazon", 60, "Wireless Mouse"},
		{"brackets", "Wireless Mouse (Black) [2024 Model] {Refurb}", 60, "Wireless Mouse"},
		{"nested parens", "Cable (USB-C (2m)) Braided", 60, "Cable Braided"},
		{"whitespace", "  Wireless    Mouse  ", 60, "Wireless Mouse"},
		{"everything", "Amazon.com: Logitech MX Master 3S (Graphite) by Logitech | Computers", 60, "Logitech MX Master 3S"},
		{"prefix behind brackets", "(New) Amazon.com: Desk Lamp", 60, "Desk Lamp"},
		{"truncated", "abcdefghij", 5, "abcd…"},
		{"exact length kept", "abcde", 5, "abcde"},
		{"default max length", strings.Repeat("x", 70), 0, strings.Repeat("x", 59) + "…"},
		{"multibyte truncation", "Kaffeemühle Edelstahl", 10, "Kaffeemüh…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shorten(tt.raw, tt.maxLen); got != tt.want {
				t.Errorf("Shorten(%q, %d) = %q, want %q", tt.raw, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestShorten_Idempotent(t *testing.T) {
	inputs := []string{
		"Amazon.com: Logitech MX Master 3S (Graphite) by Logitech | Computers",
		"Stand by Me by Ben E. King",
		"Side by Side Refrigerator, Stainless",
		"Coffee Grinder by Baratza by Baratza Inc",
		"(Renewed) Amazon: Amazon: Echo Dot [3rd Gen]",
		"Plain title with   spaces",
		"Amazon.com : ",
		"",
	}
	for _, in := range inputs {
		once := Shorten(in, 200)
		twice := Shorten(once, 200)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestShorten_TruncationLaw(t *testing.T) {
	for maxLen := 1; maxLen <= 20; maxLen++ {
		in := strings.Repeat("word ", 10)
		got := Shorten(in, maxLen)
		cleaned := NormalizeSpace(in)

		if utf8.RuneCountInString(cleaned) > maxLen {
			if n := utf8.RuneCountInString(got); n != maxLen {
				t.Errorf("maxLen=%d: output has %d runes: %q", maxLen, n, got)
			}
			if !strings.HasSuffix(got, Ellipsis) {
				t.Errorf("maxLen=%d: output %q lacks ellipsis", maxLen, got)
			}
		} else if got != cleaned {
			t.Errorf("maxLen=%d: short input changed: %q", maxLen, got)
		}
	}
}
