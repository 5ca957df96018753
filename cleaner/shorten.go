package cleaner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/use-agent/pricetag/config"
)

// Ellipsis replaces the last kept character of a truncated title.
const Ellipsis = "…"

var (
	reRetailerPrefix = regexp.MustCompile(`(?i)^(?:\s*amazon(?:\.[a-z]{2,3}){0,2}\s*:\s*)+`)
	reBracketed      = regexp.MustCompile(`\([^()]*\)|\[[^\[\]]*\]|\{[^{}]*\}`)

	// reByClause matches a final "by <brand>" of at most three comma-free
	// words after a head of at least two words, so "Stand by Me" and
	// "Side by Side Refrigerator, Stainless" survive.
	reByClause = regexp.MustCompile(`(?i)^(\S+\s+.*\S)\s+by\s+[^\s,]+(?:\s+[^\s,]+){0,2}$`)
)

// Shorten turns a raw product title into a short, display-safe string for
// spreadsheet cells.
//
// In order: a leading "Amazon.com:" style prefix is dropped, then a trailing
// short "by <brand>" clause, then everything from the first pipe. Bracketed
// segments are removed, whitespace is collapsed and the result is cut to
// maxLen runes, the last of which becomes an ellipsis. maxLen <= 0 falls
// back to config.DefaultTitleMaxLen.
func Shorten(raw string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = config.DefaultTitleMaxLen
	}

	s := NormalizeSpace(raw)
	// A pass can expose another match (e.g. a prefix hidden behind a
	// bracketed segment), so repeat until stable. Each pass only shrinks s.
	for {
		next := cleanTitle(s)
		if next == s {
			break
		}
		s = next
	}

	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + Ellipsis
}

func cleanTitle(s string) string {
	s = reRetailerPrefix.ReplaceAllString(s, "")
	s = reByClause.ReplaceAllString(s, "$1")
	if i := strings.IndexByte(s, '|'); i >= 0 {
		s = s[:i]
	}
	for reBracketed.MatchString(s) {
		s = reBracketed.ReplaceAllString(s, " ")
	}
	return NormalizeSpace(s)
}
