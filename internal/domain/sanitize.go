package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	tagRe      = regexp.MustCompile(`<[^>]*>`)
	usernameRe = regexp.MustCompile(`[^a-z0-9_.@-]`)
)

// CleanText normalizes free text coming from the feed: NFC form, no markup,
// no control characters, surrounding whitespace trimmed.
func CleanText(s string) string {
	s = norm.NFC.String(s)
	s = tagRe.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// CleanUsername applies the platform username rules: lower case and only
// letters, digits and the characters _ . @ - are kept.
func CleanUsername(s string) string {
	s = strings.ToLower(CleanText(s))
	return usernameRe.ReplaceAllString(s, "")
}
