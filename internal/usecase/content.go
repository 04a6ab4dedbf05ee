package usecase

import (
	"regexp"
	"strings"
)

// Model output arrives with unpredictable markdown dressing. The store holds
// plain text, so everything posted goes through CleanContent first.
var (
	reBold      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reItalic    = regexp.MustCompile(`\*([^*]+)\*`)
	reUnderBold = regexp.MustCompile(`__([^_]+)__`)
	reUnder     = regexp.MustCompile(`_([^_]+)_`)
	reHeader    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reBullet    = regexp.MustCompile(`(?m)^[-*+]\s+`)
	reNumbered  = regexp.MustCompile(`(?m)^\d+\.\s+`)
	reCodeBlock = regexp.MustCompile("(?s)```.*?```")
	reCode      = regexp.MustCompile("`([^`]+)`")
	reQuote     = regexp.MustCompile(`(?m)^>\s+`)
	reNewlines  = regexp.MustCompile(`\n{3,}`)

	reTitleLabel = regexp.MustCompile(`(?i)^TITLE:\s*`)
)

// CleanContent strips markdown markers and collapses whitespace. The result
// is a fixed point: cleaning already-clean text changes nothing. Every rule
// only removes characters, so the loop terminates.
func CleanContent(text string) string {
	for {
		cleaned := cleanOnce(text)
		if cleaned == text {
			return cleaned
		}
		text = cleaned
	}
}

func cleanOnce(text string) string {
	text = reBold.ReplaceAllString(text, "$1")
	text = reItalic.ReplaceAllString(text, "$1")
	text = reUnderBold.ReplaceAllString(text, "$1")
	text = reUnder.ReplaceAllString(text, "$1")
	text = reHeader.ReplaceAllString(text, "")
	text = reBullet.ReplaceAllString(text, "")
	text = reNumbered.ReplaceAllString(text, "")
	text = reCodeBlock.ReplaceAllString(text, "")
	text = reCode.ReplaceAllString(text, "$1")
	text = reQuote.ReplaceAllString(text, "")
	text = reNewlines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	text = trimWrappingQuotes(text)
	return strings.TrimSpace(text)
}

// trimWrappingQuotes removes every layer of surrounding quote characters,
// however deeply a completion nests them.
func trimWrappingQuotes(s string) string {
	for {
		t := s
		if len(t) > 0 && (t[0] == '"' || t[0] == '\'') {
			t = t[1:]
		}
		if len(t) > 0 && (t[len(t)-1] == '"' || t[len(t)-1] == '\'') {
			t = t[:len(t)-1]
		}
		if t == s {
			return s
		}
		s = t
	}
}

// CleanTitle normalizes a blog or challenge title: strips a leading TITLE:
// label, markdown, and wrapping quotes.
func CleanTitle(title string) string {
	title = reTitleLabel.ReplaceAllString(strings.TrimSpace(title), "")
	return CleanContent(title)
}

// Truncate bounds a string to max bytes. Store columns have fixed widths.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
