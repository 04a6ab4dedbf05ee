package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"agora/internal/domain"
)

// Agents answer in labelled free text, not JSON. The extraction helpers
// here are deliberately tolerant: they always produce a usable value, and
// garbage degrades to defaults rather than errors.

var (
	reFirstNumber = regexp.MustCompile(`\d+`)
	reJSONObject  = regexp.MustCompile(`\{[^{}]*\}`)
)

// labelLine matches `LABEL: value` on its own line, case-insensitively,
// capturing to end of line. The first match wins.
func labelLine(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^\s*` + regexp.QuoteMeta(label) + `:\s*(.+?)\s*$`)
}

// labelBlock matches `LABEL:` and captures everything after it, so
// multi-paragraph values survive.
func labelBlock(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)` + regexp.QuoteMeta(label) + `:\s*(.+)`)
}

// ExtractLine returns the single-line value of a labelled field, or "".
func ExtractLine(text, label string) string {
	m := labelLine(label).FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractBlock returns the multi-line value of a labelled field, or "".
func ExtractBlock(text, label string) string {
	m := labelBlock(label).FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractInt returns the first number in a labelled field's value, clamped
// to [min, max]. Missing or unparseable fields yield def.
func ExtractInt(text, label string, def, min, max int) int {
	v := ExtractLine(text, label)
	if v == "" {
		return clamp(def, min, max)
	}
	m := reFirstNumber.FindString(v)
	if m == "" {
		return clamp(def, min, max)
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return clamp(def, min, max)
	}
	return clamp(n, min, max)
}

// FirstChoice returns the first number found anywhere in the text, clamped
// to [1, max]. Used for numbered-menu answers; def applies when no number
// appears at all.
func FirstChoice(text string, max, def int) int {
	m := reFirstNumber.FindString(text)
	if m == "" {
		return clamp(def, 1, max)
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return clamp(def, 1, max)
	}
	return clamp(n, 1, max)
}

// SecondChoice returns the second number in the text, falling back to def.
// Menu answers like "2, enter challenge 3" carry the action in the first
// number and the target in the second.
func SecondChoice(text string, max, def int) int {
	nums := reFirstNumber.FindAllString(text, 2)
	if len(nums) < 2 {
		return clamp(def, 1, max)
	}
	n, err := strconv.Atoi(nums[1])
	if err != nil {
		return clamp(def, 1, max)
	}
	return clamp(n, 1, max)
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// ExtractAction parses the per-cycle decision completion. It is total:
// any input yields a structurally valid decision, with REST as the
// default action and a wait clamped to [1, 30] minutes.
func ExtractAction(text string) domain.ActionDecision {
	action := ExtractInt(text, "ACTION", int(domain.ActionRest), 1, domain.ActionKindCount)
	wait := ExtractInt(text, "WAIT_AFTER", 5, 1, 30)
	reason := ExtractLine(text, "REASON")

	return domain.ActionDecision{
		Kind:        domain.ActionKind(action),
		Reason:      reason,
		WaitMinutes: wait,
	}
}

// SplitTitleBody parses a completion expected to carry TITLE and a body
// under bodyLabel. Unlabelled completions degrade to first line as title,
// remainder as body.
func SplitTitleBody(text, bodyLabel string) (title, body string) {
	title = ExtractLine(text, "TITLE")
	if title != "" {
		body = ExtractBlock(text, bodyLabel)
		if body == "" {
			// Drop the title line, keep the rest.
			if m := labelLine("TITLE").FindStringIndex(text); m != nil {
				body = strings.TrimSpace(text[m[1]:])
			}
		}
		return CleanTitle(title), strings.TrimSpace(body)
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) == 0 {
		return "", ""
	}
	title = CleanTitle(nonEmpty[0])
	body = strings.TrimSpace(strings.Join(nonEmpty[1:], "\n"))
	body = strings.TrimSpace(reBodyLabel(bodyLabel).ReplaceAllString(body, ""))
	return title, body
}

func reBodyLabel(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(label) + `:\s*`)
}

// ExtractJSONObject returns the first flat JSON object literal in the text,
// or "". Identity prompts ask for JSON but models wrap it in prose.
func ExtractJSONObject(text string) string {
	return reJSONObject.FindString(text)
}
