// Package questions parses model output into discussion questions and keeps
// a question list at exactly Count entries.
package questions

import (
	"errors"
	"regexp"
	"slices"
	"strings"
)

// Count is the number of questions in a unit.
const Count = 15

const (
	// Filler pads a batch that came back short.
	Filler = "How could this topic affect an everyday situation at home, work, or school?"
	// SingleFallback replaces an empty single regeneration.
	SingleFallback = "What everyday example fits this topic for you?"
)

var ErrEmpty = errors.New("question is empty")

var (
	numberedRe = regexp.MustCompile(`^\s*(\d+)[.)]\s+(.*)\?$`)
	bulletRe   = regexp.MustCompile(`^[-*\x{2022}]\s+(.*)\?$`)
	splitRe    = regexp.MustCompile(`\s*\d+[.)]\s+`)
	markerRe   = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*\x{2022}])\s+`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Parse extracts up to max questions from free text. Numbered and bulleted
// lines ending in "?" are taken first. When none match, the text is split
// on inline numbers instead. Results are cleaned and de-duplicated
// case-insensitively.
func Parse(text string, max int) []string {
	var found []string
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		if m := numberedRe.FindStringSubmatch(s); m != nil {
			found = append(found, strings.TrimSpace(m[2])+"?")
			continue
		}
		if m := bulletRe.FindStringSubmatch(s); m != nil {
			found = append(found, strings.TrimSpace(m[1])+"?")
		}
	}
	if len(found) == 0 {
		for _, part := range splitRe.Split(text, -1) {
			part = strings.TrimSpace(part)
			if strings.HasSuffix(part, "?") {
				found = append(found, part)
			}
		}
	}
	if max >= 0 && len(found) > max {
		found = found[:max]
	}
	return Clean(found)
}

// Clean tidies each question and forces its trailing "?". Blank entries
// and case-insensitive duplicates are dropped.
func Clean(qs []string) []string {
	out := make([]string, 0, len(qs))
	seen := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		q = clean(q)
		if q == "?" {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}

// ParseList reads a hand-written question list. Numbered or bulleted items
// may wrap onto the following lines. A list without any markers has one
// question per non-empty line.
func ParseList(text string, max int) []string {
	lines := strings.Split(text, "\n")
	marked := slices.ContainsFunc(lines, markerRe.MatchString)

	var items []string
	for _, line := range lines {
		s := strings.TrimSpace(line)
		switch {
		case s == "":
		case !marked:
			items = append(items, s)
		case markerRe.MatchString(s):
			items = append(items, markerRe.ReplaceAllString(s, ""))
		case len(items) > 0:
			items[len(items)-1] += " " + s
		}
	}
	qs := Clean(items)
	if max >= 0 && len(qs) > max {
		qs = qs[:max]
	}
	return qs
}

func clean(q string) string {
	q = collapse(q)
	q = strings.Trim(q, "\"”")
	q = strings.TrimRight(q, " \t")
	return withQuestionMark(q)
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func withQuestionMark(q string) string {
	if strings.HasSuffix(q, "?") {
		return q
	}
	return strings.TrimRight(q, ".! ") + "?"
}

// ParseSingle extracts one question from a regeneration response.
func ParseSingle(text string) string {
	if qs := Parse(text, 1); len(qs) > 0 {
		return qs[0]
	}
	first := strings.TrimSpace(strings.SplitN(strings.TrimSpace(text), "\n", 2)[0])
	if !strings.HasSuffix(first, "?") {
		first = strings.TrimRight(first, ".! ")
		if first == "" {
			return SingleFallback
		}
		first += "?"
	}
	return collapse(first)
}

// EnsureFifteen cleans qs and truncates or pads it to Count entries.
func EnsureFifteen(qs []string) []string {
	out := make([]string, 0, Count)
	for _, q := range qs {
		q = collapse(q)
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == Count {
			break
		}
	}
	for len(out) < Count {
		out = append(out, Filler)
	}
	return out
}

// Normalize cleans a hand-edited question and makes sure it ends in "?".
func Normalize(q string) (string, error) {
	q = collapse(q)
	if q == "" {
		return "", ErrEmpty
	}
	q = withQuestionMark(q)
	if q == "?" {
		return "", ErrEmpty
	}
	return q, nil
}
