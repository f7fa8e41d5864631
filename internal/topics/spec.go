// Package topics turns free-form unit notes into a title, topic list and
// target vocabulary.
package topics

import (
	"regexp"
	"strings"
)

// Spec is a parsed unit block.
type Spec struct {
	Title  string
	Topics []string
	Vocab  []string
}

var (
	vocabLineRe = regexp.MustCompile(`(?i)^vocab\s*:\s*(.*)$`)
	unitLineRe  = regexp.MustCompile(`(?i)^\s*unit\s*\d+[A-B]?\s*[-–]\s*(.+)$`)
	vocabSepRe  = regexp.MustCompile(`[,"\x{201C}\x{201D}\x{2022};]+`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// ParseSpec reads a block such as
//
//	Unit 3A - Looking Back
//	* childhood memories
//	Vocab: nostalgia, recall
//
// The first "Unit N - Title" line sets the title. "Vocab:" starts a
// vocabulary list that runs until the next bullet or unit line. Bullets and
// other short lines are topics.
func ParseSpec(raw string) Spec {
	var (
		spec       Spec
		titleSet   bool
		vocabMode  bool
		vocabParts []string
		topicLines []string
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if !titleSet {
			if m := unitLineRe.FindStringSubmatch(line); m != nil {
				spec.Title, titleSet = strings.TrimSpace(m[1]), true
				continue
			}
			if strings.HasPrefix(lower, "unit") && strings.Contains(line, "-") {
				spec.Title, titleSet = strings.TrimSpace(strings.SplitN(line, "-", 2)[1]), true
				continue
			}
		}
		if m := vocabLineRe.FindStringSubmatch(line); m != nil {
			if first := strings.TrimSpace(m[1]); first != "" {
				vocabParts = append(vocabParts, first)
			}
			vocabMode = true
			continue
		}
		if vocabMode {
			if isBullet(line) || strings.HasPrefix(lower, "unit") {
				vocabMode = false
			} else {
				vocabParts = append(vocabParts, line)
				continue
			}
		}
		switch {
		case isBullet(line):
			topicLines = append(topicLines, strings.TrimSpace(strings.TrimLeft(line, "*- ")))
		case !strings.HasPrefix(lower, "vocab"):
			if len(strings.Fields(line)) <= 12 && !strings.HasSuffix(line, "?") {
				topicLines = append(topicLines, line)
			}
		}
	}

	if len(vocabParts) > 0 {
		spec.Vocab = splitVocab(strings.Join(vocabParts, " "), vocabSepRe)
	}
	for _, t := range topicLines {
		t = strings.Trim(spaceRe.ReplaceAllString(t, " "), " .")
		if t == "" || strings.HasPrefix(strings.ToLower(t), "vocab") {
			continue
		}
		spec.Topics = append(spec.Topics, t)
	}
	return spec
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "*") || strings.HasPrefix(line, "-")
}

func splitVocab(s string, sep *regexp.Regexp) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, w := range sep.Split(s, -1) {
		w = strings.Trim(strings.TrimSpace(w), " .;:,")
		if w == "" {
			continue
		}
		key := strings.ToLower(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}

// SplitVocab splits a comma separated vocabulary field.
func SplitVocab(field string) []string {
	var out []string
	for _, w := range strings.Split(field, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// FormatTopics renders topics as "* topic" lines.
func FormatTopics(topics []string) string {
	lines := make([]string, 0, len(topics))
	for _, t := range topics {
		lines = append(lines, "* "+t)
	}
	return strings.Join(lines, "\n")
}

// ParseBlock parses raw as a unit block. The title falls back to
// fallbackTitle when the block has no unit line.
func ParseBlock(raw, fallbackTitle string) (title, topicsText string, vocab []string) {
	spec := ParseSpec(raw)
	title = spec.Title
	if title == "" {
		title = fallbackTitle
	}
	return title, FormatTopics(spec.Topics), spec.Vocab
}
