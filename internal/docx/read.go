package docx

import (
	"regexp"
	"strings"
)

var numberedRe = regexp.MustCompile(`^\s*\d+[.)]\s+(.*)$`)

// ReadQuestions returns the numbered questions below the Discussion
// heading of an exported worksheet, without their numbers.
func ReadQuestions(data []byte) ([]string, error) {
	paras, err := Paragraphs(data)
	if err != nil {
		return nil, err
	}
	disc := -1
	for i, p := range paras {
		if strings.TrimSpace(p) == discussionMarker {
			disc = i
			break
		}
	}
	if disc < 0 {
		return nil, ErrNoDiscussion
	}
	var out []string
	for _, p := range paras[disc+1:] {
		if m := numberedRe.FindStringSubmatch(p); m != nil {
			out = append(out, strings.TrimSpace(m[1]))
		}
	}
	return out, nil
}
