package topics

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Extraction is what topic extraction yields for the editor.
type Extraction struct {
	Title      string
	TopicsText string
	Vocab      []string
}

// Empty reports whether nothing useful was extracted.
func (e Extraction) Empty() bool {
	return strings.TrimSpace(e.TopicsText) == "" && len(e.Vocab) == 0
}

// maxExtractRunes bounds how much OCR text goes into the prompt.
const maxExtractRunes = 2000

// ExtractionPrompt asks the model for a title, a few discussion themes and
// key vocabulary from scanned text.
func ExtractionPrompt(text, fallbackTitle string) string {
	r := []rune(text)
	if len(r) > maxExtractRunes {
		r = r[:maxExtractRunes]
	}
	return fmt.Sprintf(`Analyze the following text and extract simple discussion topics for ESL students.

1. A simple unit title (if not obvious, use "%s")
2. 3-4 simple discussion topics (NOT questions - just topic themes like "favorite foods" or "travel experiences")
3. 5-8 key vocabulary words (comma-separated)

IMPORTANT: 
- Topics should be THEMES for discussion, NOT questions
- Keep topics simple and conversational
- Examples: "favorite foods", "travel experiences", "daily routines", "hobbies"
- Avoid complex academic topics

Text to analyze:
%s

Format your response as:
UNIT_TITLE: [simple title]
TOPICS:
* [topic theme 1]
* [topic theme 2] 
* [topic theme 3]
VOCAB: [word1, word2, word3, ...]`, fallbackTitle, string(r))
}

// ParseExtraction reads a response in the ExtractionPrompt format.
func ParseExtraction(resp, fallbackTitle string) Extraction {
	out := Extraction{Title: fallbackTitle}
	var topicList []string
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "UNIT_TITLE:"):
			if t := strings.TrimSpace(strings.TrimPrefix(line, "UNIT_TITLE:")); t != "" {
				out.Title = t
			}
		case strings.HasPrefix(line, "*"):
			if t := strings.TrimSpace(line[1:]); t != "" {
				topicList = append(topicList, t)
			}
		case strings.HasPrefix(line, "VOCAB:"):
			out.Vocab = SplitVocab(strings.TrimPrefix(line, "VOCAB:"))
		}
	}
	out.TopicsText = FormatTopics(topicList)
	return out
}

type theme struct {
	keywords []string
	topics   []string
}

var themes = []theme{
	{[]string{"food", "eat", "restaurant", "cooking", "meal"}, []string{"Favorite foods", "Cooking and recipes", "Restaurant experiences"}},
	{[]string{"travel", "trip", "vacation", "visit", "journey"}, []string{"Travel experiences", "Dream destinations", "Travel planning"}},
	{[]string{"work", "job", "career", "office", "business"}, []string{"Work and jobs", "Career goals", "Work-life balance"}},
	{[]string{"family", "parent", "child", "mother", "father"}, []string{"Family relationships", "Family traditions", "Childhood memories"}},
	{[]string{"sport", "music", "movie", "book", "game"}, []string{"Hobbies and interests", "Entertainment preferences", "Free time activities"}},
}

var generalTopics = []string{"Personal experiences", "Daily life", "General discussion"}

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`the a an and or but in on at to for of with by is are was were be been
		have has had do does did will would could should may might can this that these those
		i you he she it we they me him her us them`) {
		stopwords[w] = struct{}{}
	}
}

// SimpleExtraction guesses themes from keywords when no model is available.
// Vocabulary is the first eight alphabetic words longer than three letters
// that are not stopwords.
func SimpleExtraction(text, fallbackTitle string) Extraction {
	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		words[i] = strings.Trim(w, `.,!?;:"()[]{}`)
	}

	chosen := generalTopics
	for _, th := range themes {
		if slices.ContainsFunc(words, func(w string) bool { return slices.Contains(th.keywords, w) }) {
			chosen = th.topics
			break
		}
	}

	var vocab []string
	for _, w := range words {
		if len([]rune(w)) <= 3 || !isAlpha(w) {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		vocab = append(vocab, w)
		if len(vocab) == 8 {
			break
		}
	}

	return Extraction{Title: fallbackTitle, TopicsText: FormatTopics(chosen), Vocab: vocab}
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
