package prompts

import (
	"strings"
)

// Options are the advanced generation settings.
type Options struct {
	Style             string
	QualityValidation bool
	Blooms            string
	Engagement        string
	Academic          bool
	Naturalness       bool
	Strictness        string
}

// DefaultOptions matches a fresh session.
func DefaultOptions() Options {
	return Options{
		Style:             "Standard",
		QualityValidation: true,
		Blooms:            Auto,
		Engagement:        Auto,
		Naturalness:       true,
		Strictness:        Auto,
	}
}

// Input is the unit being written for.
type Input struct {
	Title    string
	Level    string
	Tier     string
	Topics   string
	Vocab    []string
	Existing []string
	Feedback string
}

// advanced lists the optional blocks in the order they are appended.
var advanced = []string{
	"style_instructions",
	"quality_validation_instructions",
	"blooms_taxonomy_instructions",
	"engagement_level_instructions",
	"academic_background_instructions",
	"naturalness_instructions",
	"strictness_instructions",
}

// Vars returns every placeholder value for in and o.
func Vars(in Input, o Options) map[string]string {
	vocab := "(none)"
	if len(in.Vocab) > 0 {
		vocab = strings.Join(in.Vocab, ", ")
	}
	existing := make([]string, 0, len(in.Existing))
	for _, q := range in.Existing {
		existing = append(existing, "- "+q)
	}
	return map[string]string{
		"unit_level":         in.Level,
		"level":              in.Level,
		"modifier":           Modifier(in.Tier),
		"unit_title":         in.Title,
		"topics":             in.Topics,
		"vocab":              vocab,
		"cefr_tier":          in.Tier,
		"tier_instructions":  TierInstructions(in.Level, in.Tier),
		"existing_questions": strings.Join(existing, "\n"),

		"style_instructions":               StyleInstructions(o.Style),
		"quality_validation_instructions":  QualityInstructions(o.QualityValidation),
		"blooms_taxonomy_instructions":     BloomsInstructions(o.Blooms),
		"engagement_level_instructions":    EngagementInstructions(o.Engagement),
		"academic_background_instructions": AcademicInstructions(o.Academic),
		"naturalness_instructions":         NaturalnessInstructions(o.Naturalness),
		"strictness_instructions":          StrictnessInstructions(o.Strictness),
	}
}

// BuildBatch renders the fifteen-question prompt. When formatting fails the
// returned prompt is the raw template and err says why.
func BuildBatch(t Templates, in Input, o Options) (string, error) {
	return build(t.Batch, in, o, "")
}

// BuildSingle renders the one-question prompt, including the feedback
// section when in.Feedback is set.
func BuildSingle(t Templates, in Input, o Options) (string, error) {
	return build(t.Single, in, o, strings.TrimSpace(in.Feedback))
}

func build(template string, in Input, o Options, feedback string) (string, error) {
	vars := Vars(in, o)
	out, err := Format(template, vars)

	var extra []string
	for _, name := range advanced {
		if v := vars[name]; v != "" && !References(template, name) {
			extra = append(extra, v)
		}
	}
	if len(extra) > 0 {
		out = beforeOutput(out, strings.Join(extra, "\n\n")+"\n")
	}
	if feedback != "" {
		out = insertFeedback(out, feedback)
	}
	return out, err
}

// beforeOutput inserts section in front of the last "OUTPUT:" line, or
// appends it when there is none.
func beforeOutput(prompt, section string) string {
	i := strings.LastIndex(prompt, "\nOUTPUT:")
	if i < 0 {
		return strings.TrimRight(prompt, "\n") + "\n\n" + section
	}
	return prompt[:i+1] + section + prompt[i+1:]
}

// FeedbackSection asks the model to rewrite a question the teacher rejected.
func FeedbackSection(feedback string) string {
	return "\nFEEDBACK ON PREVIOUS QUESTION: " + feedback + "\n\n" +
		"IMPORTANT: Generate a completely new question from scratch that addresses the feedback above. \n" +
		"- If the feedback mentions the question is too easy/hard, adjust the difficulty accordingly\n" +
		"- If the feedback mentions grammar issues, ensure perfect grammar\n" +
		"- If the feedback mentions relevance, make it more relevant to the unit topics\n" +
		"- If the feedback mentions clarity, make it clearer and more specific\n" +
		"- If the feedback mentions engagement, make it more interesting and thought-provoking\n" +
		"- Completely rewrite the question rather than just making minor adjustments\n"
}

func insertFeedback(prompt, feedback string) string {
	section := FeedbackSection(feedback)
	if strings.Contains(prompt, SingleOutputLine) {
		return strings.Replace(prompt, SingleOutputLine, section+"\n"+SingleOutputLine, 1)
	}
	return prompt + "\n" + section
}
