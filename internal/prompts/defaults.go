// Package prompts holds the model prompt templates for question generation
// and the instruction blocks that tune them.
package prompts

// Templates are the two prompt templates a session uses.
type Templates struct {
	Batch  string
	Single string
}

const defaultHeader = "You are an ESL materials writer for an online {modifier}{unit_level} discussion class.\n" +
	"UNIT: {unit_title}\nCONTENT TOPICS:\n{topics}\nTARGET VOCABULARY (optional): {vocab}\n" +
	"CEFR TIER: {cefr_tier}\n\n"

const defaultBatch = defaultHeader +
	"RULES\n- EXACTLY 15 questions, numbered 1–15, one per line.\n" +
	"- Each is ONE sentence, 12–20 words, ends with '?'.\n" +
	"- Use the topics; distribute evenly; high-frequency English, CEFR {unit_level}.\n" +
	"- {tier_instructions}\n" +
	"- Avoid clichés/filler (amazing/awesome/etc.).\n" +
	"OUTPUT: only the 15 numbered questions."

const defaultSingle = defaultHeader +
	"TASK: Write ONE NEW question (12–20 words, one sentence, ends with '?').\n" +
	"- {tier_instructions}\n" +
	"Avoid clichés. Do not repeat any of these:\n{existing_questions}\n" +
	SingleOutputLine

// SingleOutputLine closes the single-question template. Feedback is
// inserted in front of it.
const SingleOutputLine = "OUTPUT: only the question text."

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() Templates {
	return Templates{Batch: defaultBatch, Single: defaultSingle}
}
