package prompts

import "strings"

// Auto disables an optional instruction block.
const Auto = "Auto"

// Modifier is the class label prefix for a tier.
func Modifier(tier string) string {
	switch tier {
	case "Upper":
		return "Upper "
	case "Lower":
		return "Lower "
	default:
		return ""
	}
}

func levelBand(level string) string {
	switch level {
	case "A1", "A2":
		return "A"
	case "B1", "B1+":
		return "B1"
	default:
		return "B2+"
	}
}

// TierInstructions adjusts grammar and vocabulary within a CEFR level.
// Unknown tiers are treated as Upper.
func TierInstructions(level, tier string) string {
	band := levelBand(level)
	switch tier {
	case "Lower":
		switch band {
		case "A":
			return "Use simple present tense, basic vocabulary, and straightforward questions like 'Do you...?', 'Can you...?', 'Do you like...?'"
		case "B1":
			return "Use simple to intermediate structures, common vocabulary, and questions like 'Do you think...?', 'Have you ever...?', 'Would you like to...?'"
		default:
			return "Use intermediate structures, avoid overly complex grammar, and focus on practical, everyday questions"
		}
	case "Neutral":
		switch band {
		case "A":
			return "Use appropriate structures for the level, mix of present and past tense, and balanced questions that are neither too simple nor too complex"
		case "B1":
			return "Use intermediate structures, standard vocabulary, and well-balanced questions that match the level expectations"
		default:
			return "Use level-appropriate structures, standard vocabulary, and questions that are challenging but not overly complex"
		}
	default:
		switch band {
		case "A":
			return "Use more varied structures within the level, include past tense, and create engaging questions beyond basic patterns"
		case "B1":
			return "Use intermediate to upper-intermediate structures, more sophisticated vocabulary, and thought-provoking questions"
		default:
			return "Use advanced structures, complex vocabulary, and challenging questions that require critical thinking and detailed responses"
		}
	}
}

func block(header string, bullets ...string) string {
	var b strings.Builder
	b.WriteString(header)
	for _, l := range bullets {
		b.WriteString("\n\t- ")
		b.WriteString(l)
	}
	return b.String()
}

// leveled renders "NAME: VALUE" followed by the bullets. The header line
// ends in a newline, which the first bullet then follows directly.
func leveled(name, value string, bullets ...string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(strings.ToUpper(value))
	b.WriteString("\n")
	for i, l := range bullets {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("\t- ")
		b.WriteString(l)
	}
	return b.String()
}

func QualityInstructions(enabled bool) string {
	if !enabled {
		return ""
	}
	return block("QUALITY VALIDATION REQUIREMENTS",
		"Ensure each question is crystal clear and unambiguous",
		"Use perfect grammar and natural phrasing throughout",
		"Avoid culturally insensitive or potentially offensive content",
		"Make sure questions are appropriate for the target level",
		"Double-check that questions sound like natural English",
	)
}

var bloomsBullets = map[string][]string{
	"Remember": {
		"Focus on factual recall questions",
		"Use stems like: What is...?, Who...?, When...?, Where...?, Which...?",
		"Ask for basic information and definitions",
	},
	"Understand": {
		"Focus on comprehension and explanation",
		"Use stems like: Explain why...?, Describe...?, What does... mean?",
		"Ask students to interpret or summarize information",
	},
	"Apply": {
		"Focus on practical application",
		"Use stems like: How would you use...?, Solve...?, What would happen if...?",
		"Ask students to use knowledge in new situations",
	},
	"Analyze": {
		"Focus on breaking down and comparing",
		"Use stems like: Compare...?, What are the differences...?, Why do you think...?",
		"Ask students to examine relationships and patterns",
	},
	"Evaluate": {
		"Focus on judgment and opinion",
		"Use stems like: Do you agree...?, What is your opinion...?, Which is better...?",
		"Ask students to make judgments and justify their choices",
	},
	"Create": {
		"Focus on original thinking and creation",
		"Use stems like: Design...?, Create...?, What if you could...?",
		"Ask students to generate new ideas and solutions",
	},
}

// BloomsInstructions targets one cognitive level of Bloom's taxonomy.
func BloomsInstructions(level string) string {
	if level == "" || level == Auto {
		return ""
	}
	return leveled("BLOOM'S TAXONOMY LEVEL", level, bloomsBullets[level]...)
}

var engagementBullets = map[string][]string{
	"Low": {
		"Focus on simple, direct questions",
		"Use basic vocabulary and straightforward language",
		"Keep questions short and easy to understand",
		"Avoid complex concepts or abstract thinking",
	},
	"Medium": {
		"Use moderate complexity in questions",
		"Include some thought-provoking elements",
		"Balance simple and more challenging questions",
		"Encourage some personal reflection",
	},
	"High": {
		"Create engaging, interactive questions",
		"Use dynamic language and interesting scenarios",
		"Include questions that spark discussion",
		"Encourage creative thinking and personal opinions",
	},
	"Very High": {
		"Create challenging questions on issues people disagree about",
		"Ask learners to take a side and defend it",
		"Use multi-sided topics that keep a debate going",
	},
}

// EngagementInstructions sets how interactive the questions feel. The
// legacy value "Balanced" behaves like Auto.
func EngagementInstructions(level string) string {
	if level == "" || level == Auto || level == "Balanced" {
		return ""
	}
	return leveled("ENGAGEMENT LEVEL", level, engagementBullets[level]...)
}

func AcademicInstructions(enabled bool) string {
	if !enabled {
		return ""
	}
	return block("ACADEMIC BACKGROUND CONSIDERATIONS",
		"Assume students have some academic experience",
		"Use appropriate academic vocabulary when relevant",
		"Include questions that relate to educational contexts",
		"Consider formal vs. informal language appropriately",
	)
}

func NaturalnessInstructions(enabled bool) string {
	if !enabled {
		return ""
	}
	return block("NATURALNESS REQUIREMENTS",
		"Write questions that sound like natural, conversational English",
		"Avoid overly formal or stilted language",
		"Use contractions and natural speech patterns when appropriate",
		"Make questions feel like they could be asked in a real conversation",
	)
}

var strictnessBullets = map[string][]string{
	"Lenient": {
		"Allow some flexibility in question structure",
		"Accept variations in wording and style",
		"Focus on meaning over perfect grammar",
		"Be more forgiving with minor errors",
	},
	"Moderate": {
		"Maintain good grammar and structure",
		"Ensure questions are clear and well-formed",
		"Balance flexibility with quality standards",
		"Allow some natural variation",
	},
	"Strict": {
		"Maintain perfect grammar and structure",
		"Ensure all questions meet high quality standards",
		"Be precise and exact in wording",
		"Minimize any variations or errors",
	},
}

// StrictnessInstructions maps the topic consistency setting. The older
// Strict/Neutral/Free radio values are accepted too.
func StrictnessInstructions(level string) string {
	switch level {
	case "Neutral":
		level = "Moderate"
	case "Free":
		level = "Lenient"
	}
	if level == "" || level == Auto {
		return ""
	}
	return leveled("STRICTNESS LEVEL", level, strictnessBullets[level]...)
}

var styleBullets = map[string][]string{
	"Concise": {
		"Keep every question short and focused",
		"Prefer one clear idea per question",
	},
	"Detailed": {
		"Give each question a concrete context or situation",
		"Ask for reasons and examples in the answer",
	},
	"Creative": {
		"Use imaginative scenarios and hypothetical situations",
		"Vary question openings across the set",
	},
}

// StyleInstructions tunes the overall prompt style. Standard adds nothing.
func StyleInstructions(style string) string {
	bullets, ok := styleBullets[style]
	if !ok {
		return ""
	}
	return leveled("PROMPT STYLE", style, bullets...)
}
