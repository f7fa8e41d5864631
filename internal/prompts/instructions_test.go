package prompts

import (
	"strings"
	"testing"
)

func TestModifier(t *testing.T) {
	cases := map[string]string{"Upper": "Upper ", "Neutral": "", "Lower": "Lower ", "": ""}
	for tier, want := range cases {
		if got := Modifier(tier); got != want {
			t.Errorf("Modifier(%q) = %q, want %q", tier, got, want)
		}
	}
}

func TestTierInstructions(t *testing.T) {
	tests := []struct {
		level, tier, prefix string
	}{
		{"A1", "Lower", "Use simple present tense"},
		{"B1+", "Lower", "Use simple to intermediate structures"},
		{"C1", "Lower", "Use intermediate structures, avoid"},
		{"A2", "Neutral", "Use appropriate structures for the level"},
		{"B1", "Neutral", "Use intermediate structures, standard vocabulary"},
		{"B2", "Neutral", "Use level-appropriate structures"},
		{"A1", "Upper", "Use more varied structures"},
		{"B1", "Upper", "Use intermediate to upper-intermediate"},
		{"C2", "Upper", "Use advanced structures"},
		{"C2", "Unknown", "Use advanced structures"},
	}
	for _, tt := range tests {
		got := TierInstructions(tt.level, tt.tier)
		if !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("TierInstructions(%s, %s) = %q, want prefix %q", tt.level, tt.tier, got, tt.prefix)
		}
	}
}

func TestOptionalBlocksDisabled(t *testing.T) {
	for name, got := range map[string]string{
		"quality":     QualityInstructions(false),
		"blooms":      BloomsInstructions(Auto),
		"engagement":  EngagementInstructions(Auto),
		"balanced":    EngagementInstructions("Balanced"),
		"academic":    AcademicInstructions(false),
		"naturalness": NaturalnessInstructions(false),
		"strictness":  StrictnessInstructions(Auto),
		"style":       StyleInstructions("Standard"),
	} {
		if got != "" {
			t.Errorf("%s: got %q, want empty", name, got)
		}
	}
}

func TestBloomsInstructions(t *testing.T) {
	got := BloomsInstructions("Evaluate")
	want := "BLOOM'S TAXONOMY LEVEL: EVALUATE\n\t- Focus on judgment and opinion\n" +
		"\t- Use stems like: Do you agree...?, What is your opinion...?, Which is better...?\n" +
		"\t- Ask students to make judgments and justify their choices"
	if got != want {
		t.Errorf("BloomsInstructions(Evaluate) =\n%q\nwant\n%q", got, want)
	}
}

func TestQualityInstructions(t *testing.T) {
	got := QualityInstructions(true)
	if !strings.HasPrefix(got, "QUALITY VALIDATION REQUIREMENTS\n\t- Ensure each question is crystal clear") {
		t.Errorf("unexpected quality block: %q", got)
	}
	if n := strings.Count(got, "\n\t- "); n != 5 {
		t.Errorf("quality bullets = %d, want 5", n)
	}
}

func TestStrictnessLegacyValues(t *testing.T) {
	if got := StrictnessInstructions("Free"); !strings.HasPrefix(got, "STRICTNESS LEVEL: LENIENT\n") {
		t.Errorf("Free = %q", got)
	}
	if got := StrictnessInstructions("Neutral"); !strings.HasPrefix(got, "STRICTNESS LEVEL: MODERATE\n") {
		t.Errorf("Neutral = %q", got)
	}
}

func TestEngagementVeryHigh(t *testing.T) {
	got := EngagementInstructions("Very High")
	if !strings.HasPrefix(got, "ENGAGEMENT LEVEL: VERY HIGH\n\t- ") {
		t.Errorf("header = %q", got)
	}
	if n := strings.Count(got, "\t- "); n != 3 {
		t.Errorf("got %d bullets, want 3", n)
	}
}
