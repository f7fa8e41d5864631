package generator

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for a batch response. Single
	// regeneration and extraction use a quarter and a half of it.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// Structured requests a JSON question array instead of numbered text.
	Structured bool
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}
