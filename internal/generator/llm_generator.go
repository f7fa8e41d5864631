package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/llm"
	"github.com/aerladis/eflwizard/internal/prompts"
	"github.com/aerladis/eflwizard/internal/questions"
	"github.com/aerladis/eflwizard/internal/topics"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider  llm.Provider
	templates TemplateSource
	config    Config
	logger    *zap.Logger
}

// New creates an LLMGenerator. A nil templates source uses the built-in
// templates.
func New(provider llm.Provider, templates TemplateSource, cfg Config, logger *zap.Logger) *LLMGenerator {
	if templates == nil {
		templates = StaticTemplates(prompts.DefaultTemplates())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	return &LLMGenerator{provider: provider, templates: templates, config: cfg, logger: logger.Named("generator")}
}

func (r Request) input() prompts.Input {
	return prompts.Input{
		Title:    strings.TrimSpace(r.Title),
		Level:    r.Level,
		Tier:     r.Tier,
		Topics:   r.TopicsText,
		Vocab:    r.Vocab,
		Existing: r.Existing,
	}
}

// GenerateBatch produces fifteen questions. A short or empty answer is
// padded rather than treated as an error.
func (g *LLMGenerator) GenerateBatch(ctx context.Context, req Request) ([]string, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	ctx = llm.WithPurpose(ctx, PurposeBatch)

	prompt, err := prompts.BuildBatch(g.templates.Templates(), req.input(), req.Options)
	if err != nil {
		g.logger.Warn("prompt formatting failed, sending raw template", zap.Error(err))
	}

	llmReq := llm.Prompt(prompt, g.config.MaxTokens, g.config.Temperature)
	if g.config.Structured {
		llmReq.Schema = BatchSchema
	}

	resp, err := g.provider.Generate(ctx, llmReq)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	var qs []string
	if g.config.Structured {
		var out batchOutput
		if err := json.Unmarshal(resp.JSON, &out); err != nil {
			return nil, fmt.Errorf("parse question list: %w", err)
		}
		qs = questions.Clean(out.Questions)
	} else {
		qs = questions.Parse(resp.Text, questions.Count)
	}
	if len(qs) < questions.Count {
		g.logger.Info("padding short batch", zap.Int("parsed", len(qs)))
	}
	return questions.EnsureFifteen(qs), nil
}

// Regenerate produces a replacement for one question.
func (g *LLMGenerator) Regenerate(ctx context.Context, req Request, index int, feedback string) (string, error) {
	if strings.TrimSpace(req.Title) == "" {
		return "", ErrTitleRequired
	}
	if index < 0 || index >= questions.Count {
		return "", fmt.Errorf("question index %d out of range", index)
	}
	ctx = llm.WithPurpose(ctx, PurposeSingle)

	in := req.input()
	in.Feedback = feedback
	prompt, err := prompts.BuildSingle(g.templates.Templates(), in, req.Options)
	if err != nil {
		g.logger.Warn("prompt formatting failed, sending raw template", zap.Error(err))
	}

	resp, err := g.provider.Generate(ctx, llm.Prompt(prompt, g.singleTokens(), g.config.Temperature))
	if err != nil {
		return "", fmt.Errorf("regenerate question %d: %w", index+1, err)
	}
	return questions.ParseSingle(resp.Text), nil
}

func (g *LLMGenerator) singleTokens() int {
	return max(g.config.MaxTokens/4, 256)
}

// ExtractTopics asks the model for topics from OCR text. Provider errors
// and unusable answers fall back to keyword matching, so the import always
// yields something editable.
func (g *LLMGenerator) ExtractTopics(ctx context.Context, text, fallbackTitle string) (topics.Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return topics.Extraction{Title: fallbackTitle}, nil
	}
	ctx = llm.WithPurpose(ctx, PurposeExtract)

	prompt := topics.ExtractionPrompt(text, fallbackTitle)
	resp, err := g.provider.Generate(ctx, llm.Prompt(prompt, g.config.MaxTokens/2, 0.3))
	if err != nil {
		if ctx.Err() != nil {
			return topics.Extraction{}, ctx.Err()
		}
		g.logger.Warn("topic extraction failed, using keyword fallback", zap.Error(err))
		return topics.SimpleExtraction(text, fallbackTitle), nil
	}

	ex := topics.ParseExtraction(resp.Text, fallbackTitle)
	if ex.Empty() {
		g.logger.Warn("topic extraction returned nothing usable, using keyword fallback")
		return topics.SimpleExtraction(text, fallbackTitle), nil
	}
	return ex, nil
}

var _ Generator = (*LLMGenerator)(nil)
