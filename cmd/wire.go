package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/config"
	"github.com/aerladis/eflwizard/internal/feedback"
	"github.com/aerladis/eflwizard/internal/generator"
	"github.com/aerladis/eflwizard/internal/llm"
	"github.com/aerladis/eflwizard/internal/logging"
	"github.com/aerladis/eflwizard/internal/ocr"
	_ "github.com/aerladis/eflwizard/internal/ocr/tesseract"
	"github.com/aerladis/eflwizard/internal/pdfconv"
	"github.com/aerladis/eflwizard/internal/preview"
	"github.com/aerladis/eflwizard/internal/prompts"
	"github.com/aerladis/eflwizard/internal/selfupdate"
	"github.com/aerladis/eflwizard/internal/session"
	"github.com/aerladis/eflwizard/internal/store"
)

// env is what every command that touches the model or the database needs.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// loadConfig reads the config file and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.LoadOptions{File: file})
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db or db_path,
// then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the database without building a logger, for the
// read-only inspection commands.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// openEnv loads config, builds the logger and opens the store. The TUI
// logs to a file so output does not tear the screen.
func openEnv(cmd *cobra.Command, tui bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logOpts := logging.Options{Env: cfg.Env, Debug: cfg.Debug}
	if tui {
		logOpts.File = tuiLogPath(cfg)
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("environment ready",
		zap.String("config", cfg.File),
		zap.String("db", dbPath),
		zap.String("data_dir", cfg.Paths.DataDir))
	return &env{cfg: cfg, logger: logger, store: st}, nil
}

// tuiLogPath is where the TUI writes its log.
func tuiLogPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "logs", "eflwizard.log")
}

func (e *env) Close() {
	e.store.Close()
	_ = e.logger.Sync()
}

func (e *env) provider(ctx context.Context) (llm.Provider, error) {
	llmCfg, err := e.cfg.LLMConfig()
	if err != nil {
		return nil, err
	}
	llmCfg.CaptureBodies = e.cfg.Debug
	return llm.NewProvider(ctx, llmCfg, e.store.EventRepo(), e.logger)
}

// generator builds the question generator over a prompts source. The
// caller closes the source.
func (e *env) generator(ctx context.Context) (*generator.LLMGenerator, *prompts.Source, error) {
	provider, err := e.provider(ctx)
	if err != nil {
		return nil, nil, err
	}
	src := prompts.NewSource(e.cfg.Paths.Prompts, e.logger)
	g := e.cfg.Generation
	gen := generator.New(provider, src, generator.Config{
		MaxTokens:   g.MaxTokens,
		Temperature: g.Temperature,
		Structured:  g.Structured,
	}, e.logger)
	return gen, src, nil
}

func (e *env) recorder() *feedback.Recorder {
	return feedback.NewRecorder(feedback.NewLog(e.cfg.Paths.Feedback), e.store.FeedbackRepo(), e.logger)
}

func (e *env) pdf() *pdfconv.Registry {
	return pdfconv.New(pdfconv.Options{Timeout: e.cfg.PDF.Timeout, Logger: e.logger})
}

func (e *env) pdfMethod() pdfconv.Method {
	m, err := pdfconv.ParseMethod(e.cfg.PDF.Method)
	if err != nil {
		e.logger.Warn("unknown pdf method, using auto", zap.String("method", e.cfg.PDF.Method))
		return pdfconv.MethodAuto
	}
	return m
}

func (e *env) renderer(conv preview.Converter) *preview.Renderer {
	return preview.NewRenderer(preview.Options{
		TemplatePath: e.cfg.Paths.Template,
		Converter:    conv,
		Rasterizers:  []preview.Rasterizer{preview.PopplerRasterizer{}, preview.LayoutRasterizer{}},
		TempDir:      e.cfg.Preview.CacheDir,
		Zoom:         e.cfg.Preview.Zoom,
		Logger:       e.logger,
	})
}

func (e *env) importer(topics ocr.TopicExtractor) (*ocr.Importer, error) {
	engine, err := ocr.EngineByName(e.cfg.OCR.Engine)
	if err != nil {
		return nil, fmt.Errorf("ocr engine %q: %w", e.cfg.OCR.Engine, err)
	}
	o := e.cfg.OCR
	ex := ocr.NewExtractor(ocr.Options{
		Engine:      engine,
		Language:    o.Language,
		PSM:         o.PSM,
		DPI:         o.DPI,
		MaxPages:    o.MaxPages,
		Parallelism: o.Parallelism,
		Logger:      e.logger,
	})
	return &ocr.Importer{Extractor: ex, Topics: topics, Logger: e.logger}, nil
}

func newChecker(cfg *config.Config) *selfupdate.Checker {
	return selfupdate.NewChecker(version,
		selfupdate.WithManifestURL(cfg.Update.ManifestURL),
		selfupdate.WithTimeout(cfg.Update.Timeout))
}

// newSession starts a worksheet with the configured defaults.
func newSession(cfg *config.Config) *session.Session {
	g := cfg.Generation
	return session.New(g.Level, g.Tier, prompts.Options{
		Style:             g.PromptStyle,
		QualityValidation: g.QualityValidation,
		Blooms:            g.Blooms,
		Engagement:        g.Engagement,
		Academic:          g.Academic,
		Naturalness:       g.Naturalness,
		Strictness:        g.Strictness,
	})
}
