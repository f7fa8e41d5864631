package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/app"
	"github.com/aerladis/eflwizard/internal/pdfconv"
	"github.com/aerladis/eflwizard/internal/preview"
	"github.com/aerladis/eflwizard/internal/prompts"
	"github.com/aerladis/eflwizard/internal/screen"
	"github.com/aerladis/eflwizard/internal/screens/about"
	"github.com/aerladis/eflwizard/internal/screens/editor"
	"github.com/aerladis/eflwizard/internal/screens/importer"
	"github.com/aerladis/eflwizard/internal/screens/methods"
	"github.com/aerladis/eflwizard/internal/selfupdate"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	gen, src, err := e.generator(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		return err
	}
	defer src.Close()
	if err := src.Watch(ctx); err != nil {
		e.logger.Warn("watch prompts", zap.Error(err))
	}
	syncPromptsVersion(src.Path(), e)

	reg := e.pdf()
	renderer := e.renderer(reg)
	im, err := e.importer(gen)
	if err != nil {
		return err
	}

	checker := newChecker(e.cfg)
	updater := selfupdate.NewUpdater(checker)
	updateRepo := e.store.UpdateRepo()

	exportDir, _ := os.Getwd()
	if home, err := os.UserHomeDir(); err == nil {
		if docs := filepath.Join(home, "Documents"); dirExists(docs) {
			exportDir = docs
		}
	}

	ed := editor.New(editor.Deps{
		Session:   newSession(e.cfg),
		Generator: gen,
		Feedback:  e.recorder(),
		Exports:   e.store.ExportRepo(),
		PDF:       reg,
		PDFMethod: e.pdfMethod(),
		Preview:   renderer,
		Tracker:   &preview.Tracker{},
		Template:  e.cfg.Paths.Template,
		ExportDir: exportDir,
		DPR:       e.cfg.Preview.DPR,
		Timeout:   e.cfg.LLM.Timeout * 2,
		NewImporter: func() screen.Screen {
			return importer.New(im, e.logger)
		},
		NewAbout: func() screen.Screen {
			return about.New(about.Deps{
				Checker: checker,
				Updater: updater,
				Repo:    updateRepo,
				Timeout: e.cfg.Update.Timeout,
				Logger:  e.logger,
			}, nil)
		},
		NewMethods: func(current pdfconv.Method) screen.Screen {
			return methods.New(reg, current)
		},
		Logger: e.logger,
	})

	opts := app.Options{
		Root:         ed,
		Version:      version,
		TemplatePath: e.cfg.Paths.Template,
		Logger:       e.logger,
	}
	if e.cfg.Update.AutoCheck {
		opts.Checker = checker
		opts.UpdateRepo = updateRepo
		opts.UpdateSchedule = e.cfg.Update.Schedule
		opts.CheckOnStartup = e.cfg.Update.CheckOnStartup
	}
	return app.Run(ctx, opts)
}

// syncPromptsVersion stamps a user prompts file with the running version
// after an upgrade, keeping a backup.
func syncPromptsVersion(path string, e *env) {
	if path == "" || version == selfupdate.DevVersion || !fileExists(path) {
		return
	}
	changed, err := prompts.SyncVersion(path, version, timeNow())
	if err != nil {
		e.logger.Warn("sync prompts version", zap.Error(err))
		return
	}
	if changed {
		e.logger.Info("prompts version updated", zap.String("path", path), zap.String("version", version))
	}
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
