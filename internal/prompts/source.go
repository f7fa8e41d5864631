package prompts

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/watch"
)

// Source holds the current templates for one prompts file and reloads them
// when the file changes.
type Source struct {
	path   string
	logger *zap.Logger

	mu        sync.RWMutex
	templates Templates
	w         *watch.Watcher
}

// NewSource loads path once. A load error is logged and the defaults used.
func NewSource(path string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Source{path: path, logger: logger.Named("prompts")}
	if err := s.Reload(); err != nil {
		s.logger.Warn("load prompts, using defaults", zap.String("path", path), zap.Error(err))
	}
	return s
}

func (s *Source) Path() string { return s.path }

// Templates returns the current templates.
func (s *Source) Templates() Templates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.templates
}

// Reload rereads the file. On error the previous templates stay active.
func (s *Source) Reload() error {
	t, err := Load(s.path)
	if err != nil {
		s.mu.Lock()
		if s.templates.Batch == "" {
			s.templates = DefaultTemplates()
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.templates = t
	s.mu.Unlock()
	return nil
}

// Watch reloads the templates whenever the file changes, until ctx ends or
// Close is called.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	w, err := watch.New([]string{s.path}, watch.Options{
		Logger: s.logger,
		OnChange: func(string) {
			if err := s.Reload(); err != nil {
				s.logger.Warn("reload prompts", zap.Error(err))
				return
			}
			s.logger.Info("prompts reloaded", zap.String("path", s.path))
		},
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
	return w.Start(ctx)
}

// Close stops watching.
func (s *Source) Close() {
	s.mu.Lock()
	w := s.w
	s.w = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}
