package selfupdate

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/store"
)

// Scheduler runs background manifest checks.
type Scheduler struct {
	checker *Checker
	repo    store.UpdateRepo
	notify  func(*Release)
	spec    string
	onStart bool
	timeout time.Duration
	cron    *cron.Cron
	logger  *zap.Logger
}

// SchedulerOptions configure a Scheduler. Spec is a cron expression such
// as "@every 30m". Notify receives every release that is newer than the
// running build.
type SchedulerOptions struct {
	Spec           string
	CheckOnStartup bool
	Repo           store.UpdateRepo
	Notify         func(*Release)
	Timeout        time.Duration
	Logger         *zap.Logger
}

func NewScheduler(c *Checker, opts SchedulerOptions) *Scheduler {
	if opts.Spec == "" {
		opts.Spec = "@every 30m"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Notify == nil {
		opts.Notify = func(*Release) {}
	}
	return &Scheduler{
		checker: c,
		repo:    opts.Repo,
		notify:  opts.Notify,
		spec:    opts.Spec,
		onStart: opts.CheckOnStartup,
		timeout: opts.Timeout,
		logger:  opts.Logger.Named("update"),
	}
}

// Start schedules the checks. The first check runs immediately when
// CheckOnStartup is set. Development builds are never checked.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.checker.Version() == DevVersion {
		s.logger.Debug("development build, background update checks disabled")
		return nil
	}
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	if s.onStart {
		go s.RunOnce(ctx)
	}
	return nil
}

// Stop halts scheduling and waits for a running check.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunOnce performs one check and records the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rel, err := s.checker.Check(ctx)
	rec, ok := CheckRecord(s.checker.Version(), rel, err)
	if !ok {
		return
	}
	if rec.ErrorMessage != "" {
		s.logger.Debug("background update check failed", zap.Error(err))
	}

	if s.repo != nil && ctx.Err() == nil {
		if rerr := s.repo.RecordUpdateCheck(ctx, rec); rerr != nil {
			s.logger.Warn("record update check", zap.Error(rerr))
		}
	}
	if rel != nil {
		s.notify(rel)
	}
}

// CheckRecord turns a Check outcome into a history row. It reports false
// for development builds, which are not recorded.
func CheckRecord(current string, rel *Release, err error) (store.UpdateCheckData, bool) {
	rec := store.UpdateCheckData{CurrentVersion: current}
	switch {
	case err == nil && rel != nil:
		rec.LatestVersion = rel.Manifest.Version
		rec.Available = true
		rec.Notes = rel.Manifest.Notes.String()
	case errors.Is(err, ErrAlreadyLatest):
		rec.LatestVersion = current
	case errors.Is(err, ErrDevBuild):
		return rec, false
	case err != nil:
		rec.ErrorMessage = err.Error()
	}
	return rec, true
}
