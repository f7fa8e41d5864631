package pdfconv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aerladis/eflwizard/internal/proc"
)

// Registry holds the converters and runs the fallback chain.
type Registry struct {
	converters map[Method]Converter
	logger     *zap.Logger
}

// Options configure a Registry.
type Options struct {
	Runner  proc.Runner
	Timeout time.Duration
	Logger  *zap.Logger
}

// New registers the four built-in converters.
func New(opts Options) *Registry {
	if opts.Runner == nil {
		opts.Runner = proc.ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return NewWith(opts.Logger,
		SelfContained{},
		Docx2PDF{Runner: opts.Runner},
		Word{Runner: opts.Runner},
		LibreOffice{Runner: opts.Runner, Timeout: opts.Timeout},
	)
}

// NewWith builds a registry from explicit converters.
func NewWith(logger *zap.Logger, converters ...Converter) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{converters: make(map[Method]Converter), logger: logger.Named("pdfconv")}
	for _, c := range converters {
		r.converters[c.Method()] = c
	}
	return r
}

// Convert runs one method, or the whole chain for MethodAuto. The chain
// stops at the first success; if every step fails the error wraps
// ErrAllFailed and each cause.
func (r *Registry) Convert(ctx context.Context, method Method, job Job) (Method, error) {
	if method == "" {
		method = MethodAuto
	}
	if method != MethodAuto {
		c, ok := r.converters[method]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownMethod, method)
		}
		if err := c.Convert(ctx, job); err != nil {
			return "", fmt.Errorf("selected PDF method %q failed: %w", method, err)
		}
		return method, nil
	}

	errs := []error{ErrAllFailed}
	for _, m := range AutoOrder {
		c, ok := r.converters[m]
		if !ok {
			continue
		}
		start := time.Now()
		err := c.Convert(ctx, job)
		if err == nil {
			r.logger.Debug("converted", zap.String("method", string(m)), zap.Duration("took", time.Since(start)))
			return m, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.logger.Info("PDF method failed, trying next", zap.String("method", string(m)), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", c.Label(), err))
	}
	return "", errors.Join(errs...)
}

// Status is the availability of one converter.
type Status struct {
	Method Method
	Label  string
	Err    error
}

// Availability checks every converter concurrently and reports them in
// chain order.
func (r *Registry) Availability(ctx context.Context) []Status {
	out := make([]Status, 0, len(AutoOrder))
	for _, m := range AutoOrder {
		if c, ok := r.converters[m]; ok {
			out = append(out, Status{Method: m, Label: c.Label()})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		c := r.converters[out[i].Method]
		g.Go(func() error {
			out[i].Err = c.Available(gctx)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Split separates available and missing converter labels.
func Split(statuses []Status) (available, missing []string) {
	for _, s := range statuses {
		if s.Err == nil {
			available = append(available, s.Label)
		} else {
			missing = append(missing, s.Label)
		}
	}
	return available, missing
}
