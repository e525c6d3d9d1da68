// Package runner drives one pass over the log directory: advance the
// watermark, forward entries of new files, and purge files past retention.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dannytech/default-server/internal/model"
	"github.com/dannytech/default-server/internal/notifier"
	"github.com/dannytech/default-server/internal/output"
	"github.com/dannytech/default-server/internal/parser"
	"github.com/dannytech/default-server/internal/retention"
	"github.com/dannytech/default-server/internal/scanner"
	"github.com/dannytech/default-server/internal/watermark"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxRetentionDays bounds the retention so the cutoff date stays representable.
const maxRetentionDays = 999999999

// Config holds the per-invocation settings.
type Config struct {
	LogDir        string
	Pattern       string
	RetentionDays int
}

// Validate checks the settings before anything touches the disk.
func (c Config) Validate() error {
	if c.LogDir == "" {
		return errors.New("log directory is required")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention must be zero or more days, got %d", c.RetentionDays)
	}
	if c.RetentionDays > maxRetentionDays {
		return fmt.Errorf("retention must be at most %d days, got %d", maxRetentionDays, c.RetentionDays)
	}
	return nil
}

// Runner wires the watermark store, sender, purger and reporter together.
type Runner struct {
	cfg      Config
	store    watermark.Store
	sender   notifier.Sender // nil disables notification
	purger   *retention.Purger
	reporter output.Reporter
	logger   *zap.SugaredLogger
	now      func() time.Time
	decode   func(path string) ([]model.LogEntry, error)
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSender enables notification through s.
func WithSender(s notifier.Sender) Option {
	return func(r *Runner) { r.sender = s }
}

// WithPurger overrides the default filesystem purger.
func WithPurger(p *retention.Purger) Option {
	return func(r *Runner) { r.purger = p }
}

// WithReporter sets where progress is printed.
func WithReporter(rep output.Reporter) Option {
	return func(r *Runner) { r.reporter = rep }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a Runner for cfg persisting its watermark in store.
func New(cfg Config, store watermark.Store, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		store:    store,
		purger:   retention.NewPurger(nil),
		reporter: output.NewTextReporter(),
		logger:   zap.NewNop().Sugar(),
		now:      time.Now,
		decode:   parser.DecodeFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs a single pass. Per-file decode problems are recorded in the
// summary and do not stop the run; a corrupt watermark, a failed delivery,
// a failed delete or a cancelled context do. A run that stops early hands
// its partial summary and the error to the reporter's Abort.
func (r *Runner) Run(ctx context.Context) (summary model.RunSummary, err error) {
	if err := r.cfg.Validate(); err != nil {
		return summary, err
	}
	log := r.logger.With("run_id", uuid.NewString())

	defer func() {
		if err == nil {
			return
		}
		summary.Error = err.Error()
		if rerr := r.reporter.Abort(summary); rerr != nil {
			log.Warnw("report aborted run", "error", rerr)
		}
	}()

	lastRun, err := r.store.Read()
	if err != nil {
		return summary, fmt.Errorf("load watermark: %w", err)
	}

	// Advance the watermark before listing so files landing mid-run are
	// picked up next time instead of being missed.
	now := r.now().UTC()
	if err := r.store.Write(now); err != nil {
		return summary, fmt.Errorf("save watermark: %w", err)
	}
	summary.LastRun = lastRun
	summary.StartedAt = now

	files, err := scanner.ListCandidates(r.cfg.LogDir, r.cfg.Pattern)
	if err != nil {
		return summary, err
	}
	summary.Candidates = len(files)
	log.Debugw("scan started", "last_run", lastRun, "candidates", len(files), "notify", r.sender != nil)

	if err := r.reporter.Begin(summary); err != nil {
		return summary, err
	}

	cutoff := scanner.Cutoff(now, r.cfg.RetentionDays)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !f.HasTimestamp {
			summary.Skipped++
			continue
		}

		class := scanner.Classify(f.Timestamp, lastRun, cutoff)
		log.Debugw("classified", "file", f.Name, "timestamp", f.Timestamp, "new", class.New, "stale", class.Stale)

		if class.New {
			summary.New++
			if r.sender != nil {
				sent, err := r.notify(ctx, f)
				summary.Messages += sent
				switch {
				case err == nil:
					summary.Notified++
				case isLocal(err):
					log.Warnw("skipping notification", "file", f.Name, "error", err)
					summary.Failures = append(summary.Failures, model.FileFailure{Name: f.Name, Error: err.Error()})
				default:
					return summary, err
				}
			}
		}

		if class.Stale {
			if err := r.purger.Purge(f); err != nil {
				return summary, err
			}
			summary.Purged++
			log.Debugw("purged", "file", f.Name)
		}
	}

	if err := r.reporter.End(summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// notify decodes f and posts one message per entry. Every payload is built
// before the first post, so a bad entry means nothing from f is sent.
func (r *Runner) notify(ctx context.Context, f model.LogFile) (int, error) {
	entries, err := r.decode(f.Path)
	if err != nil {
		if !isLocal(err) {
			// An unreadable file is treated like a malformed one.
			err = &parser.MalformedLogError{Source: f.Path, Reason: "unreadable", Err: err}
		}
		return 0, err
	}

	payloads := make([]notifier.Payload, 0, len(entries))
	for _, e := range entries {
		p, err := notifier.BuildPayload(e)
		if err != nil {
			return 0, err
		}
		payloads = append(payloads, p)
	}

	for i, p := range payloads {
		if err := r.sender.Send(ctx, p); err != nil {
			return i, fmt.Errorf("notify %s: %w", f.Name, err)
		}
	}
	return len(payloads), nil
}

// isLocal reports whether err only affects the current file.
func isLocal(err error) bool {
	var malformed *parser.MalformedLogError
	var missing *parser.MissingFieldError
	return errors.As(err, &malformed) || errors.As(err, &missing)
}
