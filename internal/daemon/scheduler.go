package daemon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openmirror/mirrorbox/internal/mirror"
)

// watchDebounce batches a burst of filesystem events into one early pass.
const watchDebounce = 500 * time.Millisecond

// Scheduler drives the reconciler: one pass immediately, then one per
// interval, plus early passes when the source watcher reports changes. A stop
// request is honored between passes, never by aborting a pass mid-mutation.
type Scheduler struct {
	reconciler *mirror.Reconciler
	watcher    *mirror.SourceWatcher
	source     string
	replica    string
	interval   time.Duration
}

func NewScheduler(reconciler *mirror.Reconciler, watcher *mirror.SourceWatcher, source, replica string, interval time.Duration) *Scheduler {
	return &Scheduler{
		reconciler: reconciler,
		watcher:    watcher,
		source:     source,
		replica:    replica,
		interval:   interval,
	}
}

// Run blocks until ctx is canceled. A pass that fails at cycle granularity
// (scan error) is logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runPass(ctx)

	var watchEvents <-chan struct{}
	if s.watcher != nil {
		watchEvents = s.debouncedEvents(ctx)
	}

	// a timer, not a ticker, so a pass that outlives the interval doesn't
	// queue up extra ticks behind itself
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			s.runPass(ctx)
			timer.Reset(s.interval)
		case <-watchEvents:
			s.runPass(ctx)
			// the interval restarts after an early pass
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.interval)
		}
	}
}

// RunOnce performs a single pass and returns its error, for --once mode.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	_, err := s.reconciler.Synchronize(ctx, s.source, s.replica)
	return err
}

func (s *Scheduler) runPass(ctx context.Context) {
	summary, err := s.reconciler.Synchronize(ctx, s.source, s.replica)
	if err != nil {
		if errors.Is(err, mirror.ErrSyncAlreadyRunning) {
			slog.Warn("pass skipped, previous pass still running")
			return
		}
		slog.Error("pass failed", "error", err)
		return
	}
	slog.Info("pass complete", "summary", summary.String(), "next", s.interval)
}

// debouncedEvents collapses raw watcher events into at most one wakeup per
// debounce window.
func (s *Scheduler) debouncedEvents(ctx context.Context) <-chan struct{} {
	wake := make(chan struct{}, 1)
	go func() {
		var pending bool
		debounce := time.NewTimer(watchDebounce)
		debounce.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-s.watcher.Events():
				if !ok {
					return
				}
				if !pending {
					pending = true
					debounce.Reset(watchDebounce)
				}
			case <-debounce.C:
				pending = false
				select {
				case wake <- struct{}{}:
				default:
				}
			}
		}
	}()
	return wake
}
