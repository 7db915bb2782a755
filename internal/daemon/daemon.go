// Package daemon wires the mirror core to its collaborators (activity log,
// ignore list, watcher, scheduler) and owns the process lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/openmirror/mirrorbox/internal/audit"
	"github.com/openmirror/mirrorbox/internal/mirror"
)

type Daemon struct {
	config    *Config
	activity  *audit.Logger
	scheduler *Scheduler
	watcher   *mirror.SourceWatcher
	wg        sync.WaitGroup
}

func New(config *Config) (*Daemon, error) {
	activity, err := audit.NewLogger(config.LogFile)
	if err != nil {
		return nil, fmt.Errorf("create activity log: %w", err)
	}

	var ignore *mirror.IgnoreList
	if config.ExcludeFile != "" {
		ignore, err = mirror.LoadIgnoreFile(config.ExcludeFile)
		if err != nil {
			activity.Close()
			return nil, fmt.Errorf("load exclude file: %w", err)
		}
	}

	var watcher *mirror.SourceWatcher
	if config.Watch {
		watcher = mirror.NewSourceWatcher(config.Source)
	}

	reconciler := mirror.NewReconciler(activity, ignore)

	return &Daemon{
		config:    config,
		activity:  activity,
		watcher:   watcher,
		scheduler: NewScheduler(reconciler, watcher, config.Source, config.Replica, config.Interval),
	}, nil
}

// Start runs the scheduling loop until ctx is canceled. With Detach set the
// loop runs on its own worker and Start joins it on shutdown; either way an
// in-flight pass always finishes before Start returns.
func (d *Daemon) Start(ctx context.Context) error {
	slog.Info("mirror start",
		"source", d.config.Source,
		"replica", d.config.Replica,
		"interval", d.config.Interval,
		"watch", d.config.Watch,
		"detach", d.config.Detach,
	)
	d.activity.Record("Starting synchronization")

	if d.watcher != nil {
		if err := d.watcher.Start(); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
	}

	if d.config.Once {
		err := d.scheduler.RunOnce(ctx)
		d.shutdown()
		return err
	}

	if d.config.Detach {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runLoop(ctx)
		}()
		d.wg.Wait()
	} else {
		d.runLoop(ctx)
	}

	d.shutdown()
	return nil
}

func (d *Daemon) runLoop(ctx context.Context) {
	if err := d.scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("scheduler stopped", "error", err)
	}
}

func (d *Daemon) shutdown() {
	if d.watcher != nil {
		d.watcher.Stop()
	}
	d.activity.Record("Stopping synchronization")
	if err := d.activity.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		slog.Warn("close activity log", "error", err)
	}
	slog.Info("mirror stop")
}
