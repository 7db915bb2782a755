package mirror

import (
	"log/slog"

	"github.com/rjeczalik/notify"
)

// SourceWatcher watches the source tree recursively and surfaces write-ish
// events so the scheduler can sync early instead of waiting out the interval.
type SourceWatcher struct {
	watchDir string
	events   chan notify.EventInfo
}

func NewSourceWatcher(watchDir string) *SourceWatcher {
	return &SourceWatcher{
		watchDir: watchDir,
		// buffered so a burst of events doesn't block the OS notifier
		events: make(chan notify.EventInfo, 16),
	}
}

func (w *SourceWatcher) Start() error {
	slog.Info("source watcher start", "dir", w.watchDir)

	recursivePath := w.watchDir + "/..."
	return notify.Watch(recursivePath, w.events, notify.Create, notify.Write, notify.Remove, notify.Rename)
}

func (w *SourceWatcher) Stop() {
	notify.Stop(w.events)
	close(w.events)
	slog.Info("source watcher stop")
}

func (w *SourceWatcher) Events() <-chan notify.EventInfo {
	return w.events
}
