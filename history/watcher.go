package history

import (
	"context"
	"log/slog"
	"time"

	"safespace/repositories"
)

// ChangeWorker reloads the local view whenever another client changes the
// shared log key. Events for other keys are ignored.
type ChangeWorker struct {
	log     *slog.Logger
	sync    *Synchronizer
	changes <-chan repositories.Change
}

func NewChangeWorker(log *slog.Logger, sync *Synchronizer, changes <-chan repositories.Change) *ChangeWorker {
	return &ChangeWorker{log: log, sync: sync, changes: changes}
}

func (w *ChangeWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping change worker")
			return nil
		case change, ok := <-w.changes:
			if !ok {
				w.log.Debug("Change channel closed")
				return nil
			}
			if change.Key != w.sync.Key() {
				continue
			}
			// the event path reloads unconditionally
			w.sync.Reload()
		}
	}
}

// PollWorker is the fallback for hosting contexts where change events are
// unreliable. Every interval it compares the raw stored log against the
// last-seen snapshot and reloads on any difference.
type PollWorker struct {
	log      *slog.Logger
	sync     *Synchronizer
	interval time.Duration
}

func NewPollWorker(log *slog.Logger, sync *Synchronizer, interval time.Duration) *PollWorker {
	return &PollWorker{log: log, sync: sync, interval: interval}
}

func (w *PollWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping poll worker")
			return nil
		case <-ticker.C:
			changed, err := w.sync.PollOnce()
			if err != nil {
				w.log.Warn("Polling the shared log failed", "error", err)
				continue
			}
			if changed {
				w.log.Debug("Polling found new messages")
			}
		}
	}
}
