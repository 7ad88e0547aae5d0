package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ProyectAquanqa/panelsearch"
)

// SaveDebounce is the default delay of an Autosaver.
const SaveDebounce = 500 * time.Millisecond

// Autosaver saves the latest snapshot of one view once changes settle.
// Schedule has the signature of engine.WithOnChange.
type Autosaver struct {
	store  Store
	view   string
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *panelsearch.Snapshot
	lastID  string
}

// NewAutosaver creates a saver for view. A non-positive delay selects SaveDebounce.
func NewAutosaver(s Store, view string, delay time.Duration, logger *slog.Logger) *Autosaver {
	if delay <= 0 {
		delay = SaveDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Autosaver{store: s, view: view, delay: delay, logger: logger}
}

// Schedule replaces the pending snapshot and restarts the delay.
func (a *Autosaver) Schedule(snap panelsearch.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = &snap

	if a.timer != nil {
		a.timer.Stop()
	}

	a.timer = time.AfterFunc(a.delay, func() {
		a.mu.Lock()
		pending := a.pending
		a.pending = nil
		a.mu.Unlock()

		if pending != nil {
			a.save(context.Background(), *pending)
		}
	})
}

// LastID returns the ID of the last successful save.
func (a *Autosaver) LastID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastID
}

// Close stops the timer and saves a pending snapshot right away.
func (a *Autosaver) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if pending == nil {
		return nil
	}
	return a.save(ctx, *pending)
}

func (a *Autosaver) save(ctx context.Context, snap panelsearch.Snapshot) error {
	id, err := a.store.Save(ctx, a.view, snap)
	if err != nil {
		a.logger.WarnContext(ctx, "failed to save filter snapshot", "view", a.view, "error", err)
		return err
	}
	a.mu.Lock()
	a.lastID = id
	a.mu.Unlock()
	a.logger.DebugContext(ctx, "saved filter snapshot", "view", a.view, "id", id)
	return nil
}
