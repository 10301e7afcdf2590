package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultWatchInterval    = time.Minute
	DefaultWarningThreshold = 5 * time.Minute
)

// SessionSource is the part of Manager the watcher polls.
type SessionSource interface {
	RemainingTime(ctx context.Context) time.Duration
	Expired(ctx context.Context) bool
	ClearSession(ctx context.Context)
}

// Watcher polls a session and reports remaining time to its callbacks while
// the session is about to expire, then 0 exactly once when it has expired.
// At most one polling loop runs per Watcher.
type Watcher struct {
	source    SessionSource
	interval  time.Duration
	threshold time.Duration
	log       *zap.SugaredLogger

	runMu sync.Mutex

	mu        sync.Mutex
	nextID    int
	callbacks map[int]func(remaining time.Duration)
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewWatcher(source SessionSource, interval, threshold time.Duration, log *zap.SugaredLogger) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	if threshold <= 0 {
		threshold = DefaultWarningThreshold
	}
	return &Watcher{
		source:    source,
		interval:  interval,
		threshold: threshold,
		log:       log,
		callbacks: make(map[int]func(time.Duration)),
	}
}

// OnTick registers cb and returns its unsubscribe handle.
func (w *Watcher) OnTick(cb func(remaining time.Duration)) (unsubscribe func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.callbacks[id] = cb
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.callbacks, id)
		w.mu.Unlock()
	}
}

// Start stops a running loop, if any, and begins polling until ctx is done,
// Stop is called or the session expires.
func (w *Watcher) Start(ctx context.Context) {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	w.stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	w.mu.Lock()
	w.cancel = cancel
	w.done = done
	w.mu.Unlock()

	go w.run(loopCtx, done)
}

// Stop cancels the polling loop and waits for it to exit. It must not be
// called from a tick callback.
func (w *Watcher) Stop() {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	w.stop()
}

func (w *Watcher) stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Watcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if expired := w.Tick(ctx); expired {
				w.log.Info("session expired, watcher stopped")
				return
			}
		}
	}
}

// Tick runs one polling step and reports whether the session has expired.
func (w *Watcher) Tick(ctx context.Context) (expired bool) {
	if w.source.Expired(ctx) {
		w.notify(0)
		// A login may have replaced the record while listeners ran.
		if w.source.Expired(ctx) {
			w.source.ClearSession(ctx)
		}
		return true
	}
	remaining := w.source.RemainingTime(ctx)
	if remaining > 0 && remaining <= w.threshold {
		w.notify(remaining)
	}
	return false
}

func (w *Watcher) notify(remaining time.Duration) {
	w.mu.Lock()
	cbs := make([]func(time.Duration), 0, len(w.callbacks))
	for _, cb := range w.callbacks {
		cbs = append(cbs, cb)
	}
	w.mu.Unlock()

	for _, cb := range cbs {
		cb(remaining)
	}
}
