// Package bus fans out "user is active" signals to local subscribers and,
// when rooted in a data directory, to other shiftclock processes on the same
// machine via an fsnotify-watched marker file.
package bus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const markerName = "activity"

// Bus is an activity signal fan-out. The zero value is not usable; call New.
type Bus struct {
	mu   sync.Mutex
	subs map[int]func()
	next int

	marker  string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	done    chan struct{}
	closed  bool
}

// New returns a Bus. A non-empty dir enables the cross-process leg: Signal
// touches dir/activity and signals written by peer processes are delivered
// to local subscribers. An empty dir yields an in-process-only bus.
func New(dir string, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{subs: make(map[int]func()), logger: logger, done: make(chan struct{})}
	if dir == "" {
		return b, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating bus directory: %w", err)
	}
	b.marker = filepath.Join(dir, markerName)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting activity watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	b.watcher = w
	go b.watch()
	return b, nil
}

// Announce touches the activity marker in dir without standing up a watcher.
// One-shot form of Signal for short-lived CLI invocations.
func Announce(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	stamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	return os.WriteFile(filepath.Join(dir, markerName), []byte(stamp), 0o644)
}

// Subscribe registers fn to run on every activity signal, local or remote.
// The returned cancel removes the subscription.
func (b *Bus) Subscribe(fn func()) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Signal notifies all local subscribers and, when the cross-process leg is
// enabled, touches the marker file so peer processes see the signal too.
func (b *Bus) Signal() {
	b.fanout()
	if b.marker == "" {
		return
	}
	stamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := os.WriteFile(b.marker, []byte(stamp), 0o644); err != nil {
		b.logger.Warn("activity broadcast failed", "error", err)
	}
}

// Close tears down the watcher. Subscribers are not invoked afterwards.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	b.mu.Unlock()
	if b.watcher != nil {
		return b.watcher.Close()
	}
	return nil
}

func (b *Bus) fanout() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// watch delivers marker-file writes from peer processes. A Signal from this
// process also echoes back through the watcher; subscribers must tolerate
// that (rearming an idle countdown twice is harmless).
func (b *Bus) watch() {
	for {
		select {
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if ev.Name == b.marker && ev.Op.Has(fsnotify.Write|fsnotify.Create) {
				b.fanout()
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.logger.Warn("activity watcher error", "error", err)
		case <-b.done:
			return
		}
	}
}
