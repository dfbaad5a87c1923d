package watcher

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects changed paths and emits them as one deduplicated
// batch after a quiet period. Every Add resets the timer, so a burst of
// events produces a single emission once the burst settles.
type Debouncer struct {
	delay   time.Duration
	timer   *time.Timer
	mu      sync.Mutex
	pending map[string]bool
	emit    func([]string)
}

// NewDebouncer creates a debouncer that calls emit with the sorted set
// of pending paths
func NewDebouncer(delay time.Duration, emit func([]string)) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]bool),
		emit:    emit,
	}
}

// Add records a changed path and resets the quiet-period timer
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = true

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.flush()
	})
}

// flush drains the pending set and hands it to emit
func (d *Debouncer) flush() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.timer = nil
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]bool)
	d.timer = nil
	d.mu.Unlock()

	sort.Strings(paths)
	if d.emit != nil {
		d.emit(paths)
	}
}

// Flush immediately emits any pending paths without waiting out the
// quiet period. Used on shutdown so buffered changes are not lost.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.flush()
}

// Cancel drops any pending paths without emitting
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = make(map[string]bool)
}

// PendingCount returns the number of distinct paths waiting to be emitted
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
