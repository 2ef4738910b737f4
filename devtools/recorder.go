package devtools

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/xraph/flux"
	"github.com/xraph/flux/id"
)

// DefaultCapacity is the default ring-buffer capacity of a Recorder.
const DefaultCapacity = 1024

// DefaultWatchBuffer is the default per-watcher channel buffer.
const DefaultWatchBuffer = 256

// Recorder observes dispatched actions through its Middleware and keeps
// the most recent ones in a ring buffer. Live consumers attach with
// Watch; slow watchers drop entries rather than stall dispatch.
type Recorder struct {
	mu       sync.Mutex
	buf      []Entry
	next     int
	full     bool
	seq      int64
	watchers map[string]chan Entry

	capacity int
	logger   *slog.Logger

	totalRecorded atomic.Int64
	totalDropped  atomic.Int64
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithCapacity sets the ring-buffer capacity.
func WithCapacity(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithRecorderLogger sets the recorder's logger.
func WithRecorderLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = l }
}

// NewRecorder creates a Recorder.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		capacity: DefaultCapacity,
		logger:   slog.Default(),
		watchers: make(map[string]chan Entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.buf = make([]Entry, r.capacity)
	return r
}

// Middleware returns middleware that records every non-nil action
// flowing through it, after the rest of the chain has run. Install it
// outermost to observe derived lifecycle actions as well as originating
// ones.
func (r *Recorder) Middleware() flux.Middleware {
	return func(_ flux.API, next flux.DispatchFunc) flux.DispatchFunc {
		return func(a *flux.Action) any {
			result := next(a)
			if a != nil {
				r.record(a)
			}
			return result
		}
	}
}

// record snapshots the action, appends it to the ring, and fans it out
// to watchers.
func (r *Recorder) record(a *flux.Action) {
	r.mu.Lock()
	r.seq++
	entry := newEntry(r.seq, a)

	r.buf[r.next] = entry
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}

	// Fan out under the lock so a concurrent stop cannot close a
	// channel mid-send. Sends never block: the select drops instead.
	for _, ch := range r.watchers {
		select {
		case ch <- entry:
		default:
			// Watcher is behind; dropping beats blocking dispatch.
			r.totalDropped.Add(1)
		}
	}
	r.mu.Unlock()

	r.totalRecorded.Add(1)
}

// Entries returns a snapshot of the buffered entries, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]Entry, r.next)
		copy(out, r.buf[:r.next])
		return out
	}

	out := make([]Entry, 0, r.capacity)
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out
}

// Watch attaches a live feed of recorded entries. The returned stop
// function detaches the watcher and closes the channel; it is safe to
// call more than once.
func (r *Recorder) Watch(buffer int) (<-chan Entry, func()) {
	if buffer <= 0 {
		buffer = DefaultWatchBuffer
	}
	ch := make(chan Entry, buffer)
	key := id.NewSubscriberID().String()

	r.mu.Lock()
	r.watchers[key] = ch
	r.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.watchers, key)
			close(ch)
			r.mu.Unlock()
		})
	}
	return ch, stop
}

// Watchers returns the number of attached watchers.
func (r *Recorder) Watchers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers)
}

// Recorded returns the total number of entries recorded.
func (r *Recorder) Recorded() int64 { return r.totalRecorded.Load() }

// Dropped returns the total number of entries dropped by slow watchers.
func (r *Recorder) Dropped() int64 { return r.totalDropped.Load() }
