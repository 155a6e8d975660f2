// Package broadcast implements the listener registry and per-listener
// event-type filtering of §4.H: each listener monitors a set of event
// kinds (plus an optional wildcard), and receives only events whose kind
// it is watching, in registration order.
//
// This generalises the corpus's broker.Subscribe()/unsub contract (visible
// at the call site in server.tapService.Watch: a subscribe call returns a
// channel plus an unsubscribe func) into a callback-based registry with
// kind filtering, since the spec calls for synchronous delivery by default
// rather than a channel per listener.
package broadcast

import (
	"sort"
	"sync"

	"github.com/dynetlink/dynet"
)

// Wildcard, when passed to Register or Handle.Monitor, matches every Kind.
const Wildcard dynet.Kind = -1

// Dispatcher runs a delivery closure, letting a caller route listener
// callbacks onto a worker pool, a single event-loop goroutine, or (the
// default) the publishing goroutine itself.
type Dispatcher func(func())

// Broadcaster is the listener registry. The zero value is not usable; use
// New.
type Broadcaster struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []*entry
	dispatch  Dispatcher
}

type entry struct {
	id      uint64
	mu      sync.Mutex
	kinds   map[dynet.Kind]struct{}
	fn      func(dynet.Event)
	removed bool
}

// New creates a Broadcaster. If dispatch is nil, Publish calls listeners
// synchronously on the calling goroutine.
func New(dispatch Dispatcher) *Broadcaster {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &Broadcaster{dispatch: dispatch}
}

// Handle lets a caller adjust or remove a registered listener after the
// fact.
type Handle struct {
	b *Broadcaster
	e *entry
}

// Register adds a listener watching the given kinds (use Wildcard to watch
// everything) and returns a Handle for later adjustment or removal.
func (b *Broadcaster) Register(fn func(dynet.Event), kinds ...dynet.Kind) *Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	e := &entry{
		id:    b.nextID,
		kinds: toSet(kinds),
		fn:    fn,
	}
	b.listeners = append(b.listeners, e)
	return &Handle{b: b, e: e}
}

// Monitor adds a kind to the listener's watched set.
func (h *Handle) Monitor(kind dynet.Kind) {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	h.e.kinds[kind] = struct{}{}
}

// Unmonitor removes a kind from the listener's watched set.
func (h *Handle) Unmonitor(kind dynet.Kind) {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	delete(h.e.kinds, kind)
}

// Close removes the listener from the registry; it receives no further
// events.
func (h *Handle) Close() {
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	h.e.mu.Lock()
	h.e.removed = true
	h.e.mu.Unlock()
	kept := h.b.listeners[:0]
	for _, e := range h.b.listeners {
		if e.id != h.e.id {
			kept = append(kept, e)
		}
	}
	h.b.listeners = kept
}

// Publish delivers ev to every listener monitoring its kind (or Wildcard),
// in registration order.
func (b *Broadcaster) Publish(ev dynet.Event) {
	b.mu.Lock()
	targets := make([]*entry, 0, len(b.listeners))
	for _, e := range b.listeners {
		e.mu.Lock()
		_, wild := e.kinds[Wildcard]
		_, exact := e.kinds[ev.Kind]
		removed := e.removed
		e.mu.Unlock()
		if !removed && (wild || exact) {
			targets = append(targets, e)
		}
	}
	b.mu.Unlock()

	for _, e := range targets {
		fn := e.fn
		b.dispatch(func() { fn(ev) })
	}
}

// Kinds returns the listener's currently-watched kinds, sorted for
// deterministic test assertions.
func (h *Handle) Kinds() []dynet.Kind {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	out := make([]dynet.Kind, 0, len(h.e.kinds))
	for k := range h.e.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func toSet(kinds []dynet.Kind) map[dynet.Kind]struct{} {
	set := make(map[dynet.Kind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return set
}
