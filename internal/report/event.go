// Package report wraps mutating operations with logging, user-facing
// notifications and internal change events.
package report

import (
	"slices"
	"sync"
)

// Kind distinguishes what an event is for.
type Kind int

const (
	// KindAlert is an error shown to the user.
	KindAlert Kind = iota
	// KindNotification is an informational message shown to the user.
	KindNotification
	// KindChange signals that backend state changed.
	KindChange
)

// Event names.
const (
	EventAlert            = "alert"
	EventNotification     = "notification"
	EventPlaylistChanged  = "playlistChanged"  // internal: one playlist's items changed
	EventPlaylistUpdated  = "playlistUpdated"  // forwarded: one playlist's display data changed
	EventPlaylistsUpdated = "playlistsUpdated" // forwarded: the set of playlists changed
	EventQueueChanged     = "queueChanged"     // internal: the play queue was rebuilt
)

// Event is one emission. Forward decides whether it reaches the UI; events
// with Forward unset stay inside the backend.
type Event struct {
	Kind       Kind
	Name       string
	Label      string
	PlaylistID int64
	Forward    bool
}

// Emitter accepts events.
type Emitter interface {
	Emit(e Event)
}

// Sink receives the events forwarded to the UI.
type Sink interface {
	Forward(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event)

func (f SinkFunc) Forward(e Event) { f(e) }

// Sinks fans an event out to several sinks.
type Sinks []Sink

func (s Sinks) Forward(e Event) {
	for _, sink := range s {
		sink.Forward(e)
	}
}

// Bus dispatches events to handlers registered by name and forwards the
// events marked Forward to the UI sink. Handlers run synchronously on the
// emitting goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]func(Event)
	sink     Sink
}

// NewBus creates a bus forwarding to sink. A nil sink drops UI events.
func NewBus(sink Sink) *Bus {
	return &Bus{handlers: make(map[string][]func(Event)), sink: sink}
}

// On registers a handler for events with the given name.
func (b *Bus) On(name string, fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], fn)
}

// Emit forwards e to the UI if requested, then runs the handlers for e.Name.
func (b *Bus) Emit(e Event) {
	if e.Forward && b.sink != nil {
		b.sink.Forward(e)
	}

	b.mu.RLock()
	handlers := slices.Clone(b.handlers[e.Name])
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}
}
