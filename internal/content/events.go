package content

import (
	"sync"

	"golang.org/x/net/html"
)

type EventType string

const (
	EventClick       EventType = "click"
	EventPointerDown EventType = "pointerdown"
	EventPointerMove EventType = "pointermove"
	EventPointerUp   EventType = "pointerup"
)

// Event is a user interaction routed through an EventTarget.
type Event struct {
	Type   EventType
	Target *html.Node
	X, Y   float64

	defaultPrevented   bool
	propagationStopped bool
}

func (e *Event) PreventDefault()          { e.defaultPrevented = true }
func (e *Event) DefaultPrevented() bool   { return e.defaultPrevented }
func (e *Event) StopPropagation()         { e.propagationStopped = true }
func (e *Event) PropagationStopped() bool { return e.propagationStopped }

type Listener func(*Event)

type listenerEntry struct {
	id int
	fn Listener
}

// EventTarget keeps listeners per event type. Listeners are removed through
// the func returned when they were added.
type EventTarget struct {
	mu        sync.Mutex
	nextID    int
	listeners map[EventType][]listenerEntry
}

func (t *EventTarget) AddEventListener(typ EventType, fn Listener) (remove func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listeners == nil {
		t.listeners = make(map[EventType][]listenerEntry)
	}
	t.nextID++
	id := t.nextID
	t.listeners[typ] = append(t.listeners[typ], listenerEntry{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { t.removeListener(typ, id) })
	}
}

func (t *EventTarget) removeListener(typ EventType, id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.listeners[typ]
	for i, e := range entries {
		if e.id == id {
			t.listeners[typ] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(t.listeners[typ]) == 0 {
		delete(t.listeners, typ)
	}
}

// ListenerCount returns the number of listeners for the given types, or for all types when none are given.
func (t *EventTarget) ListenerCount(types ...EventType) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(types) == 0 {
		n := 0
		for _, entries := range t.listeners {
			n += len(entries)
		}
		return n
	}

	n := 0
	for _, typ := range types {
		n += len(t.listeners[typ])
	}
	return n
}

// Dispatch runs every listener registered for e.Type. Listeners are snapshotted
// first so that a listener may remove itself (or others) while running.
func (t *EventTarget) Dispatch(e *Event) {
	t.mu.Lock()
	entries := append([]listenerEntry(nil), t.listeners[e.Type]...)
	t.mu.Unlock()

	for _, entry := range entries {
		entry.fn(e)
	}
}

// Window receives pointer events that are not bound to content, such as the
// moves and the release of a drag.
type Window struct {
	EventTarget
}

func NewWindow() *Window {
	return &Window{}
}
