package engine

import (
	"sync"

	"github.com/roach88/hotbar/internal/ir"
)

// EventType distinguishes input event kinds.
type EventType int

const (
	// EventKeyDown is a button press.
	EventKeyDown EventType = iota + 1
	// EventKeyUp is a button release.
	EventKeyUp
	// EventCancel is a loss of focus: every active command ends.
	EventCancel
	// EventSwitch asks for a mode switch from outside the bindings.
	EventSwitch
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventKeyDown:
		return "down"
	case EventKeyUp:
		return "up"
	case EventCancel:
		return "cancel"
	case EventSwitch:
		return "switch"
	default:
		return "unknown"
	}
}

// InputEvent is one queued input.
type InputEvent struct {
	Type EventType
	Key  ir.KeyID
	// Mode is the target of an EventSwitch.
	Mode string
}

// KeyDown builds a key press event.
func KeyDown(key ir.KeyID) InputEvent { return InputEvent{Type: EventKeyDown, Key: key} }

// KeyUp builds a key release event.
func KeyUp(key ir.KeyID) InputEvent { return InputEvent{Type: EventKeyUp, Key: key} }

// inputQueue is a thread-safe FIFO of input events.
//
// Input may arrive on a device goroutine while the frame loop dequeues at
// the start of each tick. The queue is unbounded so a burst of input never
// blocks the device side.
type inputQueue struct {
	mu     sync.Mutex
	events []InputEvent
	closed bool
}

func newInputQueue() *inputQueue {
	return &inputQueue{
		events: make([]InputEvent, 0, 16),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *inputQueue) Enqueue(e InputEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)
	return true
}

// TryDequeue removes the front event without blocking.
func (q *inputQueue) TryDequeue() (InputEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return InputEvent{}, false
	}
	e := q.events[0]
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Len returns the current queue length.
func (q *inputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close stops the queue from accepting events. Queued events can still be
// dequeued.
func (q *inputQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
}
