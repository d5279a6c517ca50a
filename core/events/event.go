package events

import "sync"

// Event represents a structured state change emitted by a ledger module.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. the journal, the
// HTTP layer).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Record is the concrete payload every module emits: a dotted type plus a
// flat attribute map with string-encoded values.
type Record struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// EventType implements Event.
func (r *Record) EventType() string {
	if r == nil {
		return ""
	}
	return r.Type
}

// Attr returns the attribute value for key, or the empty string.
func (r *Record) Attr(key string) string {
	if r == nil || r.Attributes == nil {
		return ""
	}
	return r.Attributes[key]
}

// Recorder buffers emitted events in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements Emitter.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// Events returns a copy of the buffered events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the buffered records whose type matches.
func (r *Recorder) OfType(eventType string) []*Record {
	out := make([]*Record, 0)
	for _, evt := range r.Events() {
		if rec, ok := evt.(*Record); ok && rec.Type == eventType {
			out = append(out, rec)
		}
	}
	return out
}

// Reset discards buffered events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Fanout forwards every event to each non-nil emitter in order.
type Fanout []Emitter

// Emit implements Emitter.
func (f Fanout) Emit(evt Event) {
	for _, emitter := range f {
		if emitter != nil {
			emitter.Emit(evt)
		}
	}
}
