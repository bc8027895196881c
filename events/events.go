// Package events is the run-scoped progress broadcaster.
//
// A triage run appends typed events to a Log; consumers either subscribe for
// live delivery or replay from a sequence number. The log is append-only for
// the duration of a run and is reset only when a new run starts.
package events

import (
	"sync"
	"time"
)

// Event types emitted during a run.
const (
	TypeInfo      = "info"
	TypeSuccess   = "success"
	TypeWarning   = "warning"
	TypeError     = "error"
	TypeProgress  = "progress"
	TypeHeartbeat = "heartbeat"
)

// SubscriberChannelBufferSize bounds per-subscriber buffering; slow consumers
// drop live events and recover via Since.
const SubscriberChannelBufferSize = 256

// Event is a single progress update from the triage orchestrator.
type Event struct {
	Seq       int                    `json:"seq"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Log is an append-only event log with subscriber fan-out.
// The orchestrator is the sole producer; any number of consumers may
// subscribe or replay.
type Log struct {
	mu          sync.RWMutex
	events      []Event
	nextSeq     int
	subscribers []chan Event
}

// NewLog creates an empty event log.
func NewLog() *Log {
	return &Log{}
}

// Append records an event and fans it out to subscribers.
// The assigned sequence number is returned.
func (l *Log) Append(eventType, message string, data map[string]interface{}) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := Event{
		Seq:       l.nextSeq,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Message:   message,
		Data:      data,
	}
	l.nextSeq++
	l.events = append(l.events, ev)
	l.notifySubscribers(ev)
	return ev.Seq
}

// Info appends an info event.
func (l *Log) Info(message string, data map[string]interface{}) int {
	return l.Append(TypeInfo, message, data)
}

// Success appends a success event.
func (l *Log) Success(message string, data map[string]interface{}) int {
	return l.Append(TypeSuccess, message, data)
}

// Warning appends a warning event.
func (l *Log) Warning(message string, data map[string]interface{}) int {
	return l.Append(TypeWarning, message, data)
}

// Error appends an error event.
func (l *Log) Error(message string, data map[string]interface{}) int {
	return l.Append(TypeError, message, data)
}

// Progress appends a progress event.
func (l *Log) Progress(message string, data map[string]interface{}) int {
	return l.Append(TypeProgress, message, data)
}

// Subscribe registers a new live consumer.
// The caller is responsible for calling Unsubscribe when done.
// The returned channel is buffered to prevent blocking the producer.
func (l *Log) Subscribe() chan Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Event, SubscriberChannelBufferSize)
	l.subscribers = append(l.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel.
// The channel is NOT closed by this method - callers should close it
// themselves after unsubscribing if needed. This prevents double-close panics.
func (l *Log) Unsubscribe(ch chan Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, sub := range l.subscribers {
		if sub == ch {
			l.subscribers = append(l.subscribers[:i], l.subscribers[i+1:]...)
			return
		}
	}
}

// notifySubscribers sends the event to all subscribers.
// REQUIRES: l.mu must be held by caller.
// Uses non-blocking send to avoid stalling if a subscriber is slow.
func (l *Log) notifySubscribers(ev Event) {
	for _, ch := range l.subscribers {
		select {
		case ch <- ev:
		default:
			// Channel full, skip; the consumer catches up via Since.
		}
	}
}

// Since returns a snapshot of all events with Seq >= seq, in order.
// Replaying from the last seen sequence gives at-least-once delivery.
func (l *Log) Since(seq int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if seq < 0 {
		seq = 0
	}
	if seq >= len(l.events) {
		return nil
	}
	out := make([]Event, len(l.events)-seq)
	copy(out, l.events[seq:])
	return out
}

// All returns a snapshot of the full log.
func (l *Log) All() []Event {
	return l.Since(0)
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// LastSeq returns the sequence number of the most recent event, or -1.
func (l *Log) LastSeq() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nextSeq - 1
}

// Reset clears the log for a new run. Subscribers stay registered.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
	l.nextSeq = 0
}
