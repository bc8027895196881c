package events

import (
	"context"
	"sync"
	"time"
)

// Heartbeat delivers keepalive events to live subscribers while the log is
// quiet, so a consumer can tell a stalled producer from a stalled stream.
// Heartbeats go only to subscribers; they are never recorded in the log.
type Heartbeat struct {
	log      *Log
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeartbeat creates a heartbeat injector for the log.
func NewHeartbeat(log *Log, interval time.Duration) *Heartbeat {
	return &Heartbeat{log: log, interval: interval}
}

// Start launches the heartbeat goroutine. Stop must be called to release it.
func (h *Heartbeat) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		lastSeen := h.log.LastSeq()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current := h.log.LastSeq()
				if current != lastSeen {
					// Real events flowed since the last tick; stay quiet.
					lastSeen = current
					continue
				}
				h.inject()
			}
		}
	}()
}

// Stop terminates the heartbeat goroutine and waits for it to exit.
func (h *Heartbeat) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()
}

// inject fans a heartbeat out to subscribers without recording it.
func (h *Heartbeat) inject() {
	ev := Event{
		Seq:       -1, // not part of the log
		Type:      TypeHeartbeat,
		Timestamp: time.Now().UTC(),
	}

	h.log.mu.RLock()
	defer h.log.mu.RUnlock()
	h.log.notifySubscribers(ev)
}
