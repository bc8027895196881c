package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ravencare/ravencare/events"
)

// WebSocket timeout constants following Gorilla best practices
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Client is one websocket consumer of the run event stream.
type Client struct {
	server *Server
	conn   *websocket.Conn
	sub    chan events.Event
	id     string

	closeOnce sync.Once
	done      chan struct{}
}

// handleWebSocket upgrades the connection and streams run events. A ?since=N
// query replays the log from that sequence before live delivery starts, so a
// reconnecting consumer fills its gap with at-least-once semantics.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("WebSocket upgrade failed", "error", err)
		return
	}

	since := 0
	if raw := r.URL.Query().Get("since"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			since = parsed
		}
	}

	client := &Client{
		server: s,
		conn:   conn,
		id:     uuid.NewString(),
		done:   make(chan struct{}),
	}

	if !s.registerClient(client) {
		conn.Close()
		return
	}

	// Subscribe before the replay snapshot so no event falls between them;
	// the writer skips live events already covered by the replay.
	log := s.runner.Events()
	client.sub = log.Subscribe()
	replay := log.Since(since)

	s.wg.Add(2)
	go client.writePump(replay)
	go client.readPump()
}

// checkOrigin enforces the configured origin allowlist. An empty list allows
// all origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, candidate := range allowed {
		if origin == candidate {
			return true
		}
	}
	s.logger.Warnw("WebSocket origin rejected", "origin", origin)
	return false
}

// readPump drains client messages. The stream is one-way; reads exist only to
// process pongs and detect closure.
func (c *Client) readPump() {
	defer func() {
		c.server.wg.Done()
		c.close()
		c.server.unregisterClient(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				c.server.logger.Warnw("WebSocket read error",
					"client_id", c.id,
					"error", err)
			}
			return
		}
	}
}

// writePump sends the replay snapshot, then live events and pings.
func (c *Client) writePump(replay []events.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.server.wg.Done()
		c.conn.Close()
	}()

	nextSeq := 0
	for _, ev := range replay {
		if err := c.writeEvent(ev); err != nil {
			return
		}
		nextSeq = ev.Seq + 1
	}

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-c.server.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case ev := <-c.sub:
			// Heartbeats carry Seq -1 and always pass; recorded events
			// already delivered by the replay are skipped.
			if ev.Seq >= 0 && ev.Seq < nextSeq {
				continue
			}
			if ev.Seq >= 0 {
				nextSeq = ev.Seq + 1
			}
			if err := c.writeEvent(ev); err != nil {
				c.server.logger.Debugw("Event write error",
					"client_id", c.id,
					"error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeEvent(ev events.Event) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(ev)
}

// close releases the client's subscription and signals the write pump.
// Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		if c.sub != nil {
			c.server.runner.Events().Unsubscribe(c.sub)
		}
		close(c.done)
	})
}
