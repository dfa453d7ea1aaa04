package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Conn represents ONE transport-level socket (a browser tab, a device). It is
// owned by the registry entry of its user and dies with the transport.
type Conn struct {
	id   uuid.UUID
	user uuid.UUID
	ws   *websocket.Conn
	out  chan []byte

	mu     sync.Mutex
	closed bool

	// rooms is the per-connection authorization cache; guarded by the
	// room cache's lock, not by c.mu.
	rooms map[uuid.UUID]struct{}

	// calls the connection is actively participating in; guarded by the
	// call relay's lock.
	calls map[uuid.UUID]struct{}

	teardown sync.Once
}

func newConn(user uuid.UUID, ws *websocket.Conn, queue int) *Conn {
	return &Conn{
		id:    uuid.New(),
		user:  user,
		ws:    ws,
		out:   make(chan []byte, queue),
		rooms: make(map[uuid.UUID]struct{}),
		calls: make(map[uuid.UUID]struct{}),
	}
}

func (c *Conn) ID() uuid.UUID     { return c.id }
func (c *Conn) UserID() uuid.UUID { return c.user }

// push queues one pre-encoded frame. Slow or dead connections drop frames
// rather than stall the dispatcher; a reconnect re-fetches state anyway.
func (c *Conn) push(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.out <- frame:
		return true
	default:
		log.Warn().Str("conn_id", c.id.String()).Str("user_id", c.user.String()).Msg("write queue full, dropping frame")
		return false
	}
}

// Send encodes and queues a single event for this connection only. Used for
// synchronous replies (snapshots, acks) as opposed to fan-out.
func (c *Conn) Send(eventType string, payload any) error {
	frame, err := encodeEvent(eventType, payload)
	if err != nil {
		return err
	}
	c.push(frame)
	return nil
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// markClosed seals the connection: no frame queued afterwards is accepted and
// the write loop drains out and exits.
func (c *Conn) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

func (c *Conn) writeLoop(pingInterval time.Duration) {
	tick := time.NewTicker(pingInterval)
	defer tick.Stop()

	for {
		select {
		case frame, ok := <-c.out:
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-tick.C:
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Conn) readLoop(h *Hub) {
	defer func() {
		h.Teardown(c)
		_ = c.ws.Close()
	}()

	for {
		var cmd Envelope
		if err := c.ws.ReadJSON(&cmd); err != nil {
			return // closed
		}
		if c.isClosed() {
			return
		}
		h.HandleCommand(c, cmd)
	}
}
