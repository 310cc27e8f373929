// Package hub bridges WebSocket connections to reservation rooms: it
// decodes inbound action envelopes, tracks each connection's session state
// and fans room events back out over the socket.
package hub

import (
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	// sendBuffer bounds the per-client outbound queue.  A full buffer
	// marks the client slow and the connection is torn down rather than
	// letting one reader stall a room broadcast.
	sendBuffer = 64
)

// ErrClientGone is returned by Send once the client's outbound queue is
// closed or overflowed.
var ErrClientGone = errors.New("hub: client gone")

// Client is one WebSocket connection.  Send may be called from any
// goroutine; reads and state transitions happen on the client's own read
// pump.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	out  chan []byte

	closed chan struct{}

	state     sessionState
	requestID string
	room      roomRef
	watching  []roomRef
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateWaiting
	stateSelecting
	stateFinished
)

func newClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		out:    make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

// Send queues an event for delivery.  It satisfies reservation.Sender and
// never blocks: overflow disconnects the client instead.
func (c *Client) Send(v interface{}) error {
	payload, err := marshalEvent(v)
	if err != nil {
		return err
	}
	select {
	case <-c.closed:
		return ErrClientGone
	case c.out <- payload:
		return nil
	default:
		c.shutdown()
		return ErrClientGone
	}
}

// shutdown is safe to call more than once.
func (c *Client) shutdown() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
}

// readPump owns the connection's read side and all session state.  It
// exits on close or protocol error and detaches the client from every
// room it joined.
func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		c.shutdown()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("hub: read error: %v", err)
			}
			return
		}
		c.hub.handleMessage(c, raw)
	}
}

// writePump owns the connection's write side: queued events plus keepalive
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
