package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/iliyamo/match-ticketing/internal/reservation"
	"github.com/iliyamo/match-ticketing/internal/seatmap"
)

// roomRef names a room a client is attached to.
type roomRef = reservation.RoomKey

// envelope is the inbound action frame.  Every client message carries an
// action name plus the fields that action needs; unknown or malformed
// frames get an error notice back instead of closing the socket.
type envelope struct {
	Action    string `json:"action"`
	RequestID string `json:"request_id,omitempty"`
	Requester string `json:"requester,omitempty"`
	MatchID   uint64 `json:"match_id,omitempty"`
	Category  string `json:"category,omitempty"`
	SeatSlot  string `json:"seat_slot_id,omitempty"`
}

// Hub accepts WebSocket connections and routes their actions into
// reservation rooms.
type Hub struct {
	coord    *reservation.Coordinator
	upgrader websocket.Upgrader
}

func New(coord *reservation.Coordinator) *Hub {
	return &Hub{
		coord: coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks belong to a fronting proxy in this stack.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and starts the connection's pumps.  The
// socket begins idle; the first register or watch action attaches it to a
// room.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newClient(h, conn)
	go c.writePump()
	go c.readPump()
	return nil
}

func marshalEvent(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// handleMessage decodes one inbound frame and applies it against the
// client's session state.  Room methods are asynchronous, so this returns
// quickly and replies arrive through the client's Send.
func (h *Hub) handleMessage(c *Client, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "bad_message"})
		return
	}
	switch env.Action {
	case "register":
		h.handleRegister(c, env)
	case "watch":
		h.handleWatch(c, env)
	case "select":
		h.handleSelect(c, env)
	case "finish":
		h.handleFinish(c, env)
	default:
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "unknown_action"})
	}
}

func (h *Hub) handleRegister(c *Client, env envelope) {
	if c.state != stateIdle {
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "already_registered"})
		return
	}
	if env.RequestID == "" || env.Requester == "" || env.MatchID == 0 {
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "bad_message"})
		return
	}
	key, err := h.roomKey(env.MatchID, env.Category)
	if err != nil {
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "unknown_category"})
		return
	}
	room, err := h.coord.Room(context.Background(), key)
	if err != nil {
		log.Printf("hub: open room %s: %v", key, err)
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "room_unavailable"})
		return
	}
	c.state = stateWaiting
	c.requestID = env.RequestID
	c.room = key
	room.Register(c, env.RequestID, env.Requester)
}

func (h *Hub) handleWatch(c *Client, env envelope) {
	if env.MatchID == 0 {
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "bad_message"})
		return
	}
	key, err := h.roomKey(env.MatchID, env.Category)
	if err != nil {
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "unknown_category"})
		return
	}
	for _, w := range c.watching {
		if w == key {
			return // already watching, idempotent
		}
	}
	room, err := h.coord.Room(context.Background(), key)
	if err != nil {
		log.Printf("hub: open room %s: %v", key, err)
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "room_unavailable"})
		return
	}
	c.watching = append(c.watching, key)
	room.Watch(c)
}

func (h *Hub) handleSelect(c *Client, env envelope) {
	if c.state != stateWaiting && c.state != stateSelecting {
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "not_registered"})
		return
	}
	if env.SeatSlot == "" {
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "bad_message"})
		return
	}
	room := h.coord.Lookup(c.room)
	if room == nil {
		c.Send(reservation.ErrorNotice{Type: "error", Reason: "room_unavailable"})
		return
	}
	c.state = stateSelecting
	room.Select(c, c.requestID, env.SeatSlot)
}

func (h *Hub) handleFinish(c *Client, env envelope) {
	if c.state == stateIdle || c.state == stateFinished {
		return
	}
	if room := h.coord.Lookup(c.room); room != nil {
		room.Finish(c.requestID)
	}
	c.state = stateFinished
}

// detach unsubscribes the client from every room on disconnect.  Leaving
// the registered room abandons a live admission so the queue advances.
func (h *Hub) detach(c *Client) {
	if c.state == stateWaiting || c.state == stateSelecting {
		if room := h.coord.Lookup(c.room); room != nil {
			room.Leave(c)
		}
	}
	for _, key := range c.watching {
		if room := h.coord.Lookup(key); room != nil {
			room.Leave(c)
		}
	}
}

func (h *Hub) roomKey(matchID uint64, category string) (reservation.RoomKey, error) {
	cat, ok := seatmap.ParseCategory(category)
	if !ok {
		return reservation.RoomKey{}, fmt.Errorf("hub: unknown category %q", category)
	}
	return reservation.RoomKey{MatchID: matchID, Category: cat}, nil
}
