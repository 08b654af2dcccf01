package ws

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Event is the envelope broadcast to room subscribers.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub fans events out to clients grouped by room. Rooms are
// "consultation:<id>" for chat and "doctor:<user_id>" for verification
// decisions.
type Hub struct {
	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
}

// Leave removes the client from the room and closes its send channel. The
// close happens under the same lock broadcasts send under, and only on the
// first Leave for a given client, so a broadcast can never hit a closed
// channel.
func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.rooms[room]
	if m == nil {
		return
	}
	if _, ok := m[c]; !ok {
		return
	}
	delete(m, c)
	close(c.send)
	if len(m) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast delivers an event to every client in the room. Sends are
// non-blocking; slow clients are evicted rather than blocking the sender.
func (h *Hub) Broadcast(room string, eventType string, payload interface{}) {
	b, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.rooms[room] {
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		c.Close()
	}
}
