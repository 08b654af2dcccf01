package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// Clients that disconnect while handlers are broadcasting must not crash the
// hub: the send-channel close is serialized with broadcasts through the room
// lock.
func TestBroadcastDuringDisconnectChurn(t *testing.T) {
	h := NewHub()
	const room = "consultation:churn"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := newClient(h, room, conn)
		h.Join(room, client)
		go client.writePump()
		go client.readPump()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	stop := make(chan struct{})
	var broadcasters sync.WaitGroup
	for i := 0; i < 4; i++ {
		broadcasters.Add(1)
		go func() {
			defer broadcasters.Done()
			for {
				select {
				case <-stop:
					return
				default:
					h.Broadcast(room, "message.created", map[string]string{"body": "hello"})
				}
			}
		}()
	}

	var churners sync.WaitGroup
	for i := 0; i < 4; i++ {
		churners.Add(1)
		go func() {
			defer churners.Done()
			for j := 0; j < 50; j++ {
				conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
				if err != nil {
					t.Errorf("dial failed: %v", err)
					return
				}
				conn.Close()
			}
		}()
	}

	churners.Wait()
	close(stop)
	broadcasters.Wait()
}

func TestLeaveIsIdempotent(t *testing.T) {
	h := NewHub()
	c := &Client{hub: h, room: "consultation:x", send: make(chan []byte, 1)}

	h.Join("consultation:x", c)
	h.Leave("consultation:x", c)
	// A second Leave must not close the channel again
	h.Leave("consultation:x", c)

	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed after Leave")
	}
}

func TestBroadcastSkipsDepartedClient(t *testing.T) {
	h := NewHub()
	stayer := &Client{hub: h, room: "consultation:y", send: make(chan []byte, 1)}
	leaver := &Client{hub: h, room: "consultation:y", send: make(chan []byte, 1)}

	h.Join("consultation:y", stayer)
	h.Join("consultation:y", leaver)
	h.Leave("consultation:y", leaver)

	h.Broadcast("consultation:y", "message.created", map[string]string{"body": "hi"})

	select {
	case msg := <-stayer.send:
		if !strings.Contains(string(msg), "message.created") {
			t.Errorf("unexpected event payload: %s", msg)
		}
	default:
		t.Error("remaining client should have received the event")
	}
}
