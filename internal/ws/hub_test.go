package ws

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestClient(h *Hub, userID string) *Client {
	return &Client{hub: h, userID: userID, send: make(chan []byte, 512)}
}

type recordingListener struct {
	connects    chan string
	disconnects chan string
	hub         *Hub
	onConnect   func(userID string)
}

func newRecordingListener(h *Hub) *recordingListener {
	return &recordingListener{
		connects:    make(chan string, 8),
		disconnects: make(chan string, 8),
		hub:         h,
	}
}

func (l *recordingListener) OnConnect(userID string) {
	if l.onConnect != nil {
		l.onConnect(userID)
	}
	l.connects <- userID
}

func (l *recordingListener) OnDisconnect(userID string) {
	l.disconnects <- userID
}

func waitFor(t *testing.T, ch chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestHub_SessionListenerFirstAndLastClientOnly(t *testing.T) {
	hub := NewHub(nil)
	listener := newRecordingListener(hub)
	hub.SetSessionListener(listener)
	go hub.Run()
	defer hub.Stop()

	c1 := newTestClient(hub, "user-1")
	c2 := newTestClient(hub, "user-1")

	hub.Register(c1)
	waitFor(t, listener.connects, "user-1")

	// Second socket for the same user is not a new session
	hub.Register(c2)
	select {
	case <-listener.connects:
		t.Fatal("second client triggered OnConnect")
	case <-time.After(100 * time.Millisecond):
	}

	hub.unregister <- c1
	select {
	case <-listener.disconnects:
		t.Fatal("OnDisconnect fired while a client remained")
	case <-time.After(100 * time.Millisecond):
	}

	hub.unregister <- c2
	waitFor(t, listener.disconnects, "user-1")
}

// A listener that turns around and sends through the hub must not stall
// event dispatch, even when it floods past the broadcast buffer.
func TestHub_ListenerMaySendThroughHub(t *testing.T) {
	const burst = 300 // larger than the broadcast channel buffer

	hub := NewHub(nil)
	listener := newRecordingListener(hub)
	listener.onConnect = func(userID string) {
		for i := 0; i < burst; i++ {
			hub.SendToUser(userID, &Event{Type: EventPresence, Payload: i})
		}
	}
	hub.SetSessionListener(listener)
	go hub.Run()
	defer hub.Stop()

	client := newTestClient(hub, "user-1")
	hub.Register(client)

	received := 0
	deadline := time.After(3 * time.Second)
	for received < burst {
		select {
		case <-client.send:
			received++
		case <-deadline:
			t.Fatalf("dispatch stalled: got %d of %d events", received, burst)
		}
	}
	waitFor(t, listener.connects, "user-1")
}

func TestHub_SendToUserDeliversOnce(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	client := newTestClient(hub, "user-1")
	hub.Register(client)

	hub.SendToUser("user-1", &Event{Type: EventMessage, Payload: "hi"})

	select {
	case data := <-client.send:
		var ev Event
		assert.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, EventMessage, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}

	select {
	case <-client.send:
		t.Fatal("event delivered twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_OwnRedisPublicationNotRedelivered(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	client := newTestClient(hub, "user-1")
	hub.Register(client)

	payload := func(origin string) []byte {
		data, err := json.Marshal(&redisMessage{
			Origin: origin,
			UserID: "user-1",
			Event:  &Event{Type: EventMessage, Payload: "hi"},
		})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return data
	}

	// This instance's own publication was already delivered at publish time
	hub.handleRedisMessage(payload(hub.instanceID))
	select {
	case <-client.send:
		t.Fatal("own publication re-delivered")
	case <-time.After(100 * time.Millisecond):
	}

	// Another instance's publication comes through
	hub.handleRedisMessage(payload("some-other-instance"))
	select {
	case <-client.send:
	case <-time.After(2 * time.Second):
		t.Fatal("foreign publication never delivered")
	}
}

func TestHub_SendToUsersFansOut(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	clients := make([]*Client, 3)
	userIDs := make([]string, 3)
	for i := range clients {
		userIDs[i] = fmt.Sprintf("user-%d", i)
		clients[i] = newTestClient(hub, userIDs[i])
		hub.Register(clients[i])
	}

	hub.SendToUsers(userIDs, &Event{Type: EventThread, Payload: "t1"})

	for i, c := range clients {
		select {
		case <-c.send:
		case <-time.After(2 * time.Second):
			t.Fatalf("client %d never received the event", i)
		}
	}
}
