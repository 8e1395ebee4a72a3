package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_AckFrameTriggersHandler(t *testing.T) {
	hub := NewHub(nil)

	type ack struct{ threadID, userID string }
	var acks []ack
	hub.SetAckHandler(func(threadID, userID string) {
		acks = append(acks, ack{threadID, userID})
	})

	client := newTestClient(hub, "user-1")
	client.handleInbound([]byte(`{"type":"ack","thread_id":"thread-9"}`))

	assert.Equal(t, []ack{{"thread-9", "user-1"}}, acks)
}

func TestClient_IgnoresMalformedAndUnknownFrames(t *testing.T) {
	hub := NewHub(nil)

	called := 0
	hub.SetAckHandler(func(threadID, userID string) { called++ })

	client := newTestClient(hub, "user-1")
	client.handleInbound([]byte(`not json`))
	client.handleInbound([]byte(`{"type":"ping"}`))
	client.handleInbound([]byte(`{"type":"ack"}`)) // missing thread id

	assert.Equal(t, 0, called)
}

func TestClient_AckWithoutHandlerIsNoop(t *testing.T) {
	client := newTestClient(NewHub(nil), "user-1")
	assert.NotPanics(t, func() {
		client.handleInbound([]byte(`{"type":"ack","thread_id":"thread-9"}`))
	})
}
