package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Status(t *testing.T) {
	now := time.Now()
	msg := &Message{
		SenderID:    "user-alice-001",
		DeliveredTo: TimeMap{"user-alice-001": now, "user-bob-00002": now},
		ReadBy:      TimeMap{"user-alice-001": now},
	}

	assert.Equal(t, StatusRead, msg.Status("user-alice-001"))
	assert.Equal(t, StatusDelivered, msg.Status("user-bob-00002"))
	assert.Equal(t, StatusSent, msg.Status("user-carol-003"))
}

func TestMessage_StatusReadWinsOverDelivered(t *testing.T) {
	// A recipient in ReadBy but missing from DeliveredTo still reads as read;
	// the projection never regresses
	msg := &Message{
		ReadBy: TimeMap{"user-bob-00002": time.Now()},
	}
	assert.Equal(t, StatusRead, msg.Status("user-bob-00002"))
}

func TestMessage_StatusEmptyMaps(t *testing.T) {
	msg := &Message{}
	assert.Equal(t, StatusSent, msg.Status("user-bob-00002"))
}
