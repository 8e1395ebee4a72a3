package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPresenceStatus(t *testing.T) {
	now := time.Now()
	ago := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name     string
		lastSeen *time.Time
		isOnline bool
		want     string
	}{
		{name: "seconds ago", lastSeen: ago(30 * time.Second), want: PresenceOnline},
		{name: "just under online window", lastSeen: ago(PresenceOnlineWindow - time.Second), want: PresenceOnline},
		{name: "at online window boundary", lastSeen: ago(PresenceOnlineWindow), want: PresenceRecentlyActive},
		{name: "five minutes ago", lastSeen: ago(5 * time.Minute), want: PresenceRecentlyActive},
		{name: "at recent window boundary", lastSeen: ago(PresenceRecentWindow), want: PresenceOffline},
		{name: "an hour ago", lastSeen: ago(time.Hour), want: PresenceOffline},
		{name: "stale but flag still online", lastSeen: ago(15 * time.Minute), isOnline: true, want: PresenceOffline},
		{name: "no last seen, flag online", lastSeen: nil, isOnline: true, want: PresenceOnline},
		{name: "no last seen, flag offline", lastSeen: nil, isOnline: false, want: PresenceOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PresenceStatus(tt.lastSeen, tt.isOnline, now))
		})
	}
}
