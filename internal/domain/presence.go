package domain

import "time"

// Presence classifications derived from last-seen time
const (
	PresenceOnline         = "online"
	PresenceRecentlyActive = "recently-active"
	PresenceOffline        = "offline"
)

// Presence classification thresholds
const (
	PresenceOnlineWindow = 2 * time.Minute
	PresenceRecentWindow = 10 * time.Minute
)

// PresenceStatus classifies a member's presence from their last-seen time.
// When lastSeen is present the elapsed-time classification always wins over
// the stored isOnline flag; a crashed client must not read as perpetually
// online. The flag is only consulted when no lastSeen exists at all.
func PresenceStatus(lastSeen *time.Time, isOnline bool, now time.Time) string {
	if lastSeen == nil {
		if isOnline {
			return PresenceOnline
		}
		return PresenceOffline
	}
	elapsed := now.Sub(*lastSeen)
	switch {
	case elapsed < PresenceOnlineWindow:
		return PresenceOnline
	case elapsed < PresenceRecentWindow:
		return PresenceRecentlyActive
	default:
		return PresenceOffline
	}
}

// PresenceResponse represents a member's presence in API responses
type PresenceResponse struct {
	UserID   string `json:"user_id"`
	Status   string `json:"status"`
	LastSeen string `json:"last_seen,omitempty"`
}
