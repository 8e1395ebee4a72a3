package domain

import "time"

// Conversation is the chat-list projection of a thread for one viewer
type Conversation struct {
	UpdatedAt    time.Time `json:"updated_at"`
	ThreadID     string    `json:"thread_id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Avatar       string    `json:"avatar,omitempty"`
	LastMessage  string    `json:"last_message,omitempty"`
	LastSenderID string    `json:"last_sender_id,omitempty"`
	UnreadCount  int64     `json:"unread_count"`
	Pinned       bool      `json:"pinned"`
}

// ConversationsEqual is a shallow comparison over the fields that drive the
// chat list UI. It only suppresses redundant pushes, it is not a
// correctness check.
func ConversationsEqual(a, b []Conversation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ThreadID != b[i].ThreadID ||
			a[i].LastMessage != b[i].LastMessage ||
			a[i].UnreadCount != b[i].UnreadCount ||
			a[i].Pinned != b[i].Pinned {
			return false
		}
	}
	return true
}
