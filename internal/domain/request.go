package domain

import "time"

// MessageRequest statuses. The lifecycle is pending -> {accepted, rejected};
// both outcomes are terminal.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// MessageRequest represents a consent gate in front of a direct thread
// between two users without a mutual follow (dl_message_request table).
// SenderInfo is a denormalized snapshot taken at send time so the
// recipient's request list needs no join.
type MessageRequest struct {
	CreatedAt   time.Time  `gorm:"column:mr_created_at" json:"created_at"`
	ResolvedAt  *time.Time `gorm:"column:mr_resolved_at" json:"resolved_at,omitempty"`
	ID          string     `gorm:"column:mr_id;primaryKey" json:"id"`
	SenderID    string     `gorm:"column:mr_sender_id;index" json:"sender_id"`
	RecipientID string     `gorm:"column:mr_recipient_id;index" json:"recipient_id"`
	Text        string     `gorm:"column:mr_text;type:text" json:"text,omitempty"`
	Status      string     `gorm:"column:mr_status;index" json:"status"`
	ThreadID    string     `gorm:"column:mr_thread_id" json:"thread_id,omitempty"`
	SenderInfo  InfoMap    `gorm:"column:mr_sender_info;type:json" json:"sender_info"`
}

func (MessageRequest) TableName() string {
	return "dl_message_request"
}

// IsPending reports whether the request is still unresolved
func (r *MessageRequest) IsPending() bool {
	return r.Status == RequestPending
}

// SendRequestRequest represents a message request creation payload
type SendRequestRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Text        string `json:"text"`
}

// MessageRequestResponse represents a message request in API responses
type MessageRequestResponse struct {
	ID          string  `json:"id"`
	SenderID    string  `json:"sender_id"`
	RecipientID string  `json:"recipient_id"`
	Text        string  `json:"text,omitempty"`
	Status      string  `json:"status"`
	ThreadID    string  `json:"thread_id,omitempty"`
	SenderInfo  InfoMap `json:"sender_info"`
	CreatedAt   string  `json:"created_at"`
}

// ToResponse converts MessageRequest to MessageRequestResponse
func (r *MessageRequest) ToResponse() *MessageRequestResponse {
	return &MessageRequestResponse{
		ID:          r.ID,
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Text:        r.Text,
		Status:      r.Status,
		ThreadID:    r.ThreadID,
		SenderInfo:  r.SenderInfo,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}
