package domain

import "time"

// Message delivery states as seen by the sender
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// Message represents a chat message owned by a thread (dl_message table).
// Delivery and read state are open per-recipient maps rather than a single
// enum so group threads fall out of the same model as direct ones.
type Message struct {
	CreatedAt   time.Time `gorm:"column:ms_created_at;index" json:"created_at"`
	ID          string    `gorm:"column:ms_id;primaryKey" json:"id"`
	ThreadID    string    `gorm:"column:ms_thread_id;index" json:"thread_id"`
	SenderID    string    `gorm:"column:ms_sender_id" json:"sender_id"`
	Text        string    `gorm:"column:ms_text;type:text" json:"text,omitempty"`
	ImageRef    string    `gorm:"column:ms_image_ref" json:"image_ref,omitempty"`
	DeliveredTo TimeMap   `gorm:"column:ms_delivered_to;type:json" json:"delivered_to"`
	ReadBy      TimeMap   `gorm:"column:ms_read_by;type:json" json:"read_by"`
	Edited      bool      `gorm:"column:ms_edited" json:"edited"`
}

func (Message) TableName() string {
	return "dl_message"
}

// Status computes the delivery state of this message for one recipient.
// Pure projection over the receipt maps: read wins over delivered wins
// over sent, so once a recipient appears in ReadBy the result can never
// regress.
func (m *Message) Status(recipientID string) string {
	if _, ok := m.ReadBy[recipientID]; ok {
		return StatusRead
	}
	if _, ok := m.DeliveredTo[recipientID]; ok {
		return StatusDelivered
	}
	return StatusSent
}

// SendMessageRequest represents a send message request
type SendMessageRequest struct {
	Text     string `json:"text"`
	ImageRef string `json:"image_ref"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID          string  `json:"id"`
	ThreadID    string  `json:"thread_id"`
	SenderID    string  `json:"sender_id"`
	Text        string  `json:"text,omitempty"`
	ImageRef    string  `json:"image_ref,omitempty"`
	DeliveredTo TimeMap `json:"delivered_to"`
	ReadBy      TimeMap `json:"read_by"`
	CreatedAt   string  `json:"created_at"`
	Edited      bool    `json:"edited"`
}

// ToResponse converts Message to MessageResponse
func (m *Message) ToResponse() *MessageResponse {
	return &MessageResponse{
		ID:          m.ID,
		ThreadID:    m.ThreadID,
		SenderID:    m.SenderID,
		Text:        m.Text,
		ImageRef:    m.ImageRef,
		DeliveredTo: m.DeliveredTo,
		ReadBy:      m.ReadBy,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		Edited:      m.Edited,
	}
}
