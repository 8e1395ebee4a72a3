package domain

import (
	"sort"
	"strings"
	"time"
)

// Thread types
const (
	ThreadTypeDirect = "direct"
	ThreadTypeGroup  = "group"
)

// Participant roles for group threads
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Thread represents a chat conversation container (dl_thread table).
// Direct threads use a deterministic id derived from the participant pair,
// group threads use a random id.
type Thread struct {
	CreatedAt        time.Time   `gorm:"column:th_created_at" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"column:th_updated_at;index" json:"updated_at"`
	LastMessageAt    *time.Time  `gorm:"column:th_last_message_at" json:"last_message_at,omitempty"`
	ID               string      `gorm:"column:th_id;primaryKey" json:"id"`
	Type             string      `gorm:"column:th_type" json:"type"`
	Participants     StringSlice `gorm:"column:th_participants;type:json" json:"participants"`
	ParticipantsInfo InfoMap     `gorm:"column:th_participants_info;type:json" json:"participants_info"`
	LastMessage      string      `gorm:"column:th_last_message" json:"last_message,omitempty"`
	LastSenderID     string      `gorm:"column:th_last_sender_id" json:"last_sender_id,omitempty"`
	GroupName        string      `gorm:"column:th_group_name" json:"group_name,omitempty"`
	GroupDescription string      `gorm:"column:th_group_description" json:"group_description,omitempty"`
	CreatorID        string      `gorm:"column:th_creator_id" json:"creator_id,omitempty"`
	Active           bool        `gorm:"column:th_active" json:"active"`
}

func (Thread) TableName() string {
	return "dl_thread"
}

// IsParticipant reports whether userID is a listed participant
func (t *Thread) IsParticipant(userID string) bool {
	return t.Participants.Contains(userID)
}

// Counterpart returns the other participant of a direct thread
func (t *Thread) Counterpart(userID string) string {
	for _, p := range t.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// DirectThreadID computes the canonical direct-thread id for a user pair.
// The pair is sorted before joining, so (a,b) and (b,a) agree.
func DirectThreadID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// minDirectIDPart is the minimum length a segment of a direct-thread id
// must have before the fallback repair will treat it as a user id.
const minDirectIDPart = 11

// ParseDirectThreadID derives the participant pair from a direct-thread id.
// This is a fallback-only heuristic for repairing threads with a missing
// participant list; ids that do not look like two well-formed user ids are
// rejected rather than guessed at.
func ParseDirectThreadID(id string) (string, string, bool) {
	parts := strings.Split(id, "_")
	if len(parts) != 2 {
		return "", "", false
	}
	for _, p := range parts {
		if len(p) < minDirectIDPart {
			return "", "", false
		}
	}
	if parts[0] == parts[1] {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// CreateGroupThreadRequest represents a group creation request
type CreateGroupThreadRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"member_ids" binding:"required,min=1"`
}

// ThreadResponse represents a thread in API responses
type ThreadResponse struct {
	ID               string      `json:"id"`
	Type             string      `json:"type"`
	Participants     StringSlice `json:"participants"`
	ParticipantsInfo InfoMap     `json:"participants_info"`
	LastMessage      string      `json:"last_message,omitempty"`
	LastSenderID     string      `json:"last_sender_id,omitempty"`
	GroupName        string      `json:"group_name,omitempty"`
	GroupDescription string      `json:"group_description,omitempty"`
	UpdatedAt        string      `json:"updated_at"`
}

// ToResponse converts Thread to ThreadResponse
func (t *Thread) ToResponse() *ThreadResponse {
	return &ThreadResponse{
		ID:               t.ID,
		Type:             t.Type,
		Participants:     t.Participants,
		ParticipantsInfo: t.ParticipantsInfo,
		LastMessage:      t.LastMessage,
		LastSenderID:     t.LastSenderID,
		GroupName:        t.GroupName,
		GroupDescription: t.GroupDescription,
		UpdatedAt:        t.UpdatedAt.Format(time.RFC3339),
	}
}
