package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringSlice is a []string stored as a JSON column
type StringSlice []string

// Value implements driver.Valuer
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *StringSlice) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Contains reports whether v is present
func (s StringSlice) Contains(v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

// TimeMap maps a user id to a timestamp, stored as a JSON column.
// Used for per-recipient delivered/read receipts.
type TimeMap map[string]time.Time

// Value implements driver.Valuer
func (m TimeMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *TimeMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// ParticipantInfo denormalized profile snapshot cached on the thread
type ParticipantInfo struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role,omitempty"` // "admin" or "member" for group threads
}

// InfoMap maps a user id to its cached profile snapshot, stored as JSON
type InfoMap map[string]ParticipantInfo

// Value implements driver.Valuer
func (m InfoMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *InfoMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
