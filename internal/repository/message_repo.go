package repository

import (
	"fmt"
	"time"

	"github.com/devlink/devlink-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	Create(msg *domain.Message) error
	FindByID(id string) (*domain.Message, error)
	FindByThread(threadID string, page, limit int) ([]*domain.Message, int64, error)
	FindRecent(threadID string, limit int) ([]*domain.Message, error)
	FindUndeliveredIDs(threadID, userID string) ([]string, error)
	StampDelivered(ids []string, userID string, at time.Time) error
	StampRead(ids []string, userID string, at time.Time) error
	CountUnread(threadID, userID string) (int64, error)
	UpdateText(id, text string) error
	DeleteByThread(threadID string, pageSize int) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts a message row
func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

// FindByID finds a message by ID
func (r *messageRepository) FindByID(id string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("ms_id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByThread returns messages of a thread, newest first
func (r *messageRepository) FindByThread(threadID string, page, limit int) ([]*domain.Message, int64, error) {
	var messages []*domain.Message
	var total int64

	r.db.Model(&domain.Message{}).
		Where("ms_thread_id = ?", threadID).
		Count(&total)

	offset := (page - 1) * limit
	err := r.db.Where("ms_thread_id = ?", threadID).
		Order("ms_created_at DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	return messages, total, err
}

// FindRecent returns the most recent messages of a thread
func (r *messageRepository) FindRecent(threadID string, limit int) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.Where("ms_thread_id = ?", threadID).
		Order("ms_created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// FindUndeliveredIDs returns ids of messages in a thread sent by others
// that carry no delivered receipt for userID yet
func (r *messageRepository) FindUndeliveredIDs(threadID, userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.Message{}).
		Where("ms_thread_id = ? AND ms_sender_id <> ? AND JSON_EXTRACT(ms_delivered_to, ?) IS NULL",
			threadID, userID, receiptPath(userID)).
		Pluck("ms_id", &ids).Error
	return ids, err
}

// receiptPath builds the JSON path for one recipient's receipt entry
func receiptPath(userID string) string {
	return fmt.Sprintf(`$."%s"`, userID)
}

// StampDelivered merges a delivered-at entry for userID into each message,
// in one transaction. Existing entries are left untouched.
func (r *messageRepository) StampDelivered(ids []string, userID string, at time.Time) error {
	return r.stampReceipts("ms_delivered_to", ids, userID, at)
}

// StampRead merges a read-at entry for userID into each message
func (r *messageRepository) StampRead(ids []string, userID string, at time.Time) error {
	return r.stampReceipts("ms_read_by", ids, userID, at)
}

func (r *messageRepository) stampReceipts(column string, ids []string, userID string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	path := receiptPath(userID)
	stamp := at.UTC().Format(time.RFC3339Nano)
	expr := fmt.Sprintf("JSON_SET(%s, ?, ?)", column)

	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&domain.Message{}).
			Where("ms_id IN ?", ids).
			Update(column, gorm.Expr(expr, path, stamp)).Error
	})
}

// CountUnread counts messages in a thread sent by others and not yet read
// by userID
func (r *messageRepository) CountUnread(threadID, userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).
		Where("ms_thread_id = ? AND ms_sender_id <> ? AND JSON_EXTRACT(ms_read_by, ?) IS NULL",
			threadID, userID, receiptPath(userID)).
		Count(&count).Error
	return count, err
}

// UpdateText replaces the message text and flags it as edited
func (r *messageRepository) UpdateText(id, text string) error {
	result := r.db.Model(&domain.Message{}).
		Where("ms_id = ?", id).
		Updates(map[string]interface{}{
			"ms_text":   text,
			"ms_edited": true,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByThread removes all messages of a thread in bounded pages so a
// large history does not lock the table in one statement
func (r *messageRepository) DeleteByThread(threadID string, pageSize int) error {
	if pageSize < 1 {
		pageSize = 100
	}
	for {
		result := r.db.Where("ms_thread_id = ?", threadID).
			Limit(pageSize).
			Delete(&domain.Message{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected < int64(pageSize) {
			return nil
		}
	}
}
