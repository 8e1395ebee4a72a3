package repository

import (
	"errors"
	"time"

	"github.com/devlink/devlink-backend/internal/domain"
	"gorm.io/gorm"
)

// RequestRepository message request data access interface
type RequestRepository interface {
	Create(req *domain.MessageRequest) error
	FindByID(id string) (*domain.MessageRequest, error)
	FindPendingBetween(senderID, recipientID string) (*domain.MessageRequest, error)
	FindForRecipient(recipientID, status string, page, limit int) ([]*domain.MessageRequest, int64, error)
	Resolve(id, status, threadID string, at time.Time) error
	Delete(id string) error
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new RequestRepository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create inserts a message request row
func (r *requestRepository) Create(req *domain.MessageRequest) error {
	return r.db.Create(req).Error
}

// FindByID finds a message request by ID
func (r *requestRepository) FindByID(id string) (*domain.MessageRequest, error) {
	var req domain.MessageRequest
	err := r.db.Where("mr_id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindPendingBetween returns the pending request for a (sender, recipient)
// pair, or nil when none exists
func (r *requestRepository) FindPendingBetween(senderID, recipientID string) (*domain.MessageRequest, error) {
	var req domain.MessageRequest
	err := r.db.
		Where("mr_sender_id = ? AND mr_recipient_id = ? AND mr_status = ?",
			senderID, recipientID, domain.RequestPending).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// FindForRecipient returns requests addressed to a recipient, newest first
func (r *requestRepository) FindForRecipient(recipientID, status string, page, limit int) ([]*domain.MessageRequest, int64, error) {
	var requests []*domain.MessageRequest
	var total int64

	query := r.db.Model(&domain.MessageRequest{}).
		Where("mr_recipient_id = ?", recipientID)
	if status != "" {
		query = query.Where("mr_status = ?", status)
	}
	query.Count(&total)

	offset := (page - 1) * limit
	err := query.
		Order("mr_created_at DESC").
		Offset(offset).Limit(limit).
		Find(&requests).Error
	return requests, total, err
}

// Resolve finalizes a pending request. The status predicate guards against
// a concurrent accept/reject landing first.
func (r *requestRepository) Resolve(id, status, threadID string, at time.Time) error {
	result := r.db.Model(&domain.MessageRequest{}).
		Where("mr_id = ? AND mr_status = ?", id, domain.RequestPending).
		Updates(map[string]interface{}{
			"mr_status":      status,
			"mr_thread_id":   threadID,
			"mr_resolved_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a message request row
func (r *requestRepository) Delete(id string) error {
	result := r.db.Where("mr_id = ?", id).Delete(&domain.MessageRequest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
