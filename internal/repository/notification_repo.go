package repository

import (
	"errors"

	"github.com/devlink/devlink-backend/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository notification data access interface
type NotificationRepository interface {
	Create(n *domain.Notification) error
	GetUnreadCount(memberID string) (int64, error)
	GetList(memberID string, offset, limit int) ([]domain.Notification, int64, error)
	FindByID(id int) (*domain.Notification, error)
	MarkAsRead(id int) error
	MarkAllAsRead(memberID string) error
	Delete(id int) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts a notification row
func (r *notificationRepository) Create(n *domain.Notification) error {
	return r.db.Create(n).Error
}

// GetUnreadCount returns the number of unread notifications for a member
func (r *notificationRepository) GetUnreadCount(memberID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("nt_member_id = ? AND nt_is_read = ?", memberID, false).
		Count(&count).Error
	return count, err
}

// GetList returns paginated notifications for a member
func (r *notificationRepository) GetList(memberID string, offset, limit int) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	if err := r.db.Model(&domain.Notification{}).
		Where("nt_member_id = ?", memberID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.Where("nt_member_id = ?", memberID).
		Order("nt_created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// FindByID returns a notification by ID
func (r *notificationRepository) FindByID(id int) (*domain.Notification, error) {
	var notification domain.Notification
	err := r.db.Where("nt_id = ?", id).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// MarkAsRead marks a notification as read
func (r *notificationRepository) MarkAsRead(id int) error {
	return r.db.Model(&domain.Notification{}).
		Where("nt_id = ?", id).
		Update("nt_is_read", true).Error
}

// MarkAllAsRead marks all notifications as read for a member
func (r *notificationRepository) MarkAllAsRead(memberID string) error {
	return r.db.Model(&domain.Notification{}).
		Where("nt_member_id = ? AND nt_is_read = ?", memberID, false).
		Update("nt_is_read", true).Error
}

// Delete deletes a notification
func (r *notificationRepository) Delete(id int) error {
	return r.db.Where("nt_id = ?", id).Delete(&domain.Notification{}).Error
}
