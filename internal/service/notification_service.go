package service

import (
	"math"
	"time"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/repository"
	"github.com/devlink/devlink-backend/internal/ws"
	"github.com/devlink/devlink-backend/pkg/logger"
)

// NotificationService handles notification business logic
type NotificationService struct {
	repo   repository.NotificationRepository
	pusher EventPusher
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repository.NotificationRepository, pusher EventPusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher}
}

// NotifyMessageRequest records and pushes a "new message request" notification
func (s *NotificationService) NotifyMessageRequest(recipientID, senderID, senderName string) {
	s.create(&domain.Notification{
		MemberID:   recipientID,
		Type:       domain.NotificationTypeRequest,
		Title:      "New message request",
		Content:    senderName + " wants to send you a message",
		SenderID:   senderID,
		SenderName: senderName,
		CreatedAt:  time.Now(),
	})
}

// NotifyRequestAccepted records and pushes a "request accepted" notification
func (s *NotificationService) NotifyRequestAccepted(recipientID, senderID, senderName string) {
	s.create(&domain.Notification{
		MemberID:   recipientID,
		Type:       domain.NotificationTypeRequestAccepted,
		Title:      "Message request accepted",
		Content:    senderName + " accepted your message request",
		SenderID:   senderID,
		SenderName: senderName,
		CreatedAt:  time.Now(),
	})
}

// NotifyFollow records and pushes a "new follower" notification
func (s *NotificationService) NotifyFollow(recipientID, senderID, senderName string) {
	s.create(&domain.Notification{
		MemberID:   recipientID,
		Type:       domain.NotificationTypeFollow,
		Title:      "New follower",
		Content:    senderName + " started following you",
		SenderID:   senderID,
		SenderName: senderName,
		CreatedAt:  time.Now(),
	})
}

// create persists and pushes a notification. Fire-and-forget: notifications
// are a side channel and never fail the triggering operation.
func (s *NotificationService) create(n *domain.Notification) {
	if err := s.repo.Create(n); err != nil {
		logger.Warn("failed to store notification for %s: %v", n.MemberID, err)
		return
	}
	if s.pusher != nil {
		s.pusher.SendToUser(n.MemberID, &ws.Event{
			Type: ws.EventNotification,
			Payload: domain.NotificationItem{
				ID:         n.ID,
				Type:       n.Type,
				Title:      n.Title,
				Content:    n.Content,
				SenderID:   n.SenderID,
				SenderName: n.SenderName,
				CreatedAt:  n.CreatedAt.Format(time.RFC3339),
			},
		})
	}
}

// GetUnreadCount returns the unread notification count for a member
func (s *NotificationService) GetUnreadCount(memberID string) (*domain.NotificationSummaryResponse, error) {
	count, err := s.repo.GetUnreadCount(memberID)
	if err != nil {
		return nil, err
	}
	return &domain.NotificationSummaryResponse{TotalUnread: int(count)}, nil
}

// GetList returns paginated notifications for a member
func (s *NotificationService) GetList(memberID string, page, limit int) (*domain.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	notifications, total, err := s.repo.GetList(memberID, offset, limit)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(memberID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.NotificationItem, len(notifications))
	for i, n := range notifications {
		items[i] = domain.NotificationItem{
			ID:         n.ID,
			Type:       n.Type,
			Title:      n.Title,
			Content:    n.Content,
			URL:        n.URL,
			SenderID:   n.SenderID,
			SenderName: n.SenderName,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt.Format(time.RFC3339),
		}
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return &domain.NotificationListResponse{
		Items:       items,
		Total:       total,
		UnreadCount: unreadCount,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
	}, nil
}

// MarkAsRead marks a notification as read after ownership check
func (s *NotificationService) MarkAsRead(memberID string, notificationID int) error {
	n, err := s.repo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return common.ErrNotFound
	}
	if n.MemberID != memberID {
		return common.ErrForbidden
	}
	return s.repo.MarkAsRead(notificationID)
}

// MarkAllAsRead marks all notifications as read for a member
func (s *NotificationService) MarkAllAsRead(memberID string) error {
	return s.repo.MarkAllAsRead(memberID)
}

// Delete deletes a notification after ownership check
func (s *NotificationService) Delete(memberID string, notificationID int) error {
	n, err := s.repo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return common.ErrNotFound
	}
	if n.MemberID != memberID {
		return common.ErrForbidden
	}
	return s.repo.Delete(notificationID)
}
