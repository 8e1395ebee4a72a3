package service

import (
	"testing"
	"time"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNotifyFollow_StoresAndPushes(t *testing.T) {
	repo := new(mockNotificationRepo)
	pusher := &fakePusher{}
	svc := NewNotificationService(repo, pusher)

	repo.On("Create", mock.MatchedBy(func(n *domain.Notification) bool {
		return n.MemberID == userBob && n.Type == domain.NotificationTypeFollow
	})).Return(nil)

	svc.NotifyFollow(userBob, userAlice, "Alice Kim")

	assert.Equal(t, 1, pusher.count())
	assert.Equal(t, ws.EventNotification, pusher.last().event.Type)
	repo.AssertExpectations(t)
}

func TestNotifyFollow_StoreFailureSkipsPush(t *testing.T) {
	repo := new(mockNotificationRepo)
	pusher := &fakePusher{}
	svc := NewNotificationService(repo, pusher)

	repo.On("Create", mock.Anything).Return(assert.AnError)

	svc.NotifyFollow(userBob, userAlice, "Alice Kim")

	assert.Equal(t, 0, pusher.count())
}

func TestMarkAsRead_OwnNotification(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, nil)

	repo.On("FindByID", 7).Return(&domain.Notification{
		ID: 7, MemberID: userAlice, CreatedAt: time.Now(),
	}, nil)
	repo.On("MarkAsRead", 7).Return(nil)

	assert.NoError(t, svc.MarkAsRead(userAlice, 7))
	repo.AssertExpectations(t)
}

func TestMarkAsRead_ForeignOwnerForbidden(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, nil)

	repo.On("FindByID", 7).Return(&domain.Notification{
		ID: 7, MemberID: userBob,
	}, nil)

	err := svc.MarkAsRead(userAlice, 7)

	assert.ErrorIs(t, err, common.ErrForbidden)
	repo.AssertNotCalled(t, "MarkAsRead", mock.Anything)
}

func TestMarkAsRead_MissingRowNotFound(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, nil)

	repo.On("FindByID", 404).Return(nil, nil)

	err := svc.MarkAsRead(userAlice, 404)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_ForeignOwnerForbidden(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, nil)

	repo.On("FindByID", 3).Return(&domain.Notification{
		ID: 3, MemberID: userBob,
	}, nil)

	err := svc.Delete(userAlice, 3)

	assert.ErrorIs(t, err, common.ErrForbidden)
	repo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestDelete_MissingRowNotFound(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, nil)

	repo.On("FindByID", 404).Return(nil, nil)

	err := svc.Delete(userAlice, 404)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetList_ClampsPaging(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, nil)

	repo.On("GetList", userAlice, 0, 20).Return([]domain.Notification{
		{ID: 1, MemberID: userAlice, Type: domain.NotificationTypeFollow, CreatedAt: time.Now()},
	}, int64(1), nil)
	repo.On("GetUnreadCount", userAlice).Return(int64(1), nil)

	resp, err := svc.GetList(userAlice, 0, 500)

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Len(t, resp.Items, 1)
}
