package service

import (
	"testing"
	"time"

	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHeartbeat_ThrottlesRepeatedWrites(t *testing.T) {
	memberRepo := new(mockMemberRepo)
	svc := NewPresenceService(memberRepo, nil, nil, nil, time.Hour, 0)

	memberRepo.On("UpdatePresence", userAlice, mock.Anything, true).Return(nil)

	assert.NoError(t, svc.Heartbeat(userAlice))
	assert.NoError(t, svc.Heartbeat(userAlice))
	assert.NoError(t, svc.Heartbeat(userAlice))

	memberRepo.AssertNumberOfCalls(t, "UpdatePresence", 1)
}

func TestHeartbeat_ThrottleIsPerUser(t *testing.T) {
	memberRepo := new(mockMemberRepo)
	svc := NewPresenceService(memberRepo, nil, nil, nil, time.Hour, 0)

	memberRepo.On("UpdatePresence", mock.Anything, mock.Anything, true).Return(nil)

	assert.NoError(t, svc.Heartbeat(userAlice))
	assert.NoError(t, svc.Heartbeat(userBob))

	memberRepo.AssertNumberOfCalls(t, "UpdatePresence", 2)
}

func TestSetOffline_NeverThrottled(t *testing.T) {
	memberRepo := new(mockMemberRepo)
	svc := NewPresenceService(memberRepo, nil, nil, nil, time.Hour, 0)

	memberRepo.On("UpdatePresence", userAlice, mock.Anything, true).Return(nil)
	memberRepo.On("UpdatePresence", userAlice, mock.Anything, false).Return(nil)

	assert.NoError(t, svc.Heartbeat(userAlice))
	// Inside the throttle window, but an offline write must still land
	assert.NoError(t, svc.SetOffline(userAlice))

	memberRepo.AssertNumberOfCalls(t, "UpdatePresence", 2)
}

func TestReconcile_ClearsStaleOnlineFlag(t *testing.T) {
	memberRepo := new(mockMemberRepo)
	svc := NewPresenceService(memberRepo, nil, nil, nil, 0, 10*time.Minute)

	stale := time.Now().Add(-time.Hour)
	memberRepo.On("FindByUserID", userAlice).Return(&domain.Member{
		UserID:   userAlice,
		IsOnline: true,
		LastSeen: &stale,
	}, nil)
	memberRepo.On("SetOnlineFlag", userAlice, false).Return(nil)

	assert.NoError(t, svc.Reconcile(userAlice))
	memberRepo.AssertExpectations(t)
}

func TestReconcile_FreshFlagUntouched(t *testing.T) {
	memberRepo := new(mockMemberRepo)
	svc := NewPresenceService(memberRepo, nil, nil, nil, 0, 10*time.Minute)

	fresh := time.Now().Add(-time.Minute)
	memberRepo.On("FindByUserID", userAlice).Return(&domain.Member{
		UserID:   userAlice,
		IsOnline: true,
		LastSeen: &fresh,
	}, nil)

	assert.NoError(t, svc.Reconcile(userAlice))
	memberRepo.AssertNotCalled(t, "SetOnlineFlag", mock.Anything, mock.Anything)
}

func TestReconcile_OfflineMemberIsNoop(t *testing.T) {
	memberRepo := new(mockMemberRepo)
	svc := NewPresenceService(memberRepo, nil, nil, nil, 0, 10*time.Minute)

	memberRepo.On("FindByUserID", userAlice).Return(&domain.Member{
		UserID:   userAlice,
		IsOnline: false,
	}, nil)

	assert.NoError(t, svc.Reconcile(userAlice))
	memberRepo.AssertNotCalled(t, "SetOnlineFlag", mock.Anything, mock.Anything)
}

func TestStatus_DerivedFromLastSeenNotFlag(t *testing.T) {
	memberRepo := new(mockMemberRepo)
	svc := NewPresenceService(memberRepo, nil, nil, nil, 0, 0)

	// Flag says online, but last-seen is 15 minutes old: the clock wins
	old := time.Now().Add(-15 * time.Minute)
	memberRepo.On("FindByUserID", userAlice).Return(&domain.Member{
		UserID:   userAlice,
		IsOnline: true,
		LastSeen: &old,
	}, nil)

	resp, err := svc.Status(userAlice)

	assert.NoError(t, err)
	assert.Equal(t, domain.PresenceOffline, resp.Status)
	assert.NotEmpty(t, resp.LastSeen)
}

func TestStatus_RecentlyActiveWindow(t *testing.T) {
	memberRepo := new(mockMemberRepo)
	svc := NewPresenceService(memberRepo, nil, nil, nil, 0, 0)

	fiveMin := time.Now().Add(-5 * time.Minute)
	memberRepo.On("FindByUserID", userAlice).Return(&domain.Member{
		UserID:   userAlice,
		LastSeen: &fiveMin,
	}, nil)

	resp, err := svc.Status(userAlice)

	assert.NoError(t, err)
	assert.Equal(t, domain.PresenceRecentlyActive, resp.Status)
}

func TestSetOnline_PublishesToThreadCoParticipants(t *testing.T) {
	memberRepo := new(mockMemberRepo)
	threadRepo := new(mockThreadRepo)
	pusher := &fakePusher{}
	svc := NewPresenceService(memberRepo, threadRepo, nil, pusher, 0, 0)

	seen := time.Now()
	memberRepo.On("FindByUserID", userAlice).Return(&domain.Member{
		UserID:   userAlice,
		LastSeen: &seen,
	}, nil)
	memberRepo.On("UpdatePresence", userAlice, mock.Anything, true).Return(nil)

	// Bob appears in both threads but must only receive one event
	threadRepo.On("FindByParticipant", userAlice).Return([]*domain.Thread{
		{ID: "t1", Participants: domain.StringSlice{userAlice, userBob}},
		{ID: "t2", Participants: domain.StringSlice{userAlice, userBob, "user-carol-003"}},
	}, nil)

	assert.NoError(t, svc.SetOnline(userAlice))
	assert.Equal(t, 2, pusher.count())
}
