package service

import (
	"context"
	"testing"
	"time"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/ws"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListConversations_SortedNewestFirst(t *testing.T) {
	threadRepo := new(mockThreadRepo)
	messageRepo := new(mockMessageRepo)
	svc := NewChatListService(threadRepo, messageRepo, new(mockChatService), nil, nil)

	now := time.Now()
	threads := []*domain.Thread{
		{ID: "t-old", Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{userAlice, userBob}, UpdatedAt: now.Add(-time.Hour)},
		{ID: "t-new", Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{userAlice, userBob}, UpdatedAt: now},
		{ID: "t-mid", Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{userAlice, userBob}, UpdatedAt: now.Add(-time.Minute)},
	}
	threadRepo.On("FindByParticipant", userAlice).Return(threads, nil)
	messageRepo.On("CountUnread", mock.Anything, userAlice).Return(int64(0), nil)

	conversations, err := svc.ListConversations(userAlice)

	assert.NoError(t, err)
	assert.Len(t, conversations, 3)
	assert.Equal(t, "t-new", conversations[0].ThreadID)
	assert.Equal(t, "t-mid", conversations[1].ThreadID)
	assert.Equal(t, "t-old", conversations[2].ThreadID)
}

func TestListConversations_UnreadFailureIsCosmetic(t *testing.T) {
	threadRepo := new(mockThreadRepo)
	messageRepo := new(mockMessageRepo)
	svc := NewChatListService(threadRepo, messageRepo, new(mockChatService), nil, nil)

	threadRepo.On("FindByParticipant", userAlice).Return([]*domain.Thread{
		{ID: "t1", Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{userAlice, userBob}},
	}, nil)
	messageRepo.On("CountUnread", "t1", userAlice).Return(int64(0), assert.AnError)

	conversations, err := svc.ListConversations(userAlice)

	assert.NoError(t, err)
	assert.Len(t, conversations, 1)
	assert.Equal(t, int64(0), conversations[0].UnreadCount)
}

func TestListConversations_FallbackParsesDirectIDs(t *testing.T) {
	threadRepo := new(mockThreadRepo)
	messageRepo := new(mockMessageRepo)
	chatSvc := new(mockChatService)
	svc := NewChatListService(threadRepo, messageRepo, chatSvc, nil, nil)

	// Membership query finds nothing
	threadRepo.On("FindByParticipant", userAlice).Return([]*domain.Thread{}, nil)

	recoverable := domain.DirectThreadID(userAlice, userBob)
	all := []*domain.Thread{
		// Participant list lost, but the id parses back to the viewer
		{ID: recoverable, Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{}},
		// Malformed id: skipped, never guessed at
		{ID: "short_id", Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{}},
		// Someone else's thread
		{ID: domain.DirectThreadID("user-carol-003", "user-dave-0004"), Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{}},
	}
	threadRepo.On("FindAllActive", fallbackScanLimit).Return(all, nil)
	messageRepo.On("CountUnread", recoverable, userAlice).Return(int64(2), nil)
	// Repair runs in the background; it may or may not land before we assert
	chatSvc.On("EnsureParticipants", recoverable, userAlice, userBob).Return(nil).Maybe()

	conversations, err := svc.ListConversations(userAlice)

	assert.NoError(t, err)
	assert.Len(t, conversations, 1)
	assert.Equal(t, recoverable, conversations[0].ThreadID)
	assert.Equal(t, int64(2), conversations[0].UnreadCount)
}

func TestListConversations_RepairQueuedOnce(t *testing.T) {
	threadRepo := new(mockThreadRepo)
	messageRepo := new(mockMessageRepo)
	chatSvc := new(mockChatService)
	svc := NewChatListService(threadRepo, messageRepo, chatSvc, nil, nil)

	threadRepo.On("FindByParticipant", userAlice).Return([]*domain.Thread{}, nil)

	recoverable := domain.DirectThreadID(userAlice, userBob)
	threadRepo.On("FindAllActive", fallbackScanLimit).Return([]*domain.Thread{
		{ID: recoverable, Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{}},
	}, nil)
	messageRepo.On("CountUnread", recoverable, userAlice).Return(int64(0), nil)

	done := make(chan struct{}, 2)
	chatSvc.On("EnsureParticipants", recoverable, userAlice, userBob).Run(func(mock.Arguments) {
		done <- struct{}{}
	}).Return(nil)

	_, err := svc.ListConversations(userAlice)
	assert.NoError(t, err)
	<-done

	// Second listing must not queue another repair for the same thread
	_, err = svc.ListConversations(userAlice)
	assert.NoError(t, err)

	select {
	case <-done:
		t.Fatal("repair ran twice for the same thread")
	case <-time.After(50 * time.Millisecond):
	}
	chatSvc.AssertNumberOfCalls(t, "EnsureParticipants", 1)
}

func TestPinThread_SurfacesInConversationList(t *testing.T) {
	threadRepo := new(mockThreadRepo)
	messageRepo := new(mockMessageRepo)
	chatSvc := new(mockChatService)
	cacheSvc := newFakeCache()
	svc := NewChatListService(threadRepo, messageRepo, chatSvc, cacheSvc, nil)

	threads := []*domain.Thread{
		{ID: "t1", Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{userAlice, userBob}},
		{ID: "t2", Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{userAlice, userBob}},
	}
	threadRepo.On("FindByParticipant", userAlice).Return(threads, nil)
	messageRepo.On("CountUnread", mock.Anything, userAlice).Return(int64(0), nil)
	chatSvc.On("GetThread", "t2", userAlice).Return(&domain.ThreadResponse{ID: "t2"}, nil)

	assert.NoError(t, svc.PinThread(userAlice, "t2", true))

	conversations, err := svc.ListConversations(userAlice)
	assert.NoError(t, err)

	byID := map[string]domain.Conversation{}
	for _, c := range conversations {
		byID[c.ThreadID] = c
	}
	assert.True(t, byID["t2"].Pinned)
	assert.False(t, byID["t1"].Pinned)
}

func TestPinThread_UnpinClearsFlag(t *testing.T) {
	threadRepo := new(mockThreadRepo)
	messageRepo := new(mockMessageRepo)
	chatSvc := new(mockChatService)
	cacheSvc := newFakeCache()
	svc := NewChatListService(threadRepo, messageRepo, chatSvc, cacheSvc, nil)

	threadRepo.On("FindByParticipant", userAlice).Return([]*domain.Thread{
		{ID: "t1", Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{userAlice, userBob}},
	}, nil)
	messageRepo.On("CountUnread", "t1", userAlice).Return(int64(0), nil)
	chatSvc.On("GetThread", "t1", userAlice).Return(&domain.ThreadResponse{ID: "t1"}, nil)

	assert.NoError(t, svc.PinThread(userAlice, "t1", true))
	assert.NoError(t, svc.PinThread(userAlice, "t1", false))

	conversations, err := svc.ListConversations(userAlice)
	assert.NoError(t, err)
	assert.False(t, conversations[0].Pinned)

	// The last unpin empties the set; the key must not linger
	var ids []string
	assert.ErrorIs(t, cacheSvc.Get(context.Background(), pinnedKey(userAlice), &ids), redis.Nil)
}

func TestPinThread_RequiresMembership(t *testing.T) {
	chatSvc := new(mockChatService)
	svc := NewChatListService(new(mockThreadRepo), new(mockMessageRepo), chatSvc, newFakeCache(), nil)

	chatSvc.On("GetThread", "t9", userAlice).Return(nil, common.ErrForbidden)

	err := svc.PinThread(userAlice, "t9", true)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestPinThread_WithoutCacheUnavailable(t *testing.T) {
	svc := NewChatListService(new(mockThreadRepo), new(mockMessageRepo), new(mockChatService), nil, nil)

	err := svc.PinThread(userAlice, "t1", true)
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestNotifyUpdated_PushesConversationList(t *testing.T) {
	threadRepo := new(mockThreadRepo)
	messageRepo := new(mockMessageRepo)
	pusher := &fakePusher{}
	svc := NewChatListService(threadRepo, messageRepo, new(mockChatService), nil, pusher)

	threadRepo.On("FindByParticipant", userAlice).Return([]*domain.Thread{
		{ID: "t1", Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{userAlice, userBob}},
	}, nil)
	messageRepo.On("CountUnread", "t1", userAlice).Return(int64(0), nil)

	svc.NotifyUpdated(userAlice)

	assert.Equal(t, 1, pusher.count())
	assert.Equal(t, ws.EventChatList, pusher.last().event.Type)
}

func TestNotifyUpdated_SuppressesIdenticalPush(t *testing.T) {
	threadRepo := new(mockThreadRepo)
	messageRepo := new(mockMessageRepo)
	pusher := &fakePusher{}
	svc := NewChatListService(threadRepo, messageRepo, new(mockChatService), nil, pusher)

	threadRepo.On("FindByParticipant", userAlice).Return([]*domain.Thread{
		{ID: "t1", Type: domain.ThreadTypeDirect, Participants: domain.StringSlice{userAlice, userBob}},
	}, nil)

	// Same unread count both times: the second push carries no new state
	messageRepo.On("CountUnread", "t1", userAlice).Return(int64(1), nil).Twice()

	svc.NotifyUpdated(userAlice)
	svc.NotifyUpdated(userAlice)
	assert.Equal(t, 1, pusher.count())

	// Unread drops to zero: the list changed, so the push goes out
	messageRepo.On("CountUnread", "t1", userAlice).Return(int64(0), nil)
	svc.NotifyUpdated(userAlice)
	assert.Equal(t, 2, pusher.count())
}

func TestBuildConversation_DirectUsesCounterpartProfile(t *testing.T) {
	thread := &domain.Thread{
		ID:           domain.DirectThreadID(userAlice, userBob),
		Type:         domain.ThreadTypeDirect,
		Participants: domain.StringSlice{userAlice, userBob},
		ParticipantsInfo: domain.InfoMap{
			userBob: {Name: "Bob Lee", Username: "bob", Avatar: "avatars/bob.png"},
		},
		LastMessage: "see you there",
	}

	conv := BuildConversation(thread, userAlice, 3)

	assert.Equal(t, "Bob Lee", conv.Title)
	assert.Equal(t, "avatars/bob.png", conv.Avatar)
	assert.Equal(t, "see you there", conv.LastMessage)
	assert.Equal(t, int64(3), conv.UnreadCount)
}

func TestBuildConversation_TitleFallsBackToUserID(t *testing.T) {
	thread := &domain.Thread{
		ID:           domain.DirectThreadID(userAlice, userBob),
		Type:         domain.ThreadTypeDirect,
		Participants: domain.StringSlice{userAlice, userBob},
	}

	conv := BuildConversation(thread, userAlice, 0)
	assert.Equal(t, userBob, conv.Title)
}

func TestBuildConversation_GroupUsesGroupName(t *testing.T) {
	thread := &domain.Thread{
		ID:           "group-1",
		Type:         domain.ThreadTypeGroup,
		GroupName:    "gophers",
		Participants: domain.StringSlice{userAlice, userBob},
	}

	conv := BuildConversation(thread, userAlice, 0)
	assert.Equal(t, "gophers", conv.Title)
}

func TestSortConversations_StableOnEqualTimestamps(t *testing.T) {
	at := time.Now()
	conversations := []domain.Conversation{
		{ThreadID: "a", UpdatedAt: at},
		{ThreadID: "b", UpdatedAt: at},
		{ThreadID: "c", UpdatedAt: at.Add(time.Second)},
	}

	SortConversations(conversations)

	assert.Equal(t, "c", conversations[0].ThreadID)
	// Equal timestamps keep their incoming order
	assert.Equal(t, "a", conversations[1].ThreadID)
	assert.Equal(t, "b", conversations[2].ThreadID)
}
