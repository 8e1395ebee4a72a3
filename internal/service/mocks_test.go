package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/ws"
	"github.com/devlink/devlink-backend/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// --- Mock ThreadRepository ---

type mockThreadRepo struct {
	mock.Mock
}

func (m *mockThreadRepo) FindByID(id string) (*domain.Thread, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Thread), args.Error(1)
}

func (m *mockThreadRepo) CreateIfAbsent(thread *domain.Thread) (*domain.Thread, bool, error) {
	args := m.Called(thread)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Thread), args.Bool(1), args.Error(2)
}

func (m *mockThreadRepo) Create(thread *domain.Thread) error {
	return m.Called(thread).Error(0)
}

func (m *mockThreadRepo) UpdateParticipants(id string, participants domain.StringSlice, info domain.InfoMap) error {
	return m.Called(id, participants, info).Error(0)
}

func (m *mockThreadRepo) UpdateLastMessage(id string, text, senderID string, at time.Time) error {
	return m.Called(id, text, senderID, at).Error(0)
}

func (m *mockThreadRepo) FindByParticipant(userID string) ([]*domain.Thread, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Thread), args.Error(1)
}

func (m *mockThreadRepo) FindAllActive(limit int) ([]*domain.Thread, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Thread), args.Error(1)
}

func (m *mockThreadRepo) Delete(id string) error {
	return m.Called(id).Error(0)
}

// --- Mock MessageRepository ---

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(msg *domain.Message) error {
	return m.Called(msg).Error(0)
}

func (m *mockMessageRepo) FindByID(id string) (*domain.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) FindByThread(threadID string, page, limit int) ([]*domain.Message, int64, error) {
	args := m.Called(threadID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Message), args.Get(1).(int64), args.Error(2)
}

func (m *mockMessageRepo) FindRecent(threadID string, limit int) ([]*domain.Message, error) {
	args := m.Called(threadID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) FindUndeliveredIDs(threadID, userID string) ([]string, error) {
	args := m.Called(threadID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockMessageRepo) StampDelivered(ids []string, userID string, at time.Time) error {
	return m.Called(ids, userID, at).Error(0)
}

func (m *mockMessageRepo) StampRead(ids []string, userID string, at time.Time) error {
	return m.Called(ids, userID, at).Error(0)
}

func (m *mockMessageRepo) CountUnread(threadID, userID string) (int64, error) {
	args := m.Called(threadID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageRepo) UpdateText(id, text string) error {
	return m.Called(id, text).Error(0)
}

func (m *mockMessageRepo) DeleteByThread(threadID string, pageSize int) error {
	return m.Called(threadID, pageSize).Error(0)
}

// --- Mock MemberRepository ---

type mockMemberRepo struct {
	mock.Mock
}

func (m *mockMemberRepo) Create(member *domain.Member) error {
	return m.Called(member).Error(0)
}

func (m *mockMemberRepo) FindByUserID(userID string) (*domain.Member, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *mockMemberRepo) FindByUsername(username string) (*domain.Member, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *mockMemberRepo) FindByUserIDs(userIDs []string) ([]*domain.Member, error) {
	args := m.Called(userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *mockMemberRepo) ExistsByUsername(username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func (m *mockMemberRepo) ExistsByEmail(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *mockMemberRepo) UpdatePresence(userID string, lastSeen *time.Time, isOnline bool) error {
	return m.Called(userID, lastSeen, isOnline).Error(0)
}

func (m *mockMemberRepo) SetOnlineFlag(userID string, isOnline bool) error {
	return m.Called(userID, isOnline).Error(0)
}

func (m *mockMemberRepo) ClearStaleOnline(olderThan time.Time) (int64, error) {
	args := m.Called(olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock RequestRepository ---

type mockRequestRepo struct {
	mock.Mock
}

func (m *mockRequestRepo) Create(req *domain.MessageRequest) error {
	return m.Called(req).Error(0)
}

func (m *mockRequestRepo) FindByID(id string) (*domain.MessageRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MessageRequest), args.Error(1)
}

func (m *mockRequestRepo) FindPendingBetween(senderID, recipientID string) (*domain.MessageRequest, error) {
	args := m.Called(senderID, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MessageRequest), args.Error(1)
}

func (m *mockRequestRepo) FindForRecipient(recipientID, status string, page, limit int) ([]*domain.MessageRequest, int64, error) {
	args := m.Called(recipientID, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.MessageRequest), args.Get(1).(int64), args.Error(2)
}

func (m *mockRequestRepo) Resolve(id, status, threadID string, at time.Time) error {
	return m.Called(id, status, threadID, at).Error(0)
}

func (m *mockRequestRepo) Delete(id string) error {
	return m.Called(id).Error(0)
}

// --- Mock FollowRepository ---

type mockFollowRepo struct {
	mock.Mock
}

func (m *mockFollowRepo) Create(followerID, followeeID string) error {
	return m.Called(followerID, followeeID).Error(0)
}

func (m *mockFollowRepo) Delete(followerID, followeeID string) error {
	return m.Called(followerID, followeeID).Error(0)
}

func (m *mockFollowRepo) Exists(followerID, followeeID string) (bool, error) {
	args := m.Called(followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFollowRepo) IsMutual(userA, userB string) (bool, error) {
	args := m.Called(userA, userB)
	return args.Bool(0), args.Error(1)
}

// --- Mock NotificationRepository ---

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(n *domain.Notification) error {
	return m.Called(n).Error(0)
}

func (m *mockNotificationRepo) GetUnreadCount(memberID string) (int64, error) {
	args := m.Called(memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) GetList(memberID string, offset, limit int) ([]domain.Notification, int64, error) {
	args := m.Called(memberID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *mockNotificationRepo) FindByID(id int) (*domain.Notification, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *mockNotificationRepo) MarkAsRead(id int) error {
	return m.Called(id).Error(0)
}

func (m *mockNotificationRepo) MarkAllAsRead(memberID string) error {
	return m.Called(memberID).Error(0)
}

func (m *mockNotificationRepo) Delete(id int) error {
	return m.Called(id).Error(0)
}

// --- Mock ChatService ---

type mockChatService struct {
	mock.Mock
}

func (m *mockChatService) EnsureDirectThread(userA, userB string) (*domain.ThreadResponse, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ThreadResponse), args.Error(1)
}

func (m *mockChatService) EnsureParticipants(threadID, userA, userB string) error {
	return m.Called(threadID, userA, userB).Error(0)
}

func (m *mockChatService) CreateGroupThread(creatorID string, req *domain.CreateGroupThreadRequest) (*domain.ThreadResponse, error) {
	args := m.Called(creatorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ThreadResponse), args.Error(1)
}

func (m *mockChatService) GetThread(threadID, userID string) (*domain.ThreadResponse, error) {
	args := m.Called(threadID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ThreadResponse), args.Error(1)
}

func (m *mockChatService) SendMessage(threadID, senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	args := m.Called(threadID, senderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MessageResponse), args.Error(1)
}

func (m *mockChatService) GetMessages(threadID, userID string, page, limit int) ([]*domain.MessageResponse, *common.Meta, error) {
	args := m.Called(threadID, userID, page, limit)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*domain.MessageResponse), args.Get(1).(*common.Meta), args.Error(2)
}

func (m *mockChatService) MarkDelivered(threadID, userID string) error {
	return m.Called(threadID, userID).Error(0)
}

func (m *mockChatService) MarkRead(threadID, userID string) error {
	return m.Called(threadID, userID).Error(0)
}

func (m *mockChatService) EditMessage(messageID, userID, text string) (*domain.MessageResponse, error) {
	args := m.Called(messageID, userID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MessageResponse), args.Error(1)
}

func (m *mockChatService) DeleteThreadPermanently(threadID, userID string) error {
	return m.Called(threadID, userID).Error(0)
}

// --- Fake EventPusher ---

type pushedEvent struct {
	userIDs []string
	event   *ws.Event
}

type fakePusher struct {
	mu     sync.Mutex
	pushed []pushedEvent
}

func (f *fakePusher) SendToUser(userID string, event *ws.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, pushedEvent{userIDs: []string{userID}, event: event})
}

func (f *fakePusher) SendToUsers(userIDs []string, event *ws.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, pushedEvent{userIDs: userIDs, event: event})
}

func (f *fakePusher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed)
}

func (f *fakePusher) last() *pushedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pushed) == 0 {
		return nil
	}
	return &f.pushed[len(f.pushed)-1]
}

// --- Fake cache.Service (in-memory, JSON round-trip like the real one) ---

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	raw, ok := f.data[key]
	f.mu.Unlock()
	if !ok {
		return redis.Nil
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.data[key] = raw
	f.mu.Unlock()
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	for _, k := range keys {
		delete(f.data, k)
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeCache) GetPresence(ctx context.Context, userID string, dest interface{}) error {
	return f.Get(ctx, cache.PrefixPresence+userID, dest)
}

func (f *fakeCache) SetPresence(ctx context.Context, userID string, data interface{}) error {
	return f.Set(ctx, cache.PrefixPresence+userID, data, 0)
}

func (f *fakeCache) GetProfile(ctx context.Context, userID string, dest interface{}) error {
	return f.Get(ctx, cache.PrefixProfile+userID, dest)
}

func (f *fakeCache) SetProfile(ctx context.Context, userID string, data interface{}) error {
	return f.Set(ctx, cache.PrefixProfile+userID, data, 0)
}

func (f *fakeCache) IsAvailable() bool { return true }

func (f *fakeCache) Ping(_ context.Context) error { return nil }
