package service

import (
	"context"
	"sort"
	"sync"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/repository"
	"github.com/devlink/devlink-backend/internal/ws"
	"github.com/devlink/devlink-backend/pkg/cache"
	"github.com/devlink/devlink-backend/pkg/logger"
)

// fallbackScanLimit bounds the full-table scan used when the membership
// query comes back empty
const fallbackScanLimit = 500

// ChatListService projects a user's threads into the sorted conversation
// list shown in the chat tab
type ChatListService interface {
	ListConversations(userID string) ([]domain.Conversation, error)
	PinThread(userID, threadID string, pinned bool) error
	NotifyUpdated(userID string)
}

type chatListService struct {
	threadRepo  repository.ThreadRepository
	messageRepo repository.MessageRepository
	chatService ChatService
	cache       cache.Service
	pusher      EventPusher

	// Threads already queued for participant repair. Entries are never
	// cleared within a process lifetime; one attempt per thread is enough
	// to stop a write storm.
	mu           sync.Mutex
	repairQueued map[string]bool

	// Last list pushed per user, for redundant-push suppression
	pushMu     sync.Mutex
	lastPushed map[string][]domain.Conversation
}

// NewChatListService creates a new ChatListService
func NewChatListService(
	threadRepo repository.ThreadRepository,
	messageRepo repository.MessageRepository,
	chatService ChatService,
	cacheSvc cache.Service,
	pusher EventPusher,
) ChatListService {
	return &chatListService{
		threadRepo:   threadRepo,
		messageRepo:  messageRepo,
		chatService:  chatService,
		cache:        cacheSvc,
		pusher:       pusher,
		repairQueued: make(map[string]bool),
		lastPushed:   make(map[string][]domain.Conversation),
	}
}

// ListConversations returns the viewer's conversations, most recently
// updated first. When the membership query finds nothing, legacy threads
// with a missing participant list are recovered by parsing direct-thread
// ids, and a background repair is queued so the next query works directly.
func (s *chatListService) ListConversations(userID string) ([]domain.Conversation, error) {
	threads, err := s.threadRepo.FindByParticipant(userID)
	if err != nil {
		return nil, err
	}

	if len(threads) == 0 {
		threads, err = s.fallbackScan(userID)
		if err != nil {
			return nil, err
		}
	}

	pinned := s.pinnedSet(userID)
	conversations := make([]domain.Conversation, 0, len(threads))
	for _, t := range threads {
		unread, err := s.messageRepo.CountUnread(t.ID, userID)
		if err != nil {
			// Unread count is cosmetic; keep the conversation
			unread = 0
		}
		conv := BuildConversation(t, userID, unread)
		conv.Pinned = pinned[t.ID]
		conversations = append(conversations, conv)
	}

	SortConversations(conversations)
	return conversations, nil
}

// PinThread flags (or unflags) a thread in the caller's chat list. Pins are
// a per-user view preference kept in Redis, not thread state.
func (s *chatListService) PinThread(userID, threadID string, pinned bool) error {
	if s.cache == nil || !s.cache.IsAvailable() {
		return common.ErrUnavailable
	}
	// Membership check rides the thread fetch
	if _, err := s.chatService.GetThread(threadID, userID); err != nil {
		return err
	}

	ctx := context.Background()
	key := pinnedKey(userID)
	var ids []string
	s.cache.Get(ctx, key, &ids) //nolint:errcheck

	updated := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		if id != threadID {
			updated = append(updated, id)
		}
	}
	if pinned {
		updated = append(updated, threadID)
	}
	if len(updated) == 0 {
		if err := s.cache.Delete(ctx, key); err != nil {
			return err
		}
	} else if err := s.cache.Set(ctx, key, updated, 0); err != nil {
		return err
	}

	s.NotifyUpdated(userID)
	return nil
}

// NotifyUpdated recomputes a user's conversation list and pushes it over
// the event stream. A push identical to the last one is suppressed.
func (s *chatListService) NotifyUpdated(userID string) {
	if s.pusher == nil {
		return
	}
	conversations, err := s.ListConversations(userID)
	if err != nil {
		logger.Warn("chat list refresh for %s failed: %v", userID, err)
		return
	}

	s.pushMu.Lock()
	if prev, ok := s.lastPushed[userID]; ok && domain.ConversationsEqual(prev, conversations) {
		s.pushMu.Unlock()
		return
	}
	s.lastPushed[userID] = conversations
	s.pushMu.Unlock()

	s.pusher.SendToUser(userID, &ws.Event{Type: ws.EventChatList, Payload: conversations})
}

func pinnedKey(userID string) string {
	return cache.PrefixThreads + "pinned:" + userID
}

// pinnedSet reads the caller's pinned thread ids. Best effort; an
// unavailable cache just means nothing shows as pinned.
func (s *chatListService) pinnedSet(userID string) map[string]bool {
	if s.cache == nil || !s.cache.IsAvailable() {
		return nil
	}
	var ids []string
	if err := s.cache.Get(context.Background(), pinnedKey(userID), &ids); err != nil {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// fallbackScan derives membership from direct-thread id shape when the
// participant list is missing. Heuristic by nature; ids that do not parse
// as two well-formed user ids are skipped, never guessed.
func (s *chatListService) fallbackScan(userID string) ([]*domain.Thread, error) {
	all, err := s.threadRepo.FindAllActive(fallbackScanLimit)
	if err != nil {
		return nil, err
	}

	var mine []*domain.Thread
	for _, t := range all {
		if t.IsParticipant(userID) {
			mine = append(mine, t)
			continue
		}
		a, b, ok := domain.ParseDirectThreadID(t.ID)
		if !ok || (a != userID && b != userID) {
			continue
		}
		mine = append(mine, t)
		s.queueRepair(t.ID, a, b)
	}
	return mine, nil
}

// queueRepair schedules one background participant repair per thread
func (s *chatListService) queueRepair(threadID, userA, userB string) {
	s.mu.Lock()
	if s.repairQueued[threadID] {
		s.mu.Unlock()
		return
	}
	s.repairQueued[threadID] = true
	s.mu.Unlock()

	go func() {
		if err := s.chatService.EnsureParticipants(threadID, userA, userB); err != nil {
			logger.Warn("participant repair for thread %s failed: %v", threadID, err)
		}
	}()
}

// BuildConversation projects one thread into the viewer's chat-list entry.
// Pure function; unit-testable without storage.
func BuildConversation(t *domain.Thread, viewerID string, unread int64) domain.Conversation {
	conv := domain.Conversation{
		ThreadID:     t.ID,
		Type:         t.Type,
		LastMessage:  t.LastMessage,
		LastSenderID: t.LastSenderID,
		UnreadCount:  unread,
		UpdatedAt:    t.UpdatedAt,
	}

	if t.Type == domain.ThreadTypeGroup {
		conv.Title = t.GroupName
		return conv
	}

	counterpart := t.Counterpart(viewerID)
	if info, ok := t.ParticipantsInfo[counterpart]; ok {
		conv.Title = info.Name
		if conv.Title == "" {
			conv.Title = info.Username
		}
		conv.Avatar = info.Avatar
	}
	if conv.Title == "" {
		conv.Title = counterpart
	}
	return conv
}

// SortConversations orders by most recent update, descending. The sort is
// stable; equal timestamps keep their incoming order rather than applying
// an explicit tie-break.
func SortConversations(conversations []domain.Conversation) {
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
}
