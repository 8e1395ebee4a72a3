package service

import (
	"context"
	"errors"
	"time"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/repository"
	"github.com/devlink/devlink-backend/internal/ws"
	"github.com/devlink/devlink-backend/pkg/cache"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventPusher pushes real-time events to connected clients. Satisfied by
// *ws.Hub; tests pass nil or a fake.
type EventPusher interface {
	SendToUser(userID string, event *ws.Event)
	SendToUsers(userIDs []string, event *ws.Event)
}

// ChatService business logic for threads and messages
type ChatService interface {
	EnsureDirectThread(userA, userB string) (*domain.ThreadResponse, error)
	EnsureParticipants(threadID, userA, userB string) error
	CreateGroupThread(creatorID string, req *domain.CreateGroupThreadRequest) (*domain.ThreadResponse, error)
	GetThread(threadID, userID string) (*domain.ThreadResponse, error)
	SendMessage(threadID, senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error)
	GetMessages(threadID, userID string, page, limit int) ([]*domain.MessageResponse, *common.Meta, error)
	MarkDelivered(threadID, userID string) error
	MarkRead(threadID, userID string) error
	EditMessage(messageID, userID, text string) (*domain.MessageResponse, error)
	DeleteThreadPermanently(threadID, userID string) error
}

type chatService struct {
	threadRepo     repository.ThreadRepository
	messageRepo    repository.MessageRepository
	memberRepo     repository.MemberRepository
	cache          cache.Service
	pusher         EventPusher
	readWindow     int
	deletePageSize int
}

// NewChatService creates a new ChatService
func NewChatService(
	threadRepo repository.ThreadRepository,
	messageRepo repository.MessageRepository,
	memberRepo repository.MemberRepository,
	cacheSvc cache.Service,
	pusher EventPusher,
	readWindow, deletePageSize int,
) ChatService {
	if readWindow < 1 {
		readWindow = 50
	}
	if deletePageSize < 1 {
		deletePageSize = 100
	}
	return &chatService{
		threadRepo:     threadRepo,
		messageRepo:    messageRepo,
		memberRepo:     memberRepo,
		cache:          cacheSvc,
		pusher:         pusher,
		readWindow:     readWindow,
		deletePageSize: deletePageSize,
	}
}

// EnsureDirectThread returns the direct thread for a user pair, creating it
// if needed. The id is canonical (sorted pair), so (a,b) and (b,a) converge
// on the same row and concurrent callers cannot produce duplicates.
func (s *chatService) EnsureDirectThread(userA, userB string) (*domain.ThreadResponse, error) {
	if userA == "" || userB == "" || userA == userB {
		return nil, common.ErrInvalidInput
	}

	info, err := s.profileSnapshots(userA, userB)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	thread := &domain.Thread{
		ID:               domain.DirectThreadID(userA, userB),
		Type:             domain.ThreadTypeDirect,
		Participants:     domain.StringSlice{userA, userB},
		ParticipantsInfo: info,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	stored, created, err := s.threadRepo.CreateIfAbsent(thread)
	if err != nil {
		return nil, err
	}

	if created {
		if s.pusher != nil {
			s.pusher.SendToUsers([]string{userA, userB}, &ws.Event{
				Type:    ws.EventThread,
				Payload: stored.ToResponse(),
			})
		}
		return stored.ToResponse(), nil
	}

	// Existing thread: repair the participant list and info cache if an
	// earlier write left them incomplete. Non-transactional by design.
	if err := s.EnsureParticipants(stored.ID, userA, userB); err != nil {
		return nil, err
	}
	stored, err = s.findThread(stored.ID)
	if err != nil {
		return nil, err
	}
	return stored.ToResponse(), nil
}

// EnsureParticipants repairs a thread whose participant list or cached
// profile info is missing or incomplete. Profiles are re-fetched only for
// participants whose cached name is absent, so the stale-but-present cache
// is refreshed opportunistically rather than on every call.
func (s *chatService) EnsureParticipants(threadID, userA, userB string) error {
	thread, err := s.findThread(threadID)
	if err != nil {
		return err
	}

	participants := thread.Participants
	changed := false
	for _, id := range []string{userA, userB} {
		if id != "" && !participants.Contains(id) {
			participants = append(participants, id)
			changed = true
		}
	}

	info := thread.ParticipantsInfo
	if info == nil {
		info = domain.InfoMap{}
	}
	var missing []string
	for _, id := range participants {
		if entry, ok := info[id]; !ok || entry.Name == "" {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		members, err := s.memberRepo.FindByUserIDs(missing)
		if err != nil {
			return err
		}
		for _, m := range members {
			entry := m.Info()
			if prev, ok := info[m.UserID]; ok && prev.Role != "" {
				entry.Role = prev.Role
			}
			info[m.UserID] = entry
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return s.threadRepo.UpdateParticipants(threadID, participants, info)
}

// CreateGroupThread creates a group thread with a random id. The creator is
// tagged admin, everyone else member.
func (s *chatService) CreateGroupThread(creatorID string, req *domain.CreateGroupThreadRequest) (*domain.ThreadResponse, error) {
	if req.Name == "" || len(req.MemberIDs) == 0 {
		return nil, common.ErrInvalidInput
	}

	memberIDs := []string{creatorID}
	for _, id := range req.MemberIDs {
		if id != creatorID {
			memberIDs = append(memberIDs, id)
		}
	}

	members, err := s.memberRepo.FindByUserIDs(memberIDs)
	if err != nil {
		return nil, err
	}
	if len(members) != len(memberIDs) {
		return nil, common.ErrUserNotFound
	}

	info := domain.InfoMap{}
	for _, m := range members {
		entry := m.Info()
		if m.UserID == creatorID {
			entry.Role = domain.RoleAdmin
		} else {
			entry.Role = domain.RoleMember
		}
		info[m.UserID] = entry
	}

	now := time.Now()
	thread := &domain.Thread{
		ID:               uuid.New().String(),
		Type:             domain.ThreadTypeGroup,
		Participants:     memberIDs,
		ParticipantsInfo: info,
		GroupName:        req.Name,
		GroupDescription: req.Description,
		CreatorID:        creatorID,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.threadRepo.Create(thread); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.SendToUsers(memberIDs, &ws.Event{
			Type:    ws.EventThread,
			Payload: thread.ToResponse(),
		})
	}
	return thread.ToResponse(), nil
}

// GetThread returns a thread the caller participates in
func (s *chatService) GetThread(threadID, userID string) (*domain.ThreadResponse, error) {
	thread, err := s.findThread(threadID)
	if err != nil {
		return nil, err
	}
	if !thread.IsParticipant(userID) {
		return nil, common.ErrForbidden
	}
	return thread.ToResponse(), nil
}

// SendMessage appends a message to a thread. The sender's own receipt
// entries are stamped immediately so their client never shows its own
// message as undelivered.
func (s *chatService) SendMessage(threadID, senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	if req.Text == "" && req.ImageRef == "" {
		return nil, common.ErrEmptyMessage
	}

	thread, err := s.findThread(threadID)
	if err != nil {
		return nil, err
	}
	if !thread.IsParticipant(senderID) {
		return nil, common.ErrNotParticipant
	}

	now := time.Now()
	msg := &domain.Message{
		ID:          uuid.New().String(),
		ThreadID:    threadID,
		SenderID:    senderID,
		Text:        req.Text,
		ImageRef:    req.ImageRef,
		DeliveredTo: domain.TimeMap{senderID: now},
		ReadBy:      domain.TimeMap{senderID: now},
		CreatedAt:   now,
	}
	if err := s.messageRepo.Create(msg); err != nil {
		return nil, err
	}

	summary := req.Text
	if summary == "" {
		summary = "[image]"
	}
	if err := s.threadRepo.UpdateLastMessage(threadID, summary, senderID, now); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.SendToUsers(thread.Participants, &ws.Event{
			Type:    ws.EventMessage,
			Payload: msg.ToResponse(),
		})
	}
	return msg.ToResponse(), nil
}

// GetMessages returns a page of thread messages, newest first. Fetching a
// page doubles as the delivery acknowledgement for the reading user.
func (s *chatService) GetMessages(threadID, userID string, page, limit int) ([]*domain.MessageResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 30
	}

	thread, err := s.findThread(threadID)
	if err != nil {
		return nil, nil, err
	}
	if !thread.IsParticipant(userID) {
		return nil, nil, common.ErrForbidden
	}

	messages, total, err := s.messageRepo.FindByThread(threadID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	// Best effort; a failed stamp just means the next fetch retries it.
	// Membership was checked above.
	s.stampDelivered(threadID, userID) //nolint:errcheck

	responses := make([]*domain.MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = m.ToResponse()
	}
	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return responses, meta, nil
}

// MarkDelivered stamps a delivered receipt for userID on every message in
// the thread sent by others that has none yet, in one batch
func (s *chatService) MarkDelivered(threadID, userID string) error {
	thread, err := s.findThread(threadID)
	if err != nil {
		return err
	}
	if !thread.IsParticipant(userID) {
		return common.ErrForbidden
	}
	return s.stampDelivered(threadID, userID)
}

// stampDelivered does the delivered-receipt batch write. Callers must have
// verified that userID participates in the thread.
func (s *chatService) stampDelivered(threadID, userID string) error {
	ids, err := s.messageRepo.FindUndeliveredIDs(threadID, userID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.messageRepo.StampDelivered(ids, userID, time.Now()); err != nil {
		return err
	}
	s.pushReceipt(threadID, userID, domain.StatusDelivered, ids)
	return nil
}

// MarkRead stamps read receipts for userID on the most recent window of
// messages. The window is bounded so an old thread does not trigger a full
// history rewrite on every focus.
func (s *chatService) MarkRead(threadID, userID string) error {
	thread, err := s.findThread(threadID)
	if err != nil {
		return err
	}
	if !thread.IsParticipant(userID) {
		return common.ErrForbidden
	}

	recent, err := s.messageRepo.FindRecent(threadID, s.readWindow)
	if err != nil {
		return err
	}

	var ids []string
	for _, m := range recent {
		if m.SenderID == userID {
			continue
		}
		if _, ok := m.ReadBy[userID]; ok {
			continue
		}
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.messageRepo.StampRead(ids, userID, time.Now()); err != nil {
		return err
	}
	s.pushReceipt(threadID, userID, domain.StatusRead, ids)
	return nil
}

// EditMessage replaces the text of the caller's own message
func (s *chatService) EditMessage(messageID, userID, text string) (*domain.MessageResponse, error) {
	if text == "" {
		return nil, common.ErrEmptyMessage
	}
	msg, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMessageNotFound
		}
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, common.ErrForbidden
	}
	if err := s.messageRepo.UpdateText(messageID, text); err != nil {
		return nil, err
	}
	msg.Text = text
	msg.Edited = true

	if thread, err := s.findThread(msg.ThreadID); err == nil && s.pusher != nil {
		s.pusher.SendToUsers(thread.Participants, &ws.Event{
			Type:    ws.EventMessage,
			Payload: msg.ToResponse(),
		})
	}
	return msg.ToResponse(), nil
}

// DeleteThreadPermanently removes a thread and its full message history.
// Messages go first, in bounded pages, then the thread row. Irreversible.
func (s *chatService) DeleteThreadPermanently(threadID, userID string) error {
	thread, err := s.findThread(threadID)
	if err != nil {
		return err
	}
	if !thread.IsParticipant(userID) {
		return common.ErrForbidden
	}

	if err := s.messageRepo.DeleteByThread(threadID, s.deletePageSize); err != nil {
		return err
	}
	if err := s.threadRepo.Delete(threadID); err != nil {
		return err
	}

	if s.pusher != nil {
		s.pusher.SendToUsers(thread.Participants, &ws.Event{
			Type:    ws.EventThread,
			Payload: map[string]interface{}{"id": threadID, "deleted": true},
		})
	}
	return nil
}

func (s *chatService) findThread(threadID string) (*domain.Thread, error) {
	thread, err := s.threadRepo.FindByID(threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrThreadNotFound
		}
		return nil, err
	}
	return thread, nil
}

// profileSnapshots builds the denormalized info cache for a direct pair.
// Profiles are served from the Redis cache when present; misses hit the
// member table and refill the cache.
func (s *chatService) profileSnapshots(userA, userB string) (domain.InfoMap, error) {
	info := domain.InfoMap{}
	var missing []string
	for _, id := range []string{userA, userB} {
		if s.cache != nil && s.cache.IsAvailable() {
			var m domain.Member
			if err := s.cache.GetProfile(context.Background(), id, &m); err == nil && m.UserID == id {
				info[id] = m.Info()
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return info, nil
	}

	members, err := s.memberRepo.FindByUserIDs(missing)
	if err != nil {
		return nil, err
	}
	if len(members) != len(missing) {
		return nil, common.ErrUserNotFound
	}
	for _, m := range members {
		info[m.UserID] = m.Info()
		if s.cache != nil && s.cache.IsAvailable() {
			s.cache.SetProfile(context.Background(), m.UserID, m) //nolint:errcheck
		}
	}
	return info, nil
}

func (s *chatService) pushReceipt(threadID, userID, status string, messageIDs []string) {
	if s.pusher == nil {
		return
	}
	thread, err := s.threadRepo.FindByID(threadID)
	if err != nil {
		return
	}
	s.pusher.SendToUsers(thread.Participants, &ws.Event{
		Type: ws.EventReceipt,
		Payload: map[string]interface{}{
			"thread_id":   threadID,
			"user_id":     userID,
			"status":      status,
			"message_ids": messageIDs,
		},
	})
}
