package service

import (
	"errors"
	"time"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/repository"
	"github.com/devlink/devlink-backend/internal/ws"
	"github.com/devlink/devlink-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestService business logic for message requests. A request is the
// consent gate in front of a direct thread between users without a mutual
// follow; its lifecycle is pending -> accepted|rejected, both terminal.
type RequestService interface {
	SendRequest(senderID string, req *domain.SendRequestRequest) (*domain.MessageRequestResponse, error)
	ListPending(recipientID string, page, limit int) ([]*domain.MessageRequestResponse, *common.Meta, error)
	AcceptRequest(requestID, recipientID string) (*domain.MessageRequestResponse, error)
	RejectRequest(requestID, recipientID string) error
	DeleteRequest(requestID, userID string) error
}

type requestService struct {
	requestRepo  repository.RequestRepository
	followRepo   repository.FollowRepository
	memberRepo   repository.MemberRepository
	chatService  ChatService
	notifier     *NotificationService
	pusher       EventPusher
	forwardDelay time.Duration
}

// NewRequestService creates a new RequestService. forwardDelay is the pause
// before the accepted request's initial text is forwarded as the first
// message, giving the thread write time to settle.
func NewRequestService(
	requestRepo repository.RequestRepository,
	followRepo repository.FollowRepository,
	memberRepo repository.MemberRepository,
	chatService ChatService,
	notifier *NotificationService,
	pusher EventPusher,
	forwardDelay time.Duration,
) RequestService {
	return &requestService{
		requestRepo:  requestRepo,
		followRepo:   followRepo,
		memberRepo:   memberRepo,
		chatService:  chatService,
		notifier:     notifier,
		pusher:       pusher,
		forwardDelay: forwardDelay,
	}
}

// SendRequest creates a pending message request. The duplicate check is a
// query, not a unique constraint, so two racing senders can still slip
// through; the accept path tolerates that because thread creation is
// idempotent.
func (s *requestService) SendRequest(senderID string, req *domain.SendRequestRequest) (*domain.MessageRequestResponse, error) {
	if req.RecipientID == "" || req.RecipientID == senderID {
		return nil, common.ErrInvalidInput
	}

	sender, err := s.memberRepo.FindByUserID(senderID)
	if err != nil {
		return nil, mapMemberErr(err)
	}
	if _, err := s.memberRepo.FindByUserID(req.RecipientID); err != nil {
		return nil, mapMemberErr(err)
	}

	mutual, err := s.followRepo.IsMutual(senderID, req.RecipientID)
	if err != nil {
		return nil, err
	}
	if mutual {
		return nil, common.ErrMutualFollow
	}

	existing, err := s.requestRepo.FindPendingBetween(senderID, req.RecipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.ErrDuplicateRequest
	}

	request := &domain.MessageRequest{
		ID:          uuid.New().String(),
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Text:        req.Text,
		Status:      domain.RequestPending,
		SenderInfo:  domain.InfoMap{senderID: sender.Info()},
		CreatedAt:   time.Now(),
	}
	if err := s.requestRepo.Create(request); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.SendToUser(req.RecipientID, &ws.Event{
			Type:    ws.EventRequest,
			Payload: request.ToResponse(),
		})
	}
	if s.notifier != nil {
		s.notifier.NotifyMessageRequest(req.RecipientID, senderID, sender.Name)
	}
	return request.ToResponse(), nil
}

// ListPending returns the pending requests addressed to a recipient
func (s *requestService) ListPending(recipientID string, page, limit int) ([]*domain.MessageRequestResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	requests, total, err := s.requestRepo.FindForRecipient(recipientID, domain.RequestPending, page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.MessageRequestResponse, len(requests))
	for i, r := range requests {
		responses[i] = r.ToResponse()
	}
	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return responses, meta, nil
}

// AcceptRequest resolves a pending request in the recipient's favor: the
// direct thread is created (idempotently) and linked, and any initial text
// is forwarded as the first message after a short delay. The forward is
// fire-and-forget; the accept itself never fails on it.
func (s *requestService) AcceptRequest(requestID, recipientID string) (*domain.MessageRequestResponse, error) {
	request, err := s.findRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.RecipientID != recipientID {
		return nil, common.ErrForbidden
	}
	if !request.IsPending() {
		return nil, common.ErrRequestResolved
	}

	thread, err := s.chatService.EnsureDirectThread(request.SenderID, request.RecipientID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.requestRepo.Resolve(requestID, domain.RequestAccepted, thread.ID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost the race against a concurrent accept/reject
			return nil, common.ErrRequestResolved
		}
		return nil, err
	}

	request.Status = domain.RequestAccepted
	request.ThreadID = thread.ID
	request.ResolvedAt = &now

	if request.Text != "" {
		go s.forwardInitialText(thread.ID, request.SenderID, request.Text)
	}

	if s.pusher != nil {
		s.pusher.SendToUser(request.SenderID, &ws.Event{
			Type:    ws.EventRequest,
			Payload: request.ToResponse(),
		})
	}
	if s.notifier != nil {
		recipient, err := s.memberRepo.FindByUserID(recipientID)
		if err == nil {
			s.notifier.NotifyRequestAccepted(request.SenderID, recipientID, recipient.Name)
		}
	}
	return request.ToResponse(), nil
}

// RejectRequest resolves a pending request against the sender. Terminal.
func (s *requestService) RejectRequest(requestID, recipientID string) error {
	request, err := s.findRequest(requestID)
	if err != nil {
		return err
	}
	if request.RecipientID != recipientID {
		return common.ErrForbidden
	}
	if !request.IsPending() {
		return common.ErrRequestResolved
	}

	if err := s.requestRepo.Resolve(requestID, domain.RequestRejected, "", time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrRequestResolved
		}
		return err
	}

	if s.pusher != nil {
		request.Status = domain.RequestRejected
		s.pusher.SendToUser(request.SenderID, &ws.Event{
			Type:    ws.EventRequest,
			Payload: request.ToResponse(),
		})
	}
	return nil
}

// DeleteRequest removes a request. Either side can delete their own.
func (s *requestService) DeleteRequest(requestID, userID string) error {
	request, err := s.findRequest(requestID)
	if err != nil {
		return err
	}
	if request.SenderID != userID && request.RecipientID != userID {
		return common.ErrForbidden
	}
	return s.requestRepo.Delete(requestID)
}

// forwardInitialText delivers the request's original text as the thread's
// first message. Runs detached after a settle delay; failures are logged
// and dropped.
func (s *requestService) forwardInitialText(threadID, senderID, text string) {
	if s.forwardDelay > 0 {
		time.Sleep(s.forwardDelay)
	}
	_, err := s.chatService.SendMessage(threadID, senderID, &domain.SendMessageRequest{Text: text})
	if err != nil {
		logger.Warn("failed to forward request text to thread %s: %v", threadID, err)
	}
}

func (s *requestService) findRequest(requestID string) (*domain.MessageRequest, error) {
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

func mapMemberErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrUserNotFound
	}
	return err
}
