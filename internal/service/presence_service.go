package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/repository"
	"github.com/devlink/devlink-backend/internal/ws"
	"github.com/devlink/devlink-backend/pkg/cache"
	"github.com/devlink/devlink-backend/pkg/logger"
	"gorm.io/gorm"
)

// presenceHint is the cached presence record kept in Redis next to the
// authoritative member row
type presenceHint struct {
	LastSeen time.Time `json:"last_seen"`
	IsOnline bool      `json:"is_online"`
}

// PresenceService tracks who is online. Clients drive it through the
// WebSocket session lifecycle (connect/disconnect) and a periodic heartbeat;
// viewers read a classification derived from last-seen time rather than the
// raw flag, so a crashed client ages out instead of staying online forever.
// Constructed once and injected, never a package-level singleton.
type PresenceService struct {
	memberRepo repository.MemberRepository
	threadRepo repository.ThreadRepository
	cache      cache.Service
	pusher     EventPusher
	throttle   time.Duration
	staleness  time.Duration

	mu        sync.Mutex
	lastWrite map[string]time.Time
}

// NewPresenceService creates a new PresenceService
func NewPresenceService(
	memberRepo repository.MemberRepository,
	threadRepo repository.ThreadRepository,
	cacheSvc cache.Service,
	pusher EventPusher,
	throttle, staleness time.Duration,
) *PresenceService {
	if throttle <= 0 {
		throttle = 20 * time.Second
	}
	if staleness <= 0 {
		staleness = 10 * time.Minute
	}
	return &PresenceService{
		memberRepo: memberRepo,
		threadRepo: threadRepo,
		cache:      cacheSvc,
		pusher:     pusher,
		throttle:   throttle,
		staleness:  staleness,
		lastWrite:  make(map[string]time.Time),
	}
}

// Heartbeat re-stamps last-seen for a foregrounded client. Writes inside
// the throttle window are suppressed to bound write volume under rapid
// state changes.
func (s *PresenceService) Heartbeat(userID string) error {
	now := time.Now()
	if !s.allowWrite(userID, now) {
		return nil
	}
	return s.writePresence(userID, now, true)
}

// SetOnline marks a user online. Runs the staleness repair first so a
// lingering flag from a crashed session is cleared before the fresh write.
func (s *PresenceService) SetOnline(userID string) error {
	if err := s.Reconcile(userID); err != nil && !errors.Is(err, common.ErrUserNotFound) {
		logger.Warn("presence reconcile for %s failed: %v", userID, err)
	}
	now := time.Now()
	s.recordWrite(userID, now)
	if err := s.writePresence(userID, now, true); err != nil {
		return err
	}
	s.publishTransition(userID, true)
	return nil
}

// SetOffline marks a user offline immediately. Offline writes are never
// throttled; missing one would strand the user as online.
func (s *PresenceService) SetOffline(userID string) error {
	now := time.Now()
	s.recordWrite(userID, now)
	if err := s.writePresence(userID, now, false); err != nil {
		return err
	}
	s.publishTransition(userID, false)
	return nil
}

// Reconcile clears a lingering online flag when last-seen has aged past the
// staleness window. Any viewer may run this against any profile, so stale
// flags self-heal without waiting for the owner to return.
func (s *PresenceService) Reconcile(userID string) error {
	member, err := s.findMember(userID)
	if err != nil {
		return err
	}
	if !member.IsOnline {
		return nil
	}
	if member.LastSeen != nil && time.Since(*member.LastSeen) < s.staleness {
		return nil
	}
	return s.memberRepo.SetOnlineFlag(userID, false)
}

// Status returns the derived presence classification for a user
func (s *PresenceService) Status(userID string) (*domain.PresenceResponse, error) {
	now := time.Now()

	if s.cache != nil && s.cache.IsAvailable() {
		var hint presenceHint
		if err := s.cache.GetPresence(context.Background(), userID, &hint); err == nil {
			return presenceResponse(userID, &hint.LastSeen, hint.IsOnline, now), nil
		}
	}

	member, err := s.findMember(userID)
	if err != nil {
		return nil, err
	}
	return presenceResponse(userID, member.LastSeen, member.IsOnline, now), nil
}

// RunReaper periodically clears stale online flags across all members.
// Blocks until ctx is done; run it on its own goroutine.
func (s *PresenceService) RunReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.memberRepo.ClearStaleOnline(time.Now().Add(-s.staleness))
			if err != nil {
				logger.Warn("presence reaper failed: %v", err)
			} else if n > 0 {
				logger.Info("presence reaper cleared %d stale online flags", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// OnConnect implements ws.SessionListener
func (s *PresenceService) OnConnect(userID string) {
	if err := s.SetOnline(userID); err != nil {
		logger.Warn("presence online write for %s failed: %v", userID, err)
	}
}

// OnDisconnect implements ws.SessionListener
func (s *PresenceService) OnDisconnect(userID string) {
	if err := s.SetOffline(userID); err != nil {
		logger.Warn("presence offline write for %s failed: %v", userID, err)
	}
}

// allowWrite applies the write throttle for one user
func (s *PresenceService) allowWrite(userID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastWrite[userID]; ok && now.Sub(last) < s.throttle {
		return false
	}
	s.lastWrite[userID] = now
	return true
}

func (s *PresenceService) recordWrite(userID string, now time.Time) {
	s.mu.Lock()
	s.lastWrite[userID] = now
	s.mu.Unlock()
}

func (s *PresenceService) writePresence(userID string, at time.Time, online bool) error {
	if err := s.memberRepo.UpdatePresence(userID, &at, online); err != nil {
		return err
	}
	if s.cache != nil && s.cache.IsAvailable() {
		hint := presenceHint{LastSeen: at, IsOnline: online}
		// Cache misses fall back to the member row
		s.cache.SetPresence(context.Background(), userID, hint) //nolint:errcheck
	}
	return nil
}

// publishTransition pushes a presence event to every user sharing a thread
// with userID. Heartbeats do not publish; only online/offline transitions.
func (s *PresenceService) publishTransition(userID string, online bool) {
	if s.pusher == nil || s.threadRepo == nil {
		return
	}
	threads, err := s.threadRepo.FindByParticipant(userID)
	if err != nil {
		logger.Warn("presence fanout for %s failed: %v", userID, err)
		return
	}

	status := domain.PresenceOffline
	if online {
		status = domain.PresenceOnline
	}
	event := &ws.Event{
		Type: ws.EventPresence,
		Payload: map[string]interface{}{
			"user_id": userID,
			"status":  status,
		},
	}

	seen := map[string]bool{userID: true}
	for _, t := range threads {
		for _, p := range t.Participants {
			if !seen[p] {
				seen[p] = true
				s.pusher.SendToUser(p, event)
			}
		}
	}
}

func (s *PresenceService) findMember(userID string) (*domain.Member, error) {
	member, err := s.memberRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return member, nil
}

func presenceResponse(userID string, lastSeen *time.Time, isOnline bool, now time.Time) *domain.PresenceResponse {
	resp := &domain.PresenceResponse{
		UserID: userID,
		Status: domain.PresenceStatus(lastSeen, isOnline, now),
	}
	if lastSeen != nil {
		resp.LastSeen = lastSeen.Format(time.RFC3339)
	}
	return resp
}
