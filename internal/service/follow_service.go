package service

import (
	"errors"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/repository"
	"gorm.io/gorm"
)

// FollowService business logic for follow edges. Mutuality of two edges is
// what lets a pair of users skip the message-request gate.
type FollowService interface {
	Follow(followerID, followeeID string) error
	Unfollow(followerID, followeeID string) error
	IsMutual(userA, userB string) (bool, error)
}

type followService struct {
	followRepo repository.FollowRepository
	memberRepo repository.MemberRepository
	notifier   *NotificationService
}

// NewFollowService creates a new FollowService
func NewFollowService(
	followRepo repository.FollowRepository,
	memberRepo repository.MemberRepository,
	notifier *NotificationService,
) FollowService {
	return &followService{
		followRepo: followRepo,
		memberRepo: memberRepo,
		notifier:   notifier,
	}
}

// Follow adds a follow edge
func (s *followService) Follow(followerID, followeeID string) error {
	if followeeID == "" || followerID == followeeID {
		return common.ErrInvalidInput
	}

	follower, err := s.memberRepo.FindByUserID(followerID)
	if err != nil {
		return mapMemberErr(err)
	}
	if _, err := s.memberRepo.FindByUserID(followeeID); err != nil {
		return mapMemberErr(err)
	}

	exists, err := s.followRepo.Exists(followerID, followeeID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.followRepo.Create(followerID, followeeID); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyFollow(followeeID, followerID, follower.Name)
	}
	return nil
}

// Unfollow removes a follow edge
func (s *followService) Unfollow(followerID, followeeID string) error {
	err := s.followRepo.Delete(followerID, followeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	return err
}

// IsMutual reports whether both directional edges exist
func (s *followService) IsMutual(userA, userB string) (bool, error) {
	return s.followRepo.IsMutual(userA, userB)
}
