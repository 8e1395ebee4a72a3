package repository

import (
	"time"

	"github.com/devlink/devlink-backend/internal/domain"
	"gorm.io/gorm"
)

// MemberRepository member data access interface
type MemberRepository interface {
	Create(member *domain.Member) error
	FindByUserID(userID string) (*domain.Member, error)
	FindByUsername(username string) (*domain.Member, error)
	FindByUserIDs(userIDs []string) ([]*domain.Member, error)
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	UpdatePresence(userID string, lastSeen *time.Time, isOnline bool) error
	SetOnlineFlag(userID string, isOnline bool) error
	ClearStaleOnline(olderThan time.Time) (int64, error)
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create inserts a member row
func (r *memberRepository) Create(member *domain.Member) error {
	return r.db.Create(member).Error
}

// FindByUserID finds a member by user ID
func (r *memberRepository) FindByUserID(userID string) (*domain.Member, error) {
	var member domain.Member
	err := r.db.Where("mb_user_id = ?", userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByUsername finds a member by username
func (r *memberRepository) FindByUsername(username string) (*domain.Member, error) {
	var member domain.Member
	err := r.db.Where("mb_username = ?", username).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByUserIDs returns the members matching the given user ids
func (r *memberRepository) FindByUserIDs(userIDs []string) ([]*domain.Member, error) {
	var members []*domain.Member
	if len(userIDs) == 0 {
		return members, nil
	}
	err := r.db.Where("mb_user_id IN ?", userIDs).Find(&members).Error
	return members, err
}

// ExistsByUsername checks username availability
func (r *memberRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Member{}).
		Where("mb_username = ?", username).
		Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks whether the email is taken
func (r *memberRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Member{}).
		Where("mb_email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// UpdatePresence writes last-seen and the online flag together
func (r *memberRepository) UpdatePresence(userID string, lastSeen *time.Time, isOnline bool) error {
	return r.db.Model(&domain.Member{}).
		Where("mb_user_id = ?", userID).
		Updates(map[string]interface{}{
			"mb_last_seen": lastSeen,
			"mb_is_online": isOnline,
		}).Error
}

// SetOnlineFlag writes only the online flag, leaving last-seen untouched
func (r *memberRepository) SetOnlineFlag(userID string, isOnline bool) error {
	return r.db.Model(&domain.Member{}).
		Where("mb_user_id = ?", userID).
		Update("mb_is_online", isOnline).Error
}

// ClearStaleOnline drops lingering online flags whose last-seen predates
// olderThan. A crashed client never writes its own offline transition, so
// someone has to clean up after it.
func (r *memberRepository) ClearStaleOnline(olderThan time.Time) (int64, error) {
	result := r.db.Model(&domain.Member{}).
		Where("mb_is_online = ? AND (mb_last_seen IS NULL OR mb_last_seen < ?)", true, olderThan).
		Update("mb_is_online", false)
	return result.RowsAffected, result.Error
}
