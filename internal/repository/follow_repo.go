package repository

import (
	"time"

	"github.com/devlink/devlink-backend/internal/domain"
	"gorm.io/gorm"
)

// FollowRepository follow edge data access interface
type FollowRepository interface {
	Create(followerID, followeeID string) error
	Delete(followerID, followeeID string) error
	Exists(followerID, followeeID string) (bool, error)
	IsMutual(userA, userB string) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create adds a follow edge
func (r *followRepository) Create(followerID, followeeID string) error {
	edge := &domain.FollowEdge{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	}
	return r.db.Create(edge).Error
}

// Delete removes a follow edge
func (r *followRepository) Delete(followerID, followeeID string) error {
	result := r.db.Where("fl_follower_id = ? AND fl_followee_id = ?", followerID, followeeID).
		Delete(&domain.FollowEdge{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Exists checks whether follower follows followee
func (r *followRepository) Exists(followerID, followeeID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.FollowEdge{}).
		Where("fl_follower_id = ? AND fl_followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

// IsMutual checks whether both directional edges exist
func (r *followRepository) IsMutual(userA, userB string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.FollowEdge{}).
		Where("(fl_follower_id = ? AND fl_followee_id = ?) OR (fl_follower_id = ? AND fl_followee_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count == 2, err
}
