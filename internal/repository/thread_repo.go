package repository

import (
	"errors"
	"time"

	"github.com/devlink/devlink-backend/internal/domain"
	"gorm.io/gorm"
)

// ThreadRepository thread data access interface
type ThreadRepository interface {
	FindByID(id string) (*domain.Thread, error)
	CreateIfAbsent(thread *domain.Thread) (*domain.Thread, bool, error)
	Create(thread *domain.Thread) error
	UpdateParticipants(id string, participants domain.StringSlice, info domain.InfoMap) error
	UpdateLastMessage(id string, text, senderID string, at time.Time) error
	FindByParticipant(userID string) ([]*domain.Thread, error)
	FindAllActive(limit int) ([]*domain.Thread, error)
	Delete(id string) error
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new ThreadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// FindByID finds a thread by ID
func (r *threadRepository) FindByID(id string) (*domain.Thread, error) {
	var thread domain.Thread
	err := r.db.Where("th_id = ?", id).First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// CreateIfAbsent creates the thread unless a row with the same id already
// exists. The existence check and insert run inside one transaction so
// concurrent callers converge on a single row (first writer wins). Returns
// the stored thread and whether this call created it.
func (r *threadRepository) CreateIfAbsent(thread *domain.Thread) (*domain.Thread, bool, error) {
	var stored domain.Thread
	created := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("th_id = ?", thread.ID).First(&stored).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		stored = *thread
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

// Create inserts a thread row
func (r *threadRepository) Create(thread *domain.Thread) error {
	return r.db.Create(thread).Error
}

// UpdateParticipants rewrites the participant set and info cache
func (r *threadRepository) UpdateParticipants(id string, participants domain.StringSlice, info domain.InfoMap) error {
	return r.db.Model(&domain.Thread{}).
		Where("th_id = ?", id).
		Updates(map[string]interface{}{
			"th_participants":      participants,
			"th_participants_info": info,
		}).Error
}

// UpdateLastMessage refreshes the denormalized last-message summary
func (r *threadRepository) UpdateLastMessage(id string, text, senderID string, at time.Time) error {
	return r.db.Model(&domain.Thread{}).
		Where("th_id = ?", id).
		Updates(map[string]interface{}{
			"th_last_message":    text,
			"th_last_sender_id":  senderID,
			"th_last_message_at": at,
			"th_updated_at":      at,
		}).Error
}

// FindByParticipant returns active threads listing userID as a participant,
// most recently updated first
func (r *threadRepository) FindByParticipant(userID string) ([]*domain.Thread, error) {
	var threads []*domain.Thread
	err := r.db.
		Where("th_active = ? AND JSON_CONTAINS(th_participants, JSON_QUOTE(?))", true, userID).
		Order("th_updated_at DESC").
		Find(&threads).Error
	return threads, err
}

// FindAllActive returns active threads regardless of membership. Fallback
// path for legacy threads whose participant list went missing.
func (r *threadRepository) FindAllActive(limit int) ([]*domain.Thread, error) {
	var threads []*domain.Thread
	err := r.db.
		Where("th_active = ?", true).
		Order("th_updated_at DESC").
		Limit(limit).
		Find(&threads).Error
	return threads, err
}

// Delete removes the thread row
func (r *threadRepository) Delete(id string) error {
	result := r.db.Where("th_id = ?", id).Delete(&domain.Thread{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
