package gormdb

import (
	"errors"

	"gorm.io/gorm"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

// QuizHistoryRepo implements repository.QuizHistoryRepository
type QuizHistoryRepo struct {
	db *gorm.DB
}

// NewQuizHistoryRepo creates a quiz history repository
func NewQuizHistoryRepo(db *gorm.DB) *QuizHistoryRepo {
	return &QuizHistoryRepo{db: db}
}

// Save inserts an attempt. A duplicate UUID is reported as apperrors.ErrConflict.
func (r *QuizHistoryRepo) Save(history *entity.QuizHistory) error {
	var n int64
	if err := r.db.Model(&entity.QuizHistory{}).Where("q_uuid = ?", history.UUID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperrors.ErrConflict
	}
	return r.db.Create(history).Error
}

// GetByUUID returns an attempt by its UUID
func (r *QuizHistoryRepo) GetByUUID(uuid string) (*entity.QuizHistory, error) {
	var h entity.QuizHistory
	if err := r.db.Where("q_uuid = ?", uuid).First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// ListByUser returns a page of attempts, newest first, plus the total count
func (r *QuizHistoryRepo) ListByUser(userID uint, limit, offset int) ([]entity.QuizHistory, int64, error) {
	var total int64
	if err := r.db.Model(&entity.QuizHistory{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []entity.QuizHistory
	err := r.db.Where("user_id = ?", userID).
		Order("start_ts DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListAllByUser returns every attempt of a user, newest first
func (r *QuizHistoryRepo) ListAllByUser(userID uint) ([]entity.QuizHistory, error) {
	var items []entity.QuizHistory
	err := r.db.Where("user_id = ?", userID).Order("start_ts DESC").Order("id DESC").Find(&items).Error
	return items, err
}
