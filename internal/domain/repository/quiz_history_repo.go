package repository

import (
	"github.com/sousamj2/explicolivais/internal/domain/entity"
)

// QuizHistoryRepository defines access to the quiz attempts of signed-in users
type QuizHistoryRepository interface {
	Save(history *entity.QuizHistory) error
	GetByUUID(uuid string) (*entity.QuizHistory, error)
	// ListByUser returns a page of attempts, newest first, and the total count
	ListByUser(userID uint, limit, offset int) ([]entity.QuizHistory, int64, error)
	ListAllByUser(userID uint) ([]entity.QuizHistory, error)
}
