package repository

import (
	"github.com/sousamj2/explicolivais/internal/domain/entity"
)

// QuestionRepository defines access to the question bank
type QuestionRepository interface {
	// UpsertBatch inserts or replaces questions keyed by question number
	UpsertBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	// GetByIDs returns the found questions keyed by row id
	GetByIDs(ids []uint) (map[uint]*entity.Question, error)
	// GetByNumbers returns the found questions keyed by question number
	GetByNumbers(numbers []int) (map[int]*entity.Question, error)
	// QuestionIDsForYear picks num random question ids, currentYearPercent of
	// them from year and the rest from the previous years. Year 5 draws all
	// questions from year 5.
	QuestionIDsForYear(year, num, currentYearPercent int) ([]uint, error)
	CountByYear(year int) (int64, error)
}
