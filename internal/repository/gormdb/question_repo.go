package gormdb

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

// FirstYear is the lowest academic year in the question bank. Quizzes for
// it have no previous year to mix in.
const FirstYear = 5

// QuestionRepo implements repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo creates a question repository
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// UpsertBatch inserts questions in batches of 100. A question whose number
// is already stored replaces that row; within the batch the last question
// with a given number wins.
func (r *QuestionRepo) UpsertBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	last := make(map[int]int, len(questions))
	for i, q := range questions {
		last[q.Number] = i
	}
	if len(last) < len(questions) {
		unique := make([]entity.Question, 0, len(last))
		for i, q := range questions {
			if last[q.Number] == i {
				unique = append(unique, q)
			}
		}
		questions = unique
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_number"}},
		UpdateAll: true,
	}).CreateInBatches(questions, 100).Error
}

// GetByID returns a question by row id
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var q entity.Question
	if err := r.db.First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// GetByIDs returns the questions found for ids, keyed by row id
func (r *QuestionRepo) GetByIDs(ids []uint) (map[uint]*entity.Question, error) {
	out := make(map[uint]*entity.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var questions []entity.Question
	if err := r.db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	for i := range questions {
		out[questions[i].ID] = &questions[i]
	}
	return out, nil
}

// GetByNumbers returns the questions found for numbers, keyed by number
func (r *QuestionRepo) GetByNumbers(numbers []int) (map[int]*entity.Question, error) {
	out := make(map[int]*entity.Question, len(numbers))
	if len(numbers) == 0 {
		return out, nil
	}
	var questions []entity.Question
	if err := r.db.Where("question_number IN ?", numbers).Find(&questions).Error; err != nil {
		return nil, err
	}
	for i := range questions {
		out[questions[i].Number] = &questions[i]
	}
	return out, nil
}

// QuestionIDsForYear picks random question ids: currentYearPercent of num
// from year, the rest from earlier years. Both shares are truncated.
func (r *QuestionRepo) QuestionIDsForYear(year, num, currentYearPercent int) ([]uint, error) {
	nCurrent := num * currentYearPercent / 100
	nPrevious := num * (100 - currentYearPercent) / 100
	if year <= FirstYear {
		nCurrent = num
		nPrevious = 0
	}

	ids := make([]uint, 0, nCurrent+nPrevious)
	if nCurrent > 0 {
		var current []uint
		err := r.db.Model(&entity.Question{}).
			Where("ano = ?", year).
			Order(r.randomOrder()).
			Limit(nCurrent).
			Pluck("id", &current).Error
		if err != nil {
			return nil, err
		}
		ids = append(ids, current...)
	}
	if nPrevious > 0 {
		var previous []uint
		err := r.db.Model(&entity.Question{}).
			Where("ano < ?", year).
			Order(r.randomOrder()).
			Limit(nPrevious).
			Pluck("id", &previous).Error
		if err != nil {
			return nil, err
		}
		ids = append(ids, previous...)
	}
	return ids, nil
}

// CountByYear returns the number of questions for a year
func (r *QuestionRepo) CountByYear(year int) (int64, error) {
	var n int64
	err := r.db.Model(&entity.Question{}).Where("ano = ?", year).Count(&n).Error
	return n, err
}

func (r *QuestionRepo) randomOrder() string {
	if r.db.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}
