package repository

import (
	"github.com/sousamj2/explicolivais/internal/domain/entity"
)

// AnonymousResultStore keeps quiz attempts of visitors for a limited time
type AnonymousResultStore interface {
	// Save stores answers keyed by presentation index under the question
	// numbers of questionNumbers and returns the new record id.
	Save(answers entity.AnswerMap, questionNumbers []int) (string, error)
	Get(id string) (*entity.AnonymousResult, error)
	List() ([]entity.AnonymousResultSummary, error)
	SweepExpired() (int, error)
	Delete(id string) (bool, error)
}
