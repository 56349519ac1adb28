package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	"github.com/sousamj2/explicolivais/internal/domain/repository"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
	"github.com/sousamj2/explicolivais/internal/service/scoring"
	"github.com/sousamj2/explicolivais/pkg/monitoring"
)

// ClaimService moves an anonymous quiz attempt into a user's history
type ClaimService struct {
	questionRepo repository.QuestionRepository
	historyRepo  repository.QuizHistoryRepository
	anonStore    repository.AnonymousResultStore
	scorer       *scoring.Scorer
	metrics      *monitoring.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewClaimService creates a ClaimService
func NewClaimService(
	questionRepo repository.QuestionRepository,
	historyRepo repository.QuizHistoryRepository,
	anonStore repository.AnonymousResultStore,
	scorer *scoring.Scorer,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) (*ClaimService, error) {
	if questionRepo == nil {
		return nil, fmt.Errorf("question repository is required")
	}
	if historyRepo == nil {
		return nil, fmt.Errorf("quiz history repository is required")
	}
	if anonStore == nil {
		return nil, fmt.Errorf("anonymous result store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if scorer == nil {
		scorer = scoring.NewScorer(logger)
	}
	return &ClaimService{
		questionRepo: questionRepo,
		historyRepo:  historyRepo,
		anonStore:    anonStore,
		scorer:       scorer,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Claim re-scores the answers of an anonymous attempt and stores them as the
// user's history under the anonymous id. questionNumbers is the presentation
// order and rawAnswers is keyed by presentation index.
//
// Every question number must resolve, otherwise nothing is persisted and the
// anonymous record stays. The anonymous record is deleted after a successful
// save; a failed delete is logged and the claim still succeeds.
func (s *ClaimService) Claim(
	ctx context.Context,
	userID uint,
	anonymousID string,
	cfg QuizConfig,
	questionNumbers []int,
	rawAnswers scoring.Answers,
) (bool, error) {
	if anonymousID == "" || len(questionNumbers) == 0 {
		s.metrics.QuizClaimed("failed")
		return false, fmt.Errorf("%w: anonymous id and questions are required", apperrors.ErrValidation)
	}

	found, err := s.questionRepo.GetByNumbers(questionNumbers)
	if err != nil {
		s.metrics.QuizClaimed("failed")
		return false, fmt.Errorf("failed to load claimed questions: %w", err)
	}
	questions := make([]scoring.Question, 0, len(questionNumbers))
	for _, num := range questionNumbers {
		q, ok := found[num]
		if !ok {
			s.metrics.QuizClaimed("failed")
			s.logger.Warn("Claim aborted, question not found",
				zap.String("quiz_uuid", anonymousID),
				zap.Int("question_number", num))
			return false, fmt.Errorf("%w: question %d", ErrClaimUnresolvedQuestion, num)
		}
		questions = append(questions, scoring.NewQuestion(q))
	}

	answers := scoring.Answers{}
	for idx := range questions {
		key := strconv.Itoa(idx)
		if selected, ok := rawAnswers[key]; ok {
			answers[key] = selected
		}
	}

	result := s.scorer.Score(questions, answers)

	startedAt := s.now()
	if rec, err := s.anonStore.Get(anonymousID); err == nil {
		if !rec.CreatedAt.IsZero() {
			startedAt = rec.CreatedAt
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("Could not read anonymous result, using current time",
			zap.String("quiz_uuid", anonymousID), zap.Error(err))
	}

	history := NewQuizHistory(userID, anonymousID, cfg, questions, answers, result, startedAt)
	if err := s.historyRepo.Save(history); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) || !s.alreadyClaimedBy(userID, anonymousID) {
			s.metrics.QuizClaimed("failed")
			return false, fmt.Errorf("failed to save claimed quiz: %w", err)
		}
		// an earlier claim saved the row but left the anonymous record behind
		s.logger.Info("Quiz already claimed by this user, finishing cleanup",
			zap.Uint("user_id", userID), zap.String("quiz_uuid", anonymousID))
	}

	if _, err := s.anonStore.Delete(anonymousID); err != nil {
		s.logger.Error("Claimed quiz saved but anonymous result not deleted",
			zap.String("quiz_uuid", anonymousID), zap.Error(err))
	}

	s.metrics.QuizClaimed("ok")
	s.logger.Info("Anonymous quiz claimed",
		zap.Uint("user_id", userID),
		zap.String("quiz_uuid", anonymousID),
		zap.Float64("score", result.PointsTotal()))
	return true, nil
}

func (s *ClaimService) alreadyClaimedBy(userID uint, id string) bool {
	existing, err := s.historyRepo.GetByUUID(id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Failed to look up claimed quiz", zap.String("quiz_uuid", id), zap.Error(err))
		}
		return false
	}
	return existing.UserID == userID
}

// NewQuizHistory builds the history row of a scored attempt. Answers are
// re-keyed from presentation index to question row id; unanswered questions
// are stored as skipped.
func NewQuizHistory(
	userID uint,
	id string,
	cfg QuizConfig,
	questions []scoring.Question,
	answers scoring.Answers,
	result *scoring.Result,
	startedAt time.Time,
) *entity.QuizHistory {
	byID := entity.AnswerMap{}
	for idx, q := range questions {
		selected, ok := answers[strconv.Itoa(idx)]
		if !ok {
			selected = []string{scoring.SkipMarker}
		}
		byID[strconv.FormatUint(uint64(q.ID), 10)] = selected
	}
	correct, wrong, skip := result.Counts()
	return &entity.QuizHistory{
		UUID:        id,
		UserID:      userID,
		Score:       result.PointsTotal(),
		Percentage:  result.Percentage,
		Year:        cfg.Year,
		YearPercent: cfg.CurrentYearPercent,
		Answers:     byID,
		NCorrect:    correct,
		NWrong:      wrong,
		NSkip:       skip,
		StartedAt:   startedAt,
	}
}
