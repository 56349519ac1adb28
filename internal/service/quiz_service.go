package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/config"
	"github.com/sousamj2/explicolivais/internal/domain/entity"
	"github.com/sousamj2/explicolivais/internal/domain/repository"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
	"github.com/sousamj2/explicolivais/internal/service/scoring"
	"github.com/sousamj2/explicolivais/pkg/monitoring"
)

// Navigation actions
const (
	NavigateNext     = "next"
	NavigatePrevious = "previous"
	NavigateFinish   = "finish"
)

// QuizSession is the state of one browser's quiz attempt
type QuizSession struct {
	QuestionIDs     []uint          `json:"question_ids"`
	QuestionNumbers []int           `json:"question_numbers"`
	Answers         scoring.Answers `json:"answers"`
	Config          QuizConfig      `json:"config"`
	AnonymousID     string          `json:"anonymous_id,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
}

// Total is the number of questions in the attempt
func (s *QuizSession) Total() int {
	return len(s.QuestionIDs)
}

// PendingClaim reports whether an anonymous result waits to be claimed
func (s *QuizSession) PendingClaim() bool {
	return s.AnonymousID != ""
}

// QuestionView is one question as presented to the user
type QuestionView struct {
	Index         int              `json:"index"`
	Total         int              `json:"total_questions"`
	Question      scoring.Question `json:"question"`
	UUID          string           `json:"uuid"`
	Path          string           `json:"question_path"`
	TypeOfProblem string           `json:"type_of_problem"`
	ImageURL      string           `json:"image_url"`
	CurrentAnswer []string         `json:"current_answer"`
}

// Navigation tells the client where to go next
type Navigation struct {
	Next     int  `json:"next"`
	Finished bool `json:"finished"`
}

// FinishResult is the scored attempt plus where it was stored
type FinishResult struct {
	Result      *scoring.Result `json:"result"`
	QuizUUID    string          `json:"quiz_uuid"`
	Anonymous   bool            `json:"anonymous"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Persistence string          `json:"persistence"`
}

// AnonymousView is a stored anonymous result replayed through the scorer
type AnonymousView struct {
	QuizUUID  string          `json:"quiz_uuid"`
	Timestamp time.Time       `json:"timestamp"`
	Answers   scoring.Answers `json:"answers"`
	Result    *scoring.Result `json:"result"`
}

// QuizService runs quiz attempts stored in per-session cache entries
type QuizService struct {
	questionRepo repository.QuestionRepository
	historyRepo  repository.QuizHistoryRepository
	anonStore    repository.AnonymousResultStore
	sessions     repository.TTLCache
	scorer       *scoring.Scorer
	cfg          config.QuizConfig
	metrics      *monitoring.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewQuizService creates a QuizService
func NewQuizService(
	questionRepo repository.QuestionRepository,
	historyRepo repository.QuizHistoryRepository,
	anonStore repository.AnonymousResultStore,
	sessions repository.TTLCache,
	scorer *scoring.Scorer,
	cfg config.QuizConfig,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) (*QuizService, error) {
	if questionRepo == nil {
		return nil, fmt.Errorf("question repository is required")
	}
	if historyRepo == nil {
		return nil, fmt.Errorf("quiz history repository is required")
	}
	if anonStore == nil {
		return nil, fmt.Errorf("anonymous result store is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session cache is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if scorer == nil {
		scorer = scoring.NewScorer(logger)
	}
	if cfg.NumExercises <= 0 {
		cfg.NumExercises = 20
	}
	if cfg.DefaultYear <= 0 {
		cfg.DefaultYear = 5
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	return &QuizService{
		questionRepo: questionRepo,
		historyRepo:  historyRepo,
		anonStore:    anonStore,
		sessions:     sessions,
		scorer:       scorer,
		cfg:          cfg,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Start draws a new question set for year and replaces the session state.
// year <= 0 uses the configured default year.
func (s *QuizService) Start(ctx context.Context, sessionID string, year int) (*QuizSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", apperrors.ErrValidation)
	}
	if year <= 0 {
		year = s.cfg.DefaultYear
	}

	s.SweepAnonymous()

	ids, err := s.questionRepo.QuestionIDsForYear(year, s.cfg.NumExercises, s.cfg.CurrentYearPercent)
	if err != nil {
		return nil, fmt.Errorf("failed to select questions: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrNoQuestions
	}

	found, err := s.questionRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	session := &QuizSession{
		Answers: scoring.Answers{},
		Config: QuizConfig{
			Year:               year,
			NumExercises:       s.cfg.NumExercises,
			CurrentYearPercent: s.cfg.CurrentYearPercent,
		},
		StartedAt: s.now(),
	}
	for _, id := range ids {
		q, ok := found[id]
		if !ok {
			continue
		}
		session.QuestionIDs = append(session.QuestionIDs, id)
		session.QuestionNumbers = append(session.QuestionNumbers, q.Number)
	}
	if len(session.QuestionIDs) == 0 {
		return nil, ErrNoQuestions
	}

	if err := s.sessions.Set(ctx, sessionID, session); err != nil {
		return nil, fmt.Errorf("failed to store quiz session: %w", err)
	}
	s.metrics.QuizStarted()
	s.logger.Info("Quiz started",
		zap.Int("year", year),
		zap.Int("questions", len(session.QuestionIDs)))
	return session, nil
}

// Session returns the quiz state of sessionID
func (s *QuizService) Session(ctx context.Context, sessionID string) (*QuizSession, error) {
	if sessionID == "" {
		return nil, ErrQuizSessionNotFound
	}
	var session QuizSession
	if err := s.sessions.Get(ctx, sessionID, &session); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrQuizSessionNotFound
		}
		return nil, fmt.Errorf("failed to load quiz session: %w", err)
	}
	if session.Answers == nil {
		session.Answers = scoring.Answers{}
	}
	return &session, nil
}

// Question returns question n (0-based) of the session
func (s *QuizService) Question(ctx context.Context, sessionID string, n int) (*QuestionView, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= session.Total() {
		return nil, fmt.Errorf("%w: %d of %d", ErrQuestionOutOfRange, n, session.Total())
	}

	q, err := s.questionRepo.GetByID(session.QuestionIDs[n])
	if err != nil {
		return nil, fmt.Errorf("failed to load question %d: %w", session.QuestionIDs[n], err)
	}
	current := session.Answers[strconv.Itoa(n)]
	if current == nil {
		current = []string{}
	}
	return &QuestionView{
		Index:         n,
		Total:         session.Total(),
		Question:      scoring.NewQuestion(q),
		UUID:          q.UUID,
		Path:          q.Path(),
		TypeOfProblem: q.TypeOfProblem,
		ImageURL:      s.ImageURL(q.ImageRelPath()),
		CurrentAnswer: current,
	}, nil
}

// SubmitAnswer records the selected option indices for question n
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID string, n int, selected []string) error {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	if n < 0 || n >= session.Total() {
		return fmt.Errorf("%w: %d of %d", ErrQuestionOutOfRange, n, session.Total())
	}
	if selected == nil {
		selected = []string{}
	}
	session.Answers[strconv.Itoa(n)] = selected
	return s.sessions.Set(ctx, sessionID, session)
}

// Navigate resolves a next/previous/finish action from question current
func (s *QuizService) Navigate(ctx context.Context, sessionID, action string, current int) (*Navigation, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch action {
	case NavigateNext:
		next := current + 1
		if next >= session.Total() {
			return &Navigation{Next: current, Finished: true}, nil
		}
		return &Navigation{Next: next}, nil
	case NavigatePrevious:
		prev := current - 1
		if prev < 0 {
			prev = 0
		}
		return &Navigation{Next: prev}, nil
	case NavigateFinish:
		return &Navigation{Next: current, Finished: true}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidNavigation, action)
	}
}

// Finish scores the session. Anonymous attempts go to the anonymous store
// and their id is kept in the session for a later claim; attempts of a
// signed-in user are saved to their history.
func (s *QuizService) Finish(ctx context.Context, sessionID string, userID *uint) (*FinishResult, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found, err := s.questionRepo.GetByIDs(session.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	questions := make([]scoring.Question, 0, session.Total())
	numbers := make([]int, 0, session.Total())
	ids := make([]uint, 0, session.Total())
	answers := scoring.Answers{}
	for idx, id := range session.QuestionIDs {
		q, ok := found[id]
		if !ok {
			s.logger.Warn("Question vanished during quiz", zap.Uint("question_id", id))
			continue
		}
		if selected, ok := session.Answers[strconv.Itoa(idx)]; ok {
			answers[strconv.Itoa(len(questions))] = selected
		}
		questions = append(questions, scoring.NewQuestion(q))
		numbers = append(numbers, q.Number)
		ids = append(ids, id)
	}

	result := s.scorer.Score(questions, answers)

	if userID != nil {
		history := NewQuizHistory(*userID, uuid.NewString(), session.Config, questions, answers, result, session.StartedAt)
		if err := s.historyRepo.Save(history); err != nil {
			return nil, fmt.Errorf("failed to save quiz history: %w", err)
		}
		s.metrics.QuizFinished("user")
		return &FinishResult{Result: result, QuizUUID: history.UUID, Persistence: "history"}, nil
	}

	id, err := s.anonStore.Save(entity.AnswerMap(answers), numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to save anonymous result: %w", err)
	}
	// ids, numbers and answers stay index aligned after vanished questions are dropped
	session.AnonymousID = id
	session.QuestionIDs = ids
	session.QuestionNumbers = numbers
	session.Answers = answers
	if err := s.sessions.Set(ctx, sessionID, session); err != nil {
		s.logger.Warn("Could not remember anonymous result in session", zap.String("quiz_uuid", id), zap.Error(err))
	}
	s.metrics.QuizFinished("anonymous")

	expires := s.now().Add(s.cfg.ResultTTL)
	return &FinishResult{
		Result:      result,
		QuizUUID:    id,
		Anonymous:   true,
		ExpiresAt:   &expires,
		Persistence: "anonymous",
	}, nil
}

// ViewAnonymous replays a stored anonymous result. Questions are taken in
// ascending question number order; numbers that no longer resolve are left out.
func (s *QuizService) ViewAnonymous(ctx context.Context, id string) (*AnonymousView, error) {
	rec, err := s.anonStore.Get(id)
	if err != nil {
		return nil, err
	}

	numbers := make([]int, 0, len(rec.Answers))
	for key := range rec.Answers {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			s.logger.Debug("Skipping non numeric answer key", zap.String("key", key))
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	found, err := s.questionRepo.GetByNumbers(numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	questions := make([]scoring.Question, 0, len(numbers))
	answers := scoring.Answers{}
	for _, n := range numbers {
		q, ok := found[n]
		if !ok {
			continue
		}
		answers[strconv.Itoa(len(questions))] = rec.Answers[strconv.Itoa(n)]
		questions = append(questions, scoring.NewQuestion(q))
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("anonymous result %s: %w", id, ErrNoQuestions)
	}

	return &AnonymousView{
		QuizUUID:  rec.ID,
		Timestamp: rec.CreatedAt,
		Answers:   answers,
		Result:    s.scorer.Score(questions, answers),
	}, nil
}

// Restart drops the session state
func (s *QuizService) Restart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// ForgetAnonymous clears the pending claim of a session
func (s *QuizService) ForgetAnonymous(ctx context.Context, sessionID string) error {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	session.AnonymousID = ""
	return s.sessions.Set(ctx, sessionID, session)
}

// SweepAnonymous removes expired anonymous results. Failures are logged.
func (s *QuizService) SweepAnonymous() int {
	removed, err := s.anonStore.SweepExpired()
	if err != nil {
		s.logger.Error("Anonymous result sweep failed", zap.Error(err))
		return 0
	}
	s.metrics.ResultsSwept(removed)
	return removed
}

// ImageURL maps a relative asset path to the URL served to the browser.
// Production assets are resolved against the configured base URL, falling
// back to the local path when no base is set.
func (s *QuizService) ImageURL(rel string) string {
	if rel == "" {
		return ""
	}
	local := "/" + strings.TrimLeft(rel, "/")
	if !strings.EqualFold(s.cfg.AssetsSource, "prod") || s.cfg.AssetsProdURL == "" {
		return local
	}
	base, err := url.Parse(s.cfg.AssetsProdURL)
	if err != nil {
		s.logger.Warn("Invalid assets base URL", zap.String("url", s.cfg.AssetsProdURL), zap.Error(err))
		return local
	}
	ref, err := url.Parse(strings.TrimLeft(rel, "/"))
	if err != nil {
		return local
	}
	return base.ResolveReference(ref).String()
}
