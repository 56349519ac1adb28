package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
)

// MockQuestionRepo implements repository.QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) UpsertBatch(questions []entity.Question) error {
	return m.Called(questions).Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetByIDs(ids []uint) (map[uint]*entity.Question, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetByNumbers(numbers []int) (map[int]*entity.Question, error) {
	args := m.Called(numbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) QuestionIDsForYear(year, num, currentYearPercent int) ([]uint, error) {
	args := m.Called(year, num, currentYearPercent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockQuestionRepo) CountByYear(year int) (int64, error) {
	args := m.Called(year)
	return args.Get(0).(int64), args.Error(1)
}

// MockHistoryRepo implements repository.QuizHistoryRepository
type MockHistoryRepo struct {
	mock.Mock
}

func (m *MockHistoryRepo) Save(history *entity.QuizHistory) error {
	return m.Called(history).Error(0)
}

func (m *MockHistoryRepo) GetByUUID(uuid string) (*entity.QuizHistory, error) {
	args := m.Called(uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizHistory), args.Error(1)
}

func (m *MockHistoryRepo) ListByUser(userID uint, limit, offset int) ([]entity.QuizHistory, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.QuizHistory), args.Get(1).(int64), args.Error(2)
}

func (m *MockHistoryRepo) ListAllByUser(userID uint) ([]entity.QuizHistory, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizHistory), args.Error(1)
}

// MockAnonStore implements repository.AnonymousResultStore
type MockAnonStore struct {
	mock.Mock
}

func (m *MockAnonStore) Save(answers entity.AnswerMap, questionNumbers []int) (string, error) {
	args := m.Called(answers, questionNumbers)
	return args.String(0), args.Error(1)
}

func (m *MockAnonStore) Get(id string) (*entity.AnonymousResult, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AnonymousResult), args.Error(1)
}

func (m *MockAnonStore) List() ([]entity.AnonymousResultSummary, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AnonymousResultSummary), args.Error(1)
}

func (m *MockAnonStore) SweepExpired() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockAnonStore) Delete(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

// MockUserRepo implements repository.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *entity.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) Update(user *entity.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepo) UpdateLastLogin(userID uint, at time.Time, ip string) error {
	return m.Called(userID, at, ip).Error(0)
}

func (m *MockUserRepo) SavePersonalData(data *entity.PersonalData) error {
	return m.Called(data).Error(0)
}

func (m *MockUserRepo) GetPersonalData(userID uint) (*entity.PersonalData, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PersonalData), args.Error(1)
}

func (m *MockUserRepo) GetByNIF(nif string) (*entity.User, error) {
	args := m.Called(nif)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByCellNumber(cell string) (*entity.User, error) {
	args := m.Called(cell)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockBlacklistRepo implements repository.BlacklistRepository
type MockBlacklistRepo struct {
	mock.Mock
}

func (m *MockBlacklistRepo) IsEmailBlacklisted(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklistRepo) IsIPBlacklisted(ip string) (bool, error) {
	args := m.Called(ip)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklistRepo) AddEmail(email string) error {
	return m.Called(email).Error(0)
}

func (m *MockBlacklistRepo) AddIP(ip string) error {
	return m.Called(ip).Error(0)
}

// MockEmailService implements EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRegistrationConfirmation(ctx context.Context, toEmail, confirmURL, unsubscribeURL, idempotencyKey string) error {
	return m.Called(ctx, toEmail, confirmURL, unsubscribeURL, idempotencyKey).Error(0)
}

// MockTokenIssuer implements TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(user *entity.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func testQuestion(id uint, number int, options, scoring string) *entity.Question {
	return &entity.Question{
		ID:              id,
		Number:          number,
		Year:            5,
		Formatting:      entity.FormattingText,
		PossibleAnswers: options,
		ScoringSystem:   scoring,
	}
}
