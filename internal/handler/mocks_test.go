package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	"github.com/sousamj2/explicolivais/internal/middleware"
	"github.com/sousamj2/explicolivais/internal/service"
	"github.com/sousamj2/explicolivais/internal/service/scoring"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testContext stands in for the session and auth middleware
func testContext(sessionID string, userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextQuizSession, sessionID)
		if userID != 0 {
			c.Set(middleware.ContextUserID, userID)
		}
		c.Next()
	}
}

type MockQuizRunner struct{ mock.Mock }

func (m *MockQuizRunner) Start(ctx context.Context, sessionID string, year int) (*service.QuizSession, error) {
	args := m.Called(ctx, sessionID, year)
	s, _ := args.Get(0).(*service.QuizSession)
	return s, args.Error(1)
}

func (m *MockQuizRunner) Session(ctx context.Context, sessionID string) (*service.QuizSession, error) {
	args := m.Called(ctx, sessionID)
	s, _ := args.Get(0).(*service.QuizSession)
	return s, args.Error(1)
}

func (m *MockQuizRunner) Question(ctx context.Context, sessionID string, n int) (*service.QuestionView, error) {
	args := m.Called(ctx, sessionID, n)
	v, _ := args.Get(0).(*service.QuestionView)
	return v, args.Error(1)
}

func (m *MockQuizRunner) SubmitAnswer(ctx context.Context, sessionID string, n int, selected []string) error {
	return m.Called(ctx, sessionID, n, selected).Error(0)
}

func (m *MockQuizRunner) Navigate(ctx context.Context, sessionID, action string, current int) (*service.Navigation, error) {
	args := m.Called(ctx, sessionID, action, current)
	v, _ := args.Get(0).(*service.Navigation)
	return v, args.Error(1)
}

func (m *MockQuizRunner) Finish(ctx context.Context, sessionID string, userID *uint) (*service.FinishResult, error) {
	args := m.Called(ctx, sessionID, userID)
	v, _ := args.Get(0).(*service.FinishResult)
	return v, args.Error(1)
}

func (m *MockQuizRunner) ViewAnonymous(ctx context.Context, id string) (*service.AnonymousView, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*service.AnonymousView)
	return v, args.Error(1)
}

func (m *MockQuizRunner) Restart(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockQuizRunner) ForgetAnonymous(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type MockClaimer struct{ mock.Mock }

func (m *MockClaimer) Claim(ctx context.Context, userID uint, anonymousID string, cfg service.QuizConfig,
	questionNumbers []int, rawAnswers scoring.Answers) (bool, error) {
	args := m.Called(ctx, userID, anonymousID, cfg, questionNumbers, rawAnswers)
	return args.Bool(0), args.Error(1)
}

type MockRegistrar struct{ mock.Mock }

func (m *MockRegistrar) RequestConfirmation(ctx context.Context, email, ip string) (*entity.PendingRegistration, error) {
	args := m.Called(ctx, email, ip)
	v, _ := args.Get(0).(*entity.PendingRegistration)
	return v, args.Error(1)
}

func (m *MockRegistrar) Confirm(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *MockRegistrar) Unsubscribe(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRegistrar) SignUp(ctx context.Context, input service.SignUpInput) (*entity.User, error) {
	args := m.Called(ctx, input)
	v, _ := args.Get(0).(*entity.User)
	return v, args.Error(1)
}

func (m *MockRegistrar) IssueSignUpTicket(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockRegistrar) SignUpTicketEmail(ctx context.Context, ticket string) (string, error) {
	args := m.Called(ctx, ticket)
	return args.String(0), args.Error(1)
}

func (m *MockRegistrar) RedeemSignUpTicket(ctx context.Context, ticket string) (string, error) {
	args := m.Called(ctx, ticket)
	return args.String(0), args.Error(1)
}

type MockAuthenticator struct{ mock.Mock }

func (m *MockAuthenticator) SignInGoogle(ctx context.Context, info *service.GoogleUserInfo, ip string) (*service.SignInResult, error) {
	args := m.Called(ctx, info, ip)
	v, _ := args.Get(0).(*service.SignInResult)
	return v, args.Error(1)
}

func (m *MockAuthenticator) SignInPassword(ctx context.Context, email, password, ip string) (*service.SignInResult, error) {
	args := m.Called(ctx, email, password, ip)
	v, _ := args.Get(0).(*service.SignInResult)
	return v, args.Error(1)
}

type MockGoogleProvider struct{ mock.Mock }

func (m *MockGoogleProvider) AuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockGoogleProvider) Exchange(ctx context.Context, code string) (*service.GoogleUserInfo, error) {
	args := m.Called(ctx, code)
	v, _ := args.Get(0).(*service.GoogleUserInfo)
	return v, args.Error(1)
}

type MockProfiles struct{ mock.Mock }

func (m *MockProfiles) Profile(ctx context.Context, userID uint, page int) (*service.ProfileView, error) {
	args := m.Called(ctx, userID, page)
	v, _ := args.Get(0).(*service.ProfileView)
	return v, args.Error(1)
}

func (m *MockProfiles) ElevateTier(ctx context.Context, userID uint, input service.PersonalDataInput) error {
	return m.Called(ctx, userID, input).Error(0)
}

func (m *MockProfiles) ExportHistory(ctx context.Context, userID uint, w io.Writer) error {
	args := m.Called(ctx, userID, w)
	if fn, ok := args.Get(0).(func(io.Writer) error); ok {
		return fn(w)
	}
	return args.Error(0)
}

type MockTokenIssuer struct{ mock.Mock }

func (m *MockTokenIssuer) GenerateToken(user *entity.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}
