package handler

import (
	"context"
	"io"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	"github.com/sousamj2/explicolivais/internal/service"
	"github.com/sousamj2/explicolivais/internal/service/scoring"
)

// QuizRunner is the part of service.QuizService the handlers use
type QuizRunner interface {
	Start(ctx context.Context, sessionID string, year int) (*service.QuizSession, error)
	Session(ctx context.Context, sessionID string) (*service.QuizSession, error)
	Question(ctx context.Context, sessionID string, n int) (*service.QuestionView, error)
	SubmitAnswer(ctx context.Context, sessionID string, n int, selected []string) error
	Navigate(ctx context.Context, sessionID, action string, current int) (*service.Navigation, error)
	Finish(ctx context.Context, sessionID string, userID *uint) (*service.FinishResult, error)
	ViewAnonymous(ctx context.Context, id string) (*service.AnonymousView, error)
	Restart(ctx context.Context, sessionID string) error
	ForgetAnonymous(ctx context.Context, sessionID string) error
}

// Claimer moves an anonymous attempt into a user's history
type Claimer interface {
	Claim(ctx context.Context, userID uint, anonymousID string, cfg service.QuizConfig,
		questionNumbers []int, rawAnswers scoring.Answers) (bool, error)
}

// Registrar runs email confirmation and account creation
type Registrar interface {
	RequestConfirmation(ctx context.Context, email, ip string) (*entity.PendingRegistration, error)
	Confirm(ctx context.Context, token string) (string, error)
	Unsubscribe(ctx context.Context, token string) error
	SignUp(ctx context.Context, input service.SignUpInput) (*entity.User, error)
	IssueSignUpTicket(ctx context.Context, email string) (string, error)
	SignUpTicketEmail(ctx context.Context, ticket string) (string, error)
	RedeemSignUpTicket(ctx context.Context, ticket string) (string, error)
}

// Authenticator signs existing users in
type Authenticator interface {
	SignInGoogle(ctx context.Context, info *service.GoogleUserInfo, ip string) (*service.SignInResult, error)
	SignInPassword(ctx context.Context, email, password, ip string) (*service.SignInResult, error)
}

// GoogleProvider runs the OAuth code flow
type GoogleProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*service.GoogleUserInfo, error)
}

// Profiles serves account pages
type Profiles interface {
	Profile(ctx context.Context, userID uint, page int) (*service.ProfileView, error)
	ElevateTier(ctx context.Context, userID uint, input service.PersonalDataInput) error
	ExportHistory(ctx context.Context, userID uint, w io.Writer) error
}

var (
	_ QuizRunner     = (*service.QuizService)(nil)
	_ Claimer        = (*service.ClaimService)(nil)
	_ Registrar      = (*service.RegistrationService)(nil)
	_ Authenticator  = (*service.AuthService)(nil)
	_ GoogleProvider = (*service.GoogleOAuthService)(nil)
	_ Profiles       = (*service.ProfileService)(nil)
)
