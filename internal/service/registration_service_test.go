package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
	"github.com/sousamj2/explicolivais/internal/repository/memory"
)

type registrationFixture struct {
	svc       *RegistrationService
	users     *MockUserRepo
	blacklist *MockBlacklistRepo
	email     *MockEmailService
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	users := new(MockUserRepo)
	blacklist := new(MockBlacklistRepo)
	email := new(MockEmailService)
	pending, err := memory.NewCacheRepo(1000, time.Hour)
	require.NoError(t, err)
	svc, err := NewRegistrationService(users, blacklist, pending, email, "https://explicolivais.pt/", nil)
	require.NoError(t, err)
	return &registrationFixture{svc: svc, users: users, blacklist: blacklist, email: email}
}

func (f *registrationFixture) allowAll(email, ip string) {
	f.blacklist.On("IsEmailBlacklisted", email).Return(false, nil)
	f.blacklist.On("IsIPBlacklisted", ip).Return(false, nil)
	f.users.On("GetByEmail", email).Return(nil, apperrors.ErrNotFound)
}

func TestRegistrationService_RequestAndConfirm(t *testing.T) {
	// Arrange
	f := newRegistrationFixture(t)
	ctx := context.Background()
	f.allowAll("ana@example.com", "10.0.0.1")
	f.email.On("SendRegistrationConfirmation", mock.Anything, "ana@example.com",
		mock.MatchedBy(func(u string) bool { return strings.HasPrefix(u, "https://explicolivais.pt/api/register/confirm/") }),
		mock.MatchedBy(func(u string) bool { return strings.HasPrefix(u, "https://explicolivais.pt/api/register/unsubscribe/") }),
		mock.Anything,
	).Return(nil)

	// Act
	reg, err := f.svc.RequestConfirmation(ctx, "  Ana@Example.com ", "10.0.0.1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", reg.Email)
	assert.Len(t, reg.Token, 64)

	email, err := f.svc.Confirm(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", email)

	_, err = f.svc.Confirm(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "a token is consumed once")
	f.email.AssertExpectations(t)
}

func TestRegistrationService_PendingByEmailOrIP(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	f.allowAll("ana@example.com", "10.0.0.1")
	f.allowAll("rui@example.com", "10.0.0.1")
	f.allowAll("ana@example.com", "10.0.0.2")
	f.email.On("SendRegistrationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.RequestConfirmation(ctx, "ana@example.com", "10.0.0.1")
	require.NoError(t, err)

	_, err = f.svc.RequestConfirmation(ctx, "rui@example.com", "10.0.0.1")
	assert.ErrorIs(t, err, ErrRegistrationPending, "same IP")

	_, err = f.svc.RequestConfirmation(ctx, "ana@example.com", "10.0.0.2")
	assert.ErrorIs(t, err, ErrRegistrationPending, "same email")
}

func TestRegistrationService_BlacklistedEmailBlocksIP(t *testing.T) {
	f := newRegistrationFixture(t)
	f.blacklist.On("IsEmailBlacklisted", "spam@example.com").Return(true, nil)
	f.blacklist.On("AddIP", "10.0.0.9").Return(nil)

	_, err := f.svc.RequestConfirmation(context.Background(), "spam@example.com", "10.0.0.9")

	assert.ErrorIs(t, err, ErrEmailBlacklisted)
	f.blacklist.AssertCalled(t, "AddIP", "10.0.0.9")
	f.email.AssertNotCalled(t, "SendRegistrationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_InvalidEmail(t *testing.T) {
	f := newRegistrationFixture(t)

	_, err := f.svc.RequestConfirmation(context.Background(), "not-an-email", "10.0.0.1")

	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestRegistrationService_SendFailureDropsPending(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	f.allowAll("ana@example.com", "10.0.0.1")
	f.email.On("SendRegistrationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("resend down")).Once()
	f.email.On("SendRegistrationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	_, err := f.svc.RequestConfirmation(ctx, "ana@example.com", "10.0.0.1")
	require.Error(t, err)

	_, err = f.svc.RequestConfirmation(ctx, "ana@example.com", "10.0.0.1")
	assert.NoError(t, err, "a failed send must not leave the request pending")
}

func TestRegistrationService_Unsubscribe(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	f.allowAll("ana@example.com", "10.0.0.1")
	f.email.On("SendRegistrationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.blacklist.On("AddEmail", "ana@example.com").Return(nil)
	f.blacklist.On("AddIP", "10.0.0.1").Return(nil)
	reg, err := f.svc.RequestConfirmation(ctx, "ana@example.com", "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Unsubscribe(ctx, reg.Token))

	f.blacklist.AssertExpectations(t)
	_, err = f.svc.Confirm(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegistrationService_SignUp(t *testing.T) {
	f := newRegistrationFixture(t)
	f.users.On("GetByEmail", "ana@example.com").Return(nil, apperrors.ErrNotFound)
	f.users.On("GetByUsername", "ana@example.com").Return(nil, apperrors.ErrNotFound)
	f.users.On("Create", mock.MatchedBy(func(u *entity.User) bool {
		return u.Username == "ana@example.com" && u.GoogleAccount && u.Tier == entity.TierBasic && u.FirstName == "Ana"
	})).Return(nil)

	user, err := f.svc.SignUp(context.Background(), SignUpInput{Email: "ana@example.com", FirstName: " Ana "})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	f.users.AssertExpectations(t)
}

func TestRegistrationService_SignUpExisting(t *testing.T) {
	f := newRegistrationFixture(t)
	f.users.On("GetByEmail", "ana@example.com").Return(&entity.User{ID: 1}, nil)

	_, err := f.svc.SignUp(context.Background(), SignUpInput{Email: "ana@example.com", Password: "secret"})

	assert.ErrorIs(t, err, ErrUserExists)
	f.users.AssertNotCalled(t, "Create", mock.Anything)
}

func TestRegistrationService_SignUpUsernameTaken(t *testing.T) {
	f := newRegistrationFixture(t)
	f.users.On("GetByEmail", "rui@example.com").Return(nil, apperrors.ErrNotFound)
	f.users.On("GetByUsername", "rui").Return(&entity.User{ID: 3, Username: "rui"}, nil)

	_, err := f.svc.SignUp(context.Background(), SignUpInput{Email: "rui@example.com", Username: " rui "})

	assert.ErrorIs(t, err, ErrUsernameTaken)
	f.users.AssertNotCalled(t, "Create", mock.Anything)
}

func TestRegistrationService_SignUpDuplicateKeyOnCreate(t *testing.T) {
	f := newRegistrationFixture(t)
	f.users.On("GetByEmail", "rui@example.com").Return(nil, apperrors.ErrNotFound)
	f.users.On("GetByUsername", "rui").Return(nil, apperrors.ErrNotFound)
	f.users.On("Create", mock.Anything).Return(apperrors.ErrConflict)

	_, err := f.svc.SignUp(context.Background(), SignUpInput{Email: "rui@example.com", Username: "rui"})

	assert.ErrorIs(t, err, ErrUserExists)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRegistrationService_SignUpTicketEmailKeepsTicket(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	ticket, err := f.svc.IssueSignUpTicket(ctx, "rui@example.com")
	require.NoError(t, err)

	first, err := f.svc.SignUpTicketEmail(ctx, ticket)
	require.NoError(t, err)
	redeemed, err := f.svc.RedeemSignUpTicket(ctx, ticket)
	require.NoError(t, err)

	assert.Equal(t, "rui@example.com", first)
	assert.Equal(t, "rui@example.com", redeemed)
	_, err = f.svc.SignUpTicketEmail(ctx, ticket)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegistrationService_SignUpTicket(t *testing.T) {
	// Arrange
	f := newRegistrationFixture(t)
	ctx := context.Background()

	// Act
	ticket, err := f.svc.IssueSignUpTicket(ctx, " Rui@Example.com")
	require.NoError(t, err)
	email, redeemErr := f.svc.RedeemSignUpTicket(ctx, ticket)
	_, secondErr := f.svc.RedeemSignUpTicket(ctx, ticket)

	// Assert
	require.NoError(t, redeemErr)
	assert.Equal(t, "rui@example.com", email)
	assert.ErrorIs(t, secondErr, ErrInvalidToken)

	_, err = f.svc.IssueSignUpTicket(ctx, "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = f.svc.RedeemSignUpTicket(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
