package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	"github.com/sousamj2/explicolivais/internal/domain/repository"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

// TokenIssuer signs session tokens
type TokenIssuer interface {
	GenerateToken(user *entity.User) (string, error)
}

// SignInResult is a signed-in user with their session token
type SignInResult struct {
	User  *entity.User
	Token string
}

// AuthService signs existing users in with Google or a password
type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, logger *zap.Logger) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{userRepo: userRepo, tokens: tokens, logger: logger, now: time.Now}, nil
}

// SignInGoogle signs in the account registered under the Google email.
// An unknown email yields ErrSignupRequired.
func (s *AuthService) SignInGoogle(ctx context.Context, info *GoogleUserInfo, ip string) (*SignInResult, error) {
	if info == nil || info.Email == "" {
		return nil, fmt.Errorf("%w: google profile without email", ErrGoogleTokenVerificationFailed)
	}
	user, err := s.userRepo.GetByEmail(normalizeEmail(info.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrSignupRequired
		}
		return nil, err
	}
	return s.complete(user, ip)
}

// SignInPassword checks the password of an account created with one
func (s *AuthService) SignInPassword(ctx context.Context, email, password, ip string) (*SignInResult, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.HasPassword() {
		return nil, ErrPasswordSignInDisabled
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return s.complete(user, ip)
}

func (s *AuthService) complete(user *entity.User, ip string) (*SignInResult, error) {
	now := s.now()
	if err := s.userRepo.UpdateLastLogin(user.ID, now, ip); err != nil {
		s.logger.Warn("Failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
		user.LastLoginIP = ip
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	s.logger.Info("User signed in", zap.Uint("user_id", user.ID))
	return &SignInResult{User: user, Token: token}, nil
}
