package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	"github.com/sousamj2/explicolivais/internal/domain/repository"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

// SignUpInput holds the fields of a new tier-1 account
type SignUpInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// RegistrationService runs the email confirmation flow that precedes sign up.
// Pending requests live in a TTL cache under three keys: the token, the
// email and the client IP.
type RegistrationService struct {
	userRepo  repository.UserRepository
	blacklist repository.BlacklistRepository
	pending   repository.TTLCache
	email     EmailService
	baseURL   string
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService creates a RegistrationService. baseURL is the
// public origin used in the emailed links.
func NewRegistrationService(
	userRepo repository.UserRepository,
	blacklist repository.BlacklistRepository,
	pending repository.TTLCache,
	email EmailService,
	baseURL string,
	logger *zap.Logger,
) (*RegistrationService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if blacklist == nil {
		return nil, fmt.Errorf("blacklist repository is required")
	}
	if pending == nil {
		return nil, fmt.Errorf("pending registration cache is required")
	}
	if email == nil {
		return nil, fmt.Errorf("email service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		userRepo:  userRepo,
		blacklist: blacklist,
		pending:   pending,
		email:     email,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
		now:       time.Now,
	}, nil
}

func tokenKey(token string) string { return "token:" + token }
func emailKey(email string) string { return "email:" + email }
func ipKey(ip string) string       { return "ip:" + ip }
func ticketKey(t string) string     { return "signup:" + t }

// RequestConfirmation validates the address, refuses blacklisted or already
// pending requests, and emails confirm and unsubscribe links.
func (s *RegistrationService) RequestConfirmation(ctx context.Context, email, ip string) (*entity.PendingRegistration, error) {
	email = normalizeEmail(email)
	ip = strings.TrimSpace(ip)
	if email == "" || !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	blocked, err := s.blacklist.IsEmailBlacklisted(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email blacklist: %w", err)
	}
	if blocked {
		if ip != "" {
			if err := s.blacklist.AddIP(ip); err != nil {
				s.logger.Error("Failed to blacklist IP", zap.String("ip", ip), zap.Error(err))
			}
		}
		return nil, ErrEmailBlacklisted
	}
	if ip != "" {
		blocked, err = s.blacklist.IsIPBlacklisted(ip)
		if err != nil {
			return nil, fmt.Errorf("failed to check ip blacklist: %w", err)
		}
		if blocked {
			return nil, ErrEmailBlacklisted
		}
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	keys := []string{emailKey(email)}
	if ip != "" {
		keys = append(keys, ipKey(ip))
	}
	for _, key := range keys {
		exists, err := s.pending.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to check pending registrations: %w", err)
		}
		if exists {
			return nil, ErrRegistrationPending
		}
	}

	token, err := generateRandomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate registration token: %w", err)
	}
	reg := &entity.PendingRegistration{Token: token, Email: email, IP: ip, CreatedAt: s.now()}
	if err := s.pending.Set(ctx, tokenKey(token), reg); err != nil {
		return nil, fmt.Errorf("failed to store pending registration: %w", err)
	}
	for _, key := range keys {
		if err := s.pending.Set(ctx, key, token); err != nil {
			return nil, fmt.Errorf("failed to store pending registration: %w", err)
		}
	}

	confirmURL := s.baseURL + "/api/register/confirm/" + url.PathEscape(token)
	unsubscribeURL := s.baseURL + "/api/register/unsubscribe/" + url.PathEscape(token)
	if err := s.email.SendRegistrationConfirmation(ctx, email, confirmURL, unsubscribeURL, token); err != nil {
		s.drop(ctx, reg)
		return nil, fmt.Errorf("failed to send confirmation email: %w", err)
	}

	s.logger.Info("Registration confirmation sent", zap.String("email", MaskEmail(email)))
	return reg, nil
}

// Confirm consumes a token and returns the confirmed email
func (s *RegistrationService) Confirm(ctx context.Context, token string) (string, error) {
	reg, err := s.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	s.drop(ctx, reg)
	return reg.Email, nil
}

// Unsubscribe blacklists the email and IP of a pending request and drops it
func (s *RegistrationService) Unsubscribe(ctx context.Context, token string) error {
	reg, err := s.lookup(ctx, token)
	if err != nil {
		return err
	}
	if err := s.blacklist.AddEmail(reg.Email); err != nil {
		return fmt.Errorf("failed to blacklist email: %w", err)
	}
	if reg.IP != "" {
		if err := s.blacklist.AddIP(reg.IP); err != nil {
			return fmt.Errorf("failed to blacklist ip: %w", err)
		}
	}
	s.drop(ctx, reg)
	s.logger.Info("Email unsubscribed", zap.String("email", MaskEmail(reg.Email)))
	return nil
}

// SignUp creates a tier-1 account. Username defaults to the email and an
// account without password is marked as a Google account.
func (s *RegistrationService) SignUp(ctx context.Context, input SignUpInput) (*entity.User, error) {
	email := normalizeEmail(input.Email)
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = email
	}
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	user := &entity.User{
		Username:      username,
		Email:         email,
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Password:      input.Password,
		GoogleAccount: input.Password == "",
		Tier:          entity.TierBasic,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// lost a race with another sign up for the same email or username
			return nil, fmt.Errorf("%w: %w", ErrUserExists, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("User signed up", zap.Uint("user_id", user.ID), zap.Bool("google_account", user.GoogleAccount))
	return user, nil
}

// IssueSignUpTicket records that email was proven, either by a confirmed
// link or by a Google sign in, and returns a one-time ticket for SignUp.
func (s *RegistrationService) IssueSignUpTicket(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if !ValidEmail(email) {
		return "", ErrInvalidEmail
	}
	ticket, err := generateRandomHex(24)
	if err != nil {
		return "", fmt.Errorf("failed to generate signup ticket: %w", err)
	}
	if err := s.pending.Set(ctx, ticketKey(ticket), email); err != nil {
		return "", fmt.Errorf("failed to store signup ticket: %w", err)
	}
	return ticket, nil
}

// SignUpTicketEmail returns the email a ticket vouches for without
// consuming it, so a failed SignUp can be retried with the same ticket.
func (s *RegistrationService) SignUpTicketEmail(ctx context.Context, ticket string) (string, error) {
	if ticket == "" {
		return "", ErrInvalidToken
	}
	var email string
	if err := s.pending.Get(ctx, ticketKey(ticket), &email); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return email, nil
}

// RedeemSignUpTicket consumes a ticket and returns the email it vouches for
func (s *RegistrationService) RedeemSignUpTicket(ctx context.Context, ticket string) (string, error) {
	email, err := s.SignUpTicketEmail(ctx, ticket)
	if err != nil {
		return "", err
	}
	if err := s.pending.Delete(ctx, ticketKey(ticket)); err != nil {
		s.logger.Warn("Failed to drop signup ticket", zap.Error(err))
	}
	return email, nil
}

func (s *RegistrationService) lookup(ctx context.Context, token string) (*entity.PendingRegistration, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var reg entity.PendingRegistration
	if err := s.pending.Get(ctx, tokenKey(token), &reg); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &reg, nil
}

func (s *RegistrationService) drop(ctx context.Context, reg *entity.PendingRegistration) {
	keys := []string{tokenKey(reg.Token), emailKey(reg.Email)}
	if reg.IP != "" {
		keys = append(keys, ipKey(reg.IP))
	}
	for _, key := range keys {
		if err := s.pending.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to drop pending registration key", zap.String("key", key), zap.Error(err))
		}
	}
}

func generateRandomHex(byteLen int) (string, error) {
	if byteLen <= 0 {
		byteLen = 16
	}
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
