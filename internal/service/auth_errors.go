package service

import "errors"

// Auth flow specific errors used by handlers for stable error_type mapping.
var (
	ErrSignupRequired                = errors.New("signup_required")
	ErrInvalidCredentials            = errors.New("invalid_credentials")
	ErrPasswordSignInDisabled        = errors.New("password_signin_disabled")
	ErrGoogleTokenVerificationFailed = errors.New("google_token_verification_failed")
)
