package service

import "errors"

// Service level errors. Handlers map them to stable error_type values.
var (
	ErrClaimUnresolvedQuestion = errors.New("claim_unresolved_question")
	ErrQuizSessionNotFound     = errors.New("quiz_session_not_found")
	ErrQuestionOutOfRange      = errors.New("question_out_of_range")
	ErrNoQuestions             = errors.New("no_questions_available")
	ErrInvalidNavigation       = errors.New("invalid_navigation_action")

	ErrInvalidEmail        = errors.New("invalid_email")
	ErrEmailBlacklisted    = errors.New("email_blacklisted")
	ErrRegistrationPending = errors.New("registration_pending")
	ErrInvalidToken        = errors.New("invalid_or_expired_token")
	ErrUserExists          = errors.New("user_exists")
	ErrUsernameTaken       = errors.New("username_taken")

	ErrInvalidNIF     = errors.New("invalid_nif")
	ErrInvalidPhone   = errors.New("invalid_phone")
	ErrDuplicateNIF   = errors.New("duplicate_nif")
	ErrDuplicatePhone = errors.New("duplicate_phone")
)
