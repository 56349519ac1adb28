package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
	"github.com/sousamj2/explicolivais/internal/service"
)

// errorStatus maps service errors to a status code and a stable error_type.
// Order matters: specific service errors come before the generic sentinels
// they may also wrap.
var errorStatus = []struct {
	err    error
	status int
	kind   string
}{
	{service.ErrQuizSessionNotFound, http.StatusNotFound, "quiz_session_not_found"},
	{service.ErrQuestionOutOfRange, http.StatusBadRequest, "question_out_of_range"},
	{service.ErrNoQuestions, http.StatusNotFound, "no_questions_available"},
	{service.ErrInvalidNavigation, http.StatusBadRequest, "invalid_navigation_action"},
	{service.ErrClaimUnresolvedQuestion, http.StatusConflict, "claim_unresolved_question"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "invalid_email"},
	{service.ErrEmailBlacklisted, http.StatusForbidden, "email_blacklisted"},
	{service.ErrRegistrationPending, http.StatusConflict, "registration_pending"},
	{service.ErrInvalidToken, http.StatusNotFound, "invalid_or_expired_token"},
	{service.ErrUserExists, http.StatusConflict, "user_exists"},
	{service.ErrUsernameTaken, http.StatusConflict, "username_taken"},
	{service.ErrSignupRequired, http.StatusNotFound, "signup_required"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrPasswordSignInDisabled, http.StatusUnauthorized, "password_signin_disabled"},
	{service.ErrGoogleTokenVerificationFailed, http.StatusUnauthorized, "google_token_verification_failed"},
	{apperrors.ErrValidation, http.StatusUnprocessableEntity, "validation_failed"},
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict"},
	{apperrors.ErrExpiredToken, http.StatusUnauthorized, "token_expired"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// handleError writes the JSON error response for err. Unknown errors are
// logged and hidden behind a generic 500.
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationErrors
	if errors.As(err, &verr) {
		details := make([]string, 0, len(verr.Errs))
		for _, e := range verr.Errs {
			details = append(details, e.Error())
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      err.Error(),
			"error_type": "validation_failed",
			"details":    details,
		})
		return
	}

	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": err.Error(), "error_type": m.kind})
			return
		}
	}

	if errors.Is(err, apperrors.ErrStorage) {
		logger.Error("Storage failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Result storage unavailable", "error_type": "storage_error"})
		return
	}
	logger.Error("Internal server error", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "bad_request"})
}
