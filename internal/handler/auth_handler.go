package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/handler/dto"
	"github.com/sousamj2/explicolivais/internal/middleware"
	"github.com/sousamj2/explicolivais/internal/service"
)

const oauthStateTTL = 10 * time.Minute

// AuthHandler signs users in with Google or a password and claims the
// anonymous quiz left in their browser session
type AuthHandler struct {
	auth         Authenticator
	google       GoogleProvider
	registration Registrar
	claims       *pendingClaims
	cookie       CookieConfig
	ticketTTL    time.Duration
	logger       *zap.Logger
}

// NewAuthHandler creates an AuthHandler. ticketTTL bounds the signup
// ticket handed to unknown Google users.
func NewAuthHandler(
	auth Authenticator,
	google GoogleProvider,
	registration Registrar,
	quiz QuizRunner,
	claims Claimer,
	cookie CookieConfig,
	ticketTTL time.Duration,
	logger *zap.Logger,
) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ticketTTL <= 0 {
		ticketTTL = time.Hour
	}
	return &AuthHandler{
		auth:         auth,
		google:       google,
		registration: registration,
		claims:       &pendingClaims{quiz: quiz, claims: claims, logger: logger},
		cookie:       cookie,
		ticketTTL:    ticketTTL,
		logger:       logger,
	}
}

// GoogleLogin redirects to the Google consent page
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	setCookie(c, h.cookie, oauthStateCookie, state, oauthStateTTL)
	c.Redirect(http.StatusFound, h.google.AuthURL(state))
}

// GoogleCallback finishes the OAuth flow. Unknown users receive a signup
// ticket cookie and a 404 with error_type signup_required.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "OAuth state mismatch", "error_type": "invalid_state"})
		return
	}
	clearCookie(c, h.cookie, oauthStateCookie)

	if reason := c.Query("error"); reason != "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": reason, "error_type": "oauth_denied"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code", "error_type": "bad_request"})
		return
	}

	ctx := c.Request.Context()
	info, err := h.google.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("Google code exchange failed", zap.Error(err))
		handleError(c, h.logger, err)
		return
	}

	res, err := h.auth.SignInGoogle(ctx, info, c.ClientIP())
	if errors.Is(err, service.ErrSignupRequired) {
		ticket, terr := h.registration.IssueSignUpTicket(ctx, info.Email)
		if terr != nil {
			handleError(c, h.logger, terr)
			return
		}
		setCookie(c, h.cookie, signUpTicketCookie, ticket, h.ticketTTL)
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "No account for this email, sign up first",
			"error_type": "signup_required",
			"email":      info.Email,
			"first_name": info.GivenName,
			"last_name":  info.FamilyName,
		})
		return
	}
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	h.completeSignIn(c, res)
}

// SignIn authenticates with email and password
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.auth.SignInPassword(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	h.completeSignIn(c, res)
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	clearCookie(c, h.cookie, h.cookie.Name)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// completeSignIn sets the session cookie and claims any pending anonymous
// attempt. A failed claim does not undo the sign in.
func (h *AuthHandler) completeSignIn(c *gin.Context, res *service.SignInResult) {
	setCookie(c, h.cookie, h.cookie.Name, res.Token, h.cookie.MaxAge)

	claim, err := h.claims.run(c.Request.Context(), middleware.QuizSessionID(c), res.User.ID)
	if err != nil {
		h.logger.Warn("Claim after sign in failed", zap.Uint("user_id", res.User.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  dto.NewUserResponse(res.User),
		"token": res.Token,
		"claim": claim,
	})
}
