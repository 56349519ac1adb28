package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/handler/dto"
	"github.com/sousamj2/explicolivais/internal/middleware"
	"github.com/sousamj2/explicolivais/internal/service"
)

// RegistrationHandler serves email confirmation and account creation
type RegistrationHandler struct {
	registration Registrar
	tokens       service.TokenIssuer
	claims       *pendingClaims
	cookie       CookieConfig
	ticketTTL    time.Duration
	logger       *zap.Logger
}

func NewRegistrationHandler(
	registration Registrar,
	tokens service.TokenIssuer,
	quiz QuizRunner,
	claims Claimer,
	cookie CookieConfig,
	ticketTTL time.Duration,
	logger *zap.Logger,
) *RegistrationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ticketTTL <= 0 {
		ticketTTL = time.Hour
	}
	return &RegistrationHandler{
		registration: registration,
		tokens:       tokens,
		claims:       &pendingClaims{quiz: quiz, claims: claims, logger: logger},
		cookie:       cookie,
		ticketTTL:    ticketTTL,
		logger:       logger,
	}
}

// Register emails a confirmation link
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reg, err := h.registration.RequestConfirmation(c.Request.Context(), req.Email, c.ClientIP())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message":    "Confirmation email sent",
		"email":      service.MaskEmail(reg.Email),
		"expires_in": int(h.ticketTTL.Seconds()),
	})
}

// Confirm consumes the emailed token and hands out a signup ticket cookie
func (h *RegistrationHandler) Confirm(c *gin.Context) {
	ctx := c.Request.Context()
	email, err := h.registration.Confirm(ctx, c.Param("token"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	ticket, err := h.registration.IssueSignUpTicket(ctx, email)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	setCookie(c, h.cookie, signUpTicketCookie, ticket, h.ticketTTL)
	c.JSON(http.StatusOK, gin.H{"email": email, "next": "/api/signup"})
}

// Unsubscribe blacklists the address of the emailed token
func (h *RegistrationHandler) Unsubscribe(c *gin.Context) {
	if err := h.registration.Unsubscribe(c.Request.Context(), c.Param("token")); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You will not receive further emails"})
}

// SignUp creates the account vouched by the signup ticket cookie and signs
// the new user in
func (h *RegistrationHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ticket, err := c.Cookie(signUpTicketCookie)
	if err != nil || ticket == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Confirm your email first", "error_type": "signup_ticket_missing"})
		return
	}

	ctx := c.Request.Context()
	email, err := h.registration.SignUpTicketEmail(ctx, ticket)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	// the ticket survives a failed sign up so the user can fix the form
	user, err := h.registration.SignUp(ctx, service.SignUpInput{
		Email:     email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	if _, err := h.registration.RedeemSignUpTicket(ctx, ticket); err != nil {
		h.logger.Warn("Failed to redeem signup ticket", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	clearCookie(c, h.cookie, signUpTicketCookie)

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	setCookie(c, h.cookie, h.cookie.Name, token, h.cookie.MaxAge)

	claim, err := h.claims.run(ctx, middleware.QuizSessionID(c), user.ID)
	if err != nil {
		h.logger.Warn("Claim after sign up failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":  dto.NewUserResponse(user),
		"token": token,
		"claim": claim,
	})
}
