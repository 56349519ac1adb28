package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/handler/dto"
	"github.com/sousamj2/explicolivais/internal/middleware"
)

// QuizHandler serves the quiz flow. Every route expects the quiz session
// middleware; sign in is optional.
type QuizHandler struct {
	quiz   QuizRunner
	logger *zap.Logger
}

func NewQuizHandler(quiz QuizRunner, logger *zap.Logger) *QuizHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizHandler{quiz: quiz, logger: logger}
}

// Start draws a new question set for the session
func (h *QuizHandler) Start(c *gin.Context) {
	var req dto.StartQuizRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	session, err := h.quiz.Start(c.Request.Context(), middleware.QuizSessionID(c), req.Year)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.StartQuizResponse{
		TotalQuestions: session.Total(),
		Year:           session.Config.Year,
		Next:           0,
	})
}

// Question returns question :num (0-based)
func (h *QuizHandler) Question(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("num"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question number", "error_type": "bad_request"})
		return
	}

	view, err := h.quiz.Question(c.Request.Context(), middleware.QuizSessionID(c), n)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Answer stores the selection for one question
func (h *QuizHandler) Answer(c *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.quiz.SubmitAnswer(c.Request.Context(), middleware.QuizSessionID(c), *req.Index, req.Selected); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// Navigate saves the optional selection and resolves the next question
func (h *QuizHandler) Navigate(c *gin.Context) {
	var req dto.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	sessionID := middleware.QuizSessionID(c)

	if req.Selected != nil {
		if err := h.quiz.SubmitAnswer(ctx, sessionID, req.Current, req.Selected); err != nil {
			handleError(c, h.logger, err)
			return
		}
	}

	nav, err := h.quiz.Navigate(ctx, sessionID, req.Action, req.Current)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nav)
}

// Finish scores the attempt. Signed-in users get it in their history,
// everyone else gets an anonymous result valid for a limited time.
func (h *QuizHandler) Finish(c *gin.Context) {
	var userID *uint
	if id, ok := middleware.UserID(c); ok {
		userID = &id
	}

	res, err := h.quiz.Finish(c.Request.Context(), middleware.QuizSessionID(c), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Results replays a stored anonymous result
func (h *QuizHandler) Results(c *gin.Context) {
	view, err := h.quiz.ViewAnonymous(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Restart drops the current attempt
func (h *QuizHandler) Restart(c *gin.Context) {
	if err := h.quiz.Restart(c.Request.Context(), middleware.QuizSessionID(c)); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restarted": true})
}
