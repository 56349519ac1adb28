package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/handler/dto"
	"github.com/sousamj2/explicolivais/internal/middleware"
	"github.com/sousamj2/explicolivais/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProfileHandler serves the signed-in user's account. Routes require auth.
type ProfileHandler struct {
	profiles Profiles
	claims   *pendingClaims
	logger   *zap.Logger
	now      func() time.Time
}

func NewProfileHandler(profiles Profiles, quiz QuizRunner, claims Claimer, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{
		profiles: profiles,
		claims:   &pendingClaims{quiz: quiz, claims: claims, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// Profile returns the account and one page of quiz history (?page=N)
func (h *ProfileHandler) Profile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	view, err := h.profiles.Profile(c.Request.Context(), userID, page)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ElevateTier stores personal data and upgrades the account to tier 2
func (h *ProfileHandler) ElevateTier(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req dto.ElevateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	err := h.profiles.ElevateTier(c.Request.Context(), userID, service.PersonalDataInput{
		Address:    req.Address,
		Number:     req.Number,
		Floor:      req.Floor,
		Door:       req.Door,
		Notes:      req.Notes,
		ZipCode1:   req.ZipCode1,
		ZipCode2:   req.ZipCode2,
		CellNumber: req.CellNumber,
		NIF:        req.NIF,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": 2})
}

// ExportHistory downloads the quiz history as an XLSX workbook
func (h *ProfileHandler) ExportHistory(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.profiles.ExportHistory(c.Request.Context(), userID, &buf); err != nil {
		handleError(c, h.logger, err)
		return
	}
	filename := fmt.Sprintf("historico_%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Claim merges the anonymous attempt of this browser into the history
func (h *ProfileHandler) Claim(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	outcome, err := h.claims.run(c.Request.Context(), middleware.QuizSessionID(c), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	if outcome == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No anonymous quiz to claim", "error_type": "nothing_to_claim"})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *ProfileHandler) userID(c *gin.Context) (uint, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "token_missing"})
	}
	return id, ok
}
