package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/service"
)

// ClaimOutcome reports what happened to a pending anonymous attempt
type ClaimOutcome struct {
	Claimed  bool   `json:"claimed"`
	QuizUUID string `json:"quiz_uuid,omitempty"`
	Error    string `json:"error,omitempty"`
}

// pendingClaims merges the anonymous attempt remembered in a quiz session
// into the history of the user who just signed in
type pendingClaims struct {
	quiz   QuizRunner
	claims Claimer
	logger *zap.Logger
}

// run returns nil when the session holds nothing to claim. The pending id
// is cleared only after a successful claim.
func (p *pendingClaims) run(ctx context.Context, sessionID string, userID uint) (*ClaimOutcome, error) {
	session, err := p.quiz.Session(ctx, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrQuizSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !session.PendingClaim() {
		return nil, nil
	}

	id := session.AnonymousID
	claimed, err := p.claims.Claim(ctx, userID, id, session.Config, session.QuestionNumbers, session.Answers)
	if err != nil {
		return &ClaimOutcome{QuizUUID: id, Error: err.Error()}, err
	}
	if err := p.quiz.ForgetAnonymous(ctx, sessionID); err != nil {
		p.logger.Warn("Failed to clear claimed quiz from session", zap.String("quiz_uuid", id), zap.Error(err))
	}
	return &ClaimOutcome{Claimed: claimed, QuizUUID: id}, nil
}
