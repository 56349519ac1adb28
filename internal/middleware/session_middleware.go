package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextQuizSession is the context key holding the quiz session id
const ContextQuizSession = "quiz_session_id"

// QuizSessionCookie is the cookie identifying a browser's quiz attempt
const QuizSessionCookie = "quiz_session"

// QuizSession makes sure every request carries a quiz session id, issuing
// a random one in an HttpOnly cookie when missing
func QuizSession(maxAgeSeconds int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(QuizSessionCookie)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(QuizSessionCookie, id, maxAgeSeconds, "/", "", secure, true)
		}
		c.Set(ContextQuizSession, id)
		c.Next()
	}
}

// QuizSessionID returns the quiz session id set by QuizSession
func QuizSessionID(c *gin.Context) string {
	return c.GetString(ContextQuizSession)
}
