package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie names besides the session and quiz cookies
const (
	oauthStateCookie   = "oauth_state"
	signUpTicketCookie = "signup_ticket"
)

// CookieConfig describes the session cookie handed out at sign in
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

func setCookie(c *gin.Context, cfg CookieConfig, name, value string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(maxAge.Seconds()), "/", "", cfg.Secure, true)
}

func clearCookie(c *gin.Context, cfg CookieConfig, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", cfg.Secure, true)
}
