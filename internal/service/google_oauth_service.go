package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sousamj2/explicolivais/internal/config"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUserInfo is the profile returned by Google's userinfo endpoint
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// GoogleOAuthService wraps the authorization code flow against Google
type GoogleOAuthService struct {
	oauth2Config *oauth2.Config
	userInfoURL  string
}

// GoogleOption configures a GoogleOAuthService
type GoogleOption func(*GoogleOAuthService)

// WithGoogleEndpoint replaces the Google OAuth endpoints
func WithGoogleEndpoint(endpoint oauth2.Endpoint, userInfoURL string) GoogleOption {
	return func(s *GoogleOAuthService) {
		s.oauth2Config.Endpoint = endpoint
		s.userInfoURL = userInfoURL
	}
}

func NewGoogleOAuthService(cfg config.GoogleOAuthConfig, opts ...GoogleOption) (*GoogleOAuthService, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	if strings.TrimSpace(cfg.RedirectURL) == "" {
		return nil, fmt.Errorf("google redirect url is required")
	}
	s := &GoogleOAuthService{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AuthURL returns the consent page URL carrying state
func (s *GoogleOAuthService) AuthURL(state string) string {
	return s.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's Google profile
func (s *GoogleOAuthService) Exchange(ctx context.Context, code string) (*GoogleUserInfo, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: authorization code is required", ErrGoogleTokenVerificationFailed)
	}
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed: %v", ErrGoogleTokenVerificationFailed, err)
	}

	client := s.oauth2Config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: userinfo status=%d body=%s", ErrGoogleTokenVerificationFailed, resp.StatusCode, string(body))
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	info.Email = normalizeEmail(info.Email)
	if info.Email == "" {
		return nil, fmt.Errorf("%w: email is missing in google profile", ErrGoogleTokenVerificationFailed)
	}
	return &info, nil
}
