package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

const issuer = "explicolivais"

// JWTCustomClaims holds the session fields carried in the token
type JWTCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Tier   int    `json:"tier"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HMAC-signed session tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewJWTService creates a JWTService. expirationHrs <= 0 falls back to 24h.
func NewJWTService(secret string, expirationHrs int) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	return &JWTService{
		secret:     []byte(secret),
		expiration: time.Duration(expirationHrs) * time.Hour,
		now:        time.Now,
	}, nil
}

// Expiration returns the lifetime of issued tokens
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

// GenerateToken signs a session token for the user
func (s *JWTService) GenerateToken(user *entity.User) (string, error) {
	if user == nil || user.ID == 0 {
		return "", fmt.Errorf("user with id is required")
	}
	now := s.now()
	claims := &JWTCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Tier:   user.Tier,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry of a session token.
// Expired tokens yield apperrors.ErrExpiredToken, anything else invalid
// yields apperrors.ErrUnauthorized.
func (s *JWTService) ParseToken(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, fmt.Errorf("token is expired: %w", apperrors.ErrExpiredToken)
		}
		return nil, fmt.Errorf("invalid token: %v: %w", err, apperrors.ErrUnauthorized)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("invalid token: %w", apperrors.ErrUnauthorized)
	}
	return claims, nil
}
