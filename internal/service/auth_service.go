package service

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/praekeltfoundation/healthcheckbot/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService validates the JWTs the hosting framework attaches to webhook
// calls. With no secret configured, validation is disabled.
type AuthService struct {
	jwtSecret []byte
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret)}
}

// Enabled reports whether webhook calls must carry a token.
func (s *AuthService) Enabled() bool {
	return len(s.jwtSecret) > 0
}

// ValidateToken validates a webhook JWT and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.WebhookClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.WebhookClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.WebhookClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
