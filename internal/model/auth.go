package model

import "github.com/golang-jwt/jwt/v5"

// WebhookClaims are the JWT claims the hosting framework signs its webhook
// calls with. The username identifies the calling service, not the end user.
type WebhookClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}
