package config

import (
	"fmt"
	"time"
)

// DefaultCookieName names the session cookie unless auth.cookie_name is set.
const DefaultCookieName = "session"

const minSecretLen = 16

// JWTConfig is what the session token service needs.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	CookieName      string
}

// Expiration is the session lifetime.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

// JWT derives the session token settings. A secret is only required by
// commands that issue sessions, so it is checked here rather than in Validate.
func (c *Config) JWT() (*JWTConfig, error) {
	a := c.Auth
	switch {
	case a.JWTSecret == "":
		return nil, fmt.Errorf("config error: auth.jwt_secret (JWT_SECRET) is required")
	case len(a.JWTSecret) < minSecretLen:
		return nil, fmt.Errorf("config error: auth.jwt_secret must be at least %d characters", minSecretLen)
	case a.SessionHours < 1:
		return nil, fmt.Errorf("config error: auth.session_hours must be at least 1, got %d", a.SessionHours)
	}
	cookie := a.CookieName
	if cookie == "" {
		cookie = DefaultCookieName
	}
	return &JWTConfig{Secret: a.JWTSecret, ExpirationHours: a.SessionHours, CookieName: cookie}, nil
}
