package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultJWTIssuer is the iss claim written into access tokens
const DefaultJWTIssuer = "hirely"

// JWTConfig holds configuration for access token signing and validation
type JWTConfig struct {
	Secret          string
	Issuer          string
	ExpirationHours int
}

// NewJWTConfig reads the JWT configuration from the process environment
func NewJWTConfig() (*JWTConfig, error) {
	return JWTConfigFromEnv(os.LookupEnv)
}

// JWTConfigFromEnv reads JWT_SECRET (required), JWT_EXPIRATION_HOURS
// (default 24) and JWT_ISSUER (default "hirely") through lookup.
func JWTConfigFromEnv(lookup func(string) (string, bool)) (*JWTConfig, error) {
	secret, _ := lookup("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	hours := 24
	if v, ok := lookup("JWT_EXPIRATION_HOURS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		hours = n
	}

	issuer := DefaultJWTIssuer
	if v, ok := lookup("JWT_ISSUER"); ok && v != "" {
		issuer = v
	}

	cfg := &JWTConfig{Secret: secret, Issuer: issuer, ExpirationHours: hours}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the secret and expiration
func (c *JWTConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

// Expiration is the lifetime of an access token
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}
