package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt cost bounds accepted from BCRYPT_COST
const (
	MinBcryptCost     = 10
	MaxBcryptCost     = 14
	DefaultBcryptCost = 12
)

// PasswordConfig holds configuration for password hashing and verification
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional server-side secret appended before hashing
}

// NewPasswordConfig reads the password configuration from the process environment
func NewPasswordConfig() (*PasswordConfig, error) {
	return PasswordConfigFromEnv(os.LookupEnv)
}

// PasswordConfigFromEnv reads BCRYPT_COST (default 12) and the optional
// PASSWORD_PEPPER through lookup.
func PasswordConfigFromEnv(lookup func(string) (string, bool)) (*PasswordConfig, error) {
	cost := DefaultBcryptCost
	if v, ok := lookup("BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cost = n
	}
	pepper, _ := lookup("PASSWORD_PEPPER")

	cfg := &PasswordConfig{BcryptCost: cost, Pepper: pepper}
	if cfg.BcryptCost < MinBcryptCost || cfg.BcryptCost > MaxBcryptCost {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be %d-%d)", cfg.BcryptCost, MinBcryptCost, MaxBcryptCost)
	}
	return cfg, nil
}

func (c *PasswordConfig) peppered(pw string) []byte {
	return []byte(pw + c.Pepper)
}

// HashPassword hashes a password with bcrypt
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(c.peppered(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), c.peppered(pw)) == nil
}
