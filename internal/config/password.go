package config

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Accepted bcrypt work factors.
const (
	MinBcryptCost = 10
	MaxBcryptCost = 14
)

// PasswordConfig hashes and verifies account passwords.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string

	dummyOnce sync.Once
	dummyHash []byte
}

// Passwords derives the password hashing settings.
func (c *Config) Passwords() (*PasswordConfig, error) {
	cost := c.Auth.BcryptCost
	if cost < MinBcryptCost || cost > MaxBcryptCost {
		return nil, fmt.Errorf("config error: auth.bcrypt_cost must be %d-%d, got %d", MinBcryptCost, MaxBcryptCost, cost)
	}
	return &PasswordConfig{BcryptCost: cost, Pepper: c.Auth.Pepper}, nil
}

func (c *PasswordConfig) peppered(pw string) []byte {
	return []byte(pw + c.Pepper)
}

// HashPassword returns the bcrypt hash of pw plus pepper. Inputs over 72 bytes
// are rejected by bcrypt.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(c.peppered(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), c.peppered(pw)) == nil
}

// VerifyDummy costs as much as a real VerifyPassword. Login calls it for
// unknown emails so timing does not reveal which accounts exist.
func (c *PasswordConfig) VerifyDummy(pw string) {
	c.dummyOnce.Do(func() {
		c.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), c.BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(c.dummyHash, c.peppered(pw))
}
