package app

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"pettech-backend/internal/repository"
)

// PasswordHasher decides how passwords are stored and matched.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password string) repository.PasswordCheck
}

// NewPasswordHasher returns the hasher for mode "plain" or "bcrypt".
func NewPasswordHasher(mode string) (PasswordHasher, error) {
	switch mode {
	case "", "plain":
		return plainPasswords{}, nil
	case "bcrypt":
		return bcryptPasswords{cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unsupported password mode: %s", mode)
	}
}

// plainPasswords stores the value verbatim and compares it byte for byte.
type plainPasswords struct{}

func (plainPasswords) Hash(password string) (string, error) { return password, nil }

func (plainPasswords) Check(password string) repository.PasswordCheck {
	return func(stored string) bool { return stored == password }
}

type bcryptPasswords struct {
	cost int
}

func (b bcryptPasswords) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", NewValidationError("password", "must be at most 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}
	return string(hash), nil
}

func (bcryptPasswords) Check(password string) repository.PasswordCheck {
	return func(stored string) bool {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
}
