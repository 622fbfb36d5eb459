package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
)

const (
	MinPasswordLength = 8
	// bcrypt only reads the first 72 bytes of its input.
	MaxPasswordBytes = 72
)

type CredentialHasher struct {
	cost int
}

func NewCredentialHasher(cost int) CredentialHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return CredentialHasher{cost: cost}
}

func (h CredentialHasher) Hash(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", commonErrors.ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return "", commonErrors.ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed hashing password with error=%w", err)
	}
	return string(hashed), nil
}

func (h CredentialHasher) Compare(hashed string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return commonErrors.ErrPasswordMismatch
	}
	return fmt.Errorf("failed comparing password with error=%w", err)
}
