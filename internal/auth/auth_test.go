package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/config"
)

func TestTokenService(t *testing.T) {
	c := context.Background()
	userID := uuid.New()
	svc := NewTokenService(config.Application{SecretKey: "secret", TokenTTL: time.Hour})

	token, expiresAt, err := svc.Issue(c, userID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	actual, err := svc.Verify(c, token)
	require.NoError(t, err)
	assert.Equal(t, userID, actual)

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name:  "given garbage token should return ErrTokenInvalid",
			token: func() string { return "not-a-token" },
		},
		{
			name: "given token signed with another key should return ErrTokenInvalid",
			token: func() string {
				other := NewTokenService(config.Application{SecretKey: "other", TokenTTL: time.Hour})
				token, _, err := other.Issue(c, userID)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "given expired token should return ErrTokenInvalid",
			token: func() string {
				expired := NewTokenService(config.Application{SecretKey: "secret", TokenTTL: time.Hour})
				expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
				token, _, err := expired.Issue(c, userID)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "given token with another audience should return ErrTokenInvalid",
			token: func() string {
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
					Audience:  jwt.ClaimStrings{"someone-else"},
					Subject:   userID.String(),
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					IssuedAt:  jwt.NewNumericDate(time.Now()),
				}).SignedString([]byte("secret"))
				require.NoError(t, err)
				return token
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(c, tt.token())
			assert.ErrorIs(t, err, commonErrors.ErrTokenInvalid)
			assert.ErrorIs(t, err, commonErrors.ErrUnauthorized)
		})
	}
}

func TestCredentialHasher(t *testing.T) {
	hasher := NewCredentialHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hashed)
	assert.NoError(t, hasher.Compare(hashed, "correct horse"))
	assert.ErrorIs(t, hasher.Compare(hashed, "wrong horse"), commonErrors.ErrPasswordMismatch)

	_, err = hasher.Hash("short")
	assert.ErrorIs(t, err, commonErrors.ErrPasswordTooShort)
	assert.ErrorIs(t, err, commonErrors.ErrInvalidRequest)

	_, err = hasher.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, commonErrors.ErrPasswordTooLong)
}

func TestUserIDFromContext(t *testing.T) {
	_, err := UserIDFromContext(context.Background())
	assert.ErrorIs(t, err, commonErrors.ErrUnauthorized)

	userID := uuid.New()
	actual, err := UserIDFromContext(AttachUserIDToContext(context.Background(), userID))
	require.NoError(t, err)
	assert.Equal(t, userID, actual)
}
