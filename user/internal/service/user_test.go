package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/shop/internal/auth"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/config"
	"github.com/Alturino/shop/internal/repository"
	"github.com/Alturino/shop/internal/testutil"
	"github.com/Alturino/shop/user/pkg/request"
)

func TestUserService(t *testing.T) {
	testutil.SkipIfShort(t)

	c := testutil.Context(t)
	pool := testutil.StartPostgres(t, c)
	store := repository.NewStore(pool, 5*time.Second)
	tokens := auth.NewTokenService(config.Application{SecretKey: "secret", TokenTTL: time.Hour})
	svc := NewUserService(store, auth.NewCredentialHasher(bcrypt.MinCost), tokens)

	register := request.Register{Username: "alice", Email: "alice@example.com", Password: "password"}

	t.Run("given new email register then login should return a token for the same user", func(t *testing.T) {
		testutil.Truncate(t, c, pool)

		user, err := svc.Register(c, register)
		require.NoError(t, err)
		assert.Equal(t, register.Email, user.Email)

		login, err := svc.Login(c, request.Login{Email: register.Email, Password: register.Password})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", login.TokenType)

		userID, err := tokens.Verify(c, login.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)

		me, err := svc.Me(c, userID)
		require.NoError(t, err)
		assert.Equal(t, register.Username, me.Username)
	})

	t.Run("given existing email register should return ErrEmailExist", func(t *testing.T) {
		testutil.Truncate(t, c, pool)

		_, err := svc.Register(c, register)
		require.NoError(t, err)

		_, err = svc.Register(c, register)
		assert.ErrorIs(t, err, commonErrors.ErrEmailExist)
	})

	t.Run("given short password register should return ErrPasswordTooShort", func(t *testing.T) {
		testutil.Truncate(t, c, pool)

		req := register
		req.Password = "short"
		_, err := svc.Register(c, req)
		assert.ErrorIs(t, err, commonErrors.ErrPasswordTooShort)
	})

	t.Run("given wrong password or unknown email login should return ErrUnauthorized", func(t *testing.T) {
		testutil.Truncate(t, c, pool)

		_, err := svc.Register(c, register)
		require.NoError(t, err)

		_, err = svc.Login(c, request.Login{Email: register.Email, Password: "wrongpassword"})
		assert.ErrorIs(t, err, commonErrors.ErrUnauthorized)

		_, err = svc.Login(c, request.Login{Email: "bob@example.com", Password: register.Password})
		assert.ErrorIs(t, err, commonErrors.ErrUnauthorized)
	})
}
