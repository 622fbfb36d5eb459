package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "no rows", err: pgx.ErrNoRows, expected: ErrNotFound},
		{name: "cache miss", err: redis.Nil, expected: ErrNotFound},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), expected: ErrStoreUnavailable},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, expected: ErrConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, expected: ErrConflict},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, expected: ErrConflict},
		{name: "query canceled", err: &pgconn.PgError{Code: "57014"}, expected: ErrStoreUnavailable},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, expected: ErrUnauthorized},
		{name: "numeric out of range", err: &pgconn.PgError{Code: "22003"}, expected: ErrValueOutOfRange},
		{name: "already classified", err: ErrProductNotFound, expected: ErrProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := Classify(tt.err)
			assert.ErrorIs(t, actual, tt.expected)
			assert.ErrorIs(t, actual, tt.err)
		})
	}

	assert.NoError(t, Classify(nil))

	unknown := &pgconn.PgError{Code: "42P01"}
	assert.Same(t, unknown, Classify(unknown))

	plain := errors.New("boom")
	assert.Equal(t, plain, Classify(plain))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Classify(&pgconn.PgError{Code: "40001"})))
	assert.False(t, IsRetryable(Classify(context.DeadlineExceeded)))
	assert.False(t, IsRetryable(ErrEmptyCart))
	assert.False(t, IsRetryable(Classify(&pgconn.PgError{Code: "23503"})))
	assert.False(t, IsRetryable(Classify(&pgconn.PgError{Code: "22003"})))
}

func TestSentinelHierarchy(t *testing.T) {
	assert.ErrorIs(t, ErrProductNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrOrderNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrTokenInvalid, ErrUnauthorized)
	assert.ErrorIs(t, ErrPasswordMismatch, ErrUnauthorized)
	assert.ErrorIs(t, ErrEmailExist, ErrInvalidRequest)
	assert.ErrorIs(t, ErrValueOutOfRange, ErrInvalidRequest)
	assert.NotErrorIs(t, ErrEmptyCart, ErrNotFound)
}
