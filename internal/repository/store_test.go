package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
)

func TestStoreRun(t *testing.T) {
	const timeout = 50 * time.Millisecond
	conflict := &pgconn.PgError{Code: "40001"}

	tests := []struct {
		name          string
		fn            func(c context.Context, calls int) error
		expected      error
		expectedMsg   string
		expectedCalls int
	}{
		{
			name:          "success runs once",
			fn:            func(context.Context, int) error { return nil },
			expectedCalls: 1,
		},
		{
			name: "operation past timeout is store unavailable",
			fn: func(c context.Context, _ int) error {
				<-c.Done()
				return c.Err()
			},
			expected:      commonErrors.ErrStoreUnavailable,
			expectedCalls: 1,
		},
		{
			name: "conflict is retried until it succeeds",
			fn: func(_ context.Context, calls int) error {
				if calls < 3 {
					return conflict
				}
				return nil
			},
			expectedCalls: 3,
		},
		{
			name:          "conflict is retried a bounded number of times",
			fn:            func(context.Context, int) error { return conflict },
			expected:      commonErrors.ErrConflict,
			expectedCalls: DefaultMaxRetries + 1,
		},
		{
			name: "empty cart is not retried",
			fn: func(context.Context, int) error {
				return commonErrors.ErrEmptyCart
			},
			expected:      commonErrors.ErrEmptyCart,
			expectedCalls: 1,
		},
		{
			name: "not found is not retried",
			fn: func(context.Context, int) error {
				return fmt.Errorf("failed finding product with error=%w", pgx.ErrNoRows)
			},
			expected:      commonErrors.ErrNotFound,
			expectedCalls: 1,
		},
		{
			name: "store unavailable is not retried",
			fn: func(context.Context, int) error {
				return &pgconn.PgError{Code: "57P03"}
			},
			expected:      commonErrors.ErrStoreUnavailable,
			expectedCalls: 1,
		},
		{
			name:          "unclassified error is not retried",
			fn:            func(context.Context, int) error { return errors.New("boom") },
			expectedMsg:   "boom",
			expectedCalls: 1,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := NewStore(nil, timeout)

			calls := 0
			err := store.Run(context.Background(), func(c context.Context) error {
				calls++
				return test.fn(c, calls)
			})

			assert.Equal(t, test.expectedCalls, calls)
			switch {
			case test.expected != nil:
				assert.ErrorIs(t, err, test.expected)
			case test.expectedMsg != "":
				assert.EqualError(t, err, test.expectedMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewStoreDefaultTimeout(t *testing.T) {
	store := NewStore(nil, 0)
	assert.Equal(t, DefaultTimeout, store.timeout)
	assert.Equal(t, uint64(DefaultMaxRetries), store.maxRetries)
}
