package errors

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrEmptyCart        = errors.New("cart is empty")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrEmptyAuth        = fmt.Errorf("%w: missing authorization", ErrUnauthorized)
	ErrTokenInvalid     = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrEmptySubject     = fmt.Errorf("%w: missing subject", ErrUnauthorized)
	ErrPasswordMismatch = fmt.Errorf("%w: password mismatch", ErrUnauthorized)
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrConflict         = errors.New("conflict")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrEmailExist       = fmt.Errorf("%w: email already exist", ErrInvalidRequest)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidRequest)
	ErrPasswordTooLong  = fmt.Errorf("%w: password must be at most 72 bytes", ErrInvalidRequest)
	ErrValueOutOfRange  = fmt.Errorf("%w: quantity or total out of range", ErrInvalidRequest)
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgNumericOutOfRange    = "22003"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
	pgAdminShutdown        = "57P01"
	pgCannotConnectNow     = "57P03"
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}

// Classify joins store failures with the matching sentinel so callers can use errors.Is.
// Errors that already carry a sentinel, or that it does not recognize, are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidRequest) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgUniqueViolation, pgLockNotAvailable:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case pgQueryCanceled, pgAdminShutdown, pgCannotConnectNow:
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		case pgForeignKeyViolation:
			// every foreign key points at users, so the caller's identity no longer exists
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		case pgNumericOutOfRange:
			return fmt.Errorf("%w: %w", ErrValueOutOfRange, err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}

func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
