package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/log"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultMaxRetries = 5
)

// Store bounds every operation by a timeout and retries conflicting transactions.
type Store struct {
	*Queries
	pool       *pgxpool.Pool
	timeout    time.Duration
	maxRetries uint64
}

func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{
		Queries:    New(pool),
		pool:       pool,
		timeout:    timeout,
		maxRetries: DefaultMaxRetries,
	}
}

func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) newBackOff(c context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), c)
}

// Run calls fn with a context bounded by the store timeout. Failures are classified and
// fn is called again while it fails with ErrConflict. Other failures are returned at once.
func (s *Store) Run(c context.Context, fn func(c context.Context) error) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Store Run").Logger()

	attempt := 0
	operation := func() error {
		attempt++
		c, cancel := context.WithTimeout(c, s.timeout)
		defer cancel()

		err := commonErrors.Classify(fn(c))
		if err == nil {
			return nil
		}
		if commonErrors.IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, next time.Duration) {
		logger.Warn().
			Err(err).
			Int(log.KeyAttempt, attempt).
			Dur("retryIn", next).
			Msg("retrying store operation after conflict")
	}

	err := backoff.RetryNotify(operation, s.newBackOff(c), notify)
	return commonErrors.Classify(err)
}

// ExecTx runs fn inside a transaction and commits when fn returns nil.
func (s *Store) ExecTx(c context.Context, opts pgx.TxOptions, fn func(*Queries) error) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Store ExecTx").Logger()

	logger = logger.With().Str(log.KeyProcess, "beginning transaction").Logger()
	logger.Trace().Msg("beginning transaction")
	tx, err := s.pool.BeginTx(c, opts)
	if err != nil {
		err = fmt.Errorf("failed beginning transaction with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("began transaction")
	defer func() {
		logger := logger.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	if err := fn(s.WithTx(tx)); err != nil {
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Trace().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("committed transaction")

	return nil
}
