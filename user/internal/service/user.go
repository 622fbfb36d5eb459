package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/shop/internal/auth"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/repository"
	"github.com/Alturino/shop/user/internal/otel"
	"github.com/Alturino/shop/user/pkg/request"
	"github.com/Alturino/shop/user/pkg/response"
)

const (
	constraintUsersEmail = "users_email_key"
	tokenTypeBearer      = "Bearer"
)

type UserService struct {
	store  *repository.Store
	hasher auth.CredentialHasher
	tokens *auth.TokenService
}

func NewUserService(
	store *repository.Store,
	hasher auth.CredentialHasher,
	tokens *auth.TokenService,
) *UserService {
	return &UserService{store: store, hasher: hasher, tokens: tokens}
}

func (s *UserService) Register(c context.Context, param request.Register) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Trace().Msg("hashing password")
	hashed, err := s.hasher.Hash(param.Password)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Trace().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting user").Logger()
	logger.Trace().Msg("inserting user")
	var user repository.User
	err = s.store.Run(c, func(c context.Context) error {
		var err error
		user, err = s.store.InsertUser(c, repository.InsertUserParams{
			ID:       uuid.New(),
			Username: param.Username,
			Email:    param.Email,
			Password: hashed,
		})
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == constraintUsersEmail {
			return fmt.Errorf("%w: email=%s", commonErrors.ErrEmailExist, param.Email)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, commonErrors.ErrEmailExist) {
			commonErrors.HandleError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return response.User{}, err
		}
		err = fmt.Errorf("failed inserting user with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	span.SetAttributes(attribute.String(log.KeyUserID, user.ID.String()))
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("inserted user")

	return user.Response(), nil
}

// Login answers unknown emails and wrong passwords with the same error.
func (s *UserService) Login(c context.Context, param request.Login) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user by email").Logger()
	logger.Trace().Msg("finding user by email")
	var user repository.User
	err := s.store.Run(c, func(c context.Context) error {
		var err error
		user, err = s.store.FindUserByEmail(c, param.Email)
		return err
	})
	if err != nil {
		if errors.Is(err, commonErrors.ErrNotFound) {
			err = commonErrors.ErrPasswordMismatch
			commonErrors.HandleError(err, span)
			logger.Info().Err(err).Msg("failed finding user by email")
			return response.Login{}, err
		}
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Trace().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "verifying password").Logger()
	logger.Trace().Msg("verifying password")
	if err := s.hasher.Compare(user.Password, param.Password); err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Trace().Msg("verified password")

	logger = logger.With().Str(log.KeyProcess, "issuing token").Logger()
	c = logger.WithContext(c)
	token, expiresAt, err := s.tokens.Issue(c, user.ID)
	if err != nil {
		err = fmt.Errorf("failed issuing token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Info().Msg("logged in")

	return response.Login{Token: token, TokenType: tokenTypeBearer, ExpiresAt: expiresAt}, nil
}

func (s *UserService) Me(c context.Context, userID uuid.UUID) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Me", trace.WithAttributes(
		attribute.String(log.KeyUserID, userID.String()),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Me").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProcess, "finding user by id").
		Logger()

	logger.Trace().Msg("finding user by id")
	var user repository.User
	err := s.store.Run(c, func(c context.Context) error {
		var err error
		user, err = s.store.FindUserById(c, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, commonErrors.ErrNotFound) {
			err = fmt.Errorf("%w: id=%s", commonErrors.ErrUserNotFound, userID.String())
			commonErrors.HandleError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return response.User{}, err
		}
		err = fmt.Errorf("failed finding user by id with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Trace().Msg("found user by id")

	return user.Response(), nil
}
