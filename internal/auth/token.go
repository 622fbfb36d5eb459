package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/common/constants"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/config"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/otel"
)

type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(cfg config.Application) *TokenService {
	return &TokenService{secretKey: []byte(cfg.SecretKey), ttl: cfg.TokenTTL, now: time.Now}
}

// Issue signs a token whose subject is the user id.
func (s *TokenService) Issue(c context.Context, userID uuid.UUID) (string, time.Time, error) {
	c, span := otel.Tracer.Start(c, "TokenService Issue")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "TokenService Issue").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "creating token").Logger()
	logger.Trace().Msg("creating token")
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{constants.AudienceUser},
			Issuer:    constants.AppUserService,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        uuid.NewString(),
		},
	)
	logger.Trace().Msg("created token")

	logger = logger.With().Str(log.KeyProcess, "signing token").Logger()
	logger.Trace().Msg("signing token")
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", time.Time{}, err
	}
	logger.Trace().Msg("signed token")

	return signed, expiresAt, nil
}

// Verify returns the user id carried by a valid token.
func (s *TokenService) Verify(c context.Context, token string) (uuid.UUID, error) {
	c, span := otel.Tracer.Start(c, "TokenService Verify")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "TokenService Verify").Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	claims := jwt.RegisteredClaims{}
	jwtToken, err := jwt.ParseWithClaims(token,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secretKey, nil
		},
		jwt.WithAudience(constants.AudienceUser),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppUserService),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		err = fmt.Errorf("%w: %w", commonErrors.ErrTokenInvalid, err)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	if !jwtToken.Valid {
		commonErrors.HandleError(commonErrors.ErrTokenInvalid, span)
		logger.Info().Err(commonErrors.ErrTokenInvalid).Msg(commonErrors.ErrTokenInvalid.Error())
		return uuid.Nil, commonErrors.ErrTokenInvalid
	}
	logger.Trace().Msg("parsed claims")

	logger = logger.With().Str(log.KeyProcess, "parsing subject").Logger()
	if claims.Subject == "" {
		commonErrors.HandleError(commonErrors.ErrEmptySubject, span)
		logger.Info().Err(commonErrors.ErrEmptySubject).Msg(commonErrors.ErrEmptySubject.Error())
		return uuid.Nil, commonErrors.ErrEmptySubject
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		err = fmt.Errorf("%w: subject is not a user id: %w", commonErrors.ErrTokenInvalid, err)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	logger.Trace().Str(log.KeyUserID, userID.String()).Msg("parsed subject")

	return userID, nil
}
