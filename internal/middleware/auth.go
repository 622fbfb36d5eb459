package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/auth"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	inHttp "github.com/Alturino/shop/internal/http"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/otel"
)

type TokenVerifier interface {
	Verify(c context.Context, token string) (uuid.UUID, error)
}

const bearerPrefix = "bearer "

// Auth resolves the bearer token into the user id that owns every cart and order operation.
func Auth(verifier TokenVerifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Auth")
			defer span.End()

			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware Auth").Logger()

			logger = logger.With().Str(log.KeyProcess, "reading authorization header").Logger()
			authorization := r.Header.Get("Authorization")
			if len(authorization) <= len(bearerPrefix) ||
				!strings.EqualFold(authorization[:len(bearerPrefix)], bearerPrefix) {
				commonErrors.HandleError(commonErrors.ErrEmptyAuth, span)
				logger.Info().Err(commonErrors.ErrEmptyAuth).Msg(commonErrors.ErrEmptyAuth.Error())
				inHttp.WriteError(c, w, commonErrors.ErrEmptyAuth)
				return
			}

			logger = logger.With().Str(log.KeyProcess, "verifying token").Logger()
			c = logger.WithContext(c)
			userID, err := verifier.Verify(c, authorization[len(bearerPrefix):])
			if err != nil {
				commonErrors.HandleError(err, span)
				logger.Info().Err(err).Msg(err.Error())
				inHttp.WriteError(c, w, commonErrors.ErrTokenInvalid)
				return
			}
			logger = logger.With().Str(log.KeyUserID, userID.String()).Logger()
			logger.Trace().Msg("verified token")

			c = auth.AttachUserIDToContext(r.Context(), userID)
			c = logger.WithContext(c)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
