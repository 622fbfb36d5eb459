package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
	inHttp "github.com/Alturino/shop/internal/http"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/otel"
)

func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			c, span := otel.Tracer.Start(r.Context(), "middleware RecoverPanic")
			defer span.End()

			err, ok := recovered.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", recovered)
			}
			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware RecoverPanic").Logger()
			logger.Error().Err(err).Stack().Msg("recovered from panic")
			commonErrors.HandleError(err, span)
			inHttp.WriteError(c, w, err)
		}()

		next.ServeHTTP(w, r)
	})
}
