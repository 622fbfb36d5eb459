package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
	inHttp "github.com/Alturino/shop/internal/http"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/otel"
)

var maskedFields = []string{"password"}

// maskBody decodes a json body and hides credential fields.
func maskBody(body []byte) map[string]interface{} {
	requestBody := map[string]interface{}{}
	if len(body) == 0 {
		return requestBody
	}
	if err := json.Unmarshal(body, &requestBody); err != nil {
		return requestBody
	}
	for _, field := range maskedFields {
		if _, ok := requestBody[field]; ok {
			requestBody[field] = "***"
		}
	}
	return requestBody
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(inHttp.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c, span := otel.Tracer.Start(
			r.Context(),
			"middleware Logging",
			trace.WithAttributes(
				attribute.String(log.KeyRequestID, requestID),
				attribute.String(log.KeyRequestHost, r.Host),
				attribute.String(log.KeyRequestIp, r.RemoteAddr),
				attribute.String(log.KeyRequestMethod, r.Method),
				attribute.String(log.KeyRequestURI, r.RequestURI),
			),
		)
		defer span.End()

		var buffer bytes.Buffer
		if r.Body != nil {
			if _, err := io.Copy(&buffer, r.Body); err != nil {
				commonErrors.HandleError(err, span)
			}
			r.Body.Close()
		}
		requestBody := maskBody(buffer.Bytes())
		r.Body = io.NopCloser(&buffer)

		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyRequestID, requestID).
			Dict(log.KeyRequest, zerolog.Dict().
				Str(log.KeyRequestHost, r.Host).
				Str(log.KeyRequestIp, r.RemoteAddr).
				Str(log.KeyRequestMethod, r.Method).
				Str(log.KeyRequestURI, r.RequestURI).
				Str(log.KeyRequestURL, r.URL.String()).
				Any(log.KeyRequestBody, requestBody)).
			Str(log.KeyTag, "middleware Logging").
			Logger()

		logger.Trace().Msg("attaching request value to context")
		c = log.AttachRequestIDToContext(c, requestID)
		c = logger.WithContext(c)
		r = r.WithContext(c)
		logger.Trace().Msg("attached request value to context")

		logger.Info().Msg("received request")
		next.ServeHTTP(w, r)
	})
}
