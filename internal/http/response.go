package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/otel"
)

const (
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-Id"
	HeaderValueJson   = "application/json"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WriteJsonResponse").Logger()

	w.Header().Set(HeaderContentType, HeaderValueJson)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		w.Header().Set(HeaderRequestID, requestID)
	}
	for k, v := range header {
		w.Header().Add(k, v)
	}

	if v, ok := body["statusCode"].(int); ok {
		w.WriteHeader(v)
	}

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
}

func WriteSuccess(c context.Context, w http.ResponseWriter, statusCode int, message string, data map[string]interface{}) {
	body := map[string]interface{}{
		"status":     StatusSuccess,
		"statusCode": statusCode,
		"message":    message,
	}
	if data != nil {
		body["data"] = data
	}
	WriteJsonResponse(c, w, map[string]string{}, body)
}
