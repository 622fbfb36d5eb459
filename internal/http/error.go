package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
)

const messageInternalError = "Internal Server Error"

// StatusFromError maps an error to its status code and the message safe to show a client.
func StatusFromError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, commonErrors.ErrUnauthorized):
		return http.StatusUnauthorized, commonErrors.ErrUnauthorized.Error()
	case errors.Is(err, commonErrors.ErrProductNotFound):
		return http.StatusNotFound, commonErrors.ErrProductNotFound.Error()
	case errors.Is(err, commonErrors.ErrOrderNotFound):
		return http.StatusNotFound, commonErrors.ErrOrderNotFound.Error()
	case errors.Is(err, commonErrors.ErrUserNotFound):
		return http.StatusNotFound, commonErrors.ErrUserNotFound.Error()
	case errors.Is(err, commonErrors.ErrNotFound):
		return http.StatusNotFound, commonErrors.ErrNotFound.Error()
	case errors.Is(err, commonErrors.ErrEmptyCart):
		return http.StatusUnprocessableEntity, commonErrors.ErrEmptyCart.Error()
	case errors.Is(err, commonErrors.ErrEmailExist):
		return http.StatusConflict, commonErrors.ErrEmailExist.Error()
	case errors.Is(err, commonErrors.ErrValueOutOfRange):
		return http.StatusBadRequest, commonErrors.ErrValueOutOfRange.Error()
	case errors.Is(err, commonErrors.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, commonErrors.ErrConflict):
		return http.StatusConflict, "request conflicted with a concurrent update, please retry"
	case errors.Is(err, commonErrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	}
	return http.StatusInternalServerError, messageInternalError
}

// LevelFromError logs client mistakes at info and server failures at error.
func LevelFromError(err error) zerolog.Level {
	statusCode, _ := StatusFromError(err)
	if statusCode >= http.StatusInternalServerError {
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

func WriteError(c context.Context, w http.ResponseWriter, err error) {
	statusCode, message := StatusFromError(err)
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     StatusFailed,
		"statusCode": statusCode,
		"message":    message,
	})
}
