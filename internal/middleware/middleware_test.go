package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/shop/internal/auth"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	inHttp "github.com/Alturino/shop/internal/http"
	"github.com/Alturino/shop/internal/log"
)

type stubVerifier struct {
	userID uuid.UUID
	err    error
}

func (s stubVerifier) Verify(c context.Context, token string) (uuid.UUID, error) {
	if token != "valid" {
		return uuid.Nil, commonErrors.ErrTokenInvalid
	}
	return s.userID, s.err
}

func TestAuth(t *testing.T) {
	userID := uuid.New()
	var actual uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		actual, err = auth.UserIDFromContext(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Auth(stubVerifier{userID: userID})(next)

	tests := []struct {
		name           string
		authorization  string
		expectedStatus int
	}{
		{name: "missing header", authorization: "", expectedStatus: http.StatusUnauthorized},
		{name: "missing scheme", authorization: "valid", expectedStatus: http.StatusUnauthorized},
		{name: "invalid token", authorization: "Bearer nope", expectedStatus: http.StatusUnauthorized},
		{name: "valid token", authorization: "Bearer valid", expectedStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual = uuid.Nil
			r := httptest.NewRequest(http.MethodGet, "/carts", nil)
			if tt.authorization != "" {
				r.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusNoContent {
				assert.Equal(t, userID, actual)
			} else {
				assert.Equal(t, uuid.Nil, actual)
			}
		})
	}
}

func TestLoggingMasksPasswordAndKeepsBody(t *testing.T) {
	body := `{"email":"a@b.c","password":"hunter22"}`
	var received string
	var requestID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		received = string(b)
		requestID = log.RequestIDFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(body))
	r.Header.Set(inHttp.HeaderRequestID, "req-1")
	Logging(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, body, received)
	assert.Equal(t, "req-1", requestID)

	masked := maskBody([]byte(body))
	assert.Equal(t, "***", masked["password"])
	assert.Equal(t, "a@b.c", masked["email"])
}

func TestRecoverPanic(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "error value", value: errors.New("boom")},
		{name: "string value", value: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RecoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			}))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}
}
