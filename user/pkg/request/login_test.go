package request

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/shop/internal/common/validate"
)

func TestLoginRequest(t *testing.T) {
	expectedMap := map[string]string{"email": "email", "password": "***"}
	expected, _ := json.Marshal(expectedMap)
	loginReq := Login{Email: "email", Password: "password"}

	actual, _ := json.Marshal(loginReq)

	assert.EqualValues(t, expected, actual)
	assert.EqualValues(t, "password", loginReq.Password)
}

func TestRegisterRequestMasksPassword(t *testing.T) {
	registerReq := Register{Username: "alice", Email: "alice@example.com", Password: "supersecret"}

	actual, err := json.Marshal(registerReq)
	require.NoError(t, err)
	assert.NotContains(t, string(actual), "supersecret")

	buf := bytes.Buffer{}
	logger := zerolog.New(&buf)
	logger.Info().Object("request", registerReq).Msg("")
	assert.NotContains(t, buf.String(), "supersecret")
	assert.Contains(t, buf.String(), "alice@example.com")
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     Register
		isValid bool
	}{
		{
			name:    "valid",
			req:     Register{Username: "alice", Email: "alice@example.com", Password: "password"},
			isValid: true,
		},
		{name: "missing username", req: Register{Email: "alice@example.com", Password: "password"}},
		{name: "invalid email", req: Register{Username: "alice", Email: "alice", Password: "password"}},
		{name: "missing password", req: Register{Username: "alice", Email: "alice@example.com"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validate.Get().Struct(test.req)
			if test.isValid {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}
