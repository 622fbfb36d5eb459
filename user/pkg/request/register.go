package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Register carries a new account. Password length is checked by the credential hasher.
type Register struct {
	Username string `validate:"required,min=3,max=255" json:"username"`
	Email    string `validate:"required,email,max=255" json:"email"`
	Password string `validate:"required"               json:"password"`
}

func (r Register) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", r.Email).Str("username", r.Username).Str("password", "***")
}

func (r Register) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R Register
	return json.Marshal(R(r))
}
