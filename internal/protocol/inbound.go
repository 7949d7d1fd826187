package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/bell24h/realtime/internal/model"
)

// Inbound is a decoded client message. The concrete type is one of
// Authenticate, Pong or Unknown.
type Inbound interface {
	inbound()
}

// Authenticate binds the connection to a user identity.
type Authenticate struct {
	UserID int64      `json:"userId"`
	Role   model.Role `json:"role"`
}

// Pong answers a server ping.
type Pong struct{}

// Unknown is a well-formed envelope with a type the server does not handle.
// Callers drop it.
type Unknown struct {
	Type MessageType
}

func (Authenticate) inbound() {}
func (Pong) inbound()         {}
func (Unknown) inbound()      {}

// Decode parses raw frame bytes into an Inbound message.
// Any failure wraps ErrInvalidFormat.
func Decode(data []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidFormat)
	}

	switch env.Type {
	case TypeAuthenticate:
		return decodeAuthenticate(env.Payload)
	case TypePong:
		return Pong{}, nil
	default:
		return Unknown{Type: env.Type}, nil
	}
}

func decodeAuthenticate(payload json.RawMessage) (Inbound, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: authenticate without payload", ErrInvalidFormat)
	}

	var auth Authenticate
	if err := json.Unmarshal(payload, &auth); err != nil {
		return nil, fmt.Errorf("%w: authenticate payload: %v", ErrInvalidFormat, err)
	}
	if auth.UserID <= 0 {
		return nil, fmt.Errorf("%w: authenticate userId must be positive, got %d", ErrInvalidFormat, auth.UserID)
	}
	if !auth.Role.Valid() {
		return nil, fmt.Errorf("%w: authenticate role %q", ErrInvalidFormat, auth.Role)
	}
	return auth, nil
}
