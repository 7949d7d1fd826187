package protocol

import (
	"encoding/json"
	"errors"
)

// Errors
var (
	ErrInvalidFormat = errors.New("invalid message format")
	ErrUnknownType   = errors.New("unknown outbound message type")
)

// Error texts sent back to clients.
const (
	InvalidFormatMessage        = "Invalid message format"
	AlreadyAuthenticatedMessage = "Already authenticated as a different user"
)

// MessageType tags an envelope.
type MessageType string

// Client → server.
const (
	TypeAuthenticate MessageType = "authenticate"
	TypePong         MessageType = "pong"
)

// Server → client.
const (
	TypeRfqCreated            MessageType = "rfq_created"
	TypeRfqUpdated            MessageType = "rfq_updated"
	TypeQuoteCreated          MessageType = "quote_created"
	TypeQuoteUpdated          MessageType = "quote_updated"
	TypeMessageCreated        MessageType = "message_created"
	TypeTransactionCreated    MessageType = "transaction_created"
	TypePing                  MessageType = "ping"
	TypeError                 MessageType = "error"
	TypeAuthenticationSuccess MessageType = "authentication_success"
)

// Envelope is the wire unit for every message in both directions.
type Envelope struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"` // Milliseconds since epoch, set at send time
}
