package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bell24h/realtime/internal/model"
)

// Outbound is a server-originated message. The set of implementations is
// closed; payloadOf switches over all of them.
type Outbound interface {
	Type() MessageType
	outbound()
}

// Domain notifications. The payload is the embedded record, encoded flat.
type (
	RfqCreated         struct{ model.RFQ }
	RfqUpdated         struct{ model.RFQ }
	QuoteCreated       struct{ model.Quote }
	QuoteUpdated       struct{ model.Quote }
	MessageCreated     struct{ model.Message }
	TransactionCreated struct{ model.Transaction }
)

// Ping asks the client to reply with a pong. It carries no payload.
type Ping struct{}

// Error reports a problem with the client's last message.
type Error struct {
	Message string `json:"message"`
}

// AuthenticationSuccess echoes the identity the connection is now bound to.
type AuthenticationSuccess struct {
	UserID int64      `json:"userId"`
	Role   model.Role `json:"role"`
}

func (RfqCreated) Type() MessageType            { return TypeRfqCreated }
func (RfqUpdated) Type() MessageType            { return TypeRfqUpdated }
func (QuoteCreated) Type() MessageType          { return TypeQuoteCreated }
func (QuoteUpdated) Type() MessageType          { return TypeQuoteUpdated }
func (MessageCreated) Type() MessageType        { return TypeMessageCreated }
func (TransactionCreated) Type() MessageType    { return TypeTransactionCreated }
func (Ping) Type() MessageType                  { return TypePing }
func (Error) Type() MessageType                 { return TypeError }
func (AuthenticationSuccess) Type() MessageType { return TypeAuthenticationSuccess }

func (RfqCreated) outbound()            {}
func (RfqUpdated) outbound()            {}
func (QuoteCreated) outbound()          {}
func (QuoteUpdated) outbound()          {}
func (MessageCreated) outbound()        {}
func (TransactionCreated) outbound()    {}
func (Ping) outbound()                  {}
func (Error) outbound()                 {}
func (AuthenticationSuccess) outbound() {}

// outboundWire is the serialized form of an Outbound message.
type outboundWire struct {
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Encode serializes msg into an envelope stamped with at.
func Encode(msg Outbound, at time.Time) ([]byte, error) {
	if msg == nil {
		return nil, ErrUnknownType
	}

	payload, err := payloadOf(msg)
	if err != nil {
		return nil, err
	}

	return json.Marshal(outboundWire{
		Type:      msg.Type(),
		Payload:   payload,
		Timestamp: at.UnixMilli(),
	})
}

func payloadOf(msg Outbound) (any, error) {
	switch m := msg.(type) {
	case RfqCreated, RfqUpdated,
		QuoteCreated, QuoteUpdated,
		MessageCreated, TransactionCreated,
		Error, AuthenticationSuccess:
		return m, nil
	case Ping:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, msg)
	}
}
