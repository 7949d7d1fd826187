package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bell24h/realtime/internal/model"
)

// Errors
var (
	ErrInvalidEvent = errors.New("invalid event")
	ErrUnknownEvent = errors.New("unknown event")
)

// Name identifies a domain event.
type Name string

// Event names.
const (
	RfqCreated         Name = "rfq_created"
	RfqUpdated         Name = "rfq_updated"
	QuoteCreated       Name = "quote_created"
	QuoteUpdated       Name = "quote_updated"
	MessageCreated     Name = "message_created"
	TransactionCreated Name = "transaction_created"
)

// Event is one domain event notification.
type Event struct {
	Event      Name            `json:"event"`
	Data       json.RawMessage `json:"data"`
	RfqOwnerID int64           `json:"rfqOwnerId,omitempty"` // quote_* only
}

// Notifier receives decoded domain events. router.Router satisfies it.
type Notifier interface {
	NotifyRfqCreated(rfq model.RFQ)
	NotifyRfqUpdated(rfq model.RFQ)
	NotifyQuoteCreated(quote model.Quote, rfqOwnerID int64)
	NotifyQuoteUpdated(quote model.Quote, rfqOwnerID int64)
	NotifyMessageCreated(message model.Message)
	NotifyTransactionCreated(transaction model.Transaction)
}

// Decode parses a JSON-encoded Event.
func Decode(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return ev, nil
}

// Dispatch reads the routing keys from ev.Data and hands the record, with the
// original document attached, to n.
// Nothing is sent when an error is returned.
func Dispatch(n Notifier, ev Event) error {
	if len(ev.Data) == 0 || string(ev.Data) == "null" {
		return fmt.Errorf("%w: %s: missing data", ErrInvalidEvent, ev.Event)
	}

	switch ev.Event {
	case RfqCreated, RfqUpdated:
		var rfq model.RFQ
		if err := decodeData(ev, &rfq); err != nil {
			return err
		}
		if ev.Event == RfqCreated {
			n.NotifyRfqCreated(rfq)
		} else {
			n.NotifyRfqUpdated(rfq)
		}

	case QuoteCreated, QuoteUpdated:
		if ev.RfqOwnerID <= 0 {
			return fmt.Errorf("%w: %s: rfqOwnerId is required", ErrInvalidEvent, ev.Event)
		}
		var quote model.Quote
		if err := decodeData(ev, &quote); err != nil {
			return err
		}
		if ev.Event == QuoteCreated {
			n.NotifyQuoteCreated(quote, ev.RfqOwnerID)
		} else {
			n.NotifyQuoteUpdated(quote, ev.RfqOwnerID)
		}

	case MessageCreated:
		var message model.Message
		if err := decodeData(ev, &message); err != nil {
			return err
		}
		n.NotifyMessageCreated(message)

	case TransactionCreated:
		var transaction model.Transaction
		if err := decodeData(ev, &transaction); err != nil {
			return err
		}
		n.NotifyTransactionCreated(transaction)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Event)
	}

	return nil
}

func decodeData(ev Event, v any) error {
	if err := json.Unmarshal(ev.Data, v); err != nil {
		return fmt.Errorf("%w: %s data: %v", ErrInvalidEvent, ev.Event, err)
	}
	return nil
}
