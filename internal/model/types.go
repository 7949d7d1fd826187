package model

import (
	"encoding/json"
	"slices"
)

// Role is the marketplace role a user authenticates as.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSupplier, RoleAdmin:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Marketplace records
// -----------------------------------------------------------------------------

// Each record holds the keys the router selects recipients by. Raw is the
// producer's document as received; when set it is encoded verbatim, so fields
// the notifier does not know about reach clients unchanged.

// RFQ is a buyer's request for quotation.
type RFQ struct {
	ID     int64           `json:"id"`
	UserID int64           `json:"userId"` // Owner (buyer)
	Raw    json.RawMessage `json:"-"`
}

// Quote is a supplier's bid against an RFQ.
type Quote struct {
	ID         int64           `json:"id"`
	RfqID      int64           `json:"rfqId"`
	SupplierID int64           `json:"supplierId"`
	Raw        json.RawMessage `json:"-"`
}

// Message is a direct message between two users.
type Message struct {
	ID         int64           `json:"id"`
	SenderID   int64           `json:"senderId"`
	ReceiverID int64           `json:"receiverId"`
	Raw        json.RawMessage `json:"-"`
}

// Transaction is a wallet or payment movement for one user.
type Transaction struct {
	ID     int64           `json:"id"`
	UserID int64           `json:"userId"`
	Raw    json.RawMessage `json:"-"`
}

type (
	rfqKeys         RFQ
	quoteKeys       Quote
	messageKeys     Message
	transactionKeys Transaction
)

func (r RFQ) MarshalJSON() ([]byte, error) { return marshalRecord(r.Raw, rfqKeys(r)) }

func (r *RFQ) UnmarshalJSON(data []byte) error {
	var keys rfqKeys
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	keys.Raw = slices.Clone(data)
	*r = RFQ(keys)
	return nil
}

func (q Quote) MarshalJSON() ([]byte, error) { return marshalRecord(q.Raw, quoteKeys(q)) }

func (q *Quote) UnmarshalJSON(data []byte) error {
	var keys quoteKeys
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	keys.Raw = slices.Clone(data)
	*q = Quote(keys)
	return nil
}

func (m Message) MarshalJSON() ([]byte, error) { return marshalRecord(m.Raw, messageKeys(m)) }

func (m *Message) UnmarshalJSON(data []byte) error {
	var keys messageKeys
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	keys.Raw = slices.Clone(data)
	*m = Message(keys)
	return nil
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return marshalRecord(t.Raw, transactionKeys(t))
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var keys transactionKeys
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	keys.Raw = slices.Clone(data)
	*t = Transaction(keys)
	return nil
}

func marshalRecord(raw json.RawMessage, keys any) ([]byte, error) {
	if len(raw) > 0 {
		return raw, nil
	}
	return json.Marshal(keys)
}
