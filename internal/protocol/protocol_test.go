package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bell24h/realtime/internal/model"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Inbound
		wantErr bool
	}{
		{
			name:  "authenticate",
			input: `{"type":"authenticate","payload":{"userId":5,"role":"supplier"}}`,
			want:  Authenticate{UserID: 5, Role: model.RoleSupplier},
		},
		{
			name:  "pong without payload",
			input: `{"type":"pong"}`,
			want:  Pong{},
		},
		{
			name:  "pong with timestamp",
			input: `{"type":"pong","timestamp":1705321845000}`,
			want:  Pong{},
		},
		{
			name:  "unknown type is not an error",
			input: `{"type":"typing","payload":{"to":3}}`,
			want:  Unknown{Type: "typing"},
		},
		{name: "not json", input: `hello there`, wantErr: true},
		{name: "truncated json", input: `{"type":"pong"`, wantErr: true},
		{name: "json array", input: `[1,2,3]`, wantErr: true},
		{name: "json null", input: `null`, wantErr: true},
		{name: "missing type", input: `{"payload":{}}`, wantErr: true},
		{name: "type not a string", input: `{"type":7}`, wantErr: true},
		{name: "authenticate without payload", input: `{"type":"authenticate"}`, wantErr: true},
		{name: "authenticate bad payload", input: `{"type":"authenticate","payload":"me"}`, wantErr: true},
		{name: "authenticate zero user", input: `{"type":"authenticate","payload":{"role":"buyer"}}`, wantErr: true},
		{name: "authenticate unknown role", input: `{"type":"authenticate","payload":{"userId":1,"role":"root"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode(%q) expected error, got %#v", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("Decode(%q) error = %v, want ErrInvalidFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	at := time.UnixMilli(1705321845123)

	tests := []struct {
		name        string
		msg         Outbound
		wantType    MessageType
		wantPayload string // compact JSON, "" means no payload key
	}{
		{
			name:        "rfq created",
			msg:         RfqCreated{model.RFQ{ID: 10, UserID: 3}},
			wantType:    TypeRfqCreated,
			wantPayload: `{"id":10,"userId":3}`,
		},
		{
			name:        "rfq updated passes the original document",
			msg:         RfqUpdated{model.RFQ{ID: 10, UserID: 3, Raw: json.RawMessage(`{"id":10,"userId":3,"budget":50000,"status":"closed"}`)}},
			wantType:    TypeRfqUpdated,
			wantPayload: `{"id":10,"userId":3,"budget":50000,"status":"closed"}`,
		},
		{
			name:        "quote created",
			msg:         QuoteCreated{model.Quote{ID: 1, RfqID: 10, SupplierID: 7, Raw: json.RawMessage(`{"id":1,"rfqId":10,"supplierId":7,"price":99.5}`)}},
			wantType:    TypeQuoteCreated,
			wantPayload: `{"id":1,"rfqId":10,"supplierId":7,"price":99.5}`,
		},
		{
			name:        "quote updated",
			msg:         QuoteUpdated{model.Quote{ID: 1, RfqID: 10, SupplierID: 7}},
			wantType:    TypeQuoteUpdated,
			wantPayload: `{"id":1,"rfqId":10,"supplierId":7}`,
		},
		{
			name:        "message created",
			msg:         MessageCreated{model.Message{ID: 4, SenderID: 1, ReceiverID: 2, Raw: json.RawMessage(`{"id":4,"senderId":1,"receiverId":2,"content":"hi"}`)}},
			wantType:    TypeMessageCreated,
			wantPayload: `{"id":4,"senderId":1,"receiverId":2,"content":"hi"}`,
		},
		{
			name:        "transaction created keeps its own type field",
			msg:         TransactionCreated{model.Transaction{ID: 8, UserID: 1, Raw: json.RawMessage(`{"id":8,"userId":1,"type":"deposit","amount":10}`)}},
			wantType:    TypeTransactionCreated,
			wantPayload: `{"id":8,"userId":1,"type":"deposit","amount":10}`,
		},
		{
			name:     "ping",
			msg:      Ping{},
			wantType: TypePing,
		},
		{
			name:        "error",
			msg:         Error{Message: InvalidFormatMessage},
			wantType:    TypeError,
			wantPayload: `{"message":"Invalid message format"}`,
		},
		{
			name:        "authentication success",
			msg:         AuthenticationSuccess{UserID: 5, Role: model.RoleSupplier},
			wantType:    TypeAuthenticationSuccess,
			wantPayload: `{"userId":5,"role":"supplier"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.msg, at)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			var env Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				t.Fatalf("output is not an envelope: %v (%s)", err, data)
			}
			if env.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", env.Type, tt.wantType)
			}
			if env.Timestamp != 1705321845123 {
				t.Errorf("Timestamp = %d, want %d", env.Timestamp, 1705321845123)
			}
			if string(env.Payload) != tt.wantPayload {
				t.Errorf("Payload = %s, want %s", env.Payload, tt.wantPayload)
			}
		})
	}
}

func TestEncodeRejectsForeignTypes(t *testing.T) {
	if _, err := Encode(nil, time.Now()); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Encode(nil) error = %v, want ErrUnknownType", err)
	}
	if _, err := Encode(&Ping{}, time.Now()); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Encode(&Ping{}) error = %v, want ErrUnknownType", err)
	}
}

// TestAuthenticationRoundTrip checks the success reply echoes exactly what the
// client asserted.
func TestAuthenticationRoundTrip(t *testing.T) {
	in, err := Decode([]byte(`{"type":"authenticate","payload":{"userId":5,"role":"supplier"}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	auth := in.(Authenticate)

	data, err := Encode(AuthenticationSuccess{UserID: auth.UserID, Role: auth.Role}, time.Now())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if string(env.Payload) != `{"userId":5,"role":"supplier"}` {
		t.Errorf("Payload = %s, want %s", env.Payload, `{"userId":5,"role":"supplier"}`)
	}
}
