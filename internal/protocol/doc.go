// Package protocol defines the envelope every WebSocket message conforms to.
//
// Wire format (JSON, text frames):
//
//	{"type": "<message type>", "payload": <type specific>, "timestamp": <ms since epoch>}
//
// Client → server types: authenticate, pong.
// Server → client types: rfq_created, rfq_updated, quote_created, quote_updated,
// message_created, transaction_created, ping, error, authentication_success.
//
// Inbound messages decode into the Inbound union, outbound messages are built
// from the Outbound union and serialized with Encode.
package protocol
