// Package model defines the marketplace records carried by real-time notifications.
//
// The notification layer never persists or mutates these records. It reads the
// routing keys it needs (owner, supplier, sender, receiver) and forwards the
// producer's document to clients as the envelope payload, whatever other
// fields it carries and however they are typed.
//
// Conventions:
//   - IDs: int64 (database serial keys)
//   - Raw: the original JSON object, encoded verbatim when present
package model
