// Package router implements the Event Router.
//
// The router turns domain events into envelopes and delivers them to the
// right subset of live connections:
//   - RFQ created/updated: every connection, authenticated or not
//   - Quote created/updated: the RFQ owner and the quoting supplier
//   - Message created: sender and receiver
//   - Transaction created: the transaction's user
//
// Each event is encoded once and queued on every recipient. Delivery is
// fire-and-forget: a failing or slow recipient never affects the others and
// no error is returned to the caller.
package router
