// Package connection implements the Connection Registry and Liveness Monitor.
//
// The registry:
//   - Holds every live WebSocket connection, keyed by a per-connection UUID
//   - Binds a connection to a user identity (user ID + role) on authenticate
//   - Indexes bound connections by user ID for targeted delivery
//
// Each Conn owns a bounded outbound queue drained by a single writer
// goroutine, so a slow peer never blocks the code that enqueues for it.
//
// The Heartbeat monitor pings every connection on a fixed interval and
// terminates connections that did not answer the previous ping.
package connection
