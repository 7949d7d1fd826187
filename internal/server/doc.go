// Package server exposes the notifier over HTTP.
//
// One mux serves:
//   - the WebSocket endpoint, where clients authenticate and answer pings
//   - /health, with connection counts and database reachability
//   - the Prometheus metrics endpoint
//   - the event ingestion endpoint, when enabled
//
// Each accepted socket gets a connection.Conn, is registered for its
// lifetime, and is read by the handler goroutine until the peer goes away.
package server
