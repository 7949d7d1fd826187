// Package metrics provides Prometheus metrics for the notification fan-out layer.
//
// Key metrics:
//   - Live and authenticated WebSocket connections
//   - Messages sent per envelope type, send failures, dropped messages
//   - Heartbeat evictions and malformed inbound frames
//   - Domain events dispatched and recipients per dispatch
package metrics
