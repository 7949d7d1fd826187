// Package database connects to the marketplace's PostgreSQL database as an
// event source.
//
// The notifier never reads or writes marketplace tables. Producers publish
// domain events with pg_notify on a single channel and the Listener turns
// each notification into a router call:
//
//	SELECT pg_notify('bell24h_events', '{"event":"rfq_created","data":{...}}');
package database
