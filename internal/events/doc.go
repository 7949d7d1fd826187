// Package events turns domain event notifications into router calls.
//
// Producers report a successful mutation as an Event: a name, the record as
// JSON, and for quotes the owner of the RFQ being quoted. Events arrive over
// HTTP (Handler) or Postgres NOTIFY (database.Listener); both end in Dispatch.
package events
