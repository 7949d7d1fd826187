package router

import (
	"log/slog"
	"time"

	"github.com/bell24h/realtime/internal/connection"
	"github.com/bell24h/realtime/internal/metrics"
	"github.com/bell24h/realtime/internal/model"
	"github.com/bell24h/realtime/internal/protocol"
)

// router is the internal implementation.
type router struct {
	registry *connection.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Router.
type Option func(*router)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the collectors dispatches are counted in.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *router) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithClock sets the time source for envelope timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *router) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a Router over registry.
func New(registry *connection.Registry, opts ...Option) Router {
	r := &router{
		registry: registry,
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.New(nil)
	}
	r.logger = r.logger.With("component", "router")

	return r
}

func (r *router) NotifyRfqCreated(rfq model.RFQ) {
	r.Broadcast(protocol.RfqCreated{RFQ: rfq})
}

func (r *router) NotifyRfqUpdated(rfq model.RFQ) {
	r.Broadcast(protocol.RfqUpdated{RFQ: rfq})
}

func (r *router) NotifyQuoteCreated(quote model.Quote, rfqOwnerID int64) {
	r.BroadcastToUsers(protocol.QuoteCreated{Quote: quote}, rfqOwnerID, quote.SupplierID)
}

func (r *router) NotifyQuoteUpdated(quote model.Quote, rfqOwnerID int64) {
	r.BroadcastToUsers(protocol.QuoteUpdated{Quote: quote}, rfqOwnerID, quote.SupplierID)
}

func (r *router) NotifyMessageCreated(message model.Message) {
	r.BroadcastToUsers(protocol.MessageCreated{Message: message}, message.SenderID, message.ReceiverID)
}

func (r *router) NotifyTransactionCreated(transaction model.Transaction) {
	r.BroadcastToUsers(protocol.TransactionCreated{Transaction: transaction}, transaction.UserID)
}

func (r *router) Broadcast(msg protocol.Outbound) int {
	return r.dispatch(msg, r.registry.All())
}

func (r *router) BroadcastToUsers(msg protocol.Outbound, userIDs ...int64) int {
	return r.dispatch(msg, r.registry.ForUsers(userIDs...))
}

func (r *router) BroadcastToRole(msg protocol.Outbound, role model.Role) int {
	return r.dispatch(msg, r.registry.ForRole(role))
}

// dispatch encodes msg once and queues it on every recipient. It returns the
// number of connections the frame was queued on.
func (r *router) dispatch(msg protocol.Outbound, recipients []*connection.Conn) int {
	data, err := protocol.Encode(msg, r.now())
	if err != nil {
		r.logger.Error("failed to encode event", "error", err)
		return 0
	}

	msgType := msg.Type()
	r.metrics.EventsDispatched.WithLabelValues(string(msgType)).Inc()
	r.metrics.DispatchRecipients.Observe(float64(len(recipients)))

	frame := connection.Frame{Type: msgType, Data: data}
	queued := 0
	for _, c := range recipients {
		if err := c.Enqueue(frame); err != nil {
			c.Logger().Debug("dropped event", "type", msgType, "error", err)
			continue
		}
		queued++
	}

	r.logger.Debug("event dispatched",
		"type", msgType,
		"recipients", len(recipients),
		"queued", queued,
	)

	return queued
}
