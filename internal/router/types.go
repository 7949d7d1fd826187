package router

import (
	"github.com/bell24h/realtime/internal/model"
	"github.com/bell24h/realtime/internal/protocol"
)

// Router routes domain events to connected clients.
type Router interface {
	// NotifyRfqCreated broadcasts rfq to every connection.
	NotifyRfqCreated(rfq model.RFQ)

	// NotifyRfqUpdated broadcasts rfq to every connection.
	NotifyRfqUpdated(rfq model.RFQ)

	// NotifyQuoteCreated sends quote to the RFQ owner and the supplier.
	NotifyQuoteCreated(quote model.Quote, rfqOwnerID int64)

	// NotifyQuoteUpdated sends quote to the RFQ owner and the supplier.
	NotifyQuoteUpdated(quote model.Quote, rfqOwnerID int64)

	// NotifyMessageCreated sends message to its sender and receiver.
	NotifyMessageCreated(message model.Message)

	// NotifyTransactionCreated sends transaction to its user.
	NotifyTransactionCreated(transaction model.Transaction)

	// Broadcast sends msg to every live connection.
	Broadcast(msg protocol.Outbound) int

	// BroadcastToUsers sends msg to connections bound to any of userIDs.
	BroadcastToUsers(msg protocol.Outbound, userIDs ...int64) int

	// BroadcastToRole sends msg to connections bound with role.
	BroadcastToRole(msg protocol.Outbound, role model.Role) int
}
