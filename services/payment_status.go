package services

import "github.com/alvine998/marketplace-backend/models"

// transition is one row of the processor-status mapping table.
type transition struct {
	target models.OrderStatus
	// fraudAccept restricts the transition to notifications whose fraud
	// status is "accept"; anything else is a recognized no-op.
	fraudAccept bool
}

// processorTransitions maps the payment processor's status vocabulary onto
// the order state machine. Statuses absent from the table are unrecognized.
var processorTransitions = map[string]transition{
	"capture":    {target: models.OrderStatusCompleted, fraudAccept: true},
	"settlement": {target: models.OrderStatusCompleted},
	"cancel":     {target: models.OrderStatusCancelled},
	"deny":       {target: models.OrderStatusCancelled},
	"expire":     {target: models.OrderStatusCancelled},
	"pending":    {target: models.OrderStatusPending},
}

const fraudStatusAccept = "accept"

// ResolveTransition maps a processor notification onto the order state
// machine. recognized is false for vocabulary outside the table; apply is
// false when the notification is a legal no-op (held capture, still-pending
// confirmation). Terminal-state guarding happens at the store, not here.
func ResolveTransition(transactionStatus, fraudStatus string) (target models.OrderStatus, apply bool, recognized bool) {
	t, ok := processorTransitions[transactionStatus]
	if !ok {
		return "", false, false
	}
	if t.fraudAccept && fraudStatus != fraudStatusAccept {
		return t.target, false, true
	}
	if t.target == models.OrderStatusPending {
		// pending → pending carries no state change
		return t.target, false, true
	}
	return t.target, true, true
}
