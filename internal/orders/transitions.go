package orders

import "github.com/angelmondragon/storefront-backend/pkg/enums"

// allowedTransitions is enforced only when strict transitions are enabled.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
}

// canTransition reports whether an order may move from one status to
// another. Permissive mode allows any valid status; staying put is always allowed.
func canTransition(strict bool, from, to enums.OrderStatus) bool {
	if from == to || !strict {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
