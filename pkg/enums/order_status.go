package enums

import (
	"slices"
	"strings"
)

// OrderStatus tracks the fulfillment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
	OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool { return slices.Contains(validOrderStatuses, s) }

// IsTerminal reports whether no further fulfillment happens after this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ParseOrderStatus accepts any letter case.
func ParseOrderStatus(value string) (OrderStatus, error) {
	return parse(value, "order status", validOrderStatuses, strings.ToUpper, "")
}
