package enums

import (
	"slices"
	"strings"
)

// PaymentStatus tracks whether an order has been settled.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded,
}

func (p PaymentStatus) String() string { return string(p) }

func (p PaymentStatus) IsValid() bool { return slices.Contains(validPaymentStatuses, p) }

// ParsePaymentStatus accepts any letter case.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return parse(value, "payment status", validPaymentStatuses, strings.ToLower, "")
}
