package enums

import (
	"slices"
	"strings"
)

// PaymentMethod describes how a customer settles an order. Cash on delivery
// is the only method offered.
type PaymentMethod string

const PaymentMethodCOD PaymentMethod = "COD"

var validPaymentMethods = []PaymentMethod{PaymentMethodCOD}

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool { return slices.Contains(validPaymentMethods, p) }

// ParsePaymentMethod defaults blank input to COD.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parse(value, "payment method", validPaymentMethods, strings.ToUpper, PaymentMethodCOD)
}
