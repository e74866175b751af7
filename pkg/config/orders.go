package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingFee parses the flat shipping fee charged below the free-shipping threshold.
func (o OrdersConfig) ShippingFee() (decimal.Decimal, error) {
	return parseAmount(EnvOrdersFlatShippingFee, o.FlatShippingFee)
}

// FreeShippingAbove parses the items total at or above which shipping is free.
// A zero threshold disables free shipping.
func (o OrdersConfig) FreeShippingAbove() (decimal.Decimal, error) {
	return parseAmount(EnvOrdersFreeShipping, o.FreeShippingThreshold)
}

func parseAmount(name, raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q: %w", name, raw, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: amount must not be negative", name)
	}
	return amount, nil
}
