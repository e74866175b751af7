package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus(" shipped ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != OrderStatusShipped {
		t.Fatalf("expected SHIPPED, got %s", got)
	}
	if _, err := ParseOrderStatus("LOST"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range validOrderStatuses {
		want := s == OrderStatusDelivered || s == OrderStatusCancelled
		if s.IsTerminal() != want {
			t.Fatalf("status %s terminal=%v", s, s.IsTerminal())
		}
	}
}

func TestParsePaymentStatus(t *testing.T) {
	got, err := ParsePaymentStatus("PAID")
	if err != nil || got != PaymentStatusPaid {
		t.Fatalf("expected paid, got %s err=%v", got, err)
	}
	if _, err := ParsePaymentStatus("settled"); err == nil {
		t.Fatalf("expected error for unknown payment status")
	}
}

func TestParseAddressTypeDefaultsToHome(t *testing.T) {
	got, err := ParseAddressType("")
	if err != nil || got != AddressTypeHome {
		t.Fatalf("expected home default, got %s err=%v", got, err)
	}
	if _, err := ParseAddressType("castle"); err == nil {
		t.Fatalf("expected error for unknown address type")
	}
}

func TestParsePaymentMethodDefaultsToCOD(t *testing.T) {
	got, err := ParsePaymentMethod("")
	if err != nil || got != PaymentMethodCOD {
		t.Fatalf("expected COD default, got %s err=%v", got, err)
	}
	if _, err := ParsePaymentMethod("card"); err == nil {
		t.Fatalf("expected card to be rejected")
	}
}

func TestParseRole(t *testing.T) {
	got, err := ParseRole("admin")
	if err != nil || got != RoleAdmin {
		t.Fatalf("expected ADMIN, got %s err=%v", got, err)
	}
	if Role("OWNER").IsValid() {
		t.Fatalf("unexpected valid role")
	}
}

func TestParseRejectsBlankWithoutFallback(t *testing.T) {
	if _, err := ParseRole("  "); err == nil {
		t.Fatalf("blank role should be rejected")
	}
	if _, err := ParseOrderStatus(""); err == nil {
		t.Fatalf("blank status should be rejected")
	}
}

func TestIsValidIsCaseSensitive(t *testing.T) {
	if OrderStatus("shipped").IsValid() {
		t.Fatalf("stored statuses must be canonical upper case")
	}
	if !PaymentStatusRefunded.IsValid() {
		t.Fatalf("expected refunded to be valid")
	}
}
