package services

import (
	"context"
	"regexp"
	"testing"
)

var referencePattern = regexp.MustCompile(`^PAY-\d+-[A-Z0-9]{6}$`)

func TestSimulatedGatewayReferenceFormat(t *testing.T) {
	g := NewSimulatedGateway()

	for i := 0; i < 20; i++ {
		result, err := g.Charge(context.Background(), ChargeRequest{
			ConsultationID: "c-1",
			UserID:         "u-1",
			Amount:         120000,
			Method:         "gopay",
		})
		if err != nil {
			t.Fatalf("charge failed: %v", err)
		}
		if !referencePattern.MatchString(result.Reference) {
			t.Errorf("reference %q does not match PAY-<unix>-<RAND6>", result.Reference)
		}
		if result.Method != "gopay" {
			t.Errorf("method = %q, want gopay", result.Method)
		}
		if result.PaidAt.IsZero() {
			t.Error("PaidAt not stamped")
		}
	}
}

func TestIsAllowedPaymentMethod(t *testing.T) {
	for _, m := range []string{"bank_transfer", "gopay", "ovo", "dana", "credit_card"} {
		if !IsAllowedPaymentMethod(m) {
			t.Errorf("method %q should be allowed", m)
		}
	}
	if IsAllowedPaymentMethod("cash") {
		t.Error("cash is not an accepted method")
	}
}
