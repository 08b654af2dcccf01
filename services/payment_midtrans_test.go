package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func midtransStub(t *testing.T, transactionStatus string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/charge" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status_code":        "201",
			"status_message":     "ok",
			"transaction_id":     "trx-123",
			"transaction_status": transactionStatus,
			"transaction_time":   "2026-03-01 09:30:00",
		})
	}))
}

func TestMidtransChargeSettlement(t *testing.T) {
	srv := midtransStub(t, "settlement")
	defer srv.Close()

	g := NewMidtransGateway("server-key", srv.URL)
	result, err := g.Charge(context.Background(), ChargeRequest{
		ConsultationID: "consultation-1",
		Amount:         150000,
		Method:         "gopay",
	})
	if err != nil {
		t.Fatalf("settled charge should succeed: %v", err)
	}
	if result.Reference != "trx-123" {
		t.Errorf("reference = %q, want trx-123", result.Reference)
	}
}

// A pending transaction means the customer has not paid yet; it must not be
// reported as a successful charge.
func TestMidtransChargePendingIsNotSuccess(t *testing.T) {
	srv := midtransStub(t, "pending")
	defer srv.Close()

	g := NewMidtransGateway("server-key", srv.URL)
	result, err := g.Charge(context.Background(), ChargeRequest{
		ConsultationID: "consultation-1",
		Amount:         150000,
		Method:         "bank_transfer",
	})
	if result != nil {
		t.Error("pending charge should not return a result")
	}
	if !errors.Is(err, ErrPaymentPending) {
		t.Errorf("error = %v, want ErrPaymentPending", err)
	}
}

func TestMidtransChargeDenied(t *testing.T) {
	srv := midtransStub(t, "deny")
	defer srv.Close()

	g := NewMidtransGateway("server-key", srv.URL)
	if _, err := g.Charge(context.Background(), ChargeRequest{
		ConsultationID: "consultation-1",
		Amount:         150000,
		Method:         "credit_card",
	}); err == nil || errors.Is(err, ErrPaymentPending) {
		t.Errorf("denied charge should fail with a rejection error, got %v", err)
	}
}
