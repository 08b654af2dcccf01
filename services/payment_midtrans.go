package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MidtransGateway collects payment through the hosted gateway's server-side
// charge API.
type MidtransGateway struct {
	ServerKey string
	BaseURL   string
	Client    *http.Client
}

func NewMidtransGateway(serverKey, baseURL string) *MidtransGateway {
	return &MidtransGateway{
		ServerKey: serverKey,
		BaseURL:   baseURL,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type midtransChargeRequest struct {
	PaymentType        string                    `json:"payment_type"`
	TransactionDetails midtransTransactionDetail `json:"transaction_details"`
}

type midtransTransactionDetail struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type midtransChargeResponse struct {
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	TransactionTime   string `json:"transaction_time"`
}

func (g *MidtransGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	payload := midtransChargeRequest{
		PaymentType: req.Method,
		TransactionDetails: midtransTransactionDetail{
			OrderID:     req.ConsultationID,
			GrossAmount: int64(req.Amount),
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL+"/v2/charge", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, err
	}

	auth := base64.StdEncoding.EncodeToString([]byte(g.ServerKey + ":"))
	httpReq.Header.Set("Authorization", "Basic "+auth)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var chargeResp midtransChargeResponse
	if err := json.Unmarshal(body, &chargeResp); err != nil {
		return nil, fmt.Errorf("invalid gateway response: %w", err)
	}

	switch chargeResp.TransactionStatus {
	case "capture", "settlement":
	case "pending":
		// The customer still has to pay through the chosen channel. The
		// consultation must not be confirmed on the strength of a pending
		// charge, so this surfaces as a distinct error.
		return nil, fmt.Errorf("%w: %s", ErrPaymentPending, chargeResp.TransactionID)
	default:
		return nil, fmt.Errorf("gateway rejected charge: %s (%s)", chargeResp.StatusMessage, chargeResp.StatusCode)
	}

	paidAt := time.Now()
	if t, err := time.Parse("2006-01-02 15:04:05", chargeResp.TransactionTime); err == nil {
		paidAt = t
	}

	return &ChargeResult{
		Reference: chargeResp.TransactionID,
		Method:    req.Method,
		PaidAt:    paidAt,
	}, nil
}
