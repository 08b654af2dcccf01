package services

import (
	"context"
	"errors"
	"time"
)

// ErrPaymentPending means the gateway accepted the charge but the customer
// has not completed payment through the chosen channel yet. The consultation
// must stay unpaid until the charge settles.
var ErrPaymentPending = errors.New("payment pending at the gateway")

// ChargeRequest describes the payment to collect for a consultation.
type ChargeRequest struct {
	ConsultationID string
	UserID         string
	Amount         float64
	Method         string
}

type ChargeResult struct {
	Reference string
	Method    string
	PaidAt    time.Time
}

// PaymentGateway is an interface for payment providers. The consultation row
// is the single source of truth for payment state; gateways only collect.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// Accepted payment methods.
var allowedMethods = map[string]bool{
	"bank_transfer": true,
	"gopay":         true,
	"ovo":           true,
	"dana":          true,
	"credit_card":   true,
}

func IsAllowedPaymentMethod(method string) bool {
	return allowedMethods[method]
}
