package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SimulatedGateway confirms every charge immediately and fabricates a
// reference in the form PAY-<unix>-<RAND6>. Used outside production.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	now := time.Now()
	return &ChargeResult{
		Reference: fmt.Sprintf("PAY-%d-%s", now.Unix(), referenceSuffix()),
		Method:    req.Method,
		PaidAt:    now,
	}, nil
}

// referenceSuffix returns six uppercase alphanumeric characters.
func referenceSuffix() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:6]
}
