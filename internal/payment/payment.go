// Package payment authorizes booking payments against an external gateway.
package payment

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("payment amount must be positive")
	// ErrGatewayUnavailable is returned when the gateway could not be reached
	// or failed before deciding on the payment.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// Authorization is a gateway's answer to an authorization request.
type Authorization struct {
	Approved      bool
	TransactionID string
	Gateway       string
	Amount        decimal.Decimal
	// Reason is the gateway's decline reason, empty when approved.
	Reason string
}

// Authorizer takes payment for a booking. A declined authorization is
// reported with Approved == false and a nil error; err is reserved for the
// gateway being unreachable or misbehaving.
type Authorizer interface {
	Authorize(ctx context.Context, token string, amount decimal.Decimal) (Authorization, error)
}

// Voider releases an authorization whose booking could not be committed.
type Voider interface {
	Void(ctx context.Context, auth Authorization) error
}

// Sandbox approves every token except empty ones and ones starting with
// "decline". It records voids so callers can inspect them.
type Sandbox struct {
	mu     sync.Mutex
	voided []Authorization
}

// NewSandbox returns a Sandbox gateway.
func NewSandbox() *Sandbox {
	return &Sandbox{}
}

// Authorize implements Authorizer.
func (s *Sandbox) Authorize(_ context.Context, token string, amount decimal.Decimal) (Authorization, error) {
	if !amount.IsPositive() {
		return Authorization{}, ErrInvalidAmount
	}
	auth := Authorization{Gateway: "sandbox", Amount: amount}
	token = strings.TrimSpace(token)
	switch {
	case token == "":
		auth.Reason = "missing payment token"
	case strings.HasPrefix(strings.ToLower(token), "decline"):
		auth.Reason = "card declined"
	default:
		auth.Approved = true
		auth.TransactionID = "sbx_" + uuid.New().String()
	}
	return auth, nil
}

// Void implements Voider.
func (s *Sandbox) Void(_ context.Context, auth Authorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voided = append(s.voided, auth)
	return nil
}

// Voided returns the authorizations voided so far.
func (s *Sandbox) Voided() []Authorization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Authorization(nil), s.voided...)
}
