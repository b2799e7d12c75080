package payment

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// RazorpayAPI is the part of the Razorpay payments resource the gateway
// uses. *razorpay.Client's Payment field satisfies it; tests substitute a fake.
type RazorpayAPI interface {
	Capture(paymentID string, amount int, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Refund(paymentID string, amount int, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Razorpay captures payments that the guest authorized client side. The
// payment token is the Razorpay payment id (pay_...).
type Razorpay struct {
	api      RazorpayAPI
	currency string
}

// NewRazorpayClient builds a gateway backed by the Razorpay SDK.
func NewRazorpayClient(keyID, keySecret, currency string) *Razorpay {
	client := razorpay.NewClient(keyID, keySecret)
	return NewRazorpay(client.Payment, currency)
}

// NewRazorpay builds a gateway over any RazorpayAPI.
func NewRazorpay(api RazorpayAPI, currency string) *Razorpay {
	if currency == "" {
		currency = "INR"
	}
	return &Razorpay{api: api, currency: currency}
}

// minorUnits converts an amount to paise/cents. Amounts with more than two
// decimal places cannot be charged exactly and are rejected.
func minorUnits(amount decimal.Decimal) (int, error) {
	scaled := amount.Shift(2)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has sub-cent precision", amount)
	}
	return int(scaled.IntPart()), nil
}

// Authorize implements Authorizer by capturing the payment for the exact amount.
func (r *Razorpay) Authorize(_ context.Context, token string, amount decimal.Decimal) (Authorization, error) {
	if !amount.IsPositive() {
		return Authorization{}, ErrInvalidAmount
	}
	auth := Authorization{Gateway: "razorpay", Amount: amount}
	if token == "" {
		auth.Reason = "missing payment token"
		return auth, nil
	}
	units, err := minorUnits(amount)
	if err != nil {
		return Authorization{}, err
	}

	resp, err := r.api.Capture(token, units, map[string]interface{}{"currency": r.currency}, nil)
	if err != nil {
		if unavailable(resp, err) {
			return Authorization{}, fmt.Errorf("%w: capture %s: %v", ErrGatewayUnavailable, token, err)
		}
		// Anything else (bad id, already captured, amount mismatch) is
		// the gateway refusing this payment.
		auth.Reason = err.Error()
		return auth, nil
	}

	status, _ := resp["status"].(string)
	if status != "captured" {
		auth.Reason = fmt.Sprintf("payment status %q", status)
		return auth, nil
	}
	auth.Approved = true
	auth.TransactionID = token
	if id, ok := resp["id"].(string); ok && id != "" {
		auth.TransactionID = id
	}
	return auth, nil
}

// unavailable reports whether a failed call never got a verdict on the
// payment: the request did not complete, or Razorpay answered with a server
// or upstream gateway error.
func unavailable(resp map[string]interface{}, err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	body, _ := resp["error"].(map[string]interface{})
	switch code, _ := body["code"].(string); code {
	case "SERVER_ERROR", "GATEWAY_ERROR":
		return true
	}
	return false
}

// Void implements Voider by refunding the captured amount in full.
func (r *Razorpay) Void(_ context.Context, auth Authorization) error {
	units, err := minorUnits(auth.Amount)
	if err != nil {
		return err
	}
	if _, err := r.api.Refund(auth.TransactionID, units, map[string]interface{}{"speed": "normal"}, nil); err != nil {
		return fmt.Errorf("refund %s: %w", auth.TransactionID, err)
	}
	return nil
}
