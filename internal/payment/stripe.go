// Package payment creates payment intents at Stripe.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var (
	// ErrInvalidAmount is returned for non-positive or non-finite prices.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrProcessor wraps every failure reported by, or on the way to, Stripe.
	ErrProcessor = errors.New("payment processor error")
)

// Processor creates a payment intent and returns its client secret.
type Processor interface {
	CreateIntent(ctx context.Context, price float64) (string, error)
}

// MinorUnits converts a decimal price into the integer amount of minor
// currency units Stripe expects (19.99 -> 1999). Only valid for
// two-decimal currencies.
func MinorUnits(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidAmount
	}
	amount := int64(math.Round(price * 100))
	if amount < 1 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// StripeProcessor talks to the Stripe API through its own client so tests
// can point it at a fake backend.
type StripeProcessor struct {
	api      *client.API
	currency string
}

// NewStripeProcessor builds a processor for secretKey. Network retries are
// disabled: a failed create is reported, never replayed. backends may be
// nil to use Stripe's public endpoints.
func NewStripeProcessor(secretKey, currency string, backends *stripe.Backends) *StripeProcessor {
	if backends == nil {
		cfg := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(0)}
		backends = &stripe.Backends{
			API:     stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
			Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, cfg),
			Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, cfg),
		}
	}
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeProcessor{api: client.New(secretKey, backends), currency: currency}
}

// CreateIntent implements Processor. Only card payments are allowed.
func (p *StripeProcessor) CreateIntent(ctx context.Context, price float64) (string, error) {
	amount, err := MinorUnits(price)
	if err != nil {
		return "", err
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(p.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %w", ErrProcessor, ctxErr)
		}
		return "", fmt.Errorf("%w: %v", ErrProcessor, err)
	}
	if pi.ClientSecret == "" {
		return "", fmt.Errorf("%w: payment intent %s has no client secret", ErrProcessor, pi.ID)
	}
	return pi.ClientSecret, nil
}
