package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// StripeClient confirms payment intents through Stripe using the default
// payment method attached to the intent.
type StripeClient struct{}

// NewStripeClient configures the Stripe SDK with the given key.
func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{}
}

// ConfirmIntent confirms the intent named by the client secret and checks
// that the charge reached a settled state.
func (s *StripeClient) ConfirmIntent(ctx context.Context, clientSecret string) error {
	params := &stripe.PaymentIntentConfirmParams{
		ClientSecret: stripe.String(clientSecret),
	}
	params.Context = ctx

	pi, err := paymentintent.Confirm(IntentIDFromSecret(clientSecret), params)
	if err != nil {
		return fmt.Errorf("confirm payment intent: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing:
		return nil
	default:
		return fmt.Errorf("payment intent %s in state %s", pi.ID, pi.Status)
	}
}
