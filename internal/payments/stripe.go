package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"freelancehub/internal/metrics"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements Gateway on the Stripe API.
type StripeGateway struct {
	api      *client.API
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{
		api:      api,
		currency: currency,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	currency := params.Currency
	if currency == "" {
		currency = g.currency
	}

	piParams := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:   stripe.Int64(params.AmountMinor),
		Currency: stripe.String(currency),
	}
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(piParams)
	if err != nil {
		metrics.GatewayCalls.WithLabelValues("create_intent", "error").Inc()
		return nil, err
	}
	metrics.GatewayCalls.WithLabelValues("create_intent", "ok").Inc()

	return toIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	pi, err := g.api.PaymentIntents.Get(id, &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
	})
	if err != nil {
		metrics.GatewayCalls.WithLabelValues("get_intent", "error").Inc()
		return nil, err
	}
	metrics.GatewayCalls.WithLabelValues("get_intent", "ok").Inc()

	return toIntent(pi), nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		Status:       mapStatus(pi.Status),
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
	}
}

func mapStatus(status stripe.PaymentIntentStatus) IntentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return IntentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return IntentStatusCanceled
	default:
		return IntentStatusPending
	}
}

var ErrUnhandledEvent = errors.New("unhandled webhook event type")

// ParseSucceededIntent verifies a Stripe webhook signature and returns the
// payment-intent id when the event reports a completed payment. Any other
// event type yields ErrUnhandledEvent so the caller can acknowledge and
// ignore it.
func ParseSucceededIntent(payload []byte, signature, webhookSecret string) (string, error) {
	event, err := webhook.ConstructEvent(payload, signature, webhookSecret)
	if err != nil {
		return "", fmt.Errorf("webhook signature verification failed: %w", err)
	}

	if event.Type != "payment_intent.succeeded" {
		return "", ErrUnhandledEvent
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return "", fmt.Errorf("failed to decode payment intent: %w", err)
	}
	return pi.ID, nil
}
