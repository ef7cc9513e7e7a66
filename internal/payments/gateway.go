package payments

import (
	"context"

	"github.com/shopspring/decimal"
)

type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "pending"
	IntentStatusSucceeded IntentStatus = "succeeded"
	IntentStatusCanceled  IntentStatus = "canceled"
	IntentStatusFailed    IntentStatus = "failed"
)

// Intent is the gateway-side view of a charge.
type Intent struct {
	ID           string       `json:"id"`
	Status       IntentStatus `json:"status"`
	ClientSecret string       `json:"client_secret,omitempty"`
	AmountMinor  int64        `json:"amount_minor"`
}

type CreateIntentParams struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

// Gateway is the minimal payment-provider contract the milestone workflow
// needs: open a charge, poll a charge. A timed-out call is an unknown
// outcome and must never be treated as success.
type Gateway interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

var centsFactor = decimal.NewFromInt(100)

// MinorUnits converts a decimal money amount to an integer count of minor
// currency units. Round-half-up, so 10.005 charges 1001 cents, never 1000
// for one caller and 1001 for another.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(centsFactor).Round(0).IntPart()
}
