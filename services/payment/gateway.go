package payment

import (
	"context"
	"errors"
)

// Intent statuses the licensing flow cares about.
const (
	IntentSucceeded = "succeeded"
	IntentCanceled  = "canceled"
	IntentFailed    = "requires_payment_method"
)

// Webhook event types handled.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
	EventIntentCanceled  = "payment_intent.canceled"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Intent is a provider-neutral view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
	Metadata     map[string]string
	LastError    string
}

// WebhookEvent is a verified provider callback.
type WebhookEvent struct {
	ID     string
	Type   string
	Intent *Intent
}

// Gateway creates and inspects payments with the card processor.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency, description string, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
