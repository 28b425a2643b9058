package adapter

import (
	"context"
	"fmt"
	"time"
)

// GatewayError carries the upstream HTTP status and body text of a failed
// payment-provider call.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway returned %d: %s", e.Status, e.Body)
}

// RecurringPlan is the provider's representation of a subscribable
// recurring-billing template.
type RecurringPlan struct {
	ID string
}

// SubscriptionCheckout is the result of creating a remote preapproval.
type SubscriptionCheckout struct {
	PreapprovalID string
	InitPoint     string // hosted checkout URL
}

// PreferenceCheckout is the result of creating a one-time checkout
// preference.
type PreferenceCheckout struct {
	PreferenceID     string
	InitPoint        string
	SandboxInitPoint string
}

type SubscriptionState struct {
	Status          string
	NextPaymentDate *time.Time
}

type PaymentState struct {
	Status            string
	ExternalReference string
}

// PaymentGateway is the hex port for the payment provider's REST surface.
// Create* calls must be idempotent under retry: implementations derive an
// idempotency token from the code / external reference they are given.
type PaymentGateway interface {
	Name() string

	CreateRecurringPlan(ctx context.Context, code, name string, priceARS float64) (RecurringPlan, error)
	CreateSubscription(ctx context.Context, preapprovalPlanID, payerEmail, externalReference string) (SubscriptionCheckout, error)
	CreateCheckoutPreference(ctx context.Context, externalReference, title string, priceARS float64, payerEmail string) (PreferenceCheckout, error)
	FetchSubscriptionStatus(ctx context.Context, preapprovalID string) (SubscriptionState, error)
	FetchPaymentStatus(ctx context.Context, paymentID string) (PaymentState, error)
}
