package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"inmo-marketplace/internal/domain/ports/adapter"
	"inmo-marketplace/internal/infra/metrics"
)

var _ adapter.PaymentGateway = (*MercadoPagoGateway)(nil)

// MercadoPagoGateway implements adapter.PaymentGateway against the
// MercadoPago REST API (preapproval plans, preapprovals, Checkout Pro
// preferences, payment lookups). No provider SDK; plain REST.
type MercadoPagoGateway struct {
	accessToken string
	baseURL     string // https://api.mercadopago.com
	appBaseURL  string // public URL of this app, for webhook/back urls
	client      *http.Client
}

// NewMercadoPagoGateway fails when the access token is missing: credentials
// are a startup concern, not a per-request one.
func NewMercadoPagoGateway(accessToken, baseURL, appBaseURL string) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		return nil, errors.New("mercadopago access token empty")
	}
	if _, err := url.Parse(appBaseURL); err != nil {
		return nil, fmt.Errorf("invalid app base url: %w", err)
	}
	if baseURL == "" {
		baseURL = "https://api.mercadopago.com"
	}
	return &MercadoPagoGateway{
		accessToken: accessToken,
		baseURL:     baseURL,
		appBaseURL:  appBaseURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *MercadoPagoGateway) Name() string { return "mercadopago" }

// do issues one API call. idempotencyKey is attached as X-Idempotency-Key
// when non-empty so retried creates never duplicate remote objects.
// Non-2xx responses become *adapter.GatewayError.
func (g *MercadoPagoGateway) do(ctx context.Context, method, path string, body any, idempotencyKey string, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	metrics.ObserveGatewayCall(method+" "+path, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &adapter.GatewayError{Status: resp.StatusCode, Body: string(text)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateRecurringPlan creates a preapproval plan (monthly, ARS). The
// idempotency key derives from the plan code so re-provisioning the same
// plan never creates a duplicate remote template.
func (g *MercadoPagoGateway) CreateRecurringPlan(ctx context.Context, code, name string, priceARS float64) (adapter.RecurringPlan, error) {
	payload := map[string]any{
		"reason": name,
		"auto_recurring": map[string]any{
			"frequency":          1,
			"frequency_type":     "months",
			"transaction_amount": priceARS,
			"currency_id":        "ARS",
		},
		"back_url": g.appBaseURL + "/dashboard/billing",
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := g.do(ctx, http.MethodPost, "/preapproval_plan", payload, "plan-"+code, &out); err != nil {
		return adapter.RecurringPlan{}, err
	}
	if out.ID == "" {
		return adapter.RecurringPlan{}, errors.New("mercadopago returned empty plan id")
	}
	return adapter.RecurringPlan{ID: out.ID}, nil
}

// CreateSubscription creates a pending preapproval for one payer. The
// external reference carries the local subscription id back through
// webhook notifications.
func (g *MercadoPagoGateway) CreateSubscription(ctx context.Context, preapprovalPlanID, payerEmail, externalReference string) (adapter.SubscriptionCheckout, error) {
	payload := map[string]any{
		"preapproval_plan_id": preapprovalPlanID,
		"payer_email":         payerEmail,
		"external_reference":  externalReference,
		"back_url":            g.appBaseURL + "/dashboard/billing",
		"status":              "pending",
	}
	var out struct {
		ID        string `json:"id"`
		InitPoint string `json:"init_point"`
	}
	if err := g.do(ctx, http.MethodPost, "/preapproval", payload, "sub-"+externalReference, &out); err != nil {
		return adapter.SubscriptionCheckout{}, err
	}
	if out.ID == "" || out.InitPoint == "" {
		return adapter.SubscriptionCheckout{}, errors.New("mercadopago returned incomplete preapproval")
	}
	return adapter.SubscriptionCheckout{PreapprovalID: out.ID, InitPoint: out.InitPoint}, nil
}

// CreateCheckoutPreference creates a one-item Checkout Pro preference with
// this app's webhook as notification target.
func (g *MercadoPagoGateway) CreateCheckoutPreference(ctx context.Context, externalReference, title string, priceARS float64, payerEmail string) (adapter.PreferenceCheckout, error) {
	payload := map[string]any{
		"items": []map[string]any{{
			"title":       title,
			"quantity":    1,
			"unit_price":  priceARS,
			"currency_id": "ARS",
		}},
		"external_reference": externalReference,
		"notification_url":   g.appBaseURL + "/api/mercadopago/webhook",
		"back_urls": map[string]string{
			"success": g.appBaseURL + "/dashboard?boost=success",
			"failure": g.appBaseURL + "/dashboard?boost=failure",
			"pending": g.appBaseURL + "/dashboard?boost=pending",
		},
		"auto_return": "approved",
	}
	if payerEmail != "" {
		payload["payer"] = map[string]string{"email": payerEmail}
	}
	var out struct {
		ID               string `json:"id"`
		InitPoint        string `json:"init_point"`
		SandboxInitPoint string `json:"sandbox_init_point"`
	}
	if err := g.do(ctx, http.MethodPost, "/checkout/preferences", payload, "boost-"+externalReference, &out); err != nil {
		return adapter.PreferenceCheckout{}, err
	}
	if out.InitPoint == "" {
		return adapter.PreferenceCheckout{}, errors.New("mercadopago returned incomplete preference")
	}
	return adapter.PreferenceCheckout{
		PreferenceID:     out.ID,
		InitPoint:        out.InitPoint,
		SandboxInitPoint: out.SandboxInitPoint,
	}, nil
}

func (g *MercadoPagoGateway) FetchSubscriptionStatus(ctx context.Context, preapprovalID string) (adapter.SubscriptionState, error) {
	var out struct {
		Status          string `json:"status"`
		NextPaymentDate string `json:"next_payment_date"`
	}
	if err := g.do(ctx, http.MethodGet, "/preapproval/"+preapprovalID, nil, "", &out); err != nil {
		return adapter.SubscriptionState{}, err
	}
	st := adapter.SubscriptionState{Status: out.Status}
	if out.NextPaymentDate != "" {
		if t, err := time.Parse(time.RFC3339, out.NextPaymentDate); err == nil {
			st.NextPaymentDate = &t
		}
	}
	return st, nil
}

func (g *MercadoPagoGateway) FetchPaymentStatus(ctx context.Context, paymentID string) (adapter.PaymentState, error) {
	var out struct {
		Status            string `json:"status"`
		ExternalReference string `json:"external_reference"`
	}
	if err := g.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, "", &out); err != nil {
		return adapter.PaymentState{}, err
	}
	return adapter.PaymentState{Status: out.Status, ExternalReference: out.ExternalReference}, nil
}
