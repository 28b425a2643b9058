package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inmo-marketplace/internal/domain"
	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/infra/metrics"
	"inmo-marketplace/internal/usecase"
)

const maxWebhookBody = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFromErr maps domain sentinels onto HTTP statuses. Anything
// unrecognized is a 500.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotConfigured):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFromErr(err)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// webhookNotice is the normalized shape of a MercadoPago notification.
// MP is inconsistent across topics: payment events carry data.id in the
// body, older preapproval events put id and topic in the query string.
type webhookNotice struct {
	Topic      string
	ResourceID string
	Payload    []byte
}

func parseWebhook(r *http.Request) webhookNotice {
	body, _ := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))

	var raw struct {
		Data struct {
			ID any `json:"id"`
		} `json:"data"`
		Type  string `json:"type"`
		Topic string `json:"topic"`
	}
	_ = json.Unmarshal(body, &raw)

	n := webhookNotice{Payload: body}

	n.Topic = raw.Type
	if n.Topic == "" {
		n.Topic = raw.Topic
	}
	if n.Topic == "" {
		n.Topic = r.URL.Query().Get("type")
	}
	if n.Topic == "" {
		n.Topic = r.URL.Query().Get("topic")
	}
	if n.Topic == "" {
		n.Topic = "unknown"
	}

	if raw.Data.ID != nil {
		switch id := raw.Data.ID.(type) {
		case string:
			n.ResourceID = id
		case float64:
			n.ResourceID = fmt.Sprintf("%.0f", id)
		default:
			n.ResourceID = fmt.Sprint(id)
		}
	}
	if n.ResourceID == "" {
		n.ResourceID = r.URL.Query().Get("data.id")
	}
	if n.ResourceID == "" {
		n.ResourceID = r.URL.Query().Get("id")
	}
	return n
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	n := parseWebhook(r)

	xSignature := r.Header.Get("x-signature")
	xRequestID := r.Header.Get("x-request-id")
	if !s.verifier.Verify(xSignature, xRequestID, n.ResourceID) {
		metrics.IncWebhookSignatureFailure()
		s.log.Warn().Str("topic", n.Topic).Str("resource_id", n.ResourceID).Msg("webhook signature rejected")
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	if n.ResourceID == "" {
		// Nothing to reconcile against. Acknowledge so MP stops retrying.
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	outcome, err := s.webhookUC.Handle(r.Context(), n.Topic, n.ResourceID, n.Payload)
	if err != nil {
		// Only a ledger store failure reaches here; MP will redeliver.
		s.log.Error().Err(err).Str("topic", n.Topic).Str("resource_id", n.ResourceID).Msg("webhook ledger write failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if outcome == usecase.OutcomeDuplicate {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "already processed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		PlanID string `json:"plan_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanID == "" {
		writeError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	sub, initPoint, err := s.subUC.Subscribe(r.Context(), ident.UserID, ident.Email, req.PlanID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"subscription_id": sub.ID,
		"status":          sub.Status,
		"init_point":      initPoint,
	})
}

func (s *Server) handleBillingSummary(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sub, plan, err := s.subUC.Current(r.Context(), ident.UserID)
	if err != nil {
		s.fail(w, err)
		return
	}

	type planView struct {
		ID           string  `json:"id"`
		Code         string  `json:"code"`
		Name         string  `json:"name"`
		PriceARS     float64 `json:"price_ars"`
		ListingLimit int     `json:"listing_limit"`
	}
	resp := struct {
		SubscriptionID   string     `json:"subscription_id"`
		Status           string     `json:"status"`
		CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
		Plan             planView   `json:"plan"`
	}{
		SubscriptionID:   sub.ID,
		Status:           string(sub.Status),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
		Plan: planView{
			ID:           plan.ID,
			Code:         plan.Code,
			Name:         plan.Name,
			PriceARS:     plan.PriceARS,
			ListingLimit: plan.ListingLimit,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePurchaseBoost(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		ListingID string `json:"listing_id"`
		ProductID string `json:"boost_product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ListingID == "" || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "listing_id and boost_product_id are required")
		return
	}

	checkout, err := s.boostUC.Purchase(r.Context(), ident.UserID, ident.Email, req.ListingID, req.ProductID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":                 true,
		"boost_id":           checkout.BoostID,
		"init_point":         checkout.InitPoint,
		"sandbox_init_point": checkout.SandboxInitPoint,
	})
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := s.listingUC.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingView(listing))
}

func (s *Server) handleToggleListing(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id := chi.URLParam(r, "id")
	listing, err := s.listingUC.Toggle(r.Context(), ident.UserID, id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingView(listing))
}

func listingView(l *model.Listing) map[string]any {
	return map[string]any{
		"id":         l.ID,
		"owner_id":   l.OwnerID,
		"title":      l.Title,
		"active":     l.Active,
		"created_at": l.CreatedAt,
	}
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.planUC.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	type planView struct {
		ID           string  `json:"id"`
		Code         string  `json:"code"`
		Name         string  `json:"name"`
		PriceARS     float64 `json:"price_ars"`
		ListingLimit int     `json:"listing_limit"`
		Provisioned  bool    `json:"provisioned"`
	}
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, planView{
			ID:           p.ID,
			Code:         p.Code,
			Name:         p.Name,
			PriceARS:     p.PriceARS,
			ListingLimit: p.ListingLimit,
			Provisioned:  p.Provisioned(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": out})
}

func (s *Server) handleProvisionPlans(w http.ResponseWriter, r *http.Request) {
	results, err := s.planUC.Provision(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if len(results) == 0 {
		writeError(w, http.StatusNotFound, "no plans found, seed them first")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "results": results})
}
