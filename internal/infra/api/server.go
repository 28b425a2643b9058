package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"inmo-marketplace/internal/usecase"
)

// SignatureVerifier is the slice of the payment adapter the webhook
// endpoint needs.
type SignatureVerifier interface {
	Verify(xSignature, xRequestID, dataID string) bool
}

// Server wires the billing, boost, listing and webhook routes.
type Server struct {
	subUC     usecase.SubscriptionUseCase
	boostUC   usecase.BoostUseCase
	planUC    usecase.PlanUseCase
	listingUC usecase.ListingUseCase
	webhookUC usecase.WebhookUseCase
	verifier  SignatureVerifier
	auth      *AuthManager
	adminKey  string
	log       *zerolog.Logger
}

func NewServer(
	subUC usecase.SubscriptionUseCase,
	boostUC usecase.BoostUseCase,
	planUC usecase.PlanUseCase,
	listingUC usecase.ListingUseCase,
	webhookUC usecase.WebhookUseCase,
	verifier SignatureVerifier,
	auth *AuthManager,
	adminKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		subUC:     subUC,
		boostUC:   boostUC,
		planUC:    planUC,
		listingUC: listingUC,
		webhookUC: webhookUC,
		verifier:  verifier,
		auth:      auth,
		adminKey:  adminKey,
		log:       logger,
	}
}

// Router assembles the chi router with the middleware chain applied to
// every route. requestTimeout bounds each handler, webhook included.
func (s *Server) Router(requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	wrap := func(h http.HandlerFunc, extra ...Middleware) http.Handler {
		mws := []Middleware{Recover(s.log), TraceID(), RequestLog(s.log), Timeout(requestTimeout)}
		mws = append(mws, extra...)
		return Chain(h, mws...)
	}

	r.Method(http.MethodPost, "/api/mercadopago/webhook", wrap(s.handleWebhook))

	r.Method(http.MethodPost, "/api/v1/billing/subscribe", wrap(s.handleSubscribe, RequireUser(s.auth)))
	r.Method(http.MethodGet, "/api/v1/billing/subscription", wrap(s.handleBillingSummary, RequireUser(s.auth)))
	r.Method(http.MethodPost, "/api/v1/boosts", wrap(s.handlePurchaseBoost, RequireUser(s.auth)))
	r.Method(http.MethodGet, "/api/v1/listings/{id}", wrap(s.handleGetListing))
	r.Method(http.MethodPost, "/api/v1/listings/{id}/toggle", wrap(s.handleToggleListing, RequireUser(s.auth)))

	r.Method(http.MethodGet, "/api/v1/plans", wrap(s.handleListPlans))
	r.Method(http.MethodPost, "/api/v1/admin/plans/provision", wrap(s.handleProvisionPlans, RequireAdminSecret(s.adminKey)))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
