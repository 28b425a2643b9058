//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inmo-marketplace/internal/domain"
	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/domain/ports/adapter"
	"inmo-marketplace/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Repositories
// =============================

// MockPlanRepo is a map-backed PlanRepository. Assign the Func fields to
// override individual calls.
type MockPlanRepo struct {
	mu   sync.RWMutex
	data map[string]*model.Plan

	SaveFunc     func(ctx context.Context, tx repository.Tx, p *model.Plan) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error)
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{data: map[string]*model.Plan{}}
}

func (r *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPlanRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.data {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Plan, 0, len(r.data))
	for _, p := range r.data {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MockPlanRepo) SetPreapprovalPlanID(ctx context.Context, tx repository.Tx, planID, mpPlanID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[planID]
	if !ok {
		return domain.ErrNotFound
	}
	p.MPPreapprovalPlanID = &mpPlanID
	return nil
}

// ---- Subscriptions ----

type MockSubscriptionRepo struct {
	mu   sync.RWMutex
	data map[string]*model.Subscription

	SaveFunc              func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	FindCurrentByUserFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error)
	DeleteFunc            func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{data: map[string]*model.Subscription{}}
}

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.data[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MockSubscriptionRepo) FindCurrentByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	if r.FindCurrentByUserFunc != nil {
		return r.FindCurrentByUserFunc(ctx, tx, userID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *model.Subscription
	for _, s := range r.data {
		if s.UserID != userID {
			continue
		}
		if s.Status != model.SubscriptionStatusAuthorized && s.Status != model.SubscriptionStatusPending {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *MockSubscriptionRepo) FindByPreapprovalID(ctx context.Context, tx repository.Tx, mpPreapprovalID string) (*model.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.data {
		if s.MPPreapprovalID != nil && *s.MPPreapprovalID == mpPreapprovalID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriptionRepo) SetPreapprovalID(ctx context.Context, tx repository.Tx, id, mpPreapprovalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.MPPreapprovalID = &mpPreapprovalID
	return nil
}

func (r *MockSubscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus, periodEnd *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	if periodEnd != nil {
		s.CurrentPeriodEnd = periodEnd
	}
	return nil
}

func (r *MockSubscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if r.DeleteFunc != nil {
		return r.DeleteFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// ---- Boosts ----

type MockBoostRepo struct {
	mu   sync.RWMutex
	data map[string]*model.Boost

	SaveFunc     func(ctx context.Context, tx repository.Tx, b *model.Boost) error
	ActivateFunc func(ctx context.Context, tx repository.Tx, id string, startsAt, endsAt time.Time, mpPaymentID string) (bool, error)
}

var _ repository.BoostRepository = (*MockBoostRepo)(nil)

func NewMockBoostRepo() *MockBoostRepo {
	return &MockBoostRepo{data: map[string]*model.Boost{}}
}

func (r *MockBoostRepo) Save(ctx context.Context, tx repository.Tx, b *model.Boost) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, b)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.data[b.ID] = &cp
	return nil
}

func (r *MockBoostRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Boost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *MockBoostRepo) FindActiveByListing(ctx context.Context, tx repository.Tx, listingID string, now time.Time) (*model.Boost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.data {
		if b.ListingID == listingID && b.ActiveAt(now) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockBoostRepo) Activate(ctx context.Context, tx repository.Tx, id string, startsAt, endsAt time.Time, mpPaymentID string) (bool, error) {
	if r.ActivateFunc != nil {
		return r.ActivateFunc(ctx, tx, id, startsAt, endsAt, mpPaymentID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.data[id]
	if !ok || b.Status != model.BoostStatusPending {
		return false, nil
	}
	b.Status = model.BoostStatusActive
	b.StartsAt = &startsAt
	b.EndsAt = &endsAt
	b.MPPaymentID = &mpPaymentID
	return true, nil
}

func (r *MockBoostRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// ---- Boost products ----

type MockBoostProductRepo struct {
	mu   sync.RWMutex
	data map[string]*model.BoostProduct

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.BoostProduct, error)
}

var _ repository.BoostProductRepository = (*MockBoostProductRepo)(nil)

func NewMockBoostProductRepo() *MockBoostProductRepo {
	return &MockBoostProductRepo{data: map[string]*model.BoostProduct{}}
}

func (r *MockBoostProductRepo) Save(ctx context.Context, tx repository.Tx, p *model.BoostProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockBoostProductRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.BoostProduct, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockBoostProductRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.BoostProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.BoostProduct, 0, len(r.data))
	for _, p := range r.data {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// ---- Listings ----

type MockListingRepo struct {
	mu   sync.RWMutex
	data map[string]*model.Listing

	SetActiveFunc func(ctx context.Context, tx repository.Tx, id string, active bool) error
}

var _ repository.ListingRepository = (*MockListingRepo)(nil)

func NewMockListingRepo() *MockListingRepo {
	return &MockListingRepo{data: map[string]*model.Listing{}}
}

func (r *MockListingRepo) Put(l *model.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.data[l.ID] = &cp
}

func (r *MockListingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *MockListingRepo) CountActiveByOwner(ctx context.Context, tx repository.Tx, ownerID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cnt := 0
	for _, l := range r.data {
		if l.OwnerID == ownerID && l.Active {
			cnt++
		}
	}
	return cnt, nil
}

func (r *MockListingRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) error {
	if r.SetActiveFunc != nil {
		return r.SetActiveFunc(ctx, tx, id, active)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.Active = active
	return nil
}

// ---- Webhook ledger ----

type MockWebhookEventRepo struct {
	mu   sync.RWMutex
	data map[[2]string]*model.WebhookEvent
	seq  int64

	RecordOrTouchFunc func(ctx context.Context, tx repository.Tx, topic, resourceID string, payload []byte) error
	MarkProcessedFunc func(ctx context.Context, tx repository.Tx, topic, resourceID string) error
}

var _ repository.WebhookEventRepository = (*MockWebhookEventRepo)(nil)

func NewMockWebhookEventRepo() *MockWebhookEventRepo {
	return &MockWebhookEventRepo{data: map[[2]string]*model.WebhookEvent{}}
}

func (r *MockWebhookEventRepo) Lookup(ctx context.Context, tx repository.Tx, topic, resourceID string) (*model.WebhookEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.data[[2]string{topic, resourceID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *MockWebhookEventRepo) RecordOrTouch(ctx context.Context, tx repository.Tx, topic, resourceID string, payload []byte) error {
	if r.RecordOrTouchFunc != nil {
		return r.RecordOrTouchFunc(ctx, tx, topic, resourceID, payload)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{topic, resourceID}
	if e, ok := r.data[key]; ok {
		if !e.Processed {
			e.Payload = payload
			e.ReceivedAt = time.Now()
		}
		return nil
	}
	r.seq++
	r.data[key] = &model.WebhookEvent{
		ID:         r.seq,
		Topic:      topic,
		ResourceID: resourceID,
		Payload:    payload,
		ReceivedAt: time.Now(),
	}
	return nil
}

func (r *MockWebhookEventRepo) MarkProcessed(ctx context.Context, tx repository.Tx, topic, resourceID string) error {
	if r.MarkProcessedFunc != nil {
		return r.MarkProcessedFunc(ctx, tx, topic, resourceID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[[2]string{topic, resourceID}]
	if !ok {
		return domain.ErrNotFound
	}
	e.Processed = true
	return nil
}

func (r *MockWebhookEventRepo) ListUnprocessedOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.WebhookEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.WebhookEvent
	for _, e := range r.data {
		if !e.Processed && e.ReceivedAt.Before(olderThan) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// =============================
// Payment gateway
// =============================

type MockPaymentGateway struct {
	mu sync.Mutex

	CreateRecurringPlanFunc      func(ctx context.Context, code, name string, priceARS float64) (adapter.RecurringPlan, error)
	CreateSubscriptionFunc       func(ctx context.Context, preapprovalPlanID, payerEmail, externalReference string) (adapter.SubscriptionCheckout, error)
	CreateCheckoutPreferenceFunc func(ctx context.Context, externalReference, title string, priceARS float64, payerEmail string) (adapter.PreferenceCheckout, error)
	FetchSubscriptionStatusFunc  func(ctx context.Context, preapprovalID string) (adapter.SubscriptionState, error)
	FetchPaymentStatusFunc       func(ctx context.Context, paymentID string) (adapter.PaymentState, error)

	// tracing of invocations
	Calls struct {
		CreateRecurringPlan      []string // plan codes
		CreateSubscription       []string // external references
		CreateCheckoutPreference []string // external references
	}
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) CreateRecurringPlan(ctx context.Context, code, name string, priceARS float64) (adapter.RecurringPlan, error) {
	m.mu.Lock()
	m.Calls.CreateRecurringPlan = append(m.Calls.CreateRecurringPlan, code)
	m.mu.Unlock()
	if m.CreateRecurringPlanFunc != nil {
		return m.CreateRecurringPlanFunc(ctx, code, name, priceARS)
	}
	return adapter.RecurringPlan{ID: "mp-plan-" + code}, nil
}

func (m *MockPaymentGateway) CreateSubscription(ctx context.Context, preapprovalPlanID, payerEmail, externalReference string) (adapter.SubscriptionCheckout, error) {
	m.mu.Lock()
	m.Calls.CreateSubscription = append(m.Calls.CreateSubscription, externalReference)
	m.mu.Unlock()
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, preapprovalPlanID, payerEmail, externalReference)
	}
	return adapter.SubscriptionCheckout{
		PreapprovalID: "mp-sub-" + externalReference,
		InitPoint:     "https://mp.example/checkout/" + externalReference,
	}, nil
}

func (m *MockPaymentGateway) CreateCheckoutPreference(ctx context.Context, externalReference, title string, priceARS float64, payerEmail string) (adapter.PreferenceCheckout, error) {
	m.mu.Lock()
	m.Calls.CreateCheckoutPreference = append(m.Calls.CreateCheckoutPreference, externalReference)
	m.mu.Unlock()
	if m.CreateCheckoutPreferenceFunc != nil {
		return m.CreateCheckoutPreferenceFunc(ctx, externalReference, title, priceARS, payerEmail)
	}
	return adapter.PreferenceCheckout{
		PreferenceID:     "mp-pref-" + externalReference,
		InitPoint:        "https://mp.example/pref/" + externalReference,
		SandboxInitPoint: "https://sandbox.mp.example/pref/" + externalReference,
	}, nil
}

func (m *MockPaymentGateway) FetchSubscriptionStatus(ctx context.Context, preapprovalID string) (adapter.SubscriptionState, error) {
	if m.FetchSubscriptionStatusFunc != nil {
		return m.FetchSubscriptionStatusFunc(ctx, preapprovalID)
	}
	return adapter.SubscriptionState{Status: "authorized"}, nil
}

func (m *MockPaymentGateway) FetchPaymentStatus(ctx context.Context, paymentID string) (adapter.PaymentState, error) {
	if m.FetchPaymentStatusFunc != nil {
		return m.FetchPaymentStatusFunc(ctx, paymentID)
	}
	return adapter.PaymentState{Status: "approved"}, nil
}
