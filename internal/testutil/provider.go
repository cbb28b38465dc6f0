package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/javajoker/blob-shop/internal/services"
)

// FakeProvider is an in-memory services.PaymentProvider.
type FakeProvider struct {
	mu       sync.Mutex
	created  []*services.CheckoutSessionParams
	sessions map[string]*services.ProviderSession

	CreateErr error
	GetErr    error
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{sessions: make(map[string]*services.ProviderSession)}
}

func (p *FakeProvider) CreateCheckoutSession(_ context.Context, params *services.CheckoutSessionParams) (*services.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.CreateErr != nil {
		return nil, p.CreateErr
	}

	p.created = append(p.created, params)
	id := fmt.Sprintf("cs_test_%d", len(p.created))
	session := &services.ProviderSession{
		ID:            id,
		URL:           "https://checkout.stripe.test/pay/" + id,
		Status:        "open",
		PaymentStatus: "unpaid",
		Currency:      params.Currency,
		Metadata:      params.Metadata,
	}
	p.sessions[id] = session
	return session, nil
}

func (p *FakeProvider) GetCheckoutSession(_ context.Context, sessionID string) (*services.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.GetErr != nil {
		return nil, p.GetErr
	}

	session, ok := p.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, services.ErrSessionNotFound)
	}
	return session, nil
}

// PutSession registers a session as if it had been created upstream.
func (p *FakeProvider) PutSession(session *services.ProviderSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[session.ID] = session
}

// Created returns every checkout request seen so far.
func (p *FakeProvider) Created() []*services.CheckoutSessionParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*services.CheckoutSessionParams(nil), p.created...)
}
