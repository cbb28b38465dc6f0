// internal/services/stripe_provider.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"

	"github.com/javajoker/blob-shop/internal/models"
)

// StripeProvider implements PaymentProvider with Stripe Checkout.
type StripeProvider struct {
	sessions *session.Client
}

func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{
		sessions: &session.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: secretKey,
		},
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionParams) (*ProviderSession, error) {
	lineItems := lo.Map(req.LineItems, func(item ProviderLineItem, _ int) *stripe.CheckoutSessionLineItemParams {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Description != "" {
			productData.Description = stripe.String(item.Description)
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}

		return &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		}
	})

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	if len(req.ShippingCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(req.ShippingCountries),
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := p.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return SessionFromStripe(s), nil
}

func (p *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*ProviderSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.sessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) &&
			(stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	return SessionFromStripe(s), nil
}

// SessionFromStripe maps a Stripe checkout session, from the API or from a
// webhook event payload, onto the provider-neutral view.
func SessionFromStripe(s *stripe.CheckoutSession) *ProviderSession {
	ps := &ProviderSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		CustomerEmail: s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}

	if s.CustomerDetails != nil {
		if s.CustomerDetails.Email != "" {
			ps.CustomerEmail = s.CustomerDetails.Email
		}
		ps.CustomerName = s.CustomerDetails.Name
	}

	if s.ShippingDetails != nil && s.ShippingDetails.Address != nil {
		ps.Shipping = addressFromStripe(s.ShippingDetails.Name, s.ShippingDetails.Address)
	} else if s.CustomerDetails != nil && s.CustomerDetails.Address != nil {
		ps.Shipping = addressFromStripe(s.CustomerDetails.Name, s.CustomerDetails.Address)
	}

	return ps
}

func addressFromStripe(name string, a *stripe.Address) *models.Address {
	return &models.Address{
		Name:       name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
