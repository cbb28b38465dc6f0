// internal/services/payment_provider.go
package services

import (
	"context"
	"errors"

	"github.com/javajoker/blob-shop/internal/models"
)

// ErrSessionNotFound is returned by a PaymentProvider for unknown session ids.
var ErrSessionNotFound = errors.New("checkout session not found")

// PaymentProvider is the hosted checkout API the storefront talks to.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams) (*ProviderSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*ProviderSession, error)
}

type ProviderLineItem struct {
	Name        string
	Description string
	ImageURL    string
	UnitAmount  int64 // smallest currency unit
	Quantity    int64
}

type CheckoutSessionParams struct {
	LineItems         []ProviderLineItem
	Currency          string
	Metadata          map[string]string
	SuccessURL        string
	CancelURL         string
	ShippingCountries []string
}

// ProviderSession is the provider-neutral view of a checkout session.
type ProviderSession struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	CustomerEmail string
	CustomerName  string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
	Shipping      *models.Address
}
