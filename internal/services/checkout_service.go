// internal/services/checkout_service.go
package services

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/blob-shop/internal/config"
	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/models"
	"github.com/javajoker/blob-shop/internal/utils"
)

// Stripe substitutes the session id into this placeholder on redirect.
const checkoutSessionPlaceholder = "{CHECKOUT_SESSION_ID}"

type CheckoutService struct {
	products *ProductService
	provider PaymentProvider
	cfg      *config.Config
}

type CreateCheckoutSessionRequest struct {
	Items []models.CartLine `json:"items"`
}

type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

func NewCheckoutService(products *ProductService, provider PaymentProvider, cfg *config.Config) *CheckoutService {
	return &CheckoutService{
		products: products,
		provider: provider,
		cfg:      cfg,
	}
}

// CreateSession validates the cart against the catalog and opens a hosted
// checkout session priced from the server-side catalog. Either every line
// passes or no session is created.
func (s *CheckoutService) CreateSession(ctx context.Context, items []models.CartLine) (*CheckoutSessionResponse, error) {
	if len(items) == 0 {
		return nil, utils.NewInvalidRequest(i18n.KeyCheckoutEmptyCart, "cart is empty")
	}
	for _, item := range items {
		if err := utils.ValidateStruct(item); err != nil {
			return nil, invalidCartLine(item, err)
		}
	}

	ids := lo.Map(items, func(item models.CartLine, _ int) uint { return item.ProductID })
	catalog, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Duplicate lines for one product draw from the same stock.
	requested := make(map[uint]int, len(items))
	for _, item := range items {
		requested[item.ProductID] += item.Quantity
	}

	lineItems := make([]ProviderLineItem, 0, len(items))
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, utils.NewInvalidRequest(i18n.KeyProductNotFound, "product not found").
				WithDetails(map[string]uint{"productId": item.ProductID})
		}
		if !product.Active {
			return nil, utils.NewInvalidRequest(i18n.KeyProductUnavailable, "product unavailable").
				WithDetails(map[string]uint{"productId": item.ProductID})
		}
		if !product.HasUnlimitedInventory() && *product.Inventory < requested[item.ProductID] {
			return nil, utils.NewInvalidRequest(i18n.KeyCheckoutInsufficient, "insufficient stock").
				WithDetails(map[string]interface{}{
					"productId": item.ProductID,
					"available": *product.Inventory,
				})
		}

		lineItems = append(lineItems, ProviderLineItem{
			Name:        product.Name,
			Description: product.Description,
			ImageURL:    s.absoluteImageURL(product.ImageURL),
			UnitAmount:  product.UnitAmount(s.cfg.Stripe.Currency),
			Quantity:    int64(item.Quantity),
		})
	}

	cartMetadata, err := EncodeCartMetadata(items)
	if err != nil {
		if errors.Is(err, errCartMetadataTooLarge) {
			return nil, utils.NewInvalidRequest(i18n.KeyCheckoutCartTooLarge, "cart too large")
		}
		return nil, utils.NewInternal("failed to encode cart", err)
	}

	session, err := s.provider.CreateCheckoutSession(ctx, &CheckoutSessionParams{
		LineItems:         lineItems,
		Currency:          s.cfg.Stripe.Currency,
		Metadata:          map[string]string{CartMetadataKey: cartMetadata},
		SuccessURL:        s.cfg.Frontend.BaseURL + "/success?session_id=" + checkoutSessionPlaceholder,
		CancelURL:         s.cfg.Frontend.BaseURL + "/cart",
		ShippingCountries: s.cfg.Stripe.ShippingCountries,
	})
	if err != nil {
		return nil, utils.NewInternal("failed to create checkout session", err)
	}

	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
		"lines":      len(lineItems),
	}).Info("Checkout session created")

	return &CheckoutSessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// absoluteImageURL resolves site-relative image paths against the frontend,
// since the hosted checkout page can only fetch absolute URLs.
func (s *CheckoutService) absoluteImageURL(ref string) string {
	if ref == "" || ref[0] != '/' {
		return ref
	}
	return s.cfg.Frontend.BaseURL + ref
}

// invalidCartLine reports the first problem of a line that failed its
// validation tags. A bad quantity takes precedence over a bad product id.
func invalidCartLine(item models.CartLine, err error) error {
	fields := lo.Map(utils.GetValidationErrors(err), func(e utils.ValidationError, _ int) string { return e.Field })
	if lo.Contains(fields, "quantity") {
		return utils.NewInvalidRequest(i18n.KeyCheckoutInvalidQuantity, "quantity must be at least 1").
			WithDetails(map[string]interface{}{"productId": item.ProductID, "quantity": item.Quantity})
	}
	return utils.NewInvalidRequest(i18n.KeyProductNotFound, "product not found").
		WithDetails(map[string]uint{"productId": item.ProductID})
}
