// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/models"
	"github.com/javajoker/blob-shop/internal/utils"
)

type OrderService struct {
	db       *gorm.DB
	provider PaymentProvider
}

// OrderView is what the success page renders. Persisted is false when the
// webhook has not landed yet and the view was built from the live session.
type OrderView struct {
	ID              *uint               `json:"id"`
	StripeSessionID string              `json:"stripe_session_id"`
	CustomerEmail   string              `json:"customer_email"`
	CustomerName    string              `json:"customer_name,omitempty"`
	Amount          decimal.Decimal     `json:"amount"`
	Currency        string              `json:"currency,omitempty"`
	Status          string              `json:"status"`
	ShippingAddress *models.Address     `json:"shipping_address,omitempty"`
	Items           models.CartSnapshot `json:"items"`
	CreatedAt       *time.Time          `json:"created_at,omitempty"`
	Persisted       bool                `json:"persisted"`
}

func NewOrderService(db *gorm.DB, provider PaymentProvider) *OrderService {
	return &OrderService{
		db:       db,
		provider: provider,
	}
}

// GetBySessionID returns the stored order, or a live view from the payment
// provider while the webhook is still in flight.
func (s *OrderService) GetBySessionID(ctx context.Context, sessionID string) (*OrderView, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("stripe_session_id = ?", sessionID).First(&order).Error
	if err == nil {
		return viewFromOrder(&order), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		// The fallback still answers while the database is unhealthy.
		logrus.WithError(err).WithField("session_id", sessionID).Warn("Order lookup failed, falling back to payment provider")
	}

	session, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, utils.NewNotFound(i18n.KeyOrderNotFound, "order not found")
		}
		return nil, utils.NewInternal("failed to retrieve checkout session", err)
	}

	return viewFromSession(session), nil
}

// ListRecent is the admin order listing, newest first.
func (s *OrderService) ListRecent(ctx context.Context, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.NewInternal("failed to count orders", err)
	}

	allowedSortFields := []string{"created_at", "amount", "customer_email"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, utils.NewInternal("failed to fetch orders", err)
	}
	return orders, total, nil
}

func viewFromOrder(order *models.Order) *OrderView {
	id := order.ID
	createdAt := order.CreatedAt
	return &OrderView{
		ID:              &id,
		StripeSessionID: order.StripeSessionID,
		CustomerEmail:   order.CustomerEmail,
		CustomerName:    order.CustomerName,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Status:          string(order.Status),
		ShippingAddress: order.ShippingAddress,
		Items:           order.Items,
		CreatedAt:       &createdAt,
		Persisted:       true,
	}
}

func viewFromSession(session *ProviderSession) *OrderView {
	items, err := DecodeCartMetadata(session.Metadata[CartMetadataKey])
	if err != nil {
		logrus.WithError(err).WithField("session_id", session.ID).Debug("Session carries no readable cart")
		items = models.CartSnapshot{}
	}

	return &OrderView{
		StripeSessionID: session.ID,
		CustomerEmail:   session.CustomerEmail,
		CustomerName:    session.CustomerName,
		Amount:          models.FromMinorUnits(session.AmountTotal, session.Currency),
		Currency:        session.Currency,
		Status:          session.PaymentStatus,
		ShippingAddress: session.Shipping,
		Items:           items,
		Persisted:       false,
	}
}
