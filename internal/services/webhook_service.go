// internal/services/webhook_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/models"
	"github.com/javajoker/blob-shop/internal/utils"
)

const eventCheckoutSessionCompleted = "checkout.session.completed"

type WebhookOutcome string

const (
	WebhookIgnored   WebhookOutcome = "ignored"
	WebhookCreated   WebhookOutcome = "created"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookFailed    WebhookOutcome = "failed"
)

type WebhookResult struct {
	EventID   string
	EventType string
	Outcome   WebhookOutcome
	Order     *models.Order
}

type WebhookService struct {
	db            *gorm.DB
	products      *ProductService
	notifier      OrderNotifier
	webhookSecret string
}

func NewWebhookService(db *gorm.DB, products *ProductService, notifier OrderNotifier, webhookSecret string) *WebhookService {
	return &WebhookService{
		db:            db,
		products:      products,
		notifier:      notifier,
		webhookSecret: webhookSecret,
	}
}

// HandleEvent verifies and applies one provider callback. Only a signature
// failure is returned as an error; once the event is authentic every
// processing problem is logged and swallowed so the provider stops retrying.
func (s *WebhookService) HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if err := webhook.ValidatePayload(payload, signature, s.webhookSecret); err != nil {
		return nil, utils.NewUnauthorized(i18n.KeyWebhookInvalidSignature, "webhook signature verification failed", err)
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		logrus.WithError(err).Error("Failed to decode webhook event")
		return &WebhookResult{Outcome: WebhookFailed}, nil
	}

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Outcome:   WebhookIgnored,
	}
	log := logrus.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	if result.EventType != eventCheckoutSessionCompleted {
		log.Debug("Ignoring webhook event")
		return result, nil
	}

	var session stripe.CheckoutSession
	if event.Data == nil || json.Unmarshal(event.Data.Raw, &session) != nil {
		log.Error("Failed to decode checkout session from webhook event")
		result.Outcome = WebhookFailed
		return result, nil
	}

	order, created, err := s.recordOrder(ctx, SessionFromStripe(&session), log)
	if err != nil {
		log.WithError(err).WithField("session_id", session.ID).Error("Failed to record order")
		result.Outcome = WebhookFailed
		return result, nil
	}

	result.Order = order
	if !created {
		log.WithField("session_id", session.ID).Info("Duplicate checkout completion, order already recorded")
		result.Outcome = WebhookDuplicate
		return result, nil
	}

	result.Outcome = WebhookCreated
	log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"order_id":   order.ID,
		"amount":     models.FormatAmount(order.Amount, order.Currency),
	}).Info("Order recorded")

	s.decrementInventory(ctx, order.Items, log)
	s.notify(ctx, order)

	return result, nil
}

// recordOrder inserts the order for a completed session. The unique session
// id turns a replayed delivery into a no-op, reported as created == false.
// A paid session with an unreadable cart is still recorded, with no items.
func (s *WebhookService) recordOrder(ctx context.Context, session *ProviderSession, log *logrus.Entry) (*models.Order, bool, error) {
	items, err := DecodeCartMetadata(session.Metadata[CartMetadataKey])
	if err != nil {
		log.WithError(err).WithField("session_id", session.ID).Error("Unreadable cart on paid session, recording order without items")
		items = models.CartSnapshot{}
	}

	order := &models.Order{
		StripeSessionID: session.ID,
		CustomerEmail:   session.CustomerEmail,
		CustomerName:    session.CustomerName,
		Amount:          models.FromMinorUnits(session.AmountTotal, session.Currency),
		Currency:        session.Currency,
		Status:          models.OrderStatusPaid,
		ShippingAddress: session.Shipping,
		Items:           items,
	}

	tx := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_session_id"}},
			DoNothing: true,
		}).
		Create(order)
	if tx.Error != nil {
		return nil, false, fmt.Errorf("failed to insert order: %w", tx.Error)
	}

	if tx.RowsAffected == 0 {
		var existing models.Order
		if err := s.db.WithContext(ctx).Where("stripe_session_id = ?", session.ID).First(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("failed to load existing order: %w", err)
		}
		return &existing, false, nil
	}

	return order, true, nil
}

// decrementInventory lowers finite stock for each purchased line. The guard
// in the WHERE clause keeps inventory from going negative; a line it rejects
// is an oversell and is only logged.
func (s *WebhookService) decrementInventory(ctx context.Context, items models.CartSnapshot, log *logrus.Entry) {
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}

		tx := s.db.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ? AND inventory IS NOT NULL AND inventory >= ?", item.ProductID, item.Quantity).
			Updates(map[string]interface{}{
				"inventory":  gorm.Expr("inventory - ?", item.Quantity),
				"updated_at": time.Now(),
			})
		if tx.Error != nil {
			log.WithError(tx.Error).WithField("product_id", item.ProductID).Error("Failed to decrement inventory")
			continue
		}
		if tx.RowsAffected > 0 {
			continue
		}

		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			log.WithError(err).WithField("product_id", item.ProductID).Warn("Purchased product no longer exists")
			continue
		}
		if product.HasUnlimitedInventory() {
			continue
		}

		log.WithFields(logrus.Fields{
			"product_id": item.ProductID,
			"requested":  item.Quantity,
			"available":  *product.Inventory,
		}).Warn("Oversell: inventory below purchased quantity")
	}
}

func (s *WebhookService) notify(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}

	ids := make([]uint, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	catalog, err := s.products.GetMany(ctx, ids)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load products for confirmation email")
	}

	lines := make([]ConfirmationLine, 0, len(order.Items))
	for _, item := range order.Items {
		name := fmt.Sprintf("Product #%d", item.ProductID)
		if product, ok := catalog[item.ProductID]; ok {
			name = product.Name
		}
		lines = append(lines, ConfirmationLine{Name: name, Quantity: item.Quantity})
	}

	go func() {
		if err := s.notifier.SendOrderConfirmation(order, lines); err != nil {
			logrus.WithError(err).WithField("order_id", order.ID).Warn("Failed to send order confirmation")
		}
	}()
}
