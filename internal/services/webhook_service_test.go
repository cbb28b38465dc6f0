package services_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/blob-shop/internal/models"
	"github.com/javajoker/blob-shop/internal/services"
	"github.com/javajoker/blob-shop/internal/testutil"
	"github.com/javajoker/blob-shop/internal/utils"
)

const testWebhookSecret = "whsec_test_secret"

type recordingNotifier struct {
	mu     sync.Mutex
	orders []*models.Order
	lines  [][]services.ConfirmationLine
	sent   chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan struct{}, 10)}
}

func (n *recordingNotifier) SendOrderConfirmation(order *models.Order, lines []services.ConfirmationLine) error {
	n.mu.Lock()
	n.orders = append(n.orders, order)
	n.lines = append(n.lines, lines)
	n.mu.Unlock()
	n.sent <- struct{}{}
	return nil
}

type webhookServiceSuite struct {
	suite.Suite

	db       *gorm.DB
	notifier *recordingNotifier
	service  *services.WebhookService
}

func TestWebhookServiceSuite(t *testing.T) {
	suite.Run(t, new(webhookServiceSuite))
}

func (suite *webhookServiceSuite) SetupTest() {
	suite.db = testutil.NewSQLiteDB(suite.T())
	suite.notifier = newRecordingNotifier()
	suite.service = services.NewWebhookService(suite.db, services.NewProductService(suite.db), suite.notifier, testWebhookSecret)
}

func (suite *webhookServiceSuite) deliver(payload []byte) *services.WebhookResult {
	result, err := suite.service.HandleEvent(context.Background(), payload, testutil.SignPayload(payload, testWebhookSecret, time.Now()))
	suite.Require().NoError(err)
	return result
}

func (suite *webhookServiceSuite) orderCount() int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.Order{}).Count(&count).Error)
	return count
}

func (suite *webhookServiceSuite) TestCompletedSession_EndToEndExample() {
	product := testutil.CreateProduct(suite.T(), suite.db, "29.99", testutil.Stock(50), true)

	result := suite.deliver(testutil.CompletedSessionEvent(suite.T(), testutil.CompletedSession{
		EventID:     "evt_1",
		SessionID:   "cs_test_e2e",
		Email:       "ann@example.com",
		Name:        "Ann Diver",
		AmountTotal: 5998,
		Cart:        testutil.CartJSON(suite.T(), models.CartLine{ProductID: product.ID, Quantity: 2}),
	}))
	suite.Equal(services.WebhookCreated, result.Outcome)

	var order models.Order
	suite.Require().NoError(suite.db.Where("stripe_session_id = ?", "cs_test_e2e").First(&order).Error)
	suite.True(decimal.RequireFromString("59.98").Equal(order.Amount), order.Amount.String())
	suite.Equal("ann@example.com", order.CustomerEmail)
	suite.Equal("Ann Diver", order.CustomerName)
	suite.Equal(models.OrderStatusPaid, order.Status)
	suite.Equal("usd", order.Currency)
	suite.Equal(models.CartSnapshot{{ProductID: product.ID, Quantity: 2}}, order.Items)
	suite.Require().NotNil(order.ShippingAddress)
	suite.Equal("Miami", order.ShippingAddress.City)

	suite.Equal(48, *testutil.ReloadProduct(suite.T(), suite.db, product.ID).Inventory)

	select {
	case <-suite.notifier.sent:
	case <-time.After(2 * time.Second):
		suite.Fail("confirmation was not sent")
	}
	suite.notifier.mu.Lock()
	defer suite.notifier.mu.Unlock()
	suite.Equal([]services.ConfirmationLine{{Name: product.Name, Quantity: 2}}, suite.notifier.lines[0])
}

func (suite *webhookServiceSuite) TestCompletedSession_ReplayIsIdempotent() {
	product := testutil.CreateProduct(suite.T(), suite.db, "29.99", testutil.Stock(50), true)
	payload := testutil.CompletedSessionEvent(suite.T(), testutil.CompletedSession{
		EventID:     "evt_replay",
		SessionID:   "cs_test_replay",
		Email:       "bob@example.com",
		AmountTotal: 5998,
		Cart:        testutil.CartJSON(suite.T(), models.CartLine{ProductID: product.ID, Quantity: 2}),
	})

	first := suite.deliver(payload)
	second := suite.deliver(payload)

	suite.Equal(services.WebhookCreated, first.Outcome)
	suite.Equal(services.WebhookDuplicate, second.Outcome)
	suite.Require().NotNil(second.Order)
	suite.Equal(first.Order.ID, second.Order.ID)

	suite.Equal(int64(1), suite.orderCount())
	suite.Equal(48, *testutil.ReloadProduct(suite.T(), suite.db, product.ID).Inventory)
}

func (suite *webhookServiceSuite) TestInvalidSignature() {
	product := testutil.CreateProduct(suite.T(), suite.db, "29.99", testutil.Stock(50), true)
	payload := testutil.CompletedSessionEvent(suite.T(), testutil.CompletedSession{
		EventID:     "evt_forged",
		SessionID:   "cs_test_forged",
		AmountTotal: 100,
		Cart:        testutil.CartJSON(suite.T(), models.CartLine{ProductID: product.ID, Quantity: 1}),
	})

	tests := map[string]string{
		"wrong secret":    testutil.SignPayload(payload, "whsec_other", time.Now()),
		"missing header":  "",
		"garbage header":  "not-a-signature",
		"stale timestamp": testutil.SignPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)),
	}
	for name, signature := range tests {
		suite.Run(name, func() {
			_, err := suite.service.HandleEvent(context.Background(), payload, signature)
			suite.Require().Error(err)
			suite.Equal(utils.KindUnauthorized, utils.KindOf(err))
		})
	}

	suite.Equal(int64(0), suite.orderCount())
	suite.Equal(50, *testutil.ReloadProduct(suite.T(), suite.db, product.ID).Inventory)
}

func (suite *webhookServiceSuite) TestTamperedBody() {
	payload := testutil.TypedEvent(suite.T(), "payment_intent.succeeded")
	signature := testutil.SignPayload(payload, testWebhookSecret, time.Now())

	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-2] = ' '

	_, err := suite.service.HandleEvent(context.Background(), tampered, signature)
	suite.Equal(utils.KindUnauthorized, utils.KindOf(err))
}

func (suite *webhookServiceSuite) TestOtherEventTypesAreIgnored() {
	for _, eventType := range []string{"payment_intent.succeeded", "checkout.session.expired", "charge.refunded"} {
		result := suite.deliver(testutil.TypedEvent(suite.T(), eventType))
		suite.Equal(services.WebhookIgnored, result.Outcome)
		suite.Equal(eventType, result.EventType)
	}
	suite.Equal(int64(0), suite.orderCount())
}

func (suite *webhookServiceSuite) TestOversellIsLoggedNotNegative() {
	product := testutil.CreateProduct(suite.T(), suite.db, "10.00", testutil.Stock(1), true)

	result := suite.deliver(testutil.CompletedSessionEvent(suite.T(), testutil.CompletedSession{
		EventID:     "evt_oversell",
		SessionID:   "cs_test_oversell",
		AmountTotal: 2000,
		Cart:        testutil.CartJSON(suite.T(), models.CartLine{ProductID: product.ID, Quantity: 2}),
	}))

	suite.Equal(services.WebhookCreated, result.Outcome, "the paid order is still recorded")
	suite.Equal(1, *testutil.ReloadProduct(suite.T(), suite.db, product.ID).Inventory)
}

func (suite *webhookServiceSuite) TestMixedInventoryAndLegacyCart() {
	finite := testutil.CreateProduct(suite.T(), suite.db, "10.00", testutil.Stock(10), true)
	unlimited := testutil.CreateProduct(suite.T(), suite.db, "4.99", nil, true)

	result := suite.deliver(testutil.CompletedSessionEvent(suite.T(), testutil.CompletedSession{
		EventID:     "evt_legacy",
		SessionID:   "cs_test_legacy",
		AmountTotal: 3499,
		Cart:        `[{"productId":` + uintString(finite.ID) + `,"quantity":3},{"productId":` + uintString(unlimited.ID) + `,"quantity":5}]`,
	}))

	suite.Equal(services.WebhookCreated, result.Outcome)
	suite.Equal(7, *testutil.ReloadProduct(suite.T(), suite.db, finite.ID).Inventory)
	suite.Nil(testutil.ReloadProduct(suite.T(), suite.db, unlimited.ID).Inventory)
}

func (suite *webhookServiceSuite) TestDeletedProductDoesNotBlockOrder() {
	result := suite.deliver(testutil.CompletedSessionEvent(suite.T(), testutil.CompletedSession{
		EventID:     "evt_gone",
		SessionID:   "cs_test_gone",
		AmountTotal: 100,
		Cart:        testutil.CartJSON(suite.T(), models.CartLine{ProductID: 9999, Quantity: 1}),
	}))

	suite.Equal(services.WebhookCreated, result.Outcome)
	suite.Equal(int64(1), suite.orderCount())
}

func (suite *webhookServiceSuite) TestUnreadableCartStillRecordsPayment() {
	product := testutil.CreateProduct(suite.T(), suite.db, "1.00", testutil.Stock(5), true)

	result := suite.deliver(testutil.CompletedSessionEvent(suite.T(), testutil.CompletedSession{
		EventID:     "evt_bad_cart",
		SessionID:   "cs_test_bad_cart",
		Email:       "kim@example.com",
		AmountTotal: 100,
		Cart:        "{broken",
	}))

	suite.Equal(services.WebhookCreated, result.Outcome)
	suite.Equal(int64(1), suite.orderCount())

	var order models.Order
	suite.Require().NoError(suite.db.Where("stripe_session_id = ?", "cs_test_bad_cart").First(&order).Error)
	suite.Equal("kim@example.com", order.CustomerEmail)
	suite.True(decimal.RequireFromString("1.00").Equal(order.Amount))
	suite.Empty(order.Items)

	suite.Equal(5, *testutil.ReloadProduct(suite.T(), suite.db, product.ID).Inventory)
}

func (suite *webhookServiceSuite) TestZeroDecimalCurrencyAmount() {
	product := testutil.CreateProduct(suite.T(), suite.db, "1000", nil, true)

	suite.deliver(testutil.CompletedSessionEvent(suite.T(), testutil.CompletedSession{
		EventID:     "evt_yen",
		SessionID:   "cs_test_yen",
		AmountTotal: 1000,
		Currency:    "jpy",
		Cart:        testutil.CartJSON(suite.T(), models.CartLine{ProductID: product.ID, Quantity: 1}),
	}))

	var order models.Order
	suite.Require().NoError(suite.db.Where("stripe_session_id = ?", "cs_test_yen").First(&order).Error)
	suite.Equal("jpy", order.Currency)
	suite.True(decimal.RequireFromString("1000").Equal(order.Amount), order.Amount.String())
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
