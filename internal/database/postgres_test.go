package database_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"gorm.io/gorm"

	"github.com/javajoker/blob-shop/internal/config"
	"github.com/javajoker/blob-shop/internal/database"
	"github.com/javajoker/blob-shop/internal/models"
	"github.com/javajoker/blob-shop/internal/services"
	"github.com/javajoker/blob-shop/internal/testutil"
)

const postgresWebhookSecret = "whsec_postgres"

type postgresSuite struct {
	suite.Suite

	container testcontainers.Container
	db        *gorm.DB
	webhooks  *services.WebhookService
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	suite.Run(t, new(postgresSuite))
}

func (suite *postgresSuite) SetupSuite() {
	ctx := context.Background()

	container, dsn, err := testutil.StartPostgres(ctx)
	suite.container = container
	suite.Require().NoError(err)

	suite.db, err = database.Initialize(config.DatabaseConfig{
		URL:          dsn,
		MaxOpenConns: 10,
		MaxIdleConns: 10,
		MaxLifetime:  time.Minute,
		LogLevel:     "silent",
	})
	suite.Require().NoError(err)
	suite.Require().NoError(database.RunMigrations(suite.db))

	suite.webhooks = services.NewWebhookService(suite.db, services.NewProductService(suite.db), nil, postgresWebhookSecret)
}

func (suite *postgresSuite) TearDownSuite() {
	if suite.db != nil {
		database.Close(suite.db)
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *postgresSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE products, orders, audit_logs RESTART IDENTITY").Error)
}

func (suite *postgresSuite) deliver(eventID, sessionID string, lines ...models.CartLine) *services.WebhookResult {
	payload := testutil.CompletedSessionEvent(suite.T(), testutil.CompletedSession{
		EventID:     eventID,
		SessionID:   sessionID,
		Email:       "blob@example.com",
		Name:        "Blob Fan",
		AmountTotal: 2999,
		Cart:        testutil.CartJSON(suite.T(), lines...),
	})
	signature := testutil.SignPayload(payload, postgresWebhookSecret, time.Now())

	result, err := suite.webhooks.HandleEvent(context.Background(), payload, signature)
	suite.Require().NoError(err)
	return result
}

func (suite *postgresSuite) TestSeedAndMigrateTwice() {
	suite.Require().NoError(database.RunMigrations(suite.db))
	suite.Require().NoError(database.SeedInitialData(suite.db))
	suite.Require().NoError(database.SeedInitialData(suite.db))

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Product{}).Count(&count).Error)
	suite.Equal(int64(3), count)
}

func (suite *postgresSuite) TestConcurrentReplaysRecordOneOrder() {
	p := testutil.CreateProduct(suite.T(), suite.db, "29.99", testutil.Stock(10), true)

	var wg sync.WaitGroup
	outcomes := make(chan services.WebhookOutcome, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes <- suite.deliver("evt_same", "cs_same", models.CartLine{ProductID: p.ID, Quantity: 1}).Outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	created := 0
	for outcome := range outcomes {
		if outcome == services.WebhookCreated {
			created++
		}
	}
	suite.Equal(1, created)

	var orders int64
	suite.Require().NoError(suite.db.Model(&models.Order{}).Count(&orders).Error)
	suite.Equal(int64(1), orders)
	suite.Equal(9, *testutil.ReloadProduct(suite.T(), suite.db, p.ID).Inventory)
}

func (suite *postgresSuite) TestConcurrentPurchasesNeverGoNegative() {
	p := testutil.CreateProduct(suite.T(), suite.db, "29.99", testutil.Stock(3), true)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			suite.deliver(fmt.Sprintf("evt_%d", i), fmt.Sprintf("cs_%d", i), models.CartLine{ProductID: p.ID, Quantity: 1})
		}(i)
	}
	wg.Wait()

	var orders int64
	suite.Require().NoError(suite.db.Model(&models.Order{}).Count(&orders).Error)
	suite.Equal(int64(6), orders, "paid orders are always recorded")
	suite.Equal(0, *testutil.ReloadProduct(suite.T(), suite.db, p.ID).Inventory)
}
