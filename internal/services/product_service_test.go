package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/blob-shop/internal/models"
	"github.com/javajoker/blob-shop/internal/services"
	"github.com/javajoker/blob-shop/internal/testutil"
	"github.com/javajoker/blob-shop/internal/utils"
)

type productServiceSuite struct {
	suite.Suite

	db      *gorm.DB
	service *services.ProductService
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(productServiceSuite))
}

func (suite *productServiceSuite) SetupTest() {
	suite.db = testutil.NewSQLiteDB(suite.T())
	suite.service = services.NewProductService(suite.db)
}

func (suite *productServiceSuite) TestListActive() {
	ctx := context.Background()

	older := testutil.CreateProduct(suite.T(), suite.db, "10.00", testutil.Stock(5), true)
	hidden := testutil.CreateProduct(suite.T(), suite.db, "11.00", nil, false)
	newer := testutil.CreateProduct(suite.T(), suite.db, "12.00", nil, true)
	suite.Require().NoError(suite.db.Model(&older).Update("created_at", time.Now().Add(-time.Hour)).Error)

	products, err := suite.service.ListActive(ctx)
	suite.Require().NoError(err)

	ids := lo.Map(products, func(p models.Product, _ int) uint { return p.ID })
	suite.Equal([]uint{newer.ID, older.ID}, ids)
	suite.NotContains(ids, hidden.ID)
}

func (suite *productServiceSuite) TestGetByID() {
	ctx := context.Background()
	product := testutil.CreateProduct(suite.T(), suite.db, "29.99", testutil.Stock(50), true)

	got, err := suite.service.GetByID(ctx, product.ID)
	suite.Require().NoError(err)
	suite.Equal(product.Name, got.Name)
	suite.True(decimal.RequireFromString("29.99").Equal(got.Price))
	suite.Require().NotNil(got.Inventory)
	suite.Equal(50, *got.Inventory)

	_, err = suite.service.GetByID(ctx, product.ID+100)
	suite.Equal(utils.KindNotFound, utils.KindOf(err))
}

func (suite *productServiceSuite) TestGetByID_InactiveStillResolves() {
	product := testutil.CreateProduct(suite.T(), suite.db, "5.00", nil, false)

	got, err := suite.service.GetByID(context.Background(), product.ID)
	suite.Require().NoError(err)
	suite.False(got.Active)
}

func (suite *productServiceSuite) TestGetMany() {
	ctx := context.Background()
	a := testutil.CreateProduct(suite.T(), suite.db, "1.00", nil, true)
	b := testutil.CreateProduct(suite.T(), suite.db, "2.00", nil, false)

	found, err := suite.service.GetMany(ctx, []uint{a.ID, b.ID, a.ID, 9999})
	suite.Require().NoError(err)
	suite.Len(found, 2)
	suite.Contains(found, a.ID)
	suite.Contains(found, b.ID)

	empty, err := suite.service.GetMany(ctx, nil)
	suite.Require().NoError(err)
	suite.Empty(empty)
}

func (suite *productServiceSuite) TestCreate() {
	ctx := context.Background()

	tests := []struct {
		name      string
		req       services.CreateProductRequest
		wantKind  *utils.ErrorKind
		wantCheck func(p *models.Product)
	}{
		{
			name: "defaults to active: ok",
			req: services.CreateProductRequest{
				Name:      "Reef Blob",
				Price:     decimal.RequireFromString("19.995"),
				Inventory: testutil.Stock(3),
			},
			wantCheck: func(p *models.Product) {
				suite.True(p.Active)
				suite.Equal("20", p.Price.String())
				suite.Equal(3, *p.Inventory)
			},
		},
		{
			name: "explicitly inactive, unlimited: ok",
			req: services.CreateProductRequest{
				Name:     "Draft Blob",
				Price:    decimal.RequireFromString("1.50"),
				ImageURL: "https://cdn.example.com/draft.png",
				Active:   lo.ToPtr(false),
			},
			wantCheck: func(p *models.Product) {
				suite.False(p.Active)
				suite.Nil(p.Inventory)
			},
		},
		{
			name:     "zero price: fail",
			req:      services.CreateProductRequest{Name: "Free Blob", Price: decimal.Zero},
			wantKind: lo.ToPtr(utils.KindInvalidRequest),
		},
		{
			name: "negative inventory: fail",
			req: services.CreateProductRequest{
				Name:      "Debt Blob",
				Price:     decimal.RequireFromString("1.00"),
				Inventory: testutil.Stock(-1),
			},
			wantKind: lo.ToPtr(utils.KindInvalidRequest),
		},
		{
			name: "bad image reference: fail",
			req: services.CreateProductRequest{
				Name:     "Broken Blob",
				Price:    decimal.RequireFromString("1.00"),
				ImageURL: "ftp://example.com/a.png",
			},
			wantKind: lo.ToPtr(utils.KindInvalidRequest),
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			req := tt.req
			product, err := suite.service.Create(ctx, &req)
			if tt.wantKind != nil {
				suite.Require().Error(err)
				suite.Equal(*tt.wantKind, utils.KindOf(err))
				return
			}

			suite.Require().NoError(err)
			stored := testutil.ReloadProduct(suite.T(), suite.db, product.ID)
			tt.wantCheck(&stored)
		})
	}
}

func (suite *productServiceSuite) TestUpdate() {
	ctx := context.Background()
	product := testutil.CreateProduct(suite.T(), suite.db, "29.99", testutil.Stock(50), true)

	updated, err := suite.service.Update(ctx, product.ID, &services.UpdateProductRequest{
		Price:     lo.ToPtr(decimal.RequireFromString("24.50")),
		Inventory: testutil.Stock(0),
	})
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("24.50").Equal(updated.Price))
	suite.Require().NotNil(updated.Inventory)
	suite.Equal(0, *updated.Inventory)
	suite.Equal(product.Name, updated.Name)
	suite.True(updated.Active)

	updated, err = suite.service.Update(ctx, product.ID, &services.UpdateProductRequest{
		UnlimitedInventory: true,
		Inventory:          testutil.Stock(7),
	})
	suite.Require().NoError(err)
	suite.Nil(updated.Inventory)
}

func (suite *productServiceSuite) TestUpdate_Errors() {
	ctx := context.Background()
	product := testutil.CreateProduct(suite.T(), suite.db, "29.99", nil, true)

	_, err := suite.service.Update(ctx, product.ID+1, &services.UpdateProductRequest{Name: lo.ToPtr("Ghost")})
	suite.Equal(utils.KindNotFound, utils.KindOf(err))

	_, err = suite.service.Update(ctx, product.ID, &services.UpdateProductRequest{Name: lo.ToPtr("")})
	suite.Equal(utils.KindInvalidRequest, utils.KindOf(err))

	_, err = suite.service.Update(ctx, product.ID, &services.UpdateProductRequest{Price: lo.ToPtr(decimal.Zero)})
	suite.Equal(utils.KindInvalidRequest, utils.KindOf(err))
}

func (suite *productServiceSuite) TestDeactivate() {
	ctx := context.Background()
	product := testutil.CreateProduct(suite.T(), suite.db, "29.99", testutil.Stock(1), true)

	deactivated, err := suite.service.Deactivate(ctx, product.ID)
	suite.Require().NoError(err)
	suite.False(deactivated.Active)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Product{}).Where("id = ?", product.ID).Count(&count).Error)
	suite.Equal(int64(1), count, "deactivation keeps the row")

	active, err := suite.service.ListActive(ctx)
	suite.Require().NoError(err)
	suite.Empty(active)
}

func (suite *productServiceSuite) TestListAll() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		testutil.CreateProduct(suite.T(), suite.db, "1.00", nil, i%2 == 0)
	}

	params := utils.NormalizePagination(utils.PaginationParams{Page: 1, Limit: 2})
	products, total, err := suite.service.ListAll(ctx, params)
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(products, 2)

	params.Page = 2
	products, _, err = suite.service.ListAll(ctx, params)
	suite.Require().NoError(err)
	suite.Len(products, 1)
}

func TestProductUnitAmount(t *testing.T) {
	tests := map[string]int64{
		"29.99": 2999,
		"34.50": 3450,
		"4.99":  499,
		"0.1":   10,
		"1":     100,
	}
	for price, want := range tests {
		p := models.Product{Price: decimal.RequireFromString(price)}
		require.Equal(t, want, p.UnitAmount("usd"), price)
	}

	yen := models.Product{Price: decimal.RequireFromString("1000")}
	require.Equal(t, int64(1000), yen.UnitAmount("jpy"))
}
