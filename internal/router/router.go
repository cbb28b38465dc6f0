// internal/router/router.go
package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/javajoker/blob-shop/internal/config"
	"github.com/javajoker/blob-shop/internal/handlers"
	"github.com/javajoker/blob-shop/internal/middleware"
	"github.com/javajoker/blob-shop/internal/services"
	"github.com/javajoker/blob-shop/internal/utils"
)

// Dependencies are the collaborators that talk to the outside world.
type Dependencies struct {
	PaymentProvider services.PaymentProvider
	// Notifier may be nil, which disables order confirmation emails.
	Notifier services.OrderNotifier
}

// Initialize builds the HTTP engine. The returned cleanup stops background
// goroutines owned by the middleware.
func Initialize(db *gorm.DB, cfg *config.Config, deps Dependencies) (*gin.Engine, func(), error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	signer := utils.NewJWTSigner(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)

	productService := services.NewProductService(db)
	checkoutService := services.NewCheckoutService(productService, deps.PaymentProvider, cfg)
	webhookService := services.NewWebhookService(db, productService, deps.Notifier, cfg.Stripe.WebhookSecret)
	orderService := services.NewOrderService(db, deps.PaymentProvider)
	authService := services.NewAuthService(&cfg.Admin, signer)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	productHandler := handlers.NewProductHandler(productService, storageService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	authHandler := handlers.NewAuthHandler(authService)

	generalLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	authLimiter := middleware.NewRateLimiter(rate.Every(12*time.Second), 5)   // 5 logins per minute
	uploadLimiter := middleware.NewRateLimiter(rate.Every(6*time.Second), 10) // 10 uploads per minute
	cleanup := func() {
		generalLimiter.Close()
		authLimiter.Close()
		uploadLimiter.Close()
	}

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL, cfg.IsProduction()))
	r.Use(middleware.I18nMiddleware())

	r.GET("/health", healthHandler.Health)

	if !storageService.UsesS3() {
		r.Static("/uploads", cfg.Frontend.UploadsDir)
	}

	api := r.Group("/api")
	{
		// Not rate limited: deliveries arrive in bursts from Stripe's shared IPs.
		api.POST("/webhook", webhookHandler.HandleStripeWebhook)

		public := api.Group("")
		public.Use(generalLimiter.Middleware())
		{
			public.GET("/products", productHandler.GetProducts)
			public.GET("/products/:id", productHandler.GetProduct)
			public.POST("/create-checkout-session", checkoutHandler.CreateCheckoutSession)
			public.GET("/order/:sessionId", orderHandler.GetOrder)
		}

		admin := api.Group("/admin")
		admin.Use(generalLimiter.Middleware())
		{
			admin.POST("/login", authLimiter.Middleware(), authHandler.Login)

			protected := admin.Group("")
			protected.Use(middleware.AdminRequired(signer))
			protected.Use(middleware.AuditLogMiddleware(db))
			{
				protected.GET("/orders", orderHandler.GetOrders)
				protected.GET("/products", productHandler.GetAllProducts)
				protected.POST("/products", productHandler.CreateProduct)
				protected.PUT("/products/:id", productHandler.UpdateProduct)
				protected.DELETE("/products/:id", productHandler.DeactivateProduct)
				protected.POST("/products/images", uploadLimiter.Middleware(), productHandler.UploadProductImage)
			}
		}
	}

	return r, cleanup, nil
}
