// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/blob-shop/internal/config"
	"github.com/javajoker/blob-shop/internal/database"
	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/logger"
	"github.com/javajoker/blob-shop/internal/router"
	"github.com/javajoker/blob-shop/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Setup(cfg.Log)

	// Initialize i18n
	if err := i18n.Initialize(); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	if cfg.Database.SeedDemo {
		if err := database.SeedInitialData(db); err != nil {
			logrus.WithError(err).Fatal("Failed to seed demo data")
		}
	}

	if cfg.Stripe.SecretKey == "" {
		logrus.Warn("STRIPE_SECRET_KEY is not set; checkout requests will fail")
	}
	if cfg.Stripe.WebhookSecret == "" {
		logrus.Warn("STRIPE_WEBHOOK_SECRET is not set; every webhook delivery will be rejected")
	}

	deps := router.Dependencies{
		PaymentProvider: services.NewStripeProvider(cfg.Stripe.SecretKey),
	}
	if notifier := services.NewNotificationService(cfg); notifier.Enabled() {
		deps.Notifier = notifier
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r, cleanup, err := router.Initialize(db, cfg, deps)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize router")
	}
	defer cleanup()

	// Create HTTP server
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}
