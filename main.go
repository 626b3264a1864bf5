package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"

	"stayops/config"
	"stayops/cron"
	"stayops/database"
	bookingRepoPkg "stayops/database/repository/booking"
	paymentRepoPkg "stayops/database/repository/payment"
	resourceRepoPkg "stayops/database/repository/resource"
	"stayops/handlers"
	"stayops/middleware"
	"stayops/routes"
	"stayops/services/booking"
	"stayops/services/catalog"
	"stayops/services/notification"
	"stayops/services/payment"
	"stayops/services/reporting"
	"stayops/services/tasks"
	"stayops/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	resourceRepo := resourceRepoPkg.NewMongoResourceRepo()
	attemptRepo := paymentRepoPkg.NewMongoPaymentAttemptRepo()

	// services.
	queue := tasks.NewAsynqQueue()

	bookingService := &booking.DefaultBookingService{
		Repo:       bookingRepo,
		Resources:  resourceRepo,
		Queue:      queue,
		Cache:      utils.GetCacheClient(),
		HoldWindow: time.Duration(config.AppConfig.HoldWindowMinutes) * time.Minute,
	}
	catalogService := &catalog.DefaultCatalogService{
		Repo: resourceRepo,
	}
	reconcileService := &payment.DefaultReconcileService{
		Bookings: bookingService,
		Repo:     bookingRepo,
		Attempts: attemptRepo,
	}
	reportingService := &reporting.DefaultReportingService{
		Repo: bookingRepo,
	}
	notificationService := &notification.DefaultNotificationService{}

	// Background worker: hold expiry plus event delivery.
	cron.InitBookingWorker(bookingService, notificationService)

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		Booking:   handlers.NewBookingHandler(bookingService, logger),
		Catalog:   handlers.NewCatalogHandler(catalogService, logger),
		Payment:   handlers.NewPaymentHandler(reconcileService, &payment.StripeGateway{}, logger),
		Reporting: handlers.NewReportingHandler(reportingService, logger),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
