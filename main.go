// File: curbside/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curbside/config"
	"curbside/cron"
	"curbside/database"
	billRepo "curbside/database/repository/bill"
	requestRepo "curbside/database/repository/request"
	slotRepo "curbside/database/repository/slot"
	"curbside/handlers"
	"curbside/middleware"
	"curbside/routes"
	"curbside/services/billing"
	"curbside/services/payment"
	"curbside/services/policy"
	"curbside/services/scheduling"
	"curbside/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	slots := slotRepo.NewMongoSlotRepo()
	requests := requestRepo.NewMongoRequestRepo()
	bills := billRepo.NewMongoBillRepo()

	// collaborators.
	policies, err := policy.NewFromConfig()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load item policies: %v", err)
	}
	billingService := &billing.DefaultBillingService{
		Repo:   bills,
		Logger: logger,
	}
	gateway := payment.NewStripeGateway(logger)

	slotCfg := config.SlotSettings()
	schedulingService := &scheduling.DefaultSchedulingService{
		Slots:    slots,
		Requests: requests,
		Policies: policies,
		Billing:  billingService,
		Gateway:  gateway,
		Lock:     utils.GetLockClient(),
		Logger:   logger,
		SlotCfg: scheduling.SlotConfig{
			DaysAhead:       slotCfg.DaysAhead,
			BucketMinutes:   slotCfg.BucketMinutes,
			DayStartMinute:  slotCfg.DayStartMinute,
			DayEndMinute:    slotCfg.DayEndMinute,
			ExcludeWeekends: slotCfg.ExcludeWeekends,
			DefaultCapacity: slotCfg.DefaultCapacity,
		},
		TaxRatePercent: config.AppConfig.TaxRatePercent,
		Currency:       config.AppConfig.Currency,
		SuccessURL:     config.AppConfig.CheckoutSuccessURL,
		CancelURL:      config.AppConfig.CheckoutCancelURL,
	}

	// Background sweep for overdue unpaid bookings.
	cron.InitExpirySweepWorker(schedulingService)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Collection: handlers.NewCollectionHandler(schedulingService, utils.GetCacheClient(), logger),
		Requests:   handlers.NewRequestHandler(requests, logger),
		Policies:   handlers.NewPolicyHandler(policies),
	}

	// Register routes with the assembled handler bundle.
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
