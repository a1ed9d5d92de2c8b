package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/salesman-paypal/internal/api"
	"github.com/yourorg/salesman-paypal/internal/checkout"
	"github.com/yourorg/salesman-paypal/internal/circuitbreaker"
	"github.com/yourorg/salesman-paypal/internal/config"
	"github.com/yourorg/salesman-paypal/internal/logger"
	"github.com/yourorg/salesman-paypal/internal/monitor"
	"github.com/yourorg/salesman-paypal/internal/payment"
	"github.com/yourorg/salesman-paypal/internal/telemetry"
)

// setupRouter wires the PayPal payment method against the given gateway,
// guarded by a circuit breaker, and an in-memory checkout store. Basket
// bodies are checked against the schema at settings.SchemaPath when one is
// configured, and against the built-in basket schema otherwise.
func setupRouter(settings *config.Settings, gw payment.Gateway) (*gin.Engine, error) {
	mon, err := basketMonitor(settings)
	if err != nil {
		return nil, err
	}
	guarded := payment.NewGuardedGateway(gw, circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{}))
	store := checkout.NewInMemoryStore()
	return api.NewRouter(api.Deps{
		Payment:   payment.NewPayPalPayment(guarded, settings),
		Store:     store,
		Fulfiller: checkout.NewFulfiller(store, settings.PaidStatus),
		Monitor:   mon,
		Settings:  settings,
	}), nil
}

func basketMonitor(settings *config.Settings) (*monitor.ContractMonitor, error) {
	if settings.SchemaPath != "" {
		return monitor.NewContractMonitor(settings.SchemaPath)
	}
	return monitor.NewBasketMonitor()
}

func main() {
	settings, err := config.Load()
	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()
	log := logger.L()
	if err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	var traceOut io.Writer = os.Stdout
	if settings.AppEnv == "production" {
		traceOut = io.Discard
	}
	shutdownTracer, err := telemetry.SetupTracer(api.ServiceName, settings.AppEnv, traceOut)
	if err != nil {
		log.Fatal("Failed to set up tracing", zap.Error(err))
	}

	gw, err := payment.NewGateway(settings)
	if err != nil {
		log.Fatal("Failed to create PayPal client", zap.Error(err))
	}

	if settings.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := setupRouter(settings, gw)
	if err != nil {
		log.Fatal("Failed to set up router", zap.Error(err))
	}

	srv := &http.Server{Addr: settings.AppPort, Handler: router}
	go func() {
		log.Info("Starting server",
			zap.String("addr", settings.AppPort),
			zap.String("paypal_api", gw.BaseURL()),
			zap.Bool("sandbox", settings.SandboxMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
