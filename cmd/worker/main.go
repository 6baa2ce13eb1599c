package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-marketplace-server/internal/app/api"
	catalogclient "github.com/Apurer/go-gin-marketplace-server/internal/clients/http/catalog"
	catalogmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/catalog/adapters/memory"
	catalogports "github.com/Apurer/go-gin-marketplace-server/internal/domains/catalog/ports"

	cartmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/memory"
	cartpostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/persistence/postgres"
	cartports "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"

	ordersmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/persistence/postgres"
	ordersports "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/ports"

	checkoutmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/adapters/memory"
	checkoutpostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/adapters/persistence/postgres"
	checkoutapp "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/application"
	checkoutports "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/ports"

	platformobservability "github.com/Apurer/go-gin-marketplace-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-marketplace-server/internal/platform/postgres"
	checkoutactivities "github.com/Apurer/go-gin-marketplace-server/internal/platform/temporal/activities/checkout"
	checkoutworkflows "github.com/Apurer/go-gin-marketplace-server/internal/platform/temporal/workflows/checkout"
)

func main() {
	ctx := context.Background()
	const serviceName = "marketplace-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanupDB()

	checkoutService := buildCheckoutService(cfg, db, logger)
	activities := checkoutactivities.NewActivities(checkoutService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, checkoutworkflows.CheckoutTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(checkoutworkflows.CheckoutWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.CheckoutWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: checkoutactivities.PlaceOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", checkoutworkflows.CheckoutTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildCheckoutService(cfg api.Config, db *gorm.DB, logger *slog.Logger) checkoutports.Service {
	catalog := buildCatalog(cfg, logger)
	var cartRepo cartports.Repository
	var orderRepo ordersports.Repository
	var store checkoutports.Store
	var idempotency checkoutports.IdempotencyStore
	if db != nil {
		cartRepo = cartpostgres.NewRepository(db)
		orders := orderspostgres.NewRepository(db)
		orderRepo = orders
		store = checkoutpostgres.NewStore(db, orders)
		idempotency = checkoutpostgres.NewIdempotencyStore(db)
		logger.Info("worker checkout store configured with postgres")
	} else {
		cartRepo = cartmemory.NewRepository()
		orderRepo = ordersmemory.NewRepository()
		store = checkoutmemory.NewStore(cartRepo, orderRepo)
		idempotency = checkoutmemory.NewIdempotencyStore()
		logger.Warn("worker checkout store falling back to memory")
	}
	return checkoutapp.NewService(
		cartRepo, catalog, orderRepo, store,
		checkoutapp.WithPolicy(checkoutapp.Policy{TaxRate: cfg.TaxRate, ShippingCost: cfg.ShippingFlat}),
		checkoutapp.WithIdempotencyStore(idempotency),
	)
}

func buildCatalog(cfg api.Config, logger *slog.Logger) catalogports.Catalog {
	if cfg.CatalogURL == "" {
		logger.Warn("CATALOG_URL not set, worker using empty in-memory catalog")
		return catalogmemory.NewCatalog()
	}
	client, err := catalogclient.NewClient(cfg.CatalogURL, nil)
	if err != nil {
		logger.Warn("failed to build catalog client, worker using empty in-memory catalog", slog.String("error", err.Error()))
		return catalogmemory.NewCatalog()
	}
	return client
}
