package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	marketserver "github.com/Apurer/go-gin-marketplace-server/go"

	catalogclient "github.com/Apurer/go-gin-marketplace-server/internal/clients/http/catalog"
	catalogmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/catalog/adapters/memory"
	catalogports "github.com/Apurer/go-gin-marketplace-server/internal/domains/catalog/ports"

	cartmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/memory"
	cartobs "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/observability"
	cartpostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/persistence/postgres"
	cartapp "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/application"
	cartports "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"

	ordersmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/ports"

	checkoutmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/adapters/memory"
	checkoutpostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/adapters/persistence/postgres"
	checkoutworkflows "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/adapters/workflows"
	checkoutapp "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/application"
	checkoutports "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/ports"

	platformobservability "github.com/Apurer/go-gin-marketplace-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-marketplace-server/internal/platform/postgres"
)

// Run boots the marketplace HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "marketplace-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := connectPostgres(ctx, cfg, logger)
	defer cleanupDB()

	catalog := buildCatalog(cfg, logger)
	cartRepo := buildCartRepository(db, logger)
	orderRepo, orderPostgres := buildOrderRepository(db, logger)

	coreCartService := cartapp.NewService(cartRepo, catalog, cartapp.WithGuestTTL(cfg.GuestCartTTL))
	cartService := cartobs.New(
		coreCartService,
		cartobs.WithLogger(logger),
		cartobs.WithTracer(instruments.Tracer("internal.cart.application")),
		cartobs.WithMeter(instruments.Meter("internal.cart.application")),
	)

	coreOrderService := ordersapp.NewService(orderRepo)
	orderService := ordersobs.New(
		coreOrderService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	checkoutService := buildCheckoutService(cfg, db, cartRepo, catalog, orderRepo, orderPostgres, logger)
	var checkoutOrchestrator checkoutports.Orchestrator = checkoutworkflows.NewInlineCheckout(checkoutService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running checkout inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		checkoutOrchestrator = checkoutworkflows.NewTemporalCheckout(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := marketserver.ApiHandleFunctions{
		CartAPI:     marketserver.NewCartAPI(cartService),
		CheckoutAPI: marketserver.NewCheckoutAPI(checkoutService, checkoutOrchestrator),
		OrderAPI:    marketserver.NewOrderAPI(orderService),
	}

	router := marketserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("marketplace API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("marketplace API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func buildCatalog(cfg Config, logger *slog.Logger) catalogports.Catalog {
	if cfg.CatalogURL == "" {
		logger.Warn("CATALOG_URL not set, falling back to seeded in-memory catalog")
		return catalogmemory.NewCatalog(demoProducts()...)
	}
	client, err := catalogclient.NewClient(cfg.CatalogURL, nil)
	if err != nil {
		logger.Warn("failed to build catalog client, falling back to seeded in-memory catalog", slog.String("error", err.Error()))
		return catalogmemory.NewCatalog(demoProducts()...)
	}
	logger.Info("catalog configured over HTTP", slog.String("url", cfg.CatalogURL))
	return client
}

func connectPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres connection established")
	return db, func() { _ = sqlDB.Close() }
}

func buildCartRepository(db *gorm.DB, logger *slog.Logger) cartports.Repository {
	if db == nil {
		logger.Warn("cart repository falling back to memory")
		return cartmemory.NewRepository()
	}
	logger.Info("cart repository configured with postgres")
	return cartpostgres.NewRepository(db)
}

func buildOrderRepository(db *gorm.DB, logger *slog.Logger) (ordersports.Repository, *orderspostgres.Repository) {
	if db == nil {
		logger.Warn("order repository falling back to memory")
		return ordersmemory.NewRepository(), nil
	}
	logger.Info("order repository configured with postgres")
	repo := orderspostgres.NewRepository(db)
	return repo, repo
}

func buildCheckoutService(cfg Config, db *gorm.DB, carts cartports.Repository, catalog catalogports.Catalog, orders ordersports.Repository, orderPostgres *orderspostgres.Repository, logger *slog.Logger) checkoutports.Service {
	policy := checkoutapp.Policy{TaxRate: cfg.TaxRate, ShippingCost: cfg.ShippingFlat}
	var store checkoutports.Store
	var idempotency checkoutports.IdempotencyStore
	if db != nil && orderPostgres != nil {
		store = checkoutpostgres.NewStore(db, orderPostgres)
		idempotency = checkoutpostgres.NewIdempotencyStore(db)
		logger.Info("checkout store configured with postgres")
	} else {
		store = checkoutmemory.NewStore(carts, orders)
		idempotency = checkoutmemory.NewIdempotencyStore()
		logger.Warn("checkout store falling back to memory")
	}
	return checkoutapp.NewService(
		carts, catalog, orders, store,
		checkoutapp.WithPolicy(policy),
		checkoutapp.WithIdempotencyStore(idempotency),
	)
}

// demoProducts seeds the in-memory catalog so local runs without a catalog
// service can still exercise the cart and checkout paths.
func demoProducts() []catalogports.Product {
	return []catalogports.Product{
		{ID: "prod-1001", Name: "Industrial Bolt Pack", Price: 10.00, Status: catalogports.ProductActive, MinOrderQuantity: 1, Stock: 500, SupplierID: "sup-100"},
		{ID: "prod-1002", Name: "Stainless Sheet 2mm", Price: 45.50, Status: catalogports.ProductActive, MinOrderQuantity: 5, Stock: 120, SupplierID: "sup-100"},
		{ID: "prod-2001", Name: "Pallet Wrap Roll", Price: 7.25, Status: catalogports.ProductActive, MinOrderQuantity: 10, Stock: 1000, SupplierID: "sup-200"},
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
