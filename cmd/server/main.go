package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/velvena/velvena/internal/api"
	v1 "github.com/velvena/velvena/internal/api/v1"
	"github.com/velvena/velvena/internal/cache"
	"github.com/velvena/velvena/internal/catalog"
	"github.com/velvena/velvena/internal/config"
	"github.com/velvena/velvena/internal/domain/dress"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	"github.com/velvena/velvena/internal/domain/servicetype"
	"github.com/velvena/velvena/internal/httpclient"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/repository"
	"github.com/velvena/velvena/internal/repository/snapshot"
	"github.com/velvena/velvena/internal/service"
	"github.com/velvena/velvena/internal/types"
	"github.com/velvena/velvena/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// .env is a developer convenience, production reads the real environment
	if os.Getenv("VELVENA_DEPLOYMENT_MODE") != string(types.ModeProduction) {
		_ = godotenv.Load()
	}

	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		// Validator is a package level singleton used by the DTOs
		fx.Invoke(validator.NewValidator),

		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.Initialize,

			// HTTP Client
			provideHTTPClient,

			// Remote catalog
			catalog.NewClient,

			// Repositories
			repository.NewSnapshotStore,
			providePricingRuleRepository,
			provideDressRepository,
			provideServiceTypeRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewPricingService,
			providePriceCalculator,
			service.NewContractService,
		),
	)

	// API layer
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			refreshCatalog,
			startAPIServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHTTPClient(cfg *config.Configuration) httpclient.Client {
	return httpclient.NewDefaultClient(httpclient.ClientConfig{Timeout: cfg.Catalog.Timeout})
}

func providePricingRuleRepository(
	cfg *config.Configuration,
	store *snapshot.Store,
	remote *catalog.Client,
	c cache.Cache,
	log *logger.Logger,
) pricingrule.Repository {
	return repository.NewPricingRuleRepository(cfg, store, remote, c, log)
}

func provideDressRepository(store *snapshot.Store) dress.Repository {
	return store.Dresses()
}

func provideServiceTypeRepository(store *snapshot.Store) servicetype.Repository {
	return store.ServiceTypes()
}

// providePriceCalculator delegates single dress pricing to the remote catalog in remote mode
func providePriceCalculator(
	cfg *config.Configuration,
	pricingService service.PricingService,
	remote *catalog.Client,
	log *logger.Logger,
) service.PriceCalculator {
	if cfg.Catalog.Mode == types.CatalogModeRemote {
		log.Infow("pricing through the remote catalog", "base_url", cfg.Catalog.BaseURL)
		return remote
	}
	log.Infow("pricing in process", "snapshot_path", cfg.Catalog.SnapshotPath)
	return pricingService
}

func provideHandlers(
	logger *logger.Logger,
	pricingService service.PricingService,
	calculator service.PriceCalculator,
	contractService service.ContractService,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(logger),
		Pricing:  v1.NewPricingHandler(pricingService, calculator, logger),
		Contract: v1.NewContractHandler(contractService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

// refreshCatalog pulls the remote rules into the snapshot served by the rule repository.
// A failed refresh keeps the file snapshot.
func refreshCatalog(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	store *snapshot.Store,
	remote *catalog.Client,
	log *logger.Logger,
) {
	if cfg.Catalog.Mode != types.CatalogModeRemote {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := repository.RefreshSnapshot(ctx, store, remote); err != nil {
				log.Warnw("catalog refresh failed, serving the file snapshot", "error", err)
			}
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
