package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/addresses"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/internal/wishlist"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/env"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      logger.ParseFormat(cfg.App.LogFormat),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	userRepo := users.NewRepository(dbClient.DB(), users.RepositoryOptions{
		MaxMutateAttempts: cfg.Aggregate.MaxMutateAttempts,
		Metrics:           metrics.NewAggregateMetrics(registry),
		Logger:            logg,
	})
	productRepo := products.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	categoryService, err := categories.NewService(categories.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}

	productService, err := products.NewService(products.ServiceParams{
		Repo:       productRepo,
		Categories: categoryService,
	})
	if err != nil {
		return err
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Users:           userRepo,
		Products:        productRepo,
		MaxLineQuantity: cfg.Cart.MaxLineQuantity,
	})
	if err != nil {
		return err
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Users:           userRepo,
		Products:        productRepo,
		MaxLineQuantity: cfg.Cart.MaxLineQuantity,
	})
	if err != nil {
		return err
	}

	addressService, err := addresses.NewService(userRepo)
	if err != nil {
		return err
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Tx:       dbClient,
		Repo:     orders.NewRepository(dbClient.DB()),
		Users:    userRepo,
		Products: productRepo,
		Config:   cfg.Orders,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.Params{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		SessionChecker: sessionManager,
		Gatherer:       registry,
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		Auth:           authService,
		Categories:     categoryService,
		Products:       productService,
		Cart:           cartService,
		Wishlist:       wishlistService,
		Addresses:      addressService,
		Orders:         orderService,
	})

	port := env.Get(cfg.App.Port, "PORT")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(logCtx, "starting api server")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
