package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stridewear/stridewear-backend/api/routes"
	"github.com/stridewear/stridewear-backend/internal/cart"
	"github.com/stridewear/stridewear-backend/internal/catalog"
	"github.com/stridewear/stridewear-backend/internal/customers"
	"github.com/stridewear/stridewear-backend/internal/dashboard"
	"github.com/stridewear/stridewear-backend/internal/employees"
	"github.com/stridewear/stridewear-backend/internal/favorites"
	"github.com/stridewear/stridewear-backend/internal/imports"
	"github.com/stridewear/stridewear-backend/internal/orders"
	"github.com/stridewear/stridewear-backend/internal/products"
	"github.com/stridewear/stridewear-backend/internal/reviews"
	"github.com/stridewear/stridewear-backend/internal/shipping"
	"github.com/stridewear/stridewear-backend/internal/variants"
	"github.com/stridewear/stridewear-backend/pkg/config"
	"github.com/stridewear/stridewear-backend/pkg/db"
	"github.com/stridewear/stridewear-backend/pkg/logger"
	"github.com/stridewear/stridewear-backend/pkg/metrics"
	"github.com/stridewear/stridewear-backend/pkg/migrate"
	"github.com/stridewear/stridewear-backend/pkg/redis"
	"github.com/stridewear/stridewear-backend/pkg/storage/images"
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
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	imageClient, err := images.NewClient(context.Background(), cfg.ImageStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap image store client", err)
		os.Exit(1)
	}

	shippingClient, err := shipping.NewHTTPClient(cfg.Logistics)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap shipping client", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	variantRepo := variants.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	customerRepo := customers.NewRepository(conn)
	employeeRepo := employees.NewRepository(conn)
	importRepo := imports.NewRepository(conn)
	reviewRepo := reviews.NewRepository(conn)
	favoriteRepo := favorites.NewRepository(conn)
	dashboardRepo := dashboard.NewRepository(conn)

	shippingService, err := shipping.NewService(shippingClient, redisClient, cfg.Logistics, logg)
	requireService(logg, "shipping", err)

	catalogService, err := catalog.NewService(catalogRepo, imageClient, cfg.ImageStore, logg)
	requireService(logg, "catalog", err)

	productService, err := products.NewService(productRepo, dbClient, catalogRepo, catalogRepo)
	requireService(logg, "products", err)

	variantService, err := variants.NewService(variantRepo, productRepo, imageClient, cfg.ImageStore, logg)
	requireService(logg, "variants", err)

	cartService, err := cart.NewService(cartRepo, productRepo, variantRepo)
	requireService(logg, "cart", err)

	orderService, err := orders.NewService(orderRepo, dbClient, cartRepo, productRepo, customerRepo, employeeRepo, shippingService, imageClient, cfg.ImageStore, logg)
	requireService(logg, "orders", err)

	customerService, err := customers.NewService(customerRepo, dbClient, redisClient, cfg.JWT, cfg.AuthRateLimit, logg)
	requireService(logg, "customers", err)

	employeeService, err := employees.NewService(employeeRepo, cfg.JWT)
	requireService(logg, "employees", err)

	importService, err := imports.NewService(importRepo, dbClient, productRepo, variantRepo, employeeRepo)
	requireService(logg, "imports", err)

	reviewService, err := reviews.NewService(reviewRepo, orderRepo, productService)
	requireService(logg, "reviews", err)

	favoriteService, err := favorites.NewService(favoriteRepo, productRepo)
	requireService(logg, "favorites", err)

	dashboardService, err := dashboard.NewService(dashboardRepo)
	requireService(logg, "dashboard", err)

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, metricsHandler, routes.Services{
			Customers: customerService,
			Employees: employeeService,
			Catalog:   catalogService,
			Products:  productService,
			Variants:  variantService,
			Cart:      cartService,
			Orders:    orderService,
			Shipping:  shippingService,
			Reviews:   reviewService,
			Favorites: favoriteService,
			Imports:   importService,
			Dashboard: dashboardService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
