package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appcart "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/application/cart"
	appdelivery "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/application/delivery"
	appinventory "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/application/inventory"
	apporder "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/application/order"
	domcart "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/cart"
	domdelivery "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/delivery"
	domitem "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
	domorder "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/order"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/routing"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/infrastructure/config"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/infrastructure/googlemaps"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/infrastructure/id"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/infrastructure/memory"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/infrastructure/postgres"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/infrastructure/redisstore"
	httppresentation "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/presentation/http"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, otherwise in-process stores.
	var (
		itemRepo     domitem.Repository
		orderRepo    domorder.Repository
		deliveryRepo domdelivery.Repository
		checkout     apporder.CheckoutStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres_connect_failed", zap.Error(err))
		}
		defer pool.Close()
		if err := postgres.InitSchema(ctx, pool); err != nil {
			logger.Fatal("postgres_schema_failed", zap.Error(err))
		}
		itemRepo = postgres.NewItemRepository(pool)
		orderRepo = postgres.NewOrderRepository(pool)
		deliveryRepo = postgres.NewDeliveryRepository(pool)
		checkout = postgres.NewCheckoutStore(pool)
		logger.Info("storage_backend", zap.String("kind", "postgres"))
	} else {
		items := memory.NewItemRepository()
		orders := memory.NewOrderRepository()
		itemRepo = items
		orderRepo = orders
		deliveryRepo = memory.NewDeliveryRepository()
		checkout = memory.NewCheckoutStore(items, orders)
		logger.Info("storage_backend", zap.String("kind", "memory"))
	}

	var cartStore domcart.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis_connect_failed", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		cartStore = redisstore.NewCartStore(client, cfg.CartTTL)
		logger.Info("cart_backend", zap.String("kind", "redis"))
	} else {
		cartStore = memory.NewCartStore()
		logger.Info("cart_backend", zap.String("kind", "memory"))
	}

	planner := googlemaps.NewClient(cfg.MapsAPIKey, routing.Coordinates{
		Lat: cfg.RestaurantLat,
		Lng: cfg.RestaurantLng,
	})

	checkouts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_total",
			Help: "Total number of cart validation attempts.",
		},
		[]string{"outcome"},
	)
	accepts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_accept_total",
			Help: "Total number of delivery acceptance attempts.",
		},
		[]string{"outcome"},
	)
	prometheus.MustRegister(checkouts, accepts)

	httpMetrics := httppresentation.NewMetrics()
	httpMetrics.Register(prometheus.DefaultRegisterer)

	idGen := id.NewUUIDGenerator()
	directory := memory.NewCustomerDirectory()

	cartService := appcart.NewService(cartStore, itemRepo)
	deliveryService := appdelivery.NewService(deliveryRepo, orderRepo, planner, idGen, accepts)
	orderService := apporder.NewService(
		cartStore, itemRepo, checkout, orderRepo, directory, deliveryService, idGen, checkouts,
	)
	inventoryService := appinventory.NewService(itemRepo, idGen)

	handler := httppresentation.NewHandler(
		cartService, orderService, deliveryService, inventoryService, cartStore, logger, httpMetrics,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// Route planning against the maps API can be slow on cold caches.
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		logger.Info("http_server_stopped")
	}
}
