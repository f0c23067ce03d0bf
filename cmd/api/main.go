package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	adminapp "github.com/dwikikusuma/storefront/internal/admin/app"
	adminapi "github.com/dwikikusuma/storefront/internal/admin/httpapi"
	adminpg "github.com/dwikikusuma/storefront/internal/admin/infra/postgres"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartapi "github.com/dwikikusuma/storefront/internal/cart/httpapi"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	cartpg "github.com/dwikikusuma/storefront/internal/cart/infra/postgres"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogapi "github.com/dwikikusuma/storefront/internal/catalog/httpapi"
	catalogpg "github.com/dwikikusuma/storefront/internal/catalog/infra/postgres"

	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutapi "github.com/dwikikusuma/storefront/internal/checkout/httpapi"
	checkoutadapter "github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"

	customerapp "github.com/dwikikusuma/storefront/internal/customer/app"
	customerapi "github.com/dwikikusuma/storefront/internal/customer/httpapi"
	customerpg "github.com/dwikikusuma/storefront/internal/customer/infra/postgres"

	inventoryapp "github.com/dwikikusuma/storefront/internal/inventory/app"
	inventorypg "github.com/dwikikusuma/storefront/internal/inventory/infra/postgres"

	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderapi "github.com/dwikikusuma/storefront/internal/order/httpapi"
	orderpg "github.com/dwikikusuma/storefront/internal/order/infra/postgres"

	paymentapp "github.com/dwikikusuma/storefront/internal/payment/app"
	paymentapi "github.com/dwikikusuma/storefront/internal/payment/httpapi"
	paymentpg "github.com/dwikikusuma/storefront/internal/payment/infra/postgres"

	"github.com/dwikikusuma/storefront/internal/httpapi"
	"github.com/dwikikusuma/storefront/migrations"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/idempotency"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/dwikikusuma/storefront/pkg/session"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "api", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db := mustDB(log, cfg)
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := migrations.Up(db); err != nil {
			log.Error("migrate failed", slog.Any("err", err))
			os.Exit(1)
		}
		log.Info("migrations applied")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	verifier := customerapp.NewVerifier(cfg.BcryptCost)
	sessionStore := session.NewRedisStore(rdb)
	customerSessions := &session.Manager{
		Store:  sessionStore,
		Cookie: session.CustomerCookie,
		Role:   session.RoleCustomer,
		TTL:    cfg.SessionTTL,
		Secure: cfg.SessionCookieSecure,
	}
	adminSessions := &session.Manager{
		Store:  sessionStore,
		Cookie: session.AdminCookie,
		Role:   session.RoleAdmin,
		TTL:    cfg.SessionTTL,
		Secure: cfg.SessionCookieSecure,
	}

	// Catalog
	catalogSvc := catalogapp.NewService(catalogpg.NewProductRepo(db))

	// Inventory
	ledger := inventoryapp.NewLedger(inventorypg.NewStockRepo(db))

	// Customers and admins
	customerSvc := customerapp.NewService(customerpg.NewCustomerRepo(db), verifier)
	adminSvc := adminapp.NewService(adminpg.NewAdminRepo(db), verifier)

	// Payment options
	paymentSvc := paymentapp.NewService(paymentpg.NewOptionRepo(db))

	// Cart
	cartSvc := cartapp.NewService(cartpg.NewCartRepo(db), cartadapter.NewCatalogPricer(catalogSvc), ledger)

	// Orders
	orderSvc := orderapp.NewService(orderpg.NewOrderRepo(db))

	// Checkout (adapters)
	checkoutSvc := checkoutapp.NewService(checkoutapp.Deps{
		Cart:        checkoutadapter.NewCartServiceReader(cartSvc),
		Stock:       ledger,
		Catalog:     checkoutadapter.NewCatalogServiceReader(catalogSvc),
		Customers:   checkoutadapter.NewCustomerServiceReader(customerSvc),
		Verifier:    verifier,
		Payments:    checkoutadapter.NewPaymentOptionReader(paymentSvc),
		Orders:      orderSvc,
		Idempotency: idempotency.NewRedisStore(rdb),
		Metrics:     metrics.NewCheckoutMetrics(reg),
	}, checkoutapp.Options{
		MaxConcurrent:        cfg.CheckoutMaxConcurrent,
		RequirePaymentOption: cfg.CheckoutRequirePaymentOption,
		IdempotencyTTL:       cfg.IdempotencyTTL,
	})

	router := httpapi.NewRouter(httpapi.Options{
		Log:              log,
		RequestTimeout:   cfg.RequestTimeout,
		CustomerSessions: customerSessions,
		AdminSessions:    adminSessions,
		Metrics:          metrics.NewServerMetrics(reg, "api"),
		Gatherer:         reg,
		Readiness: []httpapi.ReadinessCheck{
			{Name: "postgres", Check: db.PingContext},
			{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
	}, httpapi.Handlers{
		Customers: customerapi.NewHandler(customerSvc, customerSessions),
		Admins:    adminapi.NewHandler(adminSvc, adminSessions),
		Catalog:   catalogapi.NewHandler(catalogSvc),
		Payments:  paymentapi.NewHandler(paymentSvc),
		Cart:      cartapi.NewHandler(cartSvc),
		Checkout:  checkoutapi.NewHandler(checkoutSvc),
		Orders:    orderapi.NewHandler(orderSvc),
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("listen failed", slog.Any("err", err), slog.String("addr", grpcAddr))
		os.Exit(1)
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", httpAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("grpc health starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		healthSrv.Shutdown()

		shutdown.Run(log, 10*time.Second,
			shutdown.Step{Name: "http", Graceful: server.Shutdown, Force: func() { _ = server.Close() }},
			shutdown.Step{
				Name: "grpc",
				Graceful: func(context.Context) error {
					grpcServer.GracefulStop()
					return nil
				},
				Force: grpcServer.Stop,
			},
		)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
	}
	log.Info("bye")
}

func mustDB(log *slog.Logger, cfg config.Config) *sql.DB {
	db, err := postgres.Open(postgres.Config{URL: cfg.DatabaseURL, MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	return db
}
