package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"

	authapp "github.com/dwikikusuma/foodstore/internal/auth/app"
	authhandler "github.com/dwikikusuma/foodstore/internal/auth/handler"
	"github.com/dwikikusuma/foodstore/internal/auth/infra/identity"
	"github.com/dwikikusuma/foodstore/internal/auth/token"

	cartapp "github.com/dwikikusuma/foodstore/internal/cart/app"
	carthandler "github.com/dwikikusuma/foodstore/internal/cart/handler"
	cartadapter "github.com/dwikikusuma/foodstore/internal/cart/infra/adapter"
	cartmem "github.com/dwikikusuma/foodstore/internal/cart/infra/memory"

	catalogapp "github.com/dwikikusuma/foodstore/internal/catalog/app"
	cataloghandler "github.com/dwikikusuma/foodstore/internal/catalog/handler"
	catalogfile "github.com/dwikikusuma/foodstore/internal/catalog/infra/file"
	catalogkafka "github.com/dwikikusuma/foodstore/internal/catalog/infra/kafka"

	checkoutapp "github.com/dwikikusuma/foodstore/internal/checkout/app"
	checkoutdomain "github.com/dwikikusuma/foodstore/internal/checkout/domain"
	checkouthandler "github.com/dwikikusuma/foodstore/internal/checkout/handler"
	checkoutadapter "github.com/dwikikusuma/foodstore/internal/checkout/infra/adapter"
	checkoutmem "github.com/dwikikusuma/foodstore/internal/checkout/infra/memory"

	orderapp "github.com/dwikikusuma/foodstore/internal/order/app"
	orderhandler "github.com/dwikikusuma/foodstore/internal/order/handler"
	ordermem "github.com/dwikikusuma/foodstore/internal/order/infra/memory"
	orderpg "github.com/dwikikusuma/foodstore/internal/order/infra/postgres"

	"github.com/dwikikusuma/foodstore/pkg/config"
	"github.com/dwikikusuma/foodstore/pkg/httpx"
	"github.com/dwikikusuma/foodstore/pkg/logger"
	"github.com/dwikikusuma/foodstore/pkg/postgres"
	"github.com/dwikikusuma/foodstore/pkg/shutdown"
	"github.com/dwikikusuma/foodstore/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Service:   "gateway",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	if err := run(cfg, log); err != nil {
		log.Error("gateway stopped", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tel, err := telemetry.Init(ctx, cfg.Telemetry, cfg.AppEnv)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Warn("telemetry shutdown", slog.Any("err", err))
		}
	}()

	metrics, err := telemetry.NewMetrics(otel.Meter("foodstore"))
	if err != nil {
		return err
	}

	// Receipts
	var (
		pool      *pgxpool.Pool
		orderRepo orderapp.OrderRepo
	)
	if cfg.Database.DSN != "" {
		pool, err = postgres.NewPool(ctx, cfg.Database.DSN, logger.Component(log, "postgres"))
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.Migrate(cfg.Database.MigrationsPath, cfg.Database.DSN, log); err != nil {
			return err
		}
		orderRepo = orderpg.NewOrderRepo(pool)
	} else {
		log.Warn("no database configured, receipts are kept in memory")
		orderRepo = ordermem.NewOrderRepo()
	}
	orderSvc := orderapp.NewService(orderRepo)

	// Catalog
	catalogSvc := catalogapp.NewService(metrics)
	if cfg.Catalog.SeedPath != "" {
		snap, err := catalogfile.Load(cfg.Catalog.SeedPath)
		if err == nil {
			err = catalogSvc.Apply(ctx, snap)
		}
		if err != nil {
			log.Warn("catalog seed not applied", slog.String("path", cfg.Catalog.SeedPath), slog.Any("err", err))
			catalogSvc.Fail(err)
		}
	}

	// Cart
	cartSvc := cartapp.NewService(cartmem.NewCartRepo(), cartadapter.NewCatalogServiceReader(catalogSvc), metrics)

	// Checkout
	policy, err := checkoutdomain.ParsePolicy(
		cfg.Checkout.OfferThreshold,
		cfg.Checkout.OfferDiscount,
		cfg.Checkout.TaxRate,
		cfg.Checkout.DeliveryCharges,
	)
	if err != nil {
		return err
	}
	checkoutSvc := checkoutapp.NewService(
		checkoutadapter.NewCartServiceReader(cartSvc),
		checkoutadapter.NewOrderServiceWriter(orderSvc),
		checkoutmem.NewSessionRepo(),
		policy,
		metrics,
	)

	// Auth
	secret := cfg.Auth.TokenSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn("no token secret configured, sessions will not survive a restart")
	}
	tokens, err := token.NewManager(secret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	provider := identity.NewClient(identity.Config{
		BaseURL: cfg.Identity.BaseURL,
		APIKey:  cfg.Identity.APIKey,
		Timeout: cfg.Identity.Timeout,
	})
	authSvc := authapp.NewService(provider, tokens)
	limiter := authhandler.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst)

	drain := httpx.NewDrain()

	r := chi.NewRouter()
	r.Use(drain.Middleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	if tel.MetricsHandler != nil {
		r.Handle(cfg.Telemetry.MetricsPath, tel.MetricsHandler)
	}

	authhandler.NewHandler(authSvc, limiter).Routes(r)
	cataloghandler.NewHandler(catalogSvc, logger.Component(log, "catalog")).Routes(r)

	r.Group(func(r chi.Router) {
		r.Use(authhandler.RequireSession(tokens))
		carthandler.NewHandler(cartSvc, policy, logger.Component(log, "cart")).Routes(r)
		checkouthandler.NewHandler(checkoutSvc).Routes(r)
		orderhandler.NewHandler(orderSvc).Routes(r)
	})

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           otelhttp.NewHandler(r, "gateway"),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	server.RegisterOnShutdown(drain.Close)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := shutdown.Graceful(gctx, cfg.Server.ShutdownTimeout, server.Shutdown)
		log.Info("http server stopped")
		return err
	})
	g.Go(func() error {
		return limiter.Run(gctx)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := catalogkafka.NewConsumer(catalogkafka.ConsumerConfig{
			Brokers:    cfg.Kafka.Brokers,
			Topic:      cfg.Kafka.CatalogTopic,
			Backoff:    cfg.Kafka.Backoff,
			BackoffCap: cfg.Kafka.BackoffCap,
		}, catalogSvc, logger.Component(log, "catalog-feed"))
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	} else if cfg.Catalog.SeedPath == "" {
		log.Warn("no catalog source configured")
		catalogSvc.Fail(errors.New("no catalog source configured"))
	}

	return g.Wait()
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
