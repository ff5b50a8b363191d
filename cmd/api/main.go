package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dailyfresh/storefront/internal/cart"
	"github.com/dailyfresh/storefront/internal/catalog"
	"github.com/dailyfresh/storefront/internal/config"
	"github.com/dailyfresh/storefront/internal/httpx"
	"github.com/dailyfresh/storefront/internal/orders"
	"github.com/dailyfresh/storefront/internal/payment"
	"github.com/dailyfresh/storefront/internal/postgres"
	"github.com/dailyfresh/storefront/internal/redisx"
	"github.com/dailyfresh/storefront/internal/tasks"
	"github.com/dailyfresh/storefront/internal/users"
)

func main() {
	_ = godotenv.Load()
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	must(err)
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Task producers
	emailProd := tasks.NewProducer(cfg.KafkaBrokers, tasks.TopicEmail, cfg.ServiceName, 1024)
	emailProd.Start(ctx)
	catalogProd := tasks.NewProducer(cfg.KafkaBrokers, tasks.TopicCatalog, cfg.ServiceName, 1024)
	catalogProd.Start(ctx)

	// Services
	catalogSvc := catalog.NewService(&catalog.Repo{DB: db}, rdb)
	cartStore := &cart.Store{R: rdb}
	cartSvc := &cart.Service{Store: cartStore, Products: catalogSvc}
	userRepo := &users.Repo{DB: db}
	userSvc := &users.Service{
		Store:         userRepo,
		KV:            users.RedisKV{R: rdb},
		Tasks:         emailProd,
		SessionTTL:    cfg.SessionTTL,
		ActivationTTL: cfg.ActivationTTL,
	}
	orderRepo := &orders.Repo{DB: db}
	orderSvc := &orders.Service{
		Orders:       orderRepo,
		Repo:         orderRepo,
		Cart:         cartStore,
		Addresses:    userRepo,
		Products:     catalogSvc,
		Catalog:      catalogSvc,
		Tasks:        catalogProd,
		TransitPrice: cfg.TransitPrice,
	}
	paySvc := payment.NewService(orderRepo,
		payment.NewAlipayGateway(cfg.GatewayURL, cfg.GatewayAppID),
		cfg.CheckAttempts, cfg.CheckDelay)

	// Router & handlers
	router := httpx.NewRouter()
	auth := &httpx.Auth{Sessions: userSvc}
	v := httpx.NewValidator()
	(&httpx.UserHandler{Users: userSvc, Repo: userRepo, Catalog: catalogSvc, Auth: auth, Validate: v}).Register(router)
	(&httpx.CatalogHandler{Catalog: catalogSvc, Cart: cartStore, Auth: auth}).Register(router)
	(&httpx.CartHandler{Cart: cartSvc, Auth: auth, Validate: v}).Register(router)
	(&httpx.OrderHandler{Orders: orderSvc, Auth: auth, Validate: v}).Register(router)
	(&httpx.PaymentHandler{Payments: paySvc, Auth: auth, Validate: v}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Warn().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	emailProd.Close() // tutup inbox -> flush & close writer
	catalogProd.Close()
	cancel() // stop producer loops
	emailProd.WaitClosed()
	catalogProd.WaitClosed()
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
