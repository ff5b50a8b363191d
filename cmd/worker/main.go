package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dailyfresh/storefront/internal/catalog"
	"github.com/dailyfresh/storefront/internal/config"
	"github.com/dailyfresh/storefront/internal/postgres"
	"github.com/dailyfresh/storefront/internal/redisx"
	"github.com/dailyfresh/storefront/internal/tasks"
)

func main() {
	_ = godotenv.Load()
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	must(err)
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	w := &tasks.Worker{
		Redis:   rdb,
		Mailer:  tasks.LogMailer{BaseURL: getenv("PUBLIC_URL", "http://localhost:8081")},
		Catalog: catalog.NewService(&catalog.Repo{DB: db}, rdb),
		Service: cfg.ServiceName + "-worker",
	}

	group := getenv("WORKER_GROUP", "storefront-worker")
	workers := mustAtoi(os.Getenv("WORKER_COUNT"), "4")

	emailCons := tasks.NewConsumer(cfg.KafkaBrokers, group, tasks.TopicEmail, workers)
	catalogCons := tasks.NewConsumer(cfg.KafkaBrokers, group, tasks.TopicCatalog, workers)

	start := func(name string, c *tasks.Consumer, h tasks.Handler) {
		go func() {
			log.Info().Str("consumer", name).Str("group", group).Int("workers", workers).Msg("consumer started")
			if err := c.Start(ctx, h); err != nil {
				log.Error().Err(err).Str("consumer", name).Msg("consumer exit")
				cancel()
			}
		}()
	}
	start("email", emailCons, w.HandleEmail)
	start("catalog", catalogCons, w.HandleCatalog)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Warn().Msg("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
