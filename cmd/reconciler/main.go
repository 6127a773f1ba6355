package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-flash-sale.git/internal/config"
	"github.com/ariefcatur/go-flash-sale.git/internal/flashsale"
	"github.com/ariefcatur/go-flash-sale.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-flash-sale.git/internal/kafka"
	"github.com/ariefcatur/go-flash-sale.git/internal/postgres"
	"github.com/ariefcatur/go-flash-sale.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &inventory.Service{
		Store:       &inventory.Repo{DB: db},
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-reconciler",
	}

	group := getenv("RECONCILER_GROUP", "inventory-reconciler")
	// default 1 worker: commit offset serial, redelivery event gagal
	// terjamin. Naikkan hanya kalau throughput perlu; Reconcile idempotent.
	workers := mustAtoi(os.Getenv("RECONCILER_WORKERS"), "1")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, flashsale.TopicOrderCompleted, workers)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("reconciler consumer started: group=%s topic=%s workers=%d", group, flashsale.TopicOrderCompleted, workers)
		errCh <- cons.Start(ctx, svc.HandleOrderCompleted)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Println("shutting down consumer...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Printf("consumer exit: %v", err)
		}
	}
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

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
