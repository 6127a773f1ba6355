package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-flash-sale.git/internal/auth"
	"github.com/ariefcatur/go-flash-sale.git/internal/clock"
	"github.com/ariefcatur/go-flash-sale.git/internal/config"
	"github.com/ariefcatur/go-flash-sale.git/internal/flashsale"
	"github.com/ariefcatur/go-flash-sale.git/internal/httpx"
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
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer: event order completed
	prod := kafkax.NewProducer(cfg.KafkaBrokers, flashsale.TopicOrderCompleted, 1024)
	prod.Start(ctx)

	// Services
	flashRepo := &flashsale.Repo{DB: db, LockTimeout: cfg.LockTimeout}
	reconciler := &inventory.Service{
		Store:       &inventory.Repo{DB: db},
		Redis:       rdb,
		ServiceName: cfg.ServiceName,
	}
	sales := &flashsale.Service{
		Store:       flashRepo,
		Clock:       clock.Real{},
		Producer:    prod,
		Reconciler:  reconciler,
		ServiceName: cfg.ServiceName,
	}
	authSvc := &auth.Service{
		Repo:       &auth.Repo{DB: db},
		Redis:      rdb,
		OTPLength:  cfg.OTPLength,
		OTPTTL:     cfg.OTPTTL,
		SessionTTL: cfg.SessionTTL,
	}

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.AuthHandler{Auth: authSvc}).Register(router)
	(&httpx.SaleHandler{
		Sales:  sales,
		Orders: flashRepo,
		Redis:  rdb,
		Auth:   httpx.RequireAuth(authSvc),
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
