package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inmo-marketplace/internal/config"
	payAdapters "inmo-marketplace/internal/infra/adapters/payment"
	"inmo-marketplace/internal/infra/api"
	pg "inmo-marketplace/internal/infra/db/postgres"
	"inmo-marketplace/internal/infra/logging"
	"inmo-marketplace/internal/infra/metrics"
	red "inmo-marketplace/internal/infra/redis"
	"inmo-marketplace/internal/infra/sched"
	"inmo-marketplace/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	// ---- Repositories ----
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), redisClient, cfg.Redis.TTL)
	subRepo := pg.NewSubscriptionRepo(pool)
	boostRepo := pg.NewBoostRepo(pool)
	productRepo := pg.NewBoostProductRepoCacheDecorator(pg.NewBoostProductRepo(pool), redisClient, cfg.Redis.TTL)
	listingRepo := pg.NewListingRepo(pool)
	eventRepo := pg.NewWebhookEventRepo(pool)

	// ---- Payment gateway ----
	gateway, err := payAdapters.NewMercadoPagoGateway(cfg.MercadoPago.AccessToken, cfg.MercadoPago.BaseURL, cfg.MercadoPago.AppBaseURL)
	if err != nil {
		log.Fatalf("mercadopago gateway: %v", err)
	}
	verifier := payAdapters.NewSignatureVerifier(cfg.MercadoPago.WebhookSecret, logger)

	// ---- Use cases ----
	subUC := usecase.NewSubscriptionUseCase(planRepo, subRepo, listingRepo, gateway, logger)
	boostUC := usecase.NewBoostUseCase(boostRepo, productRepo, listingRepo, gateway, logger)
	planUC := usecase.NewPlanUseCase(planRepo, gateway, logger)
	listingUC := usecase.NewListingUseCase(listingRepo, subUC)
	webhookUC := usecase.NewWebhookUseCase(eventRepo, subRepo, boostRepo, productRepo, gateway, logger)

	// ---- HTTP ----
	auth := api.NewAuthManager(cfg.Auth.JWTSecret, !cfg.Runtime.Dev, cfg.Auth.SessionTTL)
	srv := api.NewServer(subUC, boostUC, planUC, listingUC, webhookUC, verifier, auth, cfg.Admin.Secret, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: srv.Router(cfg.HTTP.RequestTimeout),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Webhook retry sweeper ----
	retry := sched.NewWebhookRetryWorker(webhookUC, eventRepo, cfg.WebhookRetry.Interval, cfg.WebhookRetry.StaleAfter, logger)
	go retry.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
