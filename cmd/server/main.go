package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"servicedesk/internal/allocation"
	"servicedesk/internal/client"
	clienthandler "servicedesk/internal/client/handler"
	clientservice "servicedesk/internal/client/service"
	"servicedesk/internal/contract"
	contracthandler "servicedesk/internal/contract/handler"
	contractservice "servicedesk/internal/contract/service"
	"servicedesk/internal/jwttoken"
	"servicedesk/internal/platform/audit"
	"servicedesk/internal/platform/config"
	"servicedesk/internal/platform/httpserver"
	"servicedesk/internal/platform/logger"
	"servicedesk/internal/platform/metrics"
	"servicedesk/internal/platform/postgres"
	platformredis "servicedesk/internal/platform/redis"
	"servicedesk/internal/ratelimit"
	"servicedesk/internal/ticket"
	tickethandler "servicedesk/internal/ticket/handler"
	ticketservice "servicedesk/internal/ticket/service"
	transporthttp "servicedesk/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)
	m := metrics.New()

	ctx := context.Background()

	var (
		clientStore   client.Store
		contractStore contract.Store
		ticketStore   ticket.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		clientStore = client.NewPostgres(db)
		contractStore = contract.NewPostgres(db)
		ticketStore = ticket.NewPostgres(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		clientStore = client.NewInMemoryStore()
		contractStore = contract.NewInMemoryStore()
		ticketStore = ticket.NewInMemoryStore()
	}

	var auditPub audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		pub, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		auditPub = pub
	} else {
		auditPub = audit.NewMemoryPublisher()
	}
	defer auditPub.Close()

	var limiter ratelimit.Limiter
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		limiter = ratelimit.NewRedisLimiter(redisClient.Client, cfg.CreateRateLimit, time.Minute)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.CreateRateLimit, time.Minute)
	}

	alloc := allocation.New(
		allocation.WithMaxAttempts(cfg.MaxAllocAttempts),
		allocation.WithLogger(log),
		allocation.WithMetrics(m),
	)

	clientSvc := clientservice.New(clientStore, alloc, auditPub, log)
	contractSvc := contractservice.New(contractStore, clientStore, alloc, auditPub, log)
	ticketSvc := ticketservice.New(ticketStore, contractStore, auditPub, log)

	router := transporthttp.NewRouter(transporthttp.RouterConfig{
		Logger:        log,
		Metrics:       m,
		Validator:     jwttoken.NewService(cfg.JWTSigningKey, "servicedesk"),
		CreateLimiter: limiter,
		Handlers: []transporthttp.Registrar{
			clienthandler.New(clientSvc, log),
			contracthandler.New(contractSvc, log),
			tickethandler.New(ticketSvc, log),
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting servicedesk", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
