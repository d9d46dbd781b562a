package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prediction-market-gateway/config"
	httpHandler "prediction-market-gateway/internal/adapter/http/handler"
	"prediction-market-gateway/internal/adapter/ledger"
	memStorage "prediction-market-gateway/internal/adapter/storage/memory"
	pgStorage "prediction-market-gateway/internal/adapter/storage/postgres"
	redisStorage "prediction-market-gateway/internal/adapter/storage/redis"
	"prediction-market-gateway/internal/adapter/ws"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/internal/service"
	"prediction-market-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	policy, err := cfg.TokenGatePolicy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid token gate: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Bool("token_gate", policy.Enabled).
		Str("token_mint", policy.TokenMint).
		Str("minimum_balance", policy.MinimumBalance.String()).
		Msg("Starting Prediction Market Gateway")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var (
		marketRepo     ports.MarketRepository
		auditRepo      ports.AuditRepository
		challengeStore ports.ChallengeStore
		rateLimitStore *redisStorage.RateLimitStore
		healthCheckers []ports.HealthChecker
	)

	// Storage
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database schema")
		}
		log.Info().Msg("PostgreSQL connected")

		marketRepo = pgStorage.NewMarketRepo(pool)
		auditRepo = pgStorage.NewAuditRepo(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
	default:
		log.Warn().Msg("Using in-memory market storage, data is lost on restart")
		marketRepo = memStorage.NewMarketRepo()
	}

	// Redis backs sign-in challenges and rate limiting when configured.
	if cfg.Redis.Enabled() {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		challengeStore = redisStorage.NewChallengeStore(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled, challenges kept in process and rate limiting off")
		challengeStore = memStorage.NewChallengeStore()
	}

	// Ledger
	oracle := ledger.NewOracle(cfg.Solana, logger.Component(log, "ledger"))
	healthCheckers = append(healthCheckers, oracle)

	// Market event fan-out
	hub := ws.NewHub(logger.Component(log, "ws"))
	go hub.Run(ctx)

	sigSvc := service.NewHMACSignatureService()
	publishers := service.Broadcaster{hub}
	if cfg.Webhook.URL != "" {
		publishers = append(publishers, service.NewWebhookPublisher(
			cfg.Webhook.URL, cfg.Webhook.Secret, sigSvc, &http.Client{Timeout: 10 * time.Second}, logger.Component(log, "webhook"),
		))
	}

	// Services
	auditSvc := service.NewAuditService(auditRepo, logger.Component(log, "audit"))
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	gate := service.NewAccessGate(oracle, logger.Component(log, "access_gate"))
	marketSvc := service.NewMarketService(marketRepo, gate, policy, publishers, auditSvc, service.MarketOptions{
		AdminWallets:         cfg.Market.AdminWallets,
		AllowEarlyResolution: cfg.Market.AllowEarlyResolution,
	}, logger.Component(log, "markets"))
	claimSvc := service.NewClaimService(marketRepo, oracle, logger.Component(log, "claims"))
	authSvc := service.NewAuthService(
		challengeStore,
		ledger.NewSignatureVerifier(),
		tokenSvc,
		auditSvc,
		cfg.Market.AdminWallets,
		cfg.Auth.ChallengeTTL,
		logger.Component(log, "auth"),
	)

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		MarketSvc:      marketSvc,
		ClaimSvc:       claimSvc,
		AuthSvc:        authSvc,
		TokenSvc:       tokenSvc,
		AuditSvc:       auditSvc,
		RateLimitStore: rateLimitStore,
		MarketStream:   hub.HandleWS,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	// Closes websocket subscribers.
	stop()

	log.Info().Msg("Server exited")
}
