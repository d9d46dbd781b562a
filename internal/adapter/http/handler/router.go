package handler

import (
	"net/http"

	"prediction-market-gateway/internal/adapter/http/middleware"
	redisStore "prediction-market-gateway/internal/adapter/storage/redis"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	MarketSvc      ports.MarketService
	ClaimSvc       ports.ClaimService
	AuthSvc        ports.AuthService
	TokenSvc       ports.TokenService
	AuditSvc       ports.AuditService         // nil = denied-request auditing disabled
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	MarketStream   http.HandlerFunc           // nil = websocket stream disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(metrics.Middleware())
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditDenied(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()

	// rl returns the limiter for group, or a no-op without a store.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Wallet sign-in ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/challenge", rl("auth_challenge"), authHandler.Challenge)
		auth.POST("/verify", rl("auth_verify"), authHandler.Verify)
	}

	// --- Markets ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	marketHandler := NewMarketHandler(deps.MarketSvc, deps.ClaimSvc)
	markets := v1.Group("/markets")
	{
		markets.GET("", rl("reads"), marketHandler.ListMarkets)
		markets.POST("", rl("markets_create"), marketHandler.CreateMarket)
		markets.GET("/:id", rl("reads"), marketHandler.GetMarket)
		markets.POST("/:id/resolve", jwtAuth, middleware.RequireAdmin(), rl("markets_resolve"), marketHandler.ResolveMarket)
		markets.GET("/:id/claims/:wallet", rl("reads"), marketHandler.EvaluateClaim)
	}

	// --- Token gate ---
	gateHandler := NewGateHandler(deps.MarketSvc)
	v1.GET("/gate/:wallet", rl("reads"), gateHandler.GateStatus)

	// --- Live updates ---
	if deps.MarketStream != nil {
		v1.GET("/ws/markets", gin.WrapF(deps.MarketStream))
	}

	return r
}
