// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/ai"
	"github.com/intensify/intensify-backend/internal/config"
	"github.com/intensify/intensify-backend/internal/http/handlers"
	"github.com/intensify/intensify-backend/internal/http/middleware"
	"github.com/intensify/intensify-backend/internal/services"
	"github.com/intensify/intensify-backend/internal/wordpress"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting, CORS
// and security headers, health and metrics endpoints, and then mounts the
// public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip response compression
//  7. Metrics
//  8. CORS and Security headers
//
// Route-group guards (bearer auth, edge token bucket, x-api-key) apply after
// the global chain. The token bucket runs after auth so that authenticated
// traffic keys by user id; the public auth endpoints key by client IP.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress JSON responses
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "x-api-key"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "x-api-key"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, "Endpoint not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← db/clients
	wpClient := wordpress.NewClient(cfg.WordPress.AuthUsername, cfg.WordPress.RequestTimeout)
	generator := ai.NewGenerator(cfg.AI.BaseURL, cfg.AI.RequestTimeout)

	authSvc := services.NewAuthService(db, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	siteSvc := services.NewSiteService(db, wpClient)
	personaSvc := services.NewPersonaService(db)
	commentSvc := services.NewCommentService(db, generator, wpClient)
	quotaSvc := services.NewRateLimitService(db)

	h := handlers.New(
		authSvc, siteSvc, personaSvc, commentSvc, generator, quotaSvc,
		cfg.AI.RatePoints, cfg.AI.RateWindow,
	)

	requireAuth := middleware.Auth(authSvc, cfg.Auth.MinTokenLength)
	requireKey := middleware.APIKeyGate(cfg.AI.MinKeyLength)

	// Token-bucket rate limiter. Installed after requireAuth on protected
	// groups so buckets key by user id rather than always by client IP.
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	throttle := rl.Handler()

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Accounts (public, throttled by client IP)
		auth := api.Group("/auth", throttle)
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
		}

		// Sites
		sites := api.Group("/sites", requireAuth, throttle, requireKey)
		{
			sites.GET("", h.ListSites)
			sites.POST("", h.CreateSite)
			sites.POST("/test-connection", h.TestSiteConnection)
			sites.GET("/:id", h.GetSite)
			sites.PATCH("/:id", h.UpdateSite)
			sites.DELETE("/:id", h.DeleteSite)
		}

		// Personas
		personas := api.Group("/personas", requireAuth, throttle, requireKey)
		{
			personas.GET("", h.ListPersonas)
			personas.POST("", h.CreatePersona)
			personas.POST("/bulk", h.BulkCreatePersonas)
			personas.GET("/:id", h.GetPersona)
			personas.PATCH("/:id", h.UpdatePersona)
			personas.DELETE("/:id", h.DeletePersona)
		}

		// Comments
		comments := api.Group("/comments", requireAuth, throttle, requireKey)
		{
			comments.POST("/generate", h.GenerateComment)
			comments.GET("/pending", h.ListPendingComments)
			comments.PATCH("/:id/approve", h.ApproveComment)
			comments.PATCH("/:id/reject", h.RejectComment)
			comments.POST("/:id/reply", h.ReplyToComment)
		}

		// AI utilities
		aiGroup := api.Group("/ai", requireAuth, throttle, requireKey)
		{
			aiGroup.POST("/test-key", h.TestAPIKey)
			aiGroup.POST("/generate", h.GenerateAI)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
