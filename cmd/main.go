package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/content-service/config"
	"github.com/duynhne/content-service/internal/auth"
	database "github.com/duynhne/content-service/internal/core"
	"github.com/duynhne/content-service/internal/core/domain"
	"github.com/duynhne/content-service/internal/core/repository"
	"github.com/duynhne/content-service/internal/events"
	"github.com/duynhne/content-service/internal/logger"
	logicv1 "github.com/duynhne/content-service/internal/logic/v1"
	"github.com/duynhne/content-service/internal/ratelimit"
	v1 "github.com/duynhne/content-service/internal/web/v1"
	"github.com/duynhne/content-service/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	logger.Setup(cfg.Logging.Level, cfg.IsProduction())

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Msg("Service starting")

	// Initialize OpenTelemetry tracing
	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			tp = provider
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().Str("endpoint", cfg.Profiling.Endpoint).Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	// Initialize database connection pool (pgx)
	pool, err := database.Connect(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Bool("auto_migrate", cfg.Database.AutoMigrate).Msg("Database connection pool established")

	// Rate limit counters: Redis when configured, in-process otherwise
	var (
		limiter     *ratelimit.Limiter
		shield      *ratelimit.Shield
		redisClient *redis.Client
	)
	if cfg.RateLimit.Enabled {
		var store ratelimit.Store = ratelimit.NewMemoryStore()
		if cfg.RateLimit.RedisURL != "" {
			redisClient, err = ratelimit.NewRedisClient(context.Background(), cfg.RateLimit.RedisURL)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to connect to Redis")
			}
			store = ratelimit.NewRedisStore(redisClient)
			log.Info().Msg("Rate limit store: redis")
		} else {
			log.Info().Msg("Rate limit store: memory (REDIS_URL not set)")
		}
		limiter = ratelimit.NewLimiter(store, cfg.RateLimit.Window, ratelimit.Budgets{
			ratelimit.Guest:  cfg.RateLimit.GuestLimit,
			domain.RoleUser:  cfg.RateLimit.UserLimit,
			domain.RoleAdmin: cfg.RateLimit.AdminLimit,
		})
		shield = ratelimit.NewShield()
	} else {
		log.Info().Msg("Rate limiting disabled (RATE_LIMIT_ENABLED=false)")
	}

	// Domain events
	var publisher events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Kafka, events disabled")
		} else {
			publisher = kp
			log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Event publishing enabled")
		}
	}

	// Wire repositories, services and handlers
	users := repository.NewUserRepository(pool)
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	cookies := auth.NewCookieManager(cfg.Auth.CookieMaxAge, cfg.IsProduction())
	authn := middleware.NewAuthenticator(tokens, cookies, cfg.Auth.CookieName)

	handler := v1.NewHandler(v1.Dependencies{
		Auth:       logicv1.NewAuthService(users, hasher, tokens, publisher),
		Users:      logicv1.NewUserService(users, hasher, publisher),
		Posts:      logicv1.NewPostService(repository.NewPostRepository(pool), publisher),
		Comments:   logicv1.NewCommentService(repository.NewCommentRepository(pool)),
		Cookies:    cookies,
		CookieName: cfg.Auth.CookieName,
		Production: cfg.IsProduction(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := middleware.NewEngine(cfg.Service.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Strs("trusted_proxies", cfg.Service.TrustedProxies).Msg("Invalid TRUSTED_PROXIES")
	}

	var isShuttingDown atomic.Bool

	r.Use(middleware.TracingMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.TraceIDHeader, middleware.TraceParentHeader},
		ExposeHeaders:    []string{middleware.TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the " + cfg.Service.Name + " API", "version": cfg.Service.Version})
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness check
	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", authn.Identify(), middleware.RateLimit(limiter, shield))
	handler.RegisterRoutes(api, authn)

	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting content service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// Fail readiness first and wait for it to propagate.
	isShuttingDown.Store(true)
	if drainDelay := cfg.GetReadinessDrainDelayDuration(); drainDelay > 0 {
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay started")
		time.Sleep(drainDelay)
	}

	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down server...")

	// 1. Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}

	// 2. Flush events and close Redis
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("Event publisher close error")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("Redis close error")
		}
	}

	// 3. Close database connections
	pool.Close()
	log.Info().Msg("Database pool closed")

	// 4. Shutdown tracer
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		} else {
			log.Info().Msg("Tracer shutdown complete")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
}
