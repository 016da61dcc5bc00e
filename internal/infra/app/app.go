package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/handlegpt/cv/internal/core/port"
	"github.com/handlegpt/cv/internal/infra/config"
	"github.com/handlegpt/cv/internal/infra/database"
	kafkainfra "github.com/handlegpt/cv/internal/infra/kafka"
	"github.com/handlegpt/cv/internal/infra/logger"
	redisinfra "github.com/handlegpt/cv/internal/infra/redis"
	"github.com/handlegpt/cv/internal/infra/security"
	"github.com/handlegpt/cv/internal/infra/telemetry"
	postgresrepo "github.com/handlegpt/cv/internal/repository/postgres"
	redisrepo "github.com/handlegpt/cv/internal/repository/redis"
	"github.com/handlegpt/cv/internal/transport/http/middleware"
	"github.com/handlegpt/cv/internal/transport/http/routes"
	"github.com/handlegpt/cv/internal/usecase"
)

// Application wires configuration, infrastructure, services, and the HTTP
// engine together.
type Application struct {
	cfg     *config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *redisinfra.Client
	kafka   *kafkainfra.Producer
	tracing *telemetry.TracerProvider
}

// New builds the application graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var tracing *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tracing, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// Validate already rejected this outside development. An ephemeral
		// secret keeps local runs working but invalidates tokens on restart.
		secret, err = security.GenerateSecureToken(32)
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral signing secret: %w", err)
		}
		log.Warn("auth.jwt_secret not configured, using an ephemeral secret; sessions will not survive restarts")
	}

	lifetime, err := cfg.Auth.Lifetime()
	if err != nil {
		return nil, fmt.Errorf("parse token lifetime: %w", err)
	}

	signer, err := security.NewTokenSigner(secret, cfg.Auth.Issuer, lifetime)
	if err != nil {
		return nil, fmt.Errorf("init token signer: %w", err)
	}

	hasher := security.NewPasswordHasher(security.Argon2Params{
		MemoryKiB:   cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	passwordValidator := security.DefaultPasswordValidator(6, 2)

	repos := postgresrepo.NewRepositories(pool)
	revocationStore := redisrepo.NewRevocationRepository(redisClient.Client(), cfg.Redis.RevocationPrefix)

	var kafkaProducer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.RateLimitPrefix,
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	tokenService, err := usecase.NewTokenService(signer, revocationStore, eventPublisher, log)
	if err != nil {
		return nil, fmt.Errorf("init token service: %w", err)
	}

	registrationService, err := usecase.NewRegistrationService(repos.Users, hasher, passwordValidator, eventPublisher, log)
	if err != nil {
		return nil, fmt.Errorf("init registration service: %w", err)
	}

	identity := usecase.NewLocalIdentityResolver(repos.Users, hasher)
	authService, err := usecase.NewAuthService(identity, repos.Users, tokenService, eventPublisher, log)
	if err != nil {
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	resumeService, err := usecase.NewResumeService(repos.Resumes, eventPublisher, log)
	if err != nil {
		return nil, fmt.Errorf("init resume service: %w", err)
	}

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Namespace: "cv"})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Tokens:       tokenService,
			Resumes:      resumeService,
		},
	})

	return &Application{
		cfg:     cfg,
		engine:  engine,
		logger:  log,
		pool:    pool,
		redis:   redisClient,
		kafka:   kafkaProducer,
		tracing: tracing,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			if err := a.kafka.Close(); err != nil {
				a.logger.Warn("close kafka producer", zap.Error(err))
			}
		}
	}()
	defer func() {
		if a.tracing != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.tracing.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("shutdown tracer provider", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting cv API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
