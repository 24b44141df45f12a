package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/storefront/internal/config"
	"github.com/iliyamo/storefront/internal/database"
	"github.com/iliyamo/storefront/internal/handler"
	"github.com/iliyamo/storefront/internal/logging"
	"github.com/iliyamo/storefront/internal/middleware"
	"github.com/iliyamo/storefront/internal/queue"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/router"
	"github.com/iliyamo/storefront/internal/service"
	"github.com/iliyamo/storefront/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("database unreachable")
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
	}

	var rdb *redis.Client
	if cfg.Cache.Enabled || cfg.RateLimit.Enabled {
		rdb, err = config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, cache and rate limit disabled")
		} else {
			defer rdb.Close()
		}
	}

	hasher, err := utils.NewPasswordHasher(cfg.HashAlgorithm, cfg.BcryptCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("password hasher")
	}
	codec, err := utils.NewTokenCodec(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("token codec")
	}

	publisher := service.NewPublisher(cfg.RabbitURL, logger)
	if cfg.RabbitURL != "" {
		consumer := &queue.AuditConsumer{URL: cfg.RabbitURL, Dir: "logs", Logger: logger}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("audit consumer stopped")
			}
		}()
	}

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)

	auth, err := service.NewAuthService(users, hasher, codec, publisher, cfg.PasswordMinLen, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("auth service")
	}

	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = middleware.ClientIPExtractor(cfg.TrustedProxies)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(logging.RequestLogger(logger))

	router.Register(e, router.Deps{
		Auth:        handler.NewAuthHandler(auth, users, codec.TTL(), cfg.IsProduction(), logger),
		Orders:      handler.NewOrderHandler(repository.NewOrderRepo(db), logger),
		Products:    handler.NewProductHandler(products, logger),
		Integration: handler.NewIntegrationHandler(products, repository.NewWebhookRepo(db), logger),
		Ready:       handler.Ready(db, users),
		Gate:        middleware.NewSessionGate(codec),
		APIKey:      cfg.IntegrationKey,
		Cache:       middleware.NewRedisCache(cfg.Cache, rdb),
		LoginLimit:  middleware.NewTokenBucket(cfg.RateLimit, rdb),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
