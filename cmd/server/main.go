package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/database"
	"github.com/iliyamo/restaurant-booking/internal/handler"
	"github.com/iliyamo/restaurant-booking/internal/logger"
	"github.com/iliyamo/restaurant-booking/internal/middleware"
	"github.com/iliyamo/restaurant-booking/internal/queue"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/router"
	"github.com/iliyamo/restaurant-booking/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "restaurant-booking"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if cfg.MigrateOnStart {
		if err := database.Migrate(dsn, log); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}
	db, err := database.Open(dsn)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis is optional: without it the cache and rate limiter pass through.
	var rdb *redis.Client
	if client, err := config.NewRedisClient(ctx); err != nil {
		log.Warn("redis unavailable, cache and rate limiting disabled", "error", err)
	} else {
		rdb = client
		defer rdb.Close()
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewQueuePublisher(cfg.AMQPURL, log)
		consumer := &queue.Consumer{URL: cfg.AMQPURL, LogDir: cfg.EventLogDir, Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking consumer stopped", "error", err)
			}
		}()
	}

	users := repository.NewUserRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	bookings := service.NewBookingService(repository.NewBookingRepo(db), restaurants, users,
		events, cfg.BookingConsistency, log)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(middleware.RequestLogger(log), middleware.Recover(log))

	router.RegisterRoutes(e, db)
	router.RegisterAPI(e, router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, users, log),
		Bookings:   handler.NewBookingHandler(bookings, log),
		Restaurant: handler.NewRestaurantHandler(restaurants, log),
		Category:   handler.NewCategoryHandler(repository.NewCategoryRepo(db), log),
		Food:       handler.NewFoodHandler(repository.NewFoodRepo(db), log),
		Picture:    handler.NewPictureHandler(repository.NewPictureRepo(db), log),
	}, router.Deps{
		Log:       log,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		JWTSecret: cfg.JWTSecret,
		Users:     users,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "consistency", cfg.BookingConsistency)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("stopped")
}
