package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/organizador-eventos/backend/config"
	"github.com/organizador-eventos/backend/internal/consumer"
	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/organizador-eventos/backend/internal/handler"
	"github.com/organizador-eventos/backend/internal/middleware"
	"github.com/organizador-eventos/backend/internal/repository"
	"github.com/organizador-eventos/backend/internal/repository/document"
	"github.com/organizador-eventos/backend/internal/repository/relational"
	"github.com/organizador-eventos/backend/internal/service"
	"github.com/organizador-eventos/backend/pkg/database"
	"github.com/organizador-eventos/backend/pkg/logger"
	"github.com/organizador-eventos/backend/pkg/rabbitmq"
	"github.com/organizador-eventos/backend/pkg/validator"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	zerolog.DefaultContextLogger = &log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		events       repository.EventRepository
		attendees    repository.AttendeeRepository
		closers      []func()
		stopConsumer = func() {}
	)

	switch cfg.Backend {
	case config.BackendDocument:
		client, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })

		db := client.Database(cfg.MongoDatabase)
		if err := document.EnsureIndexes(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to create indexes")
		}
		events = document.NewEventRepository(db)
		attendees = document.NewAttendeeRepository(db)
	default:
		db, err := database.NewRelationalDB(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		closers = append(closers, func() { _ = database.CloseRelationalDB(db) })

		if err := relational.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate schema")
		}
		events = relational.NewEventRepository(db)
		attendees = relational.NewAttendeeRepository(db)
	}
	log.Info().Str("backend", cfg.Backend).Msg("storage ready")

	var publisher service.Publisher
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		closers = append(closers, pub.Close)
		publisher = pub

		sub, err := rabbitmq.NewConsumer(cfg.RabbitURL, consumer.SalesQueue, []string{dto.RouteAttendanceCreated}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create consumer")
		}
		msgs, err := sub.Consume()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start consuming")
		}
		done := consumer.NewSalesConsumer(events, log).Start(msgs)
		closers = append(closers, sub.Close)
		stopConsumer = func() {
			if err := sub.Cancel(); err != nil {
				log.Error().Err(err).Msg("failed to cancel consumer")
				return
			}
			select {
			case <-done:
			case <-time.After(10 * time.Second):
				log.Warn().Msg("consumer did not drain before timeout")
			}
		}
	}

	eventSvc := service.NewEventService(events, publisher)
	attendeeSvc := service.NewAttendeeService(attendees, events, publisher)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.EchoValidator{}
	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(echoMw.RequestIDWithConfig(echoMw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.ContextLogger(log))
	e.Use(middleware.RequestLogger())
	e.Use(echoMw.Recover())
	e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		closers = append(closers, func() { _ = rdb.Close() })
		e.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Capacity:       cfg.RateLimitCapacity,
			RefillInterval: cfg.RateLimitRefillInterval,
		}, rdb))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Service: "organizador-eventos", Backend: cfg.Backend})
	})

	eventHandler := handler.NewEventHandler(eventSvc)
	attendeeHandler := handler.NewAttendeeHandler(attendeeSvc)
	for prefix, paths := range map[string]handler.Paths{
		"/api/v1": handler.EnglishPaths,
		"/api":    handler.SpanishPaths,
	} {
		g := e.Group(prefix)
		eventHandler.RegisterRoutes(g, paths)
		attendeeHandler.RegisterRoutes(g, paths)
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("server starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	stopConsumer()
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
