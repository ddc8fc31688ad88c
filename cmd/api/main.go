package main

import (
	"fmt"
	"log"

	"github.com/flightme/flightme/internal/config"
	"github.com/flightme/flightme/internal/flights"
	"github.com/flightme/flightme/internal/handler"
	"github.com/flightme/flightme/internal/infra/postgresql"
	"github.com/flightme/flightme/internal/infra/postgresql/migrations"
	infraredis "github.com/flightme/flightme/internal/infra/redis"
	"github.com/flightme/flightme/internal/observability"
	"github.com/flightme/flightme/internal/repository"
	"github.com/flightme/flightme/internal/service"
	"github.com/flightme/flightme/internal/shortener"
	"github.com/flightme/flightme/internal/sms"
	"github.com/flightme/flightme/internal/transport"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const twilioAPIURL = "https://api.twilio.com"

func main() {
	// Local development convenience; production supplies real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.SMSRatePerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	flightAPI, err := flights.NewClient(cfg.FlightAPIURL, cfg.FlightAPIKey)
	if err != nil {
		logger.Fatal("flight api client initialization failed", zap.Error(err))
	}

	linkShortener, err := shortener.NewClient(cfg.ShortenerURL, cfg.ShortenerToken)
	if err != nil {
		logger.Fatal("shortener client initialization failed", zap.Error(err))
	}

	smsClient, err := sms.NewTwilioClient(twilioAPIURL, cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	if err != nil {
		logger.Fatal("sms client initialization failed", zap.Error(err))
	}

	trackingService, err := service.NewTrackingService(
		repository.NewGormPhoneRecordRepo(db),
		flightAPI,
		linkShortener,
		smsClient,
		rateLimiter,
		cfg.AppBaseURL,
		cfg.Environment,
		cfg.SweepConcurrency,
		logger,
	)
	if err != nil {
		logger.Fatal("tracking service initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	trackingService.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())

	if err := handler.RegisterTrackingRoutes(app, trackingService); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}
	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	logger.Info("flightme api started",
		zap.Int("port", cfg.APIPort),
		zap.String("environment", cfg.Environment),
	)

	if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
