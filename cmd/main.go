package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"

	"github.com/dannynerezov/motor-mutual-sub001/internal/config"
	miniodb "github.com/dannynerezov/motor-mutual-sub001/internal/database/minio"
	"github.com/dannynerezov/motor-mutual-sub001/internal/database/postgres"
	redisdb "github.com/dannynerezov/motor-mutual-sub001/internal/database/redis"
	"github.com/dannynerezov/motor-mutual-sub001/internal/event"
	"github.com/dannynerezov/motor-mutual-sub001/internal/handlers"
	"github.com/dannynerezov/motor-mutual-sub001/internal/repository"
	"github.com/dannynerezov/motor-mutual-sub001/internal/services"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/motormutual", "log", "quote_service")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewTextHandler(file, nil)))

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	dbHandle := postgres.NewHandle(db)
	if err != nil {
		slog.Error("Error connecting to database, retrying in background", "error", err)
		go postgres.RetryConnectOnFailed(30*time.Second, dbHandle, cfg.PostgresCfg)
	}

	redisClient, err := redisdb.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		slog.Error("Error connecting to Redis, scheme caching disabled", "error", err)
	}

	minioClient, err := miniodb.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		slog.Error("Error connecting to MinIO, diagnostics archive disabled", "error", err)
	}

	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Error("Error connecting to RabbitMQ, quote events disabled", "error", err)
	}

	// Pricing side
	pricingService := services.NewPricingService()
	fleetService := services.NewFleetPricingService(pricingService, 4)
	schemeRepo := repository.NewPricingSchemeRepository(dbHandle, redisRaw(redisClient))
	pricingHandler := handlers.NewPricingHandler(schemeRepo, pricingService, fleetService)

	// Quoting side
	vehicleLookup := services.NewVehicleLookupService(cfg.VehicleAPICfg)
	addressService := services.NewAddressService(cfg.AddressAPICfg)
	quoteAPI := services.NewQuoteAPIService(cfg.InsurerAPICfg)
	orchestrator := services.NewQuoteOrchestrator(vehicleLookup, addressService, quoteAPI)

	recordRepo := repository.NewQuoteRecordRepository(dbHandle)
	var archive services.IPayloadArchive
	if minioClient != nil {
		archive = services.NewPayloadArchiveService(minioClient)
	}
	var publisher *event.QuotePublisher
	if rabbitConn != nil {
		defer rabbitConn.Close()
		publisher = event.NewQuotePublisher(rabbitConn)
	}
	quoteService := services.NewQuoteService(orchestrator, recordRepo, archive, publisher)
	quoteHandler := handlers.NewQuoteHandler(quoteService)

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Motor quote service is healthy")
	})

	pricingHandler.Register(app)
	quoteHandler.Register(app)

	slog.Info("Motor quote service starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func redisRaw(client *redisdb.Client) *redis.Client {
	if client == nil {
		return nil
	}
	return client.GetClient()
}
