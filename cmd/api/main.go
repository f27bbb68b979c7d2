package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"HelmetMonitorAPI/internal/config"
	"HelmetMonitorAPI/internal/database"
	"HelmetMonitorAPI/internal/handler"
	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/middleware"
	"HelmetMonitorAPI/internal/mqtt"
	"HelmetMonitorAPI/internal/notify"
	"HelmetMonitorAPI/internal/repository"
	"HelmetMonitorAPI/internal/server"
	"HelmetMonitorAPI/internal/service"
	"HelmetMonitorAPI/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting Helmet Monitor API Server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Storage Backend
	var (
		alertRepo    repository.IAlertRepository
		statusRepo   repository.IStatusRepository
		readingRepo  repository.IReadingRepository
		debounceRepo repository.IDebounceRepository
		dbCheck      handler.HealthChecker
	)

	if cfg.Storage.Backend == "postgres" {
		db, err := database.New(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to ensure database schema: %v", err)
		}

		log.Info("Database connected successfully")

		alertRepo = repository.NewAlertRepository(db.DB)
		statusRepo = repository.NewStatusRepository(db.DB)
		readingRepo = repository.NewReadingRepository(db.DB)
		debounceRepo = repository.NewDebounceRepository(db.DB)
		dbCheck = db
	} else {
		log.Warn("Using in-memory storage backend, data is not durable")

		alertRepo = repository.NewMemoryAlertRepository()
		statusRepo = repository.NewMemoryStatusRepository()
		readingRepo = repository.NewMemoryReadingRepository()
		debounceRepo = repository.NewMemoryDebounceRepository()
	}

	// Status bootstrap is best-effort: a failure here must not prevent
	// startup, later merges recover.
	if err := statusRepo.EnsureDefault(ctx); err != nil {
		log.Warn("Failed to initialize default status: %v", err)
	}

	// 4. WebSocket Hub
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	// 5. Notification Dispatcher
	var notifier notify.Notifier
	if cfg.Notify.Enabled {
		notifier = notify.NewSlackNotifier(notify.SlackConfig{
			Token:       cfg.Notify.SlackToken,
			Channel:     cfg.Notify.SlackChannel,
			SendTimeout: cfg.Notify.SendTimeout,
		}, log)
	} else {
		notifier = notify.NewDisabledNotifier(log)
	}

	// 6. Services
	alertService := service.NewAlertService(alertRepo, statusRepo, hub, log)
	debounce := service.NewDebounceLedger(debounceRepo, log)
	go debounce.Sweep(ctx)

	deviceService := service.NewDeviceService(alertService, readingRepo, debounce, notifier, log)
	sosService := service.NewSOSService(alertService, notifier, log)
	reportService := service.NewReportService(alertService, log)

	// 7. Device Auth
	auth := middleware.NewJWTAuth(middleware.JWTAuthConfig{
		Enabled:         cfg.Security.AuthEnabled,
		Secret:          cfg.Security.JWTSecret,
		ExpirationHours: cfg.Security.JWTExpirationHours,
		DeviceKeyHash:   cfg.Security.DeviceKeyHash,
	})

	// 8. Optional MQTT Ingestion
	var mqttCheck handler.HealthChecker
	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Fatal("Failed to create MQTT client: %v", err)
		}

		if err := mqttClient.Connect(); err != nil {
			log.Fatal("Failed to connect to MQTT broker: %v", err)
		}
		defer func() {
			if err := mqttClient.Disconnect(); err != nil {
				log.Error("Failed to disconnect MQTT: %v", err)
			}
		}()

		if err := mqttClient.Subscribe(cfg.MQTT.TelemetryTopic, handleTelemetry(deviceService, log)); err != nil {
			log.Fatal("Failed to subscribe to telemetry topic: %v", err)
		}

		log.Info("MQTT telemetry subscription active")
		mqttCheck = mqttClient
	}

	// 9. Handlers
	alertHandler := handler.NewAlertHandler(alertService, reportService, log)
	deviceHandler := handler.NewDeviceHandler(deviceService, log)
	sosHandler := handler.NewSOSHandler(sosService, log)
	authHandler := handler.NewAuthHandler(auth, log)
	healthHandler := handler.NewHealthHandler(dbCheck, mqttCheck, log)

	// 10. HTTP Server
	srv := server.New(cfg, log)
	srv.RegisterHandlers(alertHandler, deviceHandler, sosHandler, authHandler, healthHandler, auth, hub)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed: %v", err)
		}
	}()

	log.Info("API server ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	// 11. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("Shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	log.Info("Shutdown complete")
}

// handleTelemetry feeds MQTT readings through the same ingestion
// pipeline as POST /device-data.
func handleTelemetry(deviceService *service.DeviceService, log *logger.Logger) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var raw map[string]interface{}
		if err := json.Unmarshal(payload, &raw); err != nil {
			log.Error("Invalid telemetry payload on %s: %v", topic, err)
			return err
		}

		reading, missing, err := handler.ParseDeviceReading(raw)
		if len(missing) > 0 {
			log.Warn("Telemetry on %s missing required fields: %v", topic, missing)
			return nil
		}
		if err != nil {
			log.Error("Failed to parse telemetry on %s: %v", topic, err)
			return err
		}

		if _, err := deviceService.ProcessDeviceData(ctx, reading); err != nil {
			log.Error("Failed to process telemetry: %v", err)
			return err
		}
		return nil
	}
}
