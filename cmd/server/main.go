package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	httpapi "lavarenta-backend/internal/api/http"
	"lavarenta-backend/internal/config"
	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository/postgres"
	"lavarenta-backend/internal/security"
	"lavarenta-backend/internal/service"
	"lavarenta-backend/internal/storage"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Lavarenta backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	evidenceStore, err := storage.NewLocalStore(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize evidence storage", "error", err)
		log.Fatalf("Failed to initialize evidence storage: %v", err)
	}

	notifier := service.NewEmailNotifier(cfg.SMTP)
	pacing := service.NewPacingGuard(cfg.Pacing)
	settlement := service.NewSettlementCalculator(cfg.Settlement)

	core := service.NewTaskCore(store, evidenceStore, pacing, settlement, notifier, cfg.Pricing)
	deliverySvc := service.NewDeliveryService(core)
	pickupSvc := service.NewPickupService(core)
	changeSvc := service.NewChangeService(core)
	extensionSvc := service.NewExtensionService(core)
	maintenanceSvc := service.NewMaintenanceService(core)
	authSvc := service.NewAuthService(store, tokenManager)
	adminSvc := service.NewAdminService(store)

	server := httpapi.NewServer(store, tokenManager, authSvc, adminSvc,
		deliverySvc, pickupSvc, changeSvc, extensionSvc, maintenanceSvc, cfg.Storage.UploadDir)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("HTTP server listening", "address", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		logger.Error("HTTP server failed", "error", err)
		log.Fatalf("HTTP server failed: %v", err)
	}
}
