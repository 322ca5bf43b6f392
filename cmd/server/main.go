package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "rentwear-backend/internal/api/http"
	"rentwear-backend/internal/config"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository/postgres"
	"rentwear-backend/internal/security"
	"rentwear-backend/internal/service"
	"rentwear-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentWear Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx := context.Background()

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.ApplySchema {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			logger.Error("Failed to apply schema", "error", err)
			log.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema applied")
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Identity
	var resolver security.IdentityResolver
	switch cfg.Identity.Provider {
	case "firebase":
		logger.Info("Using Firebase identity", "project_id", cfg.Identity.FirebaseProjectID)
		fb, err := security.NewFirebaseResolver(ctx, cfg.Identity.FirebaseProjectID, cfg.Identity.CredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize Firebase auth", "error", err)
			log.Fatalf("Failed to initialize Firebase auth: %v", err)
		}
		resolver = fb
	default:
		logger.Info("Using JWT identity")
		resolver = security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	}

	// Initialize Storage Service
	var objectStore storage.ObjectStorage
	var mockStorage *storage.MockStorageService
	switch cfg.Storage.Type {
	case "gcs":
		logger.Info("Using Google Cloud Storage", "bucket", cfg.Storage.Bucket)
		gcs, err := storage.NewGCSStorage(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize GCS storage", "error", err)
			log.Fatalf("Failed to initialize GCS storage: %v", err)
		}
		defer gcs.Close()
		objectStore = gcs
	default:
		logger.Info("Using mock storage (local filesystem)", "upload_dir", cfg.Storage.UploadDir)
		mockStorage, err = storage.NewMockStorageService(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			logger.Error("Failed to initialize mock storage", "error", err)
			log.Fatalf("Failed to initialize mock storage: %v", err)
		}
		objectStore = mockStorage
	}
	uploader := storage.NewImageUploader(objectStore, cfg.Storage.MaxImageWidth)

	// Initialize Email Service
	var emailSvc service.EmailService
	if cfg.SendGrid.Enabled {
		logger.Info("SendGrid email enabled", "from", cfg.SendGrid.FromEmail)
		emailSvc = service.NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Info("Email delivery disabled")
	}

	// Initialize Services
	noteSvc := service.NewNotificationService(store.NotificationRepository, store.UserRepository, emailSvc)
	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.ProductRepository,
		noteSvc,
		service.NewRazorpayVerifier(cfg.Payment.KeySecret),
		service.RentalPolicy{
			MinDays:          cfg.Rental.MinDays,
			MaxDays:          cfg.Rental.MaxDays,
			RequireSignature: cfg.Payment.RequireSignature,
		},
	)
	returnSvc := service.NewReturnService(
		store,
		store.ReturnRepository,
		store.RentalRepository,
		rentalSvc,
		noteSvc,
		uploader,
		cfg.Storage.MaxFiles,
	)

	// Initialize HTTP handlers
	router := httpapi.NewRouter(resolver, httpapi.Handlers{
		Health:  httpapi.NewHealthHandler(db),
		Rentals: httpapi.NewRentalHandler(rentalSvc),
		Returns: httpapi.NewReturnHandler(returnSvc, httpapi.UploadLimits{
			MaxFiles:    cfg.Storage.MaxFiles,
			MaxFileSize: cfg.MaxFileSizeBytes(),
		}),
		Notifications: httpapi.NewNotificationHandler(noteSvc),
		MockStorage:   mockStorage,
	})

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped")
}
