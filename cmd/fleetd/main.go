package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"fleet-management-backend/config"
	"fleet-management-backend/internal/api"
	"fleet-management-backend/internal/db"
	"fleet-management-backend/internal/model"
	"fleet-management-backend/internal/notification"
	"fleet-management-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "fleetd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded from %s", configPath)

	appStore, err := buildStore(cfg)
	if err != nil {
		logger.Fatalf("failed to initialize store: %v", err)
	}
	logger.Printf("data store initialized (driver=%s)", cfg.Database.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := seedAdminUser(ctx, appStore, cfg); err != nil {
		logger.Fatalf("failed to seed admin user: %v", err)
	}

	var webpushOptions *webpush.Options
	var pool *notification.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		pool.Start(ctx)
		logger.Printf("notification worker pool started (size=%d)", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys not configured; web push notifications disabled")
	}

	router := api.NewRouter(appStore, pool, webpushOptions, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("server gracefully stopped")
}

// buildStore constructs the store selected by the database driver. "memory"
// is the default and keeps all state in process; sqlite and postgres go
// through GORM.
func buildStore(cfg *config.Config) (store.Store, error) {
	if cfg.Database.Driver == "memory" {
		return store.NewMemStore(), nil
	}
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(gormDB), nil
}

// seedAdminUser makes sure the configured bootstrap admin exists, so history
// entries have a user to attribute.
func seedAdminUser(ctx context.Context, s store.Store, cfg *config.Config) error {
	existing, err := s.GetUserByUsername(ctx, cfg.Bootstrap.AdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.CreateUser(ctx, model.User{
		Username: cfg.Bootstrap.AdminUsername,
		Password: cfg.Bootstrap.AdminPassword,
		IsAdmin:  true,
	})
	return err
}
