package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/config"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/db"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/email"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/logger"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/server"

	"github.com/redis/go-redis/v9"
)

// @title Rhose Gym API
// @version 1.0
// @description Memberships, walk-in sales, kiosk attendance and audit for a single gym.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.IsDevelopment()); err != nil {
		logger.Fatalf("Failed to configure logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting gym service", "env", cfg.Env, "port", cfg.Port)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := connectRedis(ctx, cfg.RedisAddr)

	var mailer *email.Service
	if rdb != nil {
		mailer = email.New(rdb, email.Options{
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
			SMTPHost: cfg.SMTPHost,
			SMTPPort: cfg.SMTPPort,
			SMTPUser: cfg.SMTPUser,
			SMTPPass: cfg.SMTPPass,
		})
		defer mailer.Close()
		go mailer.Start(ctx)
	}

	srv := server.New(database, rdb, cfg, mailer, clock.System())

	scheduler, err := srv.Maintenance().Schedule(ctx, cfg.MaintenanceCron)
	if err != nil {
		logger.Fatalf("Invalid MAINTENANCE_CRON %q: %v", cfg.MaintenanceCron, err)
	}

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on :%s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

// connectRedis returns nil when Redis is unreachable. The API keeps
// serving with an uncached catalog and without outbound mail.
func connectRedis(ctx context.Context, addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, running without cache and mail", "addr", addr, "error", err)
		_ = rdb.Close()
		return nil
	}

	logger.Info("Redis connected", "addr", addr)
	return rdb
}
