// Command maintenance runs one expiry sweep and analytics recompute, for
// use from an external scheduler when MAINTENANCE_CRON is off.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/analytics"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/audit"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/config"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/db"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/email"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/logger"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/maintenance"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/membership"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/user"

	"github.com/redis/go-redis/v9"
)

func main() {
	date := flag.String("date", "", "day to process as YYYY-MM-DD (default today)")
	noReminders := flag.Bool("no-reminders", false, "skip expiring-membership reminders")
	flag.Parse()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.IsDevelopment()); err != nil {
		logger.Fatalf("Failed to configure logger: %v", err)
	}
	defer logger.Sync()

	clk := clock.System()
	day := clk.Now()
	if *date != "" {
		if day, err = time.ParseInLocation("2006-01-02", *date, time.Local); err != nil {
			logger.Fatalf("Invalid -date %q: %v", *date, err)
		}
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Reminders are only queued here; the API's mail worker delivers them.
	var notifier membership.Notifier
	reminderDays := 0
	if !*noReminders && cfg.ExpiryReminderDays > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, skipping reminders", "addr", cfg.RedisAddr, "error", err)
			_ = rdb.Close()
		} else {
			mailer := email.New(rdb, email.Options{From: cfg.EmailFrom, FromName: cfg.EmailFromName})
			defer mailer.Close()
			notifier = mailer
			reminderDays = cfg.ExpiryReminderDays
		}
	}

	recorder := audit.NewService(audit.NewRepository(database), clk)
	memberships := membership.NewService(membership.NewRepository(database), user.NewRepository(database), notifier, recorder, clk)
	snapshots := analytics.NewService(analytics.NewRepository(database), recorder, clk)

	res, err := maintenance.NewRunner(memberships, snapshots, clk, reminderDays).Run(ctx, day)
	if err != nil {
		logger.Fatalf("Maintenance failed: %v", err)
	}

	logger.Info("Maintenance complete", "date", res.Date, "expired", res.Expired, "notified", res.Notified)
}
