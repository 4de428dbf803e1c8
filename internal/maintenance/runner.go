// Package maintenance runs the nightly housekeeping: expiring lapsed
// memberships, refreshing the day's analytics snapshot and sending
// expiry reminders.
package maintenance

import (
	"context"
	"strings"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/analytics"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/logger"

	"github.com/robfig/cron/v3"
)

// Disabled turns the in-process scheduler off when used as the cron expression.
const Disabled = "off"

type Memberships interface {
	ExpireSweep(ctx context.Context, today time.Time) (int, error)
	NotifyExpiring(ctx context.Context, days int) (int, error)
}

type Snapshots interface {
	Recompute(ctx context.Context, day time.Time) (*analytics.Snapshot, error)
}

type Result struct {
	Date     string              `json:"date"`
	Expired  int                 `json:"expired"`
	Notified int                 `json:"notified"`
	Snapshot *analytics.Snapshot `json:"snapshot"`
}

type Runner struct {
	memberships  Memberships
	snapshots    Snapshots
	clock        clock.Clock
	reminderDays int
}

func NewRunner(memberships Memberships, snapshots Snapshots, clk clock.Clock, reminderDays int) *Runner {
	return &Runner{
		memberships:  memberships,
		snapshots:    snapshots,
		clock:        clk,
		reminderDays: reminderDays,
	}
}

// Run expires memberships that ended before today, then recomputes today's
// snapshot so the active count reflects the sweep. Reminder failures are
// logged and do not fail the run.
func (r *Runner) Run(ctx context.Context, today time.Time) (*Result, error) {
	expired, err := r.memberships.ExpireSweep(ctx, today)
	if err != nil {
		return nil, err
	}

	snap, err := r.snapshots.Recompute(ctx, today)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Date:     today.Format("2006-01-02"),
		Expired:  expired,
		Snapshot: snap,
	}

	if r.reminderDays > 0 {
		sent, err := r.memberships.NotifyExpiring(ctx, r.reminderDays)
		if err != nil {
			logger.Warn("expiry reminders failed", "error", err)
		}
		res.Notified = sent
	}

	logger.Info("maintenance run finished", "date", res.Date, "expired", expired, "notified", res.Notified)
	return res, nil
}

// Schedule registers Run on the cron expression and starts the scheduler.
// It returns nil when expr is empty or Disabled.
func (r *Runner) Schedule(ctx context.Context, expr string) (*cron.Cron, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.EqualFold(expr, Disabled) {
		logger.Info("maintenance scheduler disabled")
		return nil, nil
	}

	c := cron.New(cron.WithLocation(r.clock.Now().Location()))
	if _, err := c.AddFunc(expr, func() {
		if _, err := r.Run(ctx, r.clock.Now()); err != nil {
			logger.Error("scheduled maintenance failed", "error", err)
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	logger.Info("maintenance scheduler started", "cron", expr)
	return c, nil
}
