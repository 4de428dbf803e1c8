package analytics

import (
	"context"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/audit"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/logger"
)

const recentSnapshots = 30

type Service interface {
	Recompute(ctx context.Context, day time.Time) (*Snapshot, error)
	Reports(ctx context.Context, actorID int) (*ReportsView, error)
	AdminDashboard(ctx context.Context) (*AdminDashboard, error)
	StaffDashboard(ctx context.Context) (*StaffDashboard, error)
}

type service struct {
	repo  Repository
	audit audit.Recorder
	clock clock.Clock
}

func NewService(repo Repository, recorder audit.Recorder, clk clock.Clock) Service {
	return &service{repo: repo, audit: recorder, clock: clk}
}

// Recompute rebuilds the snapshot for day's calendar date. Running it again
// for the same date overwrites the earlier figures.
func (s *service) Recompute(ctx context.Context, day time.Time) (*Snapshot, error) {
	from, to := clock.DayBounds(day)
	snap, err := s.repo.Upsert(ctx, clock.Today(day), from, to)
	if err != nil {
		return nil, err
	}

	logger.Info("analytics snapshot recomputed",
		"date", from.Format("2006-01-02"),
		"active_members", snap.ActiveMembers,
		"walkin_sales", snap.WalkInSales,
		"total_sales_cents", snap.TotalSalesCents,
	)
	return snap, nil
}

func (s *service) Reports(ctx context.Context, actorID int) (*ReportsView, error) {
	snaps, err := s.repo.Recent(ctx, recentSnapshots)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(actorID),
		Action:      audit.ActionReportGenerated,
		Description: "viewed analytics reports",
		ModelName:   "AnalyticsSnapshot",
		Extra:       map[string]interface{}{"snapshots": len(snaps)},
	})

	return &ReportsView{Snapshots: snaps, Totals: *totals}, nil
}

func (s *service) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	now := s.clock.Now()
	dayStart, dayEnd := clock.DayBounds(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		d   AdminDashboard
		err error
	)
	if d.ActiveMemberships, err = s.repo.CountActive(ctx, clock.Today(now)); err != nil {
		return nil, err
	}
	if d.TotalMembers, err = s.repo.CountMembers(ctx); err != nil {
		return nil, err
	}
	if d.RevenueTodayCents, err = s.repo.Revenue(ctx, dayStart, dayEnd); err != nil {
		return nil, err
	}
	if d.RevenueMonthCents, err = s.repo.Revenue(ctx, monthStart, dayEnd); err != nil {
		return nil, err
	}
	if d.PendingPayments, err = s.repo.CountPending(ctx); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *service) StaffDashboard(ctx context.Context) (*StaffDashboard, error) {
	from, to := clock.DayBounds(s.clock.Now())

	var (
		d   StaffDashboard
		err error
	)
	if d.PaymentsToday, err = s.repo.CountPayments(ctx, from, to); err != nil {
		return nil, err
	}
	if d.WalkInsToday, err = s.repo.CountWalkIns(ctx, from, to); err != nil {
		return nil, err
	}
	if d.RevenueTodayCents, err = s.repo.Revenue(ctx, from, to); err != nil {
		return nil, err
	}
	if d.PendingPayments, err = s.repo.CountPending(ctx); err != nil {
		return nil, err
	}
	return &d, nil
}
