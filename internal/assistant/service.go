package assistant

import (
	"context"
	"errors"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/catalog"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/membership"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/user"
)

type Catalog interface {
	ListAvailable(ctx context.Context, kind catalog.Kind) ([]catalog.Plan, error)
}

type Subscriptions interface {
	Current(ctx context.Context, userID int) (*membership.Subscription, error)
}

type Users interface {
	GetByID(ctx context.Context, userID int) (*user.User, error)
}

type Attendance interface {
	TodayCounts(ctx context.Context) (currentlyIn, checkIns int, err error)
}

type Service interface {
	Context(ctx context.Context, userID int) (*Context, error)
}

type service struct {
	catalog       Catalog
	subscriptions Subscriptions
	users         Users
	attendance    Attendance
	clock         clock.Clock
}

func NewService(cat Catalog, subs Subscriptions, users Users, attendance Attendance, clk clock.Clock) Service {
	return &service{
		catalog:       cat,
		subscriptions: subs,
		users:         users,
		attendance:    attendance,
		clock:         clk,
	}
}

func (s *service) Context(ctx context.Context, userID int) (*Context, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	plans, err := s.catalog.ListAvailable(ctx, catalog.KindMembership)
	if err != nil {
		return nil, err
	}
	passes, err := s.catalog.ListAvailable(ctx, catalog.KindWalkIn)
	if err != nil {
		return nil, err
	}

	in, checkIns, err := s.attendance.TodayCounts(ctx)
	if err != nil {
		return nil, err
	}

	out := &Context{
		Plans:  summarize(plans),
		Passes: summarize(passes),
		Member: MemberSummary{
			Username:    u.Username,
			Name:        u.FullName(),
			Role:        string(u.Role),
			HasKioskPIN: u.HasPIN(),
		},
		Attendance:  AttendanceSummary{CheckInsToday: checkIns, CurrentlyIn: in},
		GeneratedAt: s.clock.Now(),
	}

	if u.Role == auth.RoleMember {
		sub, err := s.subscriptions.Current(ctx, userID)
		switch {
		case errors.Is(err, membership.ErrNoActiveSubscription):
			// left nil
		case err != nil:
			return nil, err
		default:
			out.Member.Subscription = &SubscriptionSummary{
				PlanName:      sub.PlanName,
				EndDate:       sub.EndDate,
				DaysRemaining: sub.DaysLeft,
			}
		}
	}

	return out, nil
}

func summarize(plans []catalog.Plan) []PlanSummary {
	out := make([]PlanSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanSummary{
			ID:           p.ID,
			Name:         p.Name,
			DurationDays: p.DurationDays,
			PriceCents:   p.PriceCents,
			Description:  p.Description,
		})
	}
	return out
}
