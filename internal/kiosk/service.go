package kiosk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/audit"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/membership"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/metrics"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/refgen"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/user"
)

const defaultPageSize = 20

var (
	ErrInvalidPIN         = apperr.New(apperr.ErrValidation, "PIN must be exactly 6 digits")
	ErrUnknownPIN         = apperr.New(apperr.ErrNotFound, "invalid PIN")
	ErrMembershipInactive = apperr.New(apperr.ErrValidation, "no active membership, please renew at the front desk")
	ErrInvalidPresence    = apperr.New(apperr.ErrValidation, "status must be in or out")
)

// Members resolves kiosk PINs; user.Repository satisfies it.
type Members interface {
	FindByPIN(ctx context.Context, pin string) (*user.User, error)
}

// Memberships reports a member's current subscription;
// membership.Repository satisfies it.
type Memberships interface {
	Current(ctx context.Context, userID int, today time.Time) (*membership.Subscription, error)
}

type Service interface {
	Authenticate(ctx context.Context, pin string) (*user.User, error)
	Toggle(ctx context.Context, pin string) (*Result, error)
	IssuePIN(ctx context.Context, actorID, userID int) (*PINResult, error)
	Report(ctx context.Context, day time.Time, search string, presence Presence, page, size int) (*Report, error)
	TodayCounts(ctx context.Context) (currentlyIn, checkIns int, err error)
}

type service struct {
	repo        Repository
	members     Members
	memberships Memberships
	audit       audit.Recorder
	clock       clock.Clock
}

func NewService(repo Repository, members Members, memberships Memberships, recorder audit.Recorder, clk clock.Clock) Service {
	return &service{
		repo:        repo,
		members:     members,
		memberships: memberships,
		audit:       recorder,
		clock:       clk,
	}
}

// Authenticate resolves pin to a member. Every failure is audited as a
// failed login; the PIN itself is never written to the trail.
func (s *service) Authenticate(ctx context.Context, pin string) (*user.User, error) {
	pin = strings.TrimSpace(pin)
	if !refgen.ValidPIN(pin) {
		metrics.RecordKioskEvent("invalid_pin")
		s.audit.Record(ctx, audit.Event{
			Action:      audit.ActionLoginFailed,
			Description: "kiosk: malformed PIN",
			Extra:       map[string]interface{}{"source": "kiosk"},
		})
		return nil, ErrInvalidPIN
	}

	u, err := s.members.FindByPIN(ctx, pin)
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}
	if u == nil || u.Role != auth.RoleMember {
		metrics.RecordKioskEvent("unknown_pin")
		s.audit.Record(ctx, audit.Event{
			Action:      audit.ActionLoginFailed,
			Severity:    audit.SeverityWarning,
			Description: "kiosk: unknown PIN",
			Extra:       map[string]interface{}{"source": "kiosk"},
		})
		return nil, ErrUnknownPIN
	}
	return u, nil
}

// Toggle checks the member in, or out when a record is already open.
func (s *service) Toggle(ctx context.Context, pin string) (*Result, error) {
	u, err := s.Authenticate(ctx, pin)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := clock.Today(now)

	sub, err := s.memberships.Current(ctx, u.ID, today)
	if err != nil && !errors.Is(err, membership.ErrNoActiveSubscription) {
		return nil, err
	}
	active := sub != nil && sub.IsActive(today)

	res := &Result{
		Member: Member{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.FullName(),
		},
	}
	if sub != nil {
		res.Member.PlanName = sub.PlanName
		res.Member.EndDate = sub.EndDate
		res.Member.DaysRemaining = sub.DaysRemaining(today)
	}

	// An open visit can always be closed; only new check-ins need a
	// current membership.
	err = s.repo.WithTx(ctx, func(st Store) error {
		open, err := st.LockOpen(ctx, u.ID)
		if err != nil {
			return err
		}

		if open != nil {
			minutes := int(now.Sub(open.CheckIn) / time.Minute)
			if minutes < 0 {
				minutes = 0
			}
			open.CheckOut = &now
			open.DurationMinutes = &minutes
			if err := st.Close(ctx, open); err != nil {
				return err
			}
			res.Action, res.Attendance = ActionCheckOut, *open
			return nil
		}

		if !active {
			return ErrMembershipInactive
		}

		a := Attendance{UserID: u.ID, CheckIn: now}
		if err := st.Open(ctx, &a); err != nil {
			return err
		}
		res.Action, res.Attendance = ActionCheckIn, a
		return nil
	})
	if errors.Is(err, ErrMembershipInactive) {
		metrics.RecordKioskEvent("inactive")
		s.audit.Record(ctx, audit.Event{
			UserID:      audit.UserRef(u.ID),
			Action:      audit.ActionPermissionDenied,
			Severity:    audit.SeverityWarning,
			Description: "kiosk check-in refused: no active membership",
			ModelName:   "Attendance",
		})
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordKioskEvent(string(res.Action))
	if res.Action == ActionCheckOut {
		res.Message = fmt.Sprintf("Goodbye, %s! You trained for %d minutes.", res.Member.Name, *res.Attendance.DurationMinutes)
		s.audit.Record(ctx, audit.Event{
			UserID:      audit.UserRef(u.ID),
			Action:      audit.ActionCheckOut,
			Description: fmt.Sprintf("checked out after %d minutes", *res.Attendance.DurationMinutes),
			ModelName:   "Attendance",
			ObjectID:    fmt.Sprint(res.Attendance.ID),
			Extra:       map[string]interface{}{"duration_minutes": *res.Attendance.DurationMinutes},
		})
	} else {
		res.Message = fmt.Sprintf("Welcome, %s!", res.Member.Name)
		s.audit.Record(ctx, audit.Event{
			UserID:      audit.UserRef(u.ID),
			Action:      audit.ActionCheckIn,
			Description: "checked in at kiosk",
			ModelName:   "Attendance",
			ObjectID:    fmt.Sprint(res.Attendance.ID),
		})
	}

	return res, nil
}

func (s *service) IssuePIN(ctx context.Context, actorID, userID int) (*PINResult, error) {
	pin, issued, err := s.repo.AssignPIN(ctx, userID)
	if err != nil {
		return nil, err
	}

	if issued {
		s.audit.Record(ctx, audit.Event{
			UserID:      audit.UserRef(actorID),
			Action:      audit.ActionPINIssued,
			Description: "kiosk PIN issued by staff",
			ModelName:   "User",
			ObjectID:    fmt.Sprint(userID),
		})
	}

	return &PINResult{UserID: userID, PIN: pin, Issued: issued}, nil
}

func (s *service) Report(ctx context.Context, day time.Time, search string, presence Presence, page, size int) (*Report, error) {
	if !presence.Valid() {
		return nil, ErrInvalidPresence
	}
	if day.IsZero() {
		day = s.clock.Now()
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}

	from, to := clock.DayBounds(day)
	records, total, err := s.repo.Report(ctx, ReportFilter{
		From:     from,
		To:       to,
		Search:   strings.TrimSpace(search),
		Presence: presence,
		Page:     page,
		Size:     size,
	})
	if err != nil {
		return nil, err
	}

	in, checkIns, err := s.TodayCounts(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		Date:        from.Format("2006-01-02"),
		Records:     records,
		Total:       total,
		Page:        page,
		Size:        size,
		CurrentlyIn: in,
		TodayCount:  checkIns,
	}, nil
}

func (s *service) TodayCounts(ctx context.Context) (int, int, error) {
	in, err := s.repo.CountOpen(ctx)
	if err != nil {
		return 0, 0, err
	}
	from, to := clock.DayBounds(s.clock.Now())
	checkIns, err := s.repo.CountCheckIns(ctx, from, to)
	if err != nil {
		return 0, 0, err
	}
	return in, checkIns, nil
}
