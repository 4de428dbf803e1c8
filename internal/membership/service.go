package membership

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/audit"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/catalog"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/logger"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/metrics"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/refgen"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/user"
)

var (
	ErrMembersOnly     = apperr.New(apperr.ErrValidation, "only members can subscribe to plans")
	ErrPlanUnavailable = apperr.New(apperr.ErrValidation, "plan is not available for purchase")
	ErrInvalidMethod   = apperr.New(apperr.ErrValidation, "method must be cash or gcash")
	ErrReasonRequired  = apperr.New(apperr.ErrValidation, "a cancellation reason is required")
)

// UserLookup resolves the member behind a subscription for mail and
// member detail views.
type UserLookup interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

// Notifier sends member-facing mail. Failures never undo the operation
// that triggered them.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, to, name, planName string, endDate time.Time, pin string) error
	PaymentRejected(ctx context.Context, to, name, planName, reason string) error
	MembershipExpiring(ctx context.Context, to, name, planName string, endDate time.Time, daysLeft int) error
}

type Service interface {
	Purchase(ctx context.Context, userID int, req PurchaseRequest) (*PurchaseResult, error)
	Confirm(ctx context.Context, actorID, paymentID int) (*ConfirmResult, error)
	Reject(ctx context.Context, actorID, paymentID int, reason string) (*Payment, error)
	Cancel(ctx context.Context, actorID, subscriptionID int, reason string) (*Subscription, error)
	ExpireSweep(ctx context.Context, today time.Time) (int, error)
	NotifyExpiring(ctx context.Context, days int) (int, error)

	Subscriptions(ctx context.Context, userID int) ([]Subscription, error)
	Current(ctx context.Context, userID int) (*Subscription, error)
	ExpiringWithin(ctx context.Context, days int) ([]Expiring, error)
	PendingPayments(ctx context.Context) ([]PendingPayment, error)
	MemberDetail(ctx context.Context, userID int) (*MemberDetail, error)
}

type service struct {
	repo   Repository
	users  UserLookup
	notify Notifier
	audit  audit.Recorder
	clock  clock.Clock
}

func NewService(repo Repository, users UserLookup, notify Notifier, recorder audit.Recorder, clk clock.Clock) Service {
	return &service{
		repo:   repo,
		users:  users,
		notify: notify,
		audit:  recorder,
		clock:  clk,
	}
}

// Purchase opens a pending subscription and its pending payment. The
// user row lock makes the active-subscription check and the insert
// atomic per member.
func (s *service) Purchase(ctx context.Context, userID int, req PurchaseRequest) (*PurchaseResult, error) {
	if !req.Method.Valid() {
		return nil, ErrInvalidMethod
	}

	now := s.clock.Now()
	today := clock.Today(now)

	var (
		res  PurchaseResult
		plan *catalog.Plan
	)
	err := s.repo.WithTx(ctx, func(st Store) error {
		role, err := st.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if role != auth.RoleMember {
			return ErrMembersOnly
		}

		plan, err = st.GetPlan(ctx, req.PlanID)
		if err != nil {
			return err
		}
		if plan.Kind != catalog.KindMembership || !plan.Available() {
			return ErrPlanUnavailable
		}

		active, err := st.HasActive(ctx, userID, today)
		if err != nil {
			return err
		}
		if active {
			return ErrAlreadyActive
		}

		res.Subscription = Subscription{
			UserID:    userID,
			PlanID:    plan.ID,
			PlanName:  plan.Name,
			StartDate: today,
			EndDate:   today.AddDate(0, 0, plan.DurationDays),
			Status:    StatusPending,
		}
		if err := st.CreateSubscription(ctx, &res.Subscription); err != nil {
			return err
		}

		ref, err := refgen.Reference(ctx, refgen.PrefixPayment, now, st.ReferenceExists)
		if err != nil {
			return err
		}

		res.Payment = Payment{
			UserID:         userID,
			SubscriptionID: res.Subscription.ID,
			AmountCents:    plan.PriceCents,
			Method:         req.Method,
			ReferenceNo:    ref,
			Status:         PaymentPending,
			Notes:          strings.TrimSpace(req.Notes),
			PaidAt:         now,
		}
		return st.CreatePayment(ctx, &res.Payment)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPurchase(plan.Name)
	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(userID),
		Action:      audit.ActionMembershipCreated,
		Description: fmt.Sprintf("subscribed to %s (pending confirmation)", plan.Name),
		ModelName:   "Subscription",
		ObjectID:    fmt.Sprint(res.Subscription.ID),
		ObjectRepr:  plan.Name,
		Extra:       map[string]interface{}{"plan_name": plan.Name, "amount_cents": plan.PriceCents},
	})
	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(userID),
		Action:      audit.ActionPaymentReceived,
		Description: fmt.Sprintf("payment submitted via %s (ref %s)", req.Method, res.Payment.ReferenceNo),
		ModelName:   "Payment",
		ObjectID:    fmt.Sprint(res.Payment.ID),
		ObjectRepr:  res.Payment.ReferenceNo,
		Extra: map[string]interface{}{
			"amount_cents":   res.Payment.AmountCents,
			"payment_method": res.Payment.Method,
			"reference_no":   res.Payment.ReferenceNo,
		},
	})

	s.present(&res.Subscription, today)
	return &res, nil
}

// Confirm activates the subscription behind a pending payment and makes
// sure the member can use the kiosk.
func (s *service) Confirm(ctx context.Context, actorID, paymentID int) (*ConfirmResult, error) {
	now := s.clock.Now()
	today := clock.Today(now)

	var res ConfirmResult
	err := s.repo.WithTx(ctx, func(st Store) error {
		p, err := st.LockPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != PaymentPending {
			return ErrPaymentNotPending
		}

		// Lapsed rows would otherwise trip the one-active index.
		if _, err := st.ExpireStale(ctx, p.UserID, today); err != nil {
			return err
		}

		p.Status = PaymentConfirmed
		p.ApprovedBy = audit.UserRef(actorID)
		p.ApprovedAt = &now
		if err := st.DecidePayment(ctx, p); err != nil {
			return err
		}
		if err := st.Activate(ctx, p.SubscriptionID); err != nil {
			return err
		}

		res.KioskPIN, res.PINIssued, err = st.AssignPIN(ctx, p.UserID)
		if err != nil {
			return err
		}

		sub, err := st.GetSubscription(ctx, p.SubscriptionID)
		if err != nil {
			return err
		}
		res.Payment, res.Subscription = *p, *sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPaymentDecision("confirmed")
	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(actorID),
		Action:      audit.ActionPaymentConfirmed,
		Description: fmt.Sprintf("payment %s confirmed, %s activated", res.Payment.ReferenceNo, res.Subscription.PlanName),
		ModelName:   "Payment",
		ObjectID:    fmt.Sprint(res.Payment.ID),
		ObjectRepr:  res.Payment.ReferenceNo,
		Extra: map[string]interface{}{
			"member_id":    res.Payment.UserID,
			"amount_cents": res.Payment.AmountCents,
		},
	})
	if res.PINIssued {
		s.audit.Record(ctx, audit.Event{
			UserID:      audit.UserRef(actorID),
			Action:      audit.ActionPINIssued,
			Description: "kiosk PIN issued on payment confirmation",
			ModelName:   "User",
			ObjectID:    fmt.Sprint(res.Payment.UserID),
		})
	}

	if s.notify != nil {
		if u := s.member(ctx, res.Payment.UserID); u != nil {
			if err := s.notify.PaymentConfirmed(ctx, u.Email, u.FullName(), res.Subscription.PlanName,
				res.Subscription.EndDate, res.KioskPIN); err != nil {
				logger.Warn("confirmation mail not queued", "payment_id", res.Payment.ID, "error", err)
			}
		}
	}

	s.present(&res.Subscription, today)
	return &res, nil
}

// Reject closes a pending payment for good and cancels its subscription.
func (s *service) Reject(ctx context.Context, actorID, paymentID int, reason string) (*Payment, error) {
	now := s.clock.Now()
	reason = strings.TrimSpace(reason)

	var (
		p   *Payment
		sub *Subscription
	)
	err := s.repo.WithTx(ctx, func(st Store) error {
		var err error
		p, err = st.LockPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != PaymentPending {
			return ErrPaymentNotPending
		}

		p.Status = PaymentRejected
		p.ApprovedBy = audit.UserRef(actorID)
		p.ApprovedAt = &now
		p.RejectionReason = reason
		if err := st.DecidePayment(ctx, p); err != nil {
			return err
		}

		sub, err = st.GetSubscription(ctx, p.SubscriptionID)
		if err != nil {
			return err
		}
		sub.CancelledReason = "payment rejected"
		if reason != "" {
			sub.CancelledReason += ": " + reason
		}
		sub.CancelledBy = audit.UserRef(actorID)
		sub.CancelledAt = &now
		return st.Cancel(ctx, sub, StatusPending)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPaymentDecision("rejected")
	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(actorID),
		Action:      audit.ActionPaymentRejected,
		Severity:    audit.SeverityWarning,
		Description: fmt.Sprintf("payment %s rejected: %s", p.ReferenceNo, reason),
		ModelName:   "Payment",
		ObjectID:    fmt.Sprint(p.ID),
		ObjectRepr:  p.ReferenceNo,
		Extra:       map[string]interface{}{"member_id": p.UserID, "reason": reason},
	})

	if s.notify != nil {
		if u := s.member(ctx, p.UserID); u != nil {
			if err := s.notify.PaymentRejected(ctx, u.Email, u.FullName(), sub.PlanName, reason); err != nil {
				logger.Warn("rejection mail not queued", "payment_id", p.ID, "error", err)
			}
		}
	}

	return p, nil
}

func (s *service) Cancel(ctx context.Context, actorID, subscriptionID int, reason string) (*Subscription, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	now := s.clock.Now()
	today := clock.Today(now)

	sub, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.IsActive(today) {
		return nil, ErrNotActive
	}

	sub.CancelledReason = reason
	sub.CancelledBy = audit.UserRef(actorID)
	sub.CancelledAt = &now
	if err := s.repo.Cancel(ctx, sub, StatusActive); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(actorID),
		Action:      audit.ActionMembershipCancelled,
		Severity:    audit.SeverityWarning,
		Description: fmt.Sprintf("cancelled %s for member %d: %s", sub.PlanName, sub.UserID, reason),
		ModelName:   "Subscription",
		ObjectID:    fmt.Sprint(sub.ID),
		ObjectRepr:  sub.PlanName,
		Extra:       map[string]interface{}{"member_id": sub.UserID, "reason": reason},
	})

	s.present(sub, today)
	return sub, nil
}

// ExpireSweep persists the expired status that reads already report.
func (s *service) ExpireSweep(ctx context.Context, today time.Time) (int, error) {
	n, err := s.repo.ExpireAll(ctx, clock.Today(today))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	metrics.RecordExpired(n)
	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionMembershipExpired,
		Description: fmt.Sprintf("%d memberships expired", n),
		ModelName:   "Subscription",
		Extra:       map[string]interface{}{"count": n, "date": today.Format("2006-01-02")},
	})
	return n, nil
}

// NotifyExpiring mails members whose subscription ends within days,
// returning how many reminders were queued.
func (s *service) NotifyExpiring(ctx context.Context, days int) (int, error) {
	if s.notify == nil {
		return 0, nil
	}

	expiring, err := s.ExpiringWithin(ctx, days)
	if err != nil {
		return 0, err
	}

	today := clock.Today(s.clock.Now())
	sent := 0
	for _, e := range expiring {
		name := strings.TrimSpace(e.FirstName + " " + e.LastName)
		if name == "" {
			name = e.Username
		}
		if err := s.notify.MembershipExpiring(ctx, e.Email, name, e.PlanName, e.EndDate, e.DaysRemaining(today)); err != nil {
			logger.Warn("expiry reminder not queued", "subscription_id", e.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *service) Subscriptions(ctx context.Context, userID int) ([]Subscription, error) {
	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := clock.Today(s.clock.Now())
	for i := range subs {
		s.present(&subs[i], today)
	}
	return subs, nil
}

func (s *service) Current(ctx context.Context, userID int) (*Subscription, error) {
	today := clock.Today(s.clock.Now())
	sub, err := s.repo.Current(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	s.present(sub, today)
	return sub, nil
}

func (s *service) ExpiringWithin(ctx context.Context, days int) ([]Expiring, error) {
	if days <= 0 {
		days = 7
	}
	today := clock.Today(s.clock.Now())
	out, err := s.repo.ExpiringBetween(ctx, today, today.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	for i := range out {
		s.present(&out[i].Subscription, today)
	}
	return out, nil
}

func (s *service) PendingPayments(ctx context.Context) ([]PendingPayment, error) {
	return s.repo.ListPending(ctx)
}

func (s *service) MemberDetail(ctx context.Context, userID int) (*MemberDetail, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role != auth.RoleMember {
		return nil, user.ErrUserNotFound
	}

	subs, err := s.Subscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.PaymentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &MemberDetail{Member: *u, Subscriptions: subs, Payments: payments}, nil
}

// present applies the effective status and remaining days for today.
func (s *service) present(sub *Subscription, today time.Time) {
	sub.Status = EffectiveStatus(*sub, today)
	sub.DaysLeft = sub.DaysRemaining(today)
}

func (s *service) member(ctx context.Context, userID int) *user.User {
	if s.users == nil {
		return nil
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.Warn("member lookup for mail failed", "user_id", userID, "error", err)
		return nil
	}
	return u
}
