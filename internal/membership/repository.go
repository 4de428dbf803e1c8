package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/catalog"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/db"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/user"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSubscriptionNotFound = apperr.New(apperr.ErrNotFound, "subscription not found")
	ErrPaymentNotFound      = apperr.New(apperr.ErrNotFound, "payment not found")
	ErrPaymentNotPending    = apperr.New(apperr.ErrConflict, "payment has already been decided")
	ErrNoActiveSubscription = apperr.New(apperr.ErrNotFound, "no active subscription")
	ErrAlreadyActive        = apperr.New(apperr.ErrConflict, "member already has an active subscription")
	ErrNotPending           = apperr.New(apperr.ErrConflict, "subscription is not pending")
	ErrNotActive            = apperr.New(apperr.ErrConflict, "only active subscriptions can be cancelled")
	ErrReferenceTaken       = apperr.New(apperr.ErrConflict, "payment reference already used")
)

const subscriptionColumns = `s.id, s.user_id, s.plan_id, p.name AS plan_name, s.start_date, s.end_date, s.status,
	s.cancelled_reason, s.cancelled_by, s.cancelled_at, s.created_at, s.updated_at`

const paymentColumns = `id, user_id, subscription_id, amount_cents, method, reference_no, status, notes,
	approved_by, approved_at, rejection_reason, paid_at, created_at, updated_at`

// store runs on either the pool or a transaction.
type store struct {
	q sqlx.ExtContext
}

type repository struct {
	store
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{store: store{q: db}, db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(Store) error) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&store{q: tx})
	})
}

// LockUser takes the user's row lock, serializing purchases per member.
func (s *store) LockUser(ctx context.Context, userID int) (auth.Role, error) {
	var role auth.Role
	err := sqlx.GetContext(ctx, s.q, &role, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", user.ErrUserNotFound
	}
	return role, err
}

func (s *store) GetPlan(ctx context.Context, planID int) (*catalog.Plan, error) {
	var p catalog.Plan
	err := sqlx.GetContext(ctx, s.q, &p, `
		SELECT id, kind, name, duration_days, price_cents, description, is_active, is_archived,
			archived_at, archived_by, created_at, updated_at
		FROM plans WHERE id = $1 FOR SHARE
	`, planID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *store) HasActive(ctx context.Context, userID int, today time.Time) (bool, error) {
	return db.Exists(ctx, s.q, `
		SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_id = $1 AND status = 'active' AND end_date >= $2)
	`, userID, today)
}

func (s *store) CreateSubscription(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, plan_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	return s.q.QueryRowxContext(ctx, query,
		sub.UserID, sub.PlanID, sub.StartDate, sub.EndDate, sub.Status,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (s *store) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	return db.Exists(ctx, s.q, `SELECT EXISTS(SELECT 1 FROM payments WHERE reference_no = $1)`, ref)
}

func (s *store) CreatePayment(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (user_id, subscription_id, amount_cents, method, reference_no, status, notes, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := s.q.QueryRowxContext(ctx, query,
		p.UserID, p.SubscriptionID, p.AmountCents, p.Method, p.ReferenceNo, p.Status, p.Notes, p.PaidAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if db.IsUniqueViolation(err, "payments_reference_no_key") {
		return ErrReferenceTaken
	}
	return err
}

func (s *store) LockPayment(ctx context.Context, paymentID int) (*Payment, error) {
	var p Payment
	err := sqlx.GetContext(ctx, s.q, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DecidePayment moves a pending payment to p.Status. A payment that has
// already been decided is left untouched and reported as a conflict.
func (s *store) DecidePayment(ctx context.Context, p *Payment) error {
	query := `
		UPDATE payments
		SET status = $1, approved_by = $2, approved_at = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'pending'
		RETURNING updated_at
	`

	err := s.q.QueryRowxContext(ctx, query,
		p.Status, p.ApprovedBy, p.ApprovedAt, p.RejectionReason, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPaymentNotPending
	}
	return err
}

func (s *store) GetSubscription(ctx context.Context, id int) (*Subscription, error) {
	var sub Subscription
	err := sqlx.GetContext(ctx, s.q, &sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions s JOIN plans p ON p.id = s.plan_id
		WHERE s.id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *store) ExpireStale(ctx context.Context, userID int, today time.Time) (int, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE subscriptions SET status = 'expired', updated_at = NOW()
		WHERE user_id = $1 AND status = 'active' AND end_date < $2
	`, userID, today)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *store) Activate(ctx context.Context, subscriptionID int) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE subscriptions SET status = 'active', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, subscriptionID)
	if db.IsUniqueViolation(err, "subscriptions_one_active_per_user") {
		return ErrAlreadyActive
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}

// Cancel moves sub from the given status to cancelled, recording the
// reason, actor and time set on sub.
func (s *store) Cancel(ctx context.Context, sub *Subscription, from Status) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'cancelled', cancelled_reason = $1, cancelled_by = $2, cancelled_at = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`, sub.CancelledReason, sub.CancelledBy, sub.CancelledAt, sub.ID, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if from == StatusPending {
			return ErrNotPending
		}
		return ErrNotActive
	}
	sub.Status = StatusCancelled
	return nil
}

func (s *store) AssignPIN(ctx context.Context, userID int) (string, bool, error) {
	return user.AssignKioskPIN(ctx, s.q, userID)
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Subscription, error) {
	subs := []Subscription{}
	err := r.db.SelectContext(ctx, &subs, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions s JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1
		ORDER BY s.start_date DESC, s.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) Current(ctx context.Context, userID int, today time.Time) (*Subscription, error) {
	var sub Subscription
	err := r.db.GetContext(ctx, &sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions s JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1 AND s.status = 'active' AND s.end_date >= $2
		ORDER BY s.end_date DESC
		LIMIT 1
	`, userID, today)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) ExpiringBetween(ctx context.Context, from, to time.Time) ([]Expiring, error) {
	out := []Expiring{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+subscriptionColumns+`, u.username, u.first_name, u.last_name, u.email
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		JOIN users u ON u.id = s.user_id
		WHERE s.status = 'active' AND s.end_date BETWEEN $1 AND $2
		ORDER BY s.end_date, s.id
	`, from, to)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireAll persists the expired status for every active subscription
// whose end date has passed.
func (r *repository) ExpireAll(ctx context.Context, today time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND end_date < $1
	`, today)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *repository) ListPending(ctx context.Context) ([]PendingPayment, error) {
	out := []PendingPayment{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT pay.id, pay.user_id, pay.subscription_id, pay.amount_cents, pay.method, pay.reference_no,
			pay.status, pay.notes, pay.approved_by, pay.approved_at, pay.rejection_reason, pay.paid_at,
			pay.created_at, pay.updated_at,
			u.username, u.first_name, u.last_name, u.email, p.name AS plan_name
		FROM payments pay
		JOIN users u ON u.id = pay.user_id
		JOIN subscriptions s ON s.id = pay.subscription_id
		JOIN plans p ON p.id = s.plan_id
		WHERE pay.status = 'pending'
		ORDER BY pay.paid_at DESC, pay.id DESC
	`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) PaymentsByUser(ctx context.Context, userID int) ([]Payment, error) {
	out := []Payment{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+paymentColumns+` FROM payments
		WHERE user_id = $1
		ORDER BY paid_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
