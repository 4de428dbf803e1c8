package analytics

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

const snapshotColumns = `date, active_members, walkin_sales, total_sales_cents, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, date, from, to time.Time) (*Snapshot, error) {
	query := `
		INSERT INTO analytics_snapshots (date, active_members, walkin_sales, total_sales_cents)
		SELECT $1::date,
			(SELECT COUNT(*) FROM subscriptions
				WHERE status = 'active' AND start_date <= $1::date AND end_date >= $1::date),
			(SELECT COUNT(*) FROM walkin_sales WHERE paid_at >= $2 AND paid_at < $3),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM payments
				WHERE status = 'confirmed' AND paid_at >= $2 AND paid_at < $3)
			+ (SELECT COALESCE(SUM(amount_cents), 0) FROM walkin_sales WHERE paid_at >= $2 AND paid_at < $3)
		ON CONFLICT (date) DO UPDATE SET
			active_members = EXCLUDED.active_members,
			walkin_sales = EXCLUDED.walkin_sales,
			total_sales_cents = EXCLUDED.total_sales_cents,
			updated_at = NOW()
		RETURNING ` + snapshotColumns

	var s Snapshot
	if err := r.db.GetContext(ctx, &s, query, date, from, to); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	snaps := []Snapshot{}
	err := r.db.SelectContext(ctx, &snaps,
		`SELECT `+snapshotColumns+` FROM analytics_snapshots ORDER BY date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return snaps, nil
}

func (r *repository) Totals(ctx context.Context) (*Totals, error) {
	var t Totals
	err := r.db.GetContext(ctx, &t, `
		SELECT
			(SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE status = 'confirmed') AS member_revenue_cents,
			(SELECT COALESCE(SUM(amount_cents), 0) FROM walkin_sales) AS walkin_revenue_cents,
			(SELECT COUNT(*) FROM payments WHERE status = 'confirmed') AS confirmed_payments,
			(SELECT COUNT(*) FROM walkin_sales) AS walkin_count
	`)
	if err != nil {
		return nil, err
	}
	t.TotalRevenueCents = t.MemberRevenueCents + t.WalkInRevenueCents
	return &t, nil
}

func (r *repository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, query, args...)
	return n, err
}

func (r *repository) CountActive(ctx context.Context, today time.Time) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE status = 'active' AND end_date >= $1`, today)
}

func (r *repository) CountMembers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE role = 'member'`)
}

func (r *repository) CountPending(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM payments WHERE status = 'pending'`)
}

func (r *repository) CountPayments(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM payments WHERE paid_at >= $1 AND paid_at < $2`, from, to)
}

func (r *repository) CountWalkIns(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM walkin_sales WHERE paid_at >= $1 AND paid_at < $2`, from, to)
}

// Revenue sums confirmed member payments and walk-in sales paid in
// [from, to).
func (r *repository) Revenue(ctx context.Context, from, to time.Time) (int64, error) {
	var cents int64
	err := r.db.GetContext(ctx, &cents, `
		SELECT
			(SELECT COALESCE(SUM(amount_cents), 0) FROM payments
				WHERE status = 'confirmed' AND paid_at >= $1 AND paid_at < $2)
			+ (SELECT COALESCE(SUM(amount_cents), 0) FROM walkin_sales WHERE paid_at >= $1 AND paid_at < $2)
	`, from, to)
	return cents, err
}
