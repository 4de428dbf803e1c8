package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPlanNotFound    = apperr.New(apperr.ErrNotFound, "plan not found")
	ErrAlreadyArchived = apperr.New(apperr.ErrConflict, "plan is already archived")
	ErrNotArchived     = apperr.New(apperr.ErrConflict, "plan is not archived")
	ErrPlanArchived    = apperr.New(apperr.ErrConflict, "archived plans cannot be activated")
	ErrPlanInUse       = apperr.New(apperr.ErrConflict, "plan is referenced by subscriptions or sales")
)

const planColumns = `id, kind, name, duration_days, price_cents, description, is_active, is_archived,
	archived_at, archived_by, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Plan) error {
	query := `
		INSERT INTO plans (kind, name, duration_days, price_cents, description, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		p.Kind, p.Name, p.DurationDays, p.PriceCents, p.Description, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) GetByID(ctx context.Context, id int) (*Plan, error) {
	return r.one(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, ErrPlanNotFound, id)
}

// one runs a single-row query, mapping no rows to missing.
func (r *repository) one(ctx context.Context, query string, missing error, args ...interface{}) (*Plan, error) {
	var p Plan
	err := r.db.GetContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, missing
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *Plan) error {
	query := `
		UPDATE plans
		SET name = $1, duration_days = $2, price_cents = $3, description = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.Name, p.DurationDays, p.PriceCents, p.Description, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlanNotFound
	}
	return err
}

// SetActive never touches archived plans.
func (r *repository) SetActive(ctx context.Context, id int, active bool) (*Plan, error) {
	return r.one(ctx, `
		UPDATE plans SET is_active = $1, updated_at = NOW()
		WHERE id = $2 AND NOT is_archived
		RETURNING `+planColumns, ErrPlanArchived, active, id)
}

func (r *repository) Archive(ctx context.Context, id, actorID int, at time.Time) (*Plan, error) {
	var actor *int
	if actorID > 0 {
		actor = &actorID
	}
	return r.one(ctx, `
		UPDATE plans
		SET is_archived = TRUE, is_active = FALSE, archived_at = $1, archived_by = $2, updated_at = NOW()
		WHERE id = $3 AND NOT is_archived
		RETURNING `+planColumns, ErrAlreadyArchived, at, actor, id)
}

func (r *repository) Restore(ctx context.Context, id int) (*Plan, error) {
	return r.one(ctx, `
		UPDATE plans
		SET is_archived = FALSE, is_active = TRUE, archived_at = NULL, archived_by = NULL, updated_at = NOW()
		WHERE id = $1 AND is_archived
		RETURNING `+planColumns, ErrNotArchived, id)
}

func (r *repository) IsReferenced(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `
		SELECT EXISTS(SELECT 1 FROM subscriptions WHERE plan_id = $1)
			OR EXISTS(SELECT 1 FROM walkin_sales WHERE plan_id = $1)
	`, id)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrPlanInUse
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *repository) ListAvailable(ctx context.Context, kind Kind) ([]Plan, error) {
	return r.list(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE kind = $1 AND is_active AND NOT is_archived
		ORDER BY price_cents, id
	`, kind)
}

func (r *repository) ListArchived(ctx context.Context) ([]Plan, error) {
	return r.list(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE is_archived
		ORDER BY archived_at DESC, id DESC
	`)
}

// ListAll includes inactive and archived plans. An empty kind lists both kinds.
func (r *repository) ListAll(ctx context.Context, kind Kind) ([]Plan, error) {
	return r.list(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE $1 = '' OR kind = $1
		ORDER BY kind, is_archived, price_cents, id
	`, kind)
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Plan, error) {
	plans := []Plan{}
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, err
	}
	return plans, nil
}
