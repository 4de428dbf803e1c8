package walkin

import (
	"context"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrReferenceTaken = apperr.New(apperr.ErrConflict, "walk-in reference already used")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM walkin_sales WHERE reference_no = $1)`, ref)
}

func (r *repository) Create(ctx context.Context, s *Sale) error {
	query := `
		INSERT INTO walkin_sales (plan_id, customer_name, mobile_no, amount_cents, method, reference_no, notes, processed_by, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		s.PlanID, s.CustomerName, s.MobileNo, s.AmountCents, s.Method, s.ReferenceNo, s.Notes, s.ProcessedBy, s.PaidAt,
	).Scan(&s.ID, &s.CreatedAt)
	if db.IsUniqueViolation(err, "walkin_sales_reference_no_key") {
		return ErrReferenceTaken
	}
	return err
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Sale, error) {
	sales := []Sale{}
	err := r.db.SelectContext(ctx, &sales, `
		SELECT w.id, w.plan_id, p.name AS pass_name, w.customer_name, w.mobile_no, w.amount_cents, w.method,
			w.reference_no, w.notes, w.processed_by, COALESCE(u.username, '') AS processed_by_name,
			w.paid_at, w.created_at
		FROM walkin_sales w
		JOIN plans p ON p.id = w.plan_id
		LEFT JOIN users u ON u.id = w.processed_by
		ORDER BY w.paid_at DESC, w.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return sales, nil
}
