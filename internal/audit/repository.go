package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO audit_logs (user_id, action, severity, description, ip_address, user_agent,
			request_id, model_name, object_id, object_repr, extra_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	return r.db.QueryRowxContext(ctx, query,
		e.UserID, e.Action, e.Severity, e.Description, e.IPAddress, e.UserAgent,
		e.RequestID, e.ModelName, e.ObjectID, e.ObjectRepr, e.ExtraData,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *repository) List(ctx context.Context, f Filter) ([]Entry, int, error) {
	where, args := buildWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM audit_logs a LEFT JOIN users u ON u.id = a.user_id` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT a.id, a.user_id, COALESCE(u.username, '') AS username, a.action, a.severity,
		a.description, a.ip_address, a.user_agent, a.request_id, a.model_name, a.object_id,
		a.object_repr, a.extra_data, a.created_at
		FROM audit_logs a LEFT JOIN users u ON u.id = a.user_id` + where +
		fmt.Sprintf(` ORDER BY a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	entries := []Entry{}
	if err := r.db.SelectContext(ctx, &entries, query, append(args, f.Size, f.offset())...); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func buildWhere(f Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Action != "" {
		add("a.action = $%d", f.Action)
	}
	if len(f.Actions) > 0 {
		names := make([]string, len(f.Actions))
		for i, a := range f.Actions {
			names[i] = string(a)
		}
		add("a.action = ANY($%d)", pq.Array(names))
	}
	if f.Severity != "" {
		add("a.severity = $%d", f.Severity)
	}
	if f.UserID != nil {
		add("a.user_id = $%d", *f.UserID)
	}
	if f.Username != "" {
		add("u.username ILIKE $%d", "%"+f.Username+"%")
	}
	if f.Since != nil {
		add("a.created_at >= $%d", *f.Since)
	}
	if f.Until != nil {
		add("a.created_at <= $%d", *f.Until)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
