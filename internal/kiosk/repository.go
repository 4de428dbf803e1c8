package kiosk

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/db"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/user"

	"github.com/jmoiron/sqlx"
)

var (
	ErrAlreadyCheckedIn = apperr.New(apperr.ErrConflict, "member is already checked in")
	ErrAlreadyClosed    = apperr.New(apperr.ErrConflict, "attendance record already closed")
)

const attendanceColumns = `id, user_id, check_in, check_out, duration_minutes, notes`

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

func (s *store) LockOpen(ctx context.Context, userID int) (*Attendance, error) {
	var a Attendance
	err := sqlx.GetContext(ctx, s.q, &a, `
		SELECT `+attendanceColumns+` FROM attendance
		WHERE user_id = $1 AND check_out IS NULL
		FOR UPDATE
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *store) Open(ctx context.Context, a *Attendance) error {
	err := s.q.QueryRowxContext(ctx, `
		INSERT INTO attendance (user_id, check_in, notes)
		VALUES ($1, $2, $3)
		RETURNING id
	`, a.UserID, a.CheckIn, a.Notes).Scan(&a.ID)
	if db.IsUniqueViolation(err, "attendance_one_open_per_user") {
		return ErrAlreadyCheckedIn
	}
	return err
}

func (s *store) Close(ctx context.Context, a *Attendance) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE attendance SET check_out = $1, duration_minutes = $2
		WHERE id = $3 AND check_out IS NULL
	`, a.CheckOut, a.DurationMinutes, a.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyClosed
	}
	return nil
}

func (r *repository) AssignPIN(ctx context.Context, userID int) (string, bool, error) {
	var (
		pin    string
		issued bool
	)
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		pin, issued, err = user.AssignKioskPIN(ctx, tx, userID)
		return err
	})
	return pin, issued, err
}

const reportFilter = `a.check_in >= $1 AND a.check_in < $2
	AND ($3 = '' OR u.username ILIKE $4 OR u.first_name ILIKE $4 OR u.last_name ILIKE $4)
	AND ($5 = '' OR ($5 = 'in' AND a.check_out IS NULL) OR ($5 = 'out' AND a.check_out IS NOT NULL))`

func (r *repository) Report(ctx context.Context, f ReportFilter) ([]Record, int, error) {
	args := []interface{}{f.From, f.To, f.Search, "%" + f.Search + "%", string(f.Presence)}

	var total int
	countQuery := `SELECT COUNT(*) FROM attendance a JOIN users u ON u.id = a.user_id WHERE ` + reportFilter
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	records := []Record{}
	query := `SELECT a.id, a.user_id, a.check_in, a.check_out, a.duration_minutes, a.notes,
		u.username, u.first_name, u.last_name
		FROM attendance a JOIN users u ON u.id = a.user_id
		WHERE ` + reportFilter + `
		ORDER BY a.check_in DESC, a.id DESC LIMIT $6 OFFSET $7`
	if err := r.db.SelectContext(ctx, &records, query, append(args, f.Size, (f.Page-1)*f.Size)...); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *repository) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM attendance WHERE check_out IS NULL`)
	return n, err
}

func (r *repository) CountCheckIns(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM attendance WHERE check_in >= $1 AND check_in < $2`, from, to)
	return n, err
}
