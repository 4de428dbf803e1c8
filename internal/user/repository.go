package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/db"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/refgen"

	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound = apperr.New(apperr.ErrNotFound, "user not found")
	ErrNotMember    = apperr.New(apperr.ErrValidation, "user is not a member")
	ErrPINTaken     = apperr.New(apperr.ErrConflict, "kiosk pin already assigned")
)

const userColumns = `id, username, email, password_hash, first_name, last_name, role, mobile_no,
	address, birthdate, age, kiosk_pin, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, role, mobile_no, address, birthdate, age)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role,
		u.MobileNo, u.Address, u.Birthdate, u.Age,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if db.IsUniqueViolation(err, "") {
		return ErrDuplicateUser
	}
	return err
}

func (r *repository) get(ctx context.Context, where string, arg interface{}) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	return r.get(ctx, `id = $1`, id)
}

// FindByLogin matches a username exactly or an email case-insensitively.
func (r *repository) FindByLogin(ctx context.Context, login string) (*User, error) {
	return r.get(ctx, `username = $1 OR LOWER(email) = LOWER($1)`, login)
}

func (r *repository) FindByPIN(ctx context.Context, pin string) (*User, error) {
	return r.get(ctx, `kiosk_pin = $1`, pin)
}

func (r *repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *repository) EmailExists(ctx context.Context, email string, excludeID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2)`, email, excludeID)
}

func (r *repository) UpdateProfile(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, mobile_no = $4, address = $5,
			birthdate = $6, age = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		u.FirstName, u.LastName, u.Email, u.MobileNo, u.Address, u.Birthdate, u.Age, u.ID,
	).Scan(&u.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrUserNotFound
	case db.IsUniqueViolation(err, ""):
		return ErrDuplicateUser
	}
	return err
}

func (r *repository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) ListMembers(ctx context.Context, search string, page, size int) ([]User, int, error) {
	pattern := "%" + search + "%"
	filter := `role = 'member' AND ($1 = '' OR username ILIKE $2 OR first_name ILIKE $2
		OR last_name ILIKE $2 OR email ILIKE $2)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE `+filter, search, pattern); err != nil {
		return nil, 0, err
	}

	users := []User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + filter + `
		ORDER BY last_name, first_name, id LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &users, query, search, pattern, size, (page-1)*size); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *repository) CountByRole(ctx context.Context, role auth.Role) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE role = $1`, role)
	return n, err
}

func (r *repository) RecordLogin(ctx context.Context, a LoginActivity) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO login_activities (user_id, ip_address, user_agent, success, failure_reason)
		VALUES (:user_id, :ip_address, :user_agent, :success, :failure_reason)
	`, a)
	return err
}

// AssignKioskPIN gives a member a fresh unique PIN unless one is already
// set, returning the PIN in effect and whether it was newly issued. Runs
// on q so callers can join it to a wider transaction.
func AssignKioskPIN(ctx context.Context, q sqlx.ExtContext, userID int) (string, bool, error) {
	var row struct {
		Role     auth.Role `db:"role"`
		KioskPIN *string   `db:"kiosk_pin"`
	}
	err := sqlx.GetContext(ctx, q, &row, `SELECT role, kiosk_pin FROM users WHERE id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, ErrUserNotFound
	}
	if err != nil {
		return "", false, err
	}
	if row.Role != auth.RoleMember {
		return "", false, ErrNotMember
	}
	if row.KioskPIN != nil && *row.KioskPIN != "" {
		return *row.KioskPIN, false, nil
	}

	pin, err := refgen.PIN(ctx, func(ctx context.Context, candidate string) (bool, error) {
		return db.Exists(ctx, q, `SELECT EXISTS(SELECT 1 FROM users WHERE kiosk_pin = $1)`, candidate)
	})
	if err != nil {
		return "", false, err
	}

	_, err = q.ExecContext(ctx,
		`UPDATE users SET kiosk_pin = $1, updated_at = NOW() WHERE id = $2 AND kiosk_pin IS NULL`, pin, userID)
	if db.IsUniqueViolation(err, "users_kiosk_pin_key") {
		return "", false, ErrPINTaken
	}
	if err != nil {
		return "", false, err
	}

	return pin, true, nil
}
