package user

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/refgen"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })
	return sqlxDB, mock
}

var userRowColumns = []string{
	"id", "username", "email", "password_hash", "first_name", "last_name", "role", "mobile_no",
	"address", "birthdate", "age", "kiosk_pin", "created_at", "updated_at",
}

func TestRepository_CreateAndFind(t *testing.T) {
	sqlxDB, mock := setupUserMock(t)
	repo := NewRepository(sqlxDB)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (username, email, password_hash, first_name, last_name, role, mobile_no, address, birthdate, age)")).
		WithArgs("ana", "ana@example.com", "hash", "Ana", "Reyes", auth.RoleMember, "", "", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))

	u := &User{Username: "ana", Email: "ana@example.com", PasswordHash: "hash", FirstName: "Ana", LastName: "Reyes", Role: auth.RoleMember}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, 1, u.ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1 OR LOWER(email) = LOWER($1)")).
		WithArgs("ANA@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, "ana", "ana@example.com", "hash", "Ana", "Reyes", "member", "", "", nil, nil, "123456", now, now))

	found, err := repo.FindByLogin(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana", found.Username)
	assert.True(t, found.HasPIN())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_Duplicate(t *testing.T) {
	sqlxDB, mock := setupUserMock(t)
	repo := NewRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	err := repo.Create(context.Background(), &User{Username: "ana"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	sqlxDB, mock := setupUserMock(t)
	repo := NewRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_UpdatePassword_NotFound(t *testing.T) {
	sqlxDB, mock := setupUserMock(t)
	repo := NewRepository(sqlxDB)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs("h", 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), 7, "h"), ErrUserNotFound)
}

func TestRepository_ListMembers(t *testing.T) {
	sqlxDB, mock := setupUserMock(t)
	repo := NewRepository(sqlxDB)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE role = 'member'")).
		WithArgs("rey", "%rey%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY last_name, first_name, id LIMIT $3 OFFSET $4")).
		WithArgs("rey", "%rey%", 20, 20).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(4, "bea", "bea@example.com", "h", "Bea", "Reyes", "member", "", "", nil, nil, nil, now, now))

	users, total, err := repo.ListMembers(context.Background(), "rey", 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 21, total)
	require.Len(t, users, 1)
	assert.False(t, users[0].HasPIN())
}

func TestRepository_RecordLogin(t *testing.T) {
	sqlxDB, mock := setupUserMock(t)
	repo := NewRepository(sqlxDB)
	uid := 3

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO login_activities (user_id, ip_address, user_agent, success, failure_reason)")).
		WithArgs(&uid, "10.1.1.1", "ua", true, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.RecordLogin(context.Background(), LoginActivity{UserID: &uid, IPAddress: "10.1.1.1", UserAgent: "ua", Success: true})
	require.NoError(t, err)
}

func TestAssignKioskPIN(t *testing.T) {
	lockQuery := regexp.QuoteMeta("SELECT role, kiosk_pin FROM users WHERE id = $1 FOR UPDATE")

	t.Run("issues a new pin", func(t *testing.T) {
		sqlxDB, mock := setupUserMock(t)

		mock.ExpectQuery(lockQuery).WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"role", "kiosk_pin"}).AddRow("member", nil))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE kiosk_pin = $1)")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET kiosk_pin = $1, updated_at = NOW() WHERE id = $2 AND kiosk_pin IS NULL")).
			WithArgs(sqlmock.AnyArg(), 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		pin, issued, err := AssignKioskPIN(context.Background(), sqlxDB, 5)
		require.NoError(t, err)
		assert.True(t, issued)
		assert.True(t, refgen.ValidPIN(pin))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps an existing pin", func(t *testing.T) {
		sqlxDB, mock := setupUserMock(t)

		mock.ExpectQuery(lockQuery).WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"role", "kiosk_pin"}).AddRow("member", "654321"))

		pin, issued, err := AssignKioskPIN(context.Background(), sqlxDB, 5)
		require.NoError(t, err)
		assert.False(t, issued)
		assert.Equal(t, "654321", pin)
	})

	t.Run("rejects non-members", func(t *testing.T) {
		sqlxDB, mock := setupUserMock(t)

		mock.ExpectQuery(lockQuery).WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"role", "kiosk_pin"}).AddRow("staff", nil))

		_, _, err := AssignKioskPIN(context.Background(), sqlxDB, 2)
		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("fails closed when every candidate collides", func(t *testing.T) {
		sqlxDB, mock := setupUserMock(t)

		mock.ExpectQuery(lockQuery).WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"role", "kiosk_pin"}).AddRow("member", nil))
		for i := 0; i < refgen.MaxAttempts; i++ {
			mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE kiosk_pin = $1)")).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		}

		_, _, err := AssignKioskPIN(context.Background(), sqlxDB, 5)
		assert.ErrorIs(t, err, refgen.ErrExhausted)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
