package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/audit"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 11
	}
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByPIN(ctx context.Context, pin string) (*User, error) {
	args := m.Called(ctx, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string, excludeID int) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockRepository) ListMembers(ctx context.Context, search string, page, size int) ([]User, int, error) {
	args := m.Called(ctx, search, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]User), args.Int(1), args.Error(2)
}

func (m *MockRepository) CountByRole(ctx context.Context, role auth.Role) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RecordLogin(ctx context.Context, a LoginActivity) error {
	return m.Called(ctx, a).Error(0)
}

var today = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func newTestService(repo *MockRepository) (Service, *audit.Memory) {
	rec := audit.NewMemory()
	return NewService(repo, rec, clock.NewFakeClock(today), testSecret), rec
}

func TestService_Register(t *testing.T) {
	base := RegisterRequest{
		Username:  "ana",
		Email:     "ana@example.com",
		Password:  "password123",
		FirstName: "Ana",
		LastName:  "Reyes",
		Birthdate: "2000-06-16",
	}

	tests := []struct {
		name          string
		req           RegisterRequest
		setupMock     func(*MockRepository)
		expectedError error
	}{
		{
			name: "successful registration derives age",
			req:  base,
			setupMock: func(m *MockRepository) {
				m.On("UsernameExists", mock.Anything, "ana").Return(false, nil)
				m.On("EmailExists", mock.Anything, "ana@example.com", 0).Return(false, nil)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
					return u.Role == auth.RoleMember && u.Age != nil && *u.Age == 23 &&
						auth.CheckPassword(u.PasswordHash, "password123")
				})).Return(nil)
			},
		},
		{
			name: "username taken",
			req:  base,
			setupMock: func(m *MockRepository) {
				m.On("UsernameExists", mock.Anything, "ana").Return(true, nil)
			},
			expectedError: ErrDuplicateUser,
		},
		{
			name: "email taken",
			req:  base,
			setupMock: func(m *MockRepository) {
				m.On("UsernameExists", mock.Anything, "ana").Return(false, nil)
				m.On("EmailExists", mock.Anything, "ana@example.com", 0).Return(true, nil)
			},
			expectedError: ErrDuplicateUser,
		},
		{
			name: "future birthdate",
			req: func() RegisterRequest {
				r := base
				r.Birthdate = "2030-01-01"
				return r
			}(),
			setupMock: func(m *MockRepository) {
				m.On("UsernameExists", mock.Anything, "ana").Return(false, nil)
				m.On("EmailExists", mock.Anything, "ana@example.com", 0).Return(false, nil)
			},
			expectedError: ErrInvalidBirthdate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)
			svc, rec := newTestService(repo)

			session, err := svc.Register(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, session)
				assert.Empty(t, rec.Events())
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, session.AccessToken)
				assert.NotEmpty(t, session.RefreshToken)
				assert.Equal(t, []audit.Action{audit.ActionRegister}, rec.Actions())
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, _ := auth.HashPassword("password123")
	stored := &User{ID: 5, Username: "ana", PasswordHash: hash, Role: auth.RoleMember}

	t.Run("success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByLogin", mock.Anything, "ana").Return(stored, nil)
		repo.On("RecordLogin", mock.Anything, mock.MatchedBy(func(a LoginActivity) bool {
			return a.Success && *a.UserID == 5
		})).Return(nil)
		svc, rec := newTestService(repo)

		session, err := svc.Login(context.Background(), LoginRequest{Username: "ana", Password: "password123"})

		require.NoError(t, err)
		claims, err := auth.ValidateToken(session.AccessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleMember, claims.Role)
		assert.Equal(t, []audit.Action{audit.ActionLogin}, rec.Actions())
		repo.AssertExpectations(t)
	})

	t.Run("wrong password audited as warning", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByLogin", mock.Anything, "ana").Return(stored, nil)
		repo.On("RecordLogin", mock.Anything, mock.MatchedBy(func(a LoginActivity) bool {
			return !a.Success && a.FailureReason != ""
		})).Return(errors.New("insert failed"))
		svc, rec := newTestService(repo)

		_, err := svc.Login(context.Background(), LoginRequest{Username: "ana", Password: "nope"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		events := rec.Events()
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionLoginFailed, events[0].Action)
		assert.Equal(t, audit.SeverityWarning, events[0].Severity)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByLogin", mock.Anything, "ghost").Return(nil, ErrUserNotFound)
		repo.On("RecordLogin", mock.Anything, mock.MatchedBy(func(a LoginActivity) bool {
			return a.UserID == nil
		})).Return(nil)
		svc, _ := newTestService(repo)

		_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "x"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByLogin", mock.Anything, "ana").Return(nil, errors.New("db down"))
		svc, _ := newTestService(repo)

		_, err := svc.Login(context.Background(), LoginRequest{Username: "ana", Password: "x"})

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_Refresh(t *testing.T) {
	repo := new(MockRepository)
	repo.On("FindByID", mock.Anything, 5).Return(&User{ID: 5, Username: "ana", Role: auth.RoleStaff}, nil)
	svc, _ := newTestService(repo)

	refresh, _ := auth.GenerateRefreshToken(auth.Identity{UserID: 5, Role: auth.RoleMember}, testSecret)
	session, err := svc.Refresh(context.Background(), refresh)

	require.NoError(t, err)
	claims, _ := auth.ValidateToken(session.AccessToken, testSecret)
	assert.Equal(t, auth.RoleStaff, claims.Role, "role reloaded from storage")

	_, err = svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_ChangePassword(t *testing.T) {
	hash, _ := auth.HashPassword("oldpassword")

	tests := []struct {
		name          string
		req           ChangePasswordRequest
		setupMock     func(*MockRepository)
		expectedError error
	}{
		{
			name: "success",
			req:  ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword"},
			setupMock: func(m *MockRepository) {
				m.On("FindByID", mock.Anything, 3).Return(&User{ID: 3, PasswordHash: hash}, nil)
				m.On("UpdatePassword", mock.Anything, 3, mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name:          "too short",
			req:           ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "short"},
			setupMock:     func(m *MockRepository) {},
			expectedError: apperr.ErrValidation,
		},
		{
			name: "wrong current",
			req:  ChangePasswordRequest{CurrentPassword: "guess", NewPassword: "newpassword"},
			setupMock: func(m *MockRepository) {
				m.On("FindByID", mock.Anything, 3).Return(&User{ID: 3, PasswordHash: hash}, nil)
			},
			expectedError: ErrWrongPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)
			svc, rec := newTestService(repo)

			err := svc.ChangePassword(context.Background(), 3, tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, []audit.Action{audit.ActionPasswordChanged}, rec.Actions())
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_UpdateProfile(t *testing.T) {
	bd := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	oldAge := 30

	repo := new(MockRepository)
	repo.On("FindByID", mock.Anything, 4).Return(&User{ID: 4, Email: "a@x.com", FirstName: "A", Birthdate: &bd, Age: &oldAge}, nil)
	repo.On("EmailExists", mock.Anything, "b@x.com", 4).Return(false, nil)
	repo.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.Email == "b@x.com" && u.FirstName == "Bea" && *u.Age == 34
	})).Return(nil)
	svc, rec := newTestService(repo)

	first, email := "Bea", "b@x.com"
	u, err := svc.UpdateProfile(context.Background(), 4, UpdateProfileRequest{FirstName: &first, Email: &email})

	require.NoError(t, err)
	assert.Equal(t, "Bea", u.FirstName)
	assert.Equal(t, []audit.Action{audit.ActionUserUpdated}, rec.Actions())
	repo.AssertExpectations(t)
}

func TestService_CreateStaff(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UsernameExists", mock.Anything, "desk1").Return(false, nil)
	repo.On("EmailExists", mock.Anything, "desk1@gym.test", 0).Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool { return u.Role == auth.RoleStaff })).Return(nil)
	svc, rec := newTestService(repo)

	u, err := svc.CreateStaff(context.Background(), 1, CreateStaffRequest{
		RegisterRequest: RegisterRequest{Username: "desk1", Email: "desk1@gym.test", Password: "password123"},
		Role:            auth.RoleStaff,
	})

	require.NoError(t, err)
	assert.Equal(t, auth.RoleStaff, u.Role)
	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionUserCreated, events[0].Action)
	assert.Equal(t, 1, *events[0].UserID)

	_, err = svc.CreateStaff(context.Background(), 1, CreateStaffRequest{Role: auth.RoleMember})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAgeOn(t *testing.T) {
	bd := time.Date(2000, 6, 16, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 23, AgeOn(bd, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24, AgeOn(bd, time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, AgeOn(bd, bd))
}
