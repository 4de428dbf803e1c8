package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/audit"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/logger"
)

var (
	ErrDuplicateUser      = apperr.New(apperr.ErrConflict, "username or email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidBirthdate   = apperr.New(apperr.ErrValidation, "birthdate must be a past date in YYYY-MM-DD format")
	ErrWrongPassword      = apperr.New(apperr.ErrValidation, "current password is incorrect")
	ErrInvalidRole        = apperr.New(apperr.ErrValidation, "role must be staff or admin")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, userID int)
	GetByID(ctx context.Context, userID int) (*User, error)
	UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*User, error)
	ChangePassword(ctx context.Context, userID int, req ChangePasswordRequest) error
	CreateStaff(ctx context.Context, actorID int, req CreateStaffRequest) (*User, error)
	ListMembers(ctx context.Context, search string, page, size int) (*MemberPage, error)
}

type service struct {
	repo      Repository
	audit     audit.Recorder
	clock     clock.Clock
	jwtSecret string
}

func NewService(repo Repository, recorder audit.Recorder, clk clock.Clock, jwtSecret string) Service {
	return &service{
		repo:      repo,
		audit:     recorder,
		clock:     clk,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	u, err := s.newUser(ctx, req, auth.RoleMember)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(u.ID),
		Action:      audit.ActionRegister,
		Description: fmt.Sprintf("member %s registered", u.Username),
		ModelName:   "User",
		ObjectID:    fmt.Sprint(u.ID),
		ObjectRepr:  u.FullName(),
	})

	return s.session(u)
}

func (s *service) CreateStaff(ctx context.Context, actorID int, req CreateStaffRequest) (*User, error) {
	if req.Role != auth.RoleStaff && req.Role != auth.RoleAdmin {
		return nil, ErrInvalidRole
	}

	u, err := s.newUser(ctx, req.RegisterRequest, req.Role)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(actorID),
		Action:      audit.ActionUserCreated,
		Description: fmt.Sprintf("created %s account %s", u.Role, u.Username),
		ModelName:   "User",
		ObjectID:    fmt.Sprint(u.ID),
		ObjectRepr:  u.FullName(),
		Extra:       map[string]interface{}{"role": u.Role},
	})

	return u, nil
}

func (s *service) newUser(ctx context.Context, req RegisterRequest, role auth.Role) (*User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	exists, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUser
	}
	exists, err = s.repo.EmailExists(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	u := &User{
		Username:  username,
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      role,
		MobileNo:  strings.TrimSpace(req.MobileNo),
		Address:   strings.TrimSpace(req.Address),
	}
	if err := s.setBirthdate(u, req.Birthdate); err != nil {
		return nil, err
	}

	u.PasswordHash, err = auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// setBirthdate parses raw and derives the age. An empty value clears both.
func (s *service) setBirthdate(u *User, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		u.Birthdate, u.Age = nil, nil
		return nil
	}
	bd, err := time.Parse(dateLayout, raw)
	if err != nil {
		return ErrInvalidBirthdate
	}
	today := clock.Today(s.clock.Now())
	if bd.After(today) {
		return ErrInvalidBirthdate
	}
	age := AgeOn(bd, today)
	u.Birthdate, u.Age = &bd, &age
	return nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	meta := audit.RequestMetaFrom(ctx)

	u, err := s.repo.FindByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		var uid *int
		if u != nil {
			uid = audit.UserRef(u.ID)
		}
		s.recordLogin(ctx, LoginActivity{
			UserID:        uid,
			IPAddress:     meta.IPAddress,
			UserAgent:     meta.UserAgent,
			FailureReason: "invalid credentials",
		})
		s.audit.Record(ctx, audit.Event{
			UserID:      uid,
			Action:      audit.ActionLoginFailed,
			Severity:    audit.SeverityWarning,
			Description: fmt.Sprintf("failed login for %q", req.Username),
		})
		return nil, ErrInvalidCredentials
	}

	s.recordLogin(ctx, LoginActivity{
		UserID:    audit.UserRef(u.ID),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Success:   true,
	})
	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(u.ID),
		Action:      audit.ActionLogin,
		Description: fmt.Sprintf("%s logged in", u.Username),
	})

	return s.session(u)
}

func (s *service) recordLogin(ctx context.Context, a LoginActivity) {
	if err := s.repo.RecordLogin(ctx, a); err != nil {
		logger.Warn("login activity not recorded", "error", err)
	}
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := auth.ParseRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, err := auth.GenerateAccessToken(u.identity(), s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: access, User: u}, nil
}

func (s *service) Logout(ctx context.Context, userID int) {
	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(userID),
		Action:      audit.ActionLogout,
		Description: "logged out",
	})
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var changed []string
	set := func(field string, dst *string, v *string) {
		if v == nil {
			return
		}
		nv := strings.TrimSpace(*v)
		if nv != *dst {
			*dst = nv
			changed = append(changed, field)
		}
	}
	set("first_name", &u.FirstName, req.FirstName)
	set("last_name", &u.LastName, req.LastName)
	set("mobile_no", &u.MobileNo, req.MobileNo)
	set("address", &u.Address, req.Address)

	if req.Email != nil && !strings.EqualFold(strings.TrimSpace(*req.Email), u.Email) {
		email := strings.TrimSpace(*req.Email)
		exists, err := s.repo.EmailExists(ctx, email, u.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateUser
		}
		u.Email = email
		changed = append(changed, "email")
	}
	if req.Birthdate != nil {
		if err := s.setBirthdate(u, *req.Birthdate); err != nil {
			return nil, err
		}
		changed = append(changed, "birthdate")
	} else if u.Birthdate != nil {
		age := AgeOn(*u.Birthdate, clock.Today(s.clock.Now()))
		u.Age = &age
	}

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(u.ID),
		Action:      audit.ActionUserUpdated,
		Description: "profile updated",
		ModelName:   "User",
		ObjectID:    fmt.Sprint(u.ID),
		Extra:       map[string]interface{}{"fields": changed},
	})

	return u, nil
}

func (s *service) ChangePassword(ctx context.Context, userID int, req ChangePasswordRequest) error {
	if len(req.NewPassword) < auth.MinPasswordLength {
		return apperr.Validation("new password must be at least %d characters", auth.MinPasswordLength)
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(userID),
		Action:      audit.ActionPasswordChanged,
		Description: "password changed",
	})
	return nil
}

func (s *service) ListMembers(ctx context.Context, search string, page, size int) (*MemberPage, error) {
	users, total, err := s.repo.ListMembers(ctx, strings.TrimSpace(search), page, size)
	if err != nil {
		return nil, err
	}
	return &MemberPage{Items: users, Page: page, Size: size, Total: total}, nil
}

func (s *service) session(u *User) (*Session, error) {
	access, refresh, err := auth.GenerateTokens(u.identity(), s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: u}, nil
}
