package user

import (
	"context"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int) (*User, error)
	FindByLogin(ctx context.Context, login string) (*User, error)
	FindByPIN(ctx context.Context, pin string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID int) (bool, error)
	UpdateProfile(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	ListMembers(ctx context.Context, search string, page, size int) ([]User, int, error)
	CountByRole(ctx context.Context, role auth.Role) (int, error)
	RecordLogin(ctx context.Context, a LoginActivity) error
}
