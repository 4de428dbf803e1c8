package user

import (
	"strings"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
)

const dateLayout = "2006-01-02"

type User struct {
	ID           int        `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Role         auth.Role  `db:"role" json:"role"`
	MobileNo     string     `db:"mobile_no" json:"mobile_no"`
	Address      string     `db:"address" json:"address"`
	Birthdate    *time.Time `db:"birthdate" json:"birthdate,omitempty"`
	Age          *int       `db:"age" json:"age,omitempty"`
	KioskPIN     *string    `db:"kiosk_pin" json:"kiosk_pin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u *User) HasPIN() bool {
	return u.KioskPIN != nil && *u.KioskPIN != ""
}

func (u *User) identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// AgeOn returns whole years between birthdate and day.
func AgeOn(birthdate, day time.Time) int {
	age := day.Year() - birthdate.Year()
	if day.Month() < birthdate.Month() || (day.Month() == birthdate.Month() && day.Day() < birthdate.Day()) {
		age--
	}
	return age
}

type LoginActivity struct {
	UserID        *int   `db:"user_id"`
	IPAddress     string `db:"ip_address"`
	UserAgent     string `db:"user_agent"`
	Success       bool   `db:"success"`
	FailureReason string `db:"failure_reason"`
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	MobileNo  string `json:"mobile_no" binding:"max=15"`
	Address   string `json:"address"`
	Birthdate string `json:"birthdate" example:"1995-04-12"`
}

type CreateStaffRequest struct {
	RegisterRequest
	Role auth.Role `json:"role" binding:"required,oneof=staff admin"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Email     *string `json:"email" binding:"omitempty,email"`
	MobileNo  *string `json:"mobile_no" binding:"omitempty,max=15"`
	Address   *string `json:"address"`
	Birthdate *string `json:"birthdate"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user"`
}

type MemberPage struct {
	Items []User `json:"items"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
	Total int    `json:"total"`
}
