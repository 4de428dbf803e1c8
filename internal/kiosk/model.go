package kiosk

import (
	"time"
)

type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

type Attendance struct {
	ID              int        `db:"id" json:"id"`
	UserID          int        `db:"user_id" json:"user_id"`
	CheckIn         time.Time  `db:"check_in" json:"check_in"`
	CheckOut        *time.Time `db:"check_out" json:"check_out,omitempty"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Notes           string     `db:"notes" json:"notes,omitempty"`
}

// IsOpen reports whether the member is still checked in.
func (a *Attendance) IsOpen() bool {
	return a.CheckOut == nil
}

// Member is the part of the member record shown on the kiosk screen.
type Member struct {
	ID            int       `json:"id"`
	Username      string    `json:"username"`
	Name          string    `json:"name"`
	PlanName      string    `json:"plan_name"`
	EndDate       time.Time `json:"end_date"`
	DaysRemaining int       `json:"days_remaining"`
}

type Result struct {
	Action     Action     `json:"action"`
	Attendance Attendance `json:"attendance"`
	Member     Member     `json:"member"`
	Message    string     `json:"message"`
}

type PINResult struct {
	UserID int    `json:"user_id"`
	PIN    string `json:"pin"`
	Issued bool   `json:"issued"`
}

// Record is an attendance row joined with its member for staff reports.
type Record struct {
	Attendance
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

type Presence string

const (
	PresenceAny Presence = ""
	PresenceIn  Presence = "in"
	PresenceOut Presence = "out"
)

func (p Presence) Valid() bool {
	return p == PresenceAny || p == PresenceIn || p == PresenceOut
}

// ReportFilter selects attendance rows whose check-in falls in [From, To).
type ReportFilter struct {
	From     time.Time
	To       time.Time
	Search   string
	Presence Presence
	Page     int
	Size     int
}

type Report struct {
	Date        string   `json:"date"`
	Records     []Record `json:"records"`
	Total       int      `json:"total"`
	Page        int      `json:"page"`
	Size        int      `json:"size"`
	CurrentlyIn int      `json:"currently_in"`
	TodayCount  int      `json:"today_count"`
}

type TapRequest struct {
	PIN string `json:"pin" binding:"required"`
}
