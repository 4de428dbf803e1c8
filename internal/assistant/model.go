package assistant

import (
	"time"
)

type PlanSummary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DurationDays int    `json:"duration_days"`
	PriceCents   int64  `json:"price_cents"`
	Description  string `json:"description,omitempty"`
}

type SubscriptionSummary struct {
	PlanName      string    `json:"plan_name"`
	EndDate       time.Time `json:"end_date"`
	DaysRemaining int       `json:"days_remaining"`
}

type MemberSummary struct {
	Username     string               `json:"username"`
	Name         string               `json:"name"`
	Role         string               `json:"role"`
	HasKioskPIN  bool                 `json:"has_kiosk_pin"`
	Subscription *SubscriptionSummary `json:"subscription"`
}

type AttendanceSummary struct {
	CheckInsToday int `json:"check_ins_today"`
	CurrentlyIn   int `json:"currently_in"`
}

// Context is the read-only state an external assistant may quote back to
// the signed-in user.
type Context struct {
	Plans       []PlanSummary     `json:"plans"`
	Passes      []PlanSummary     `json:"passes"`
	Member      MemberSummary     `json:"member"`
	Attendance  AttendanceSummary `json:"attendance"`
	GeneratedAt time.Time         `json:"generated_at"`
}
