package analytics

import (
	"time"
)

// Snapshot is one day of recorded activity. Recomputing a day replaces
// its figures.
type Snapshot struct {
	Date            time.Time `db:"date" json:"date"`
	ActiveMembers   int       `db:"active_members" json:"active_members"`
	WalkInSales     int       `db:"walkin_sales" json:"walkin_sales"`
	TotalSalesCents int64     `db:"total_sales_cents" json:"total_sales_cents"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type Totals struct {
	MemberRevenueCents int64 `db:"member_revenue_cents" json:"member_revenue_cents"`
	WalkInRevenueCents int64 `db:"walkin_revenue_cents" json:"walkin_revenue_cents"`
	TotalRevenueCents  int64 `db:"-" json:"total_revenue_cents"`
	ConfirmedPayments  int   `db:"confirmed_payments" json:"confirmed_payments"`
	WalkInCount        int   `db:"walkin_count" json:"walkin_count"`
}

type ReportsView struct {
	Snapshots []Snapshot `json:"snapshots"`
	Totals    Totals     `json:"totals"`
}

type AdminDashboard struct {
	ActiveMemberships int   `json:"active_memberships"`
	TotalMembers      int   `json:"total_members"`
	RevenueTodayCents int64 `json:"revenue_today_cents"`
	RevenueMonthCents int64 `json:"revenue_month_cents"`
	PendingPayments   int   `json:"pending_payments"`
}

type StaffDashboard struct {
	PaymentsToday     int   `json:"payments_today"`
	WalkInsToday      int   `json:"walkins_today"`
	RevenueTodayCents int64 `json:"revenue_today_cents"`
	PendingPayments   int   `json:"pending_payments"`
}
