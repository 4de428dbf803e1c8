package membership

import (
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/user"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentRejected  PaymentStatus = "rejected"
)

type Method string

const (
	MethodCash  Method = "cash"
	MethodGCash Method = "gcash"
)

func (m Method) Valid() bool {
	return m == MethodCash || m == MethodGCash
}

type Subscription struct {
	ID              int        `db:"id" json:"id"`
	UserID          int        `db:"user_id" json:"user_id"`
	PlanID          int        `db:"plan_id" json:"plan_id"`
	PlanName        string     `db:"plan_name" json:"plan_name"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         time.Time  `db:"end_date" json:"end_date"`
	Status          Status     `db:"status" json:"status"`
	CancelledReason string     `db:"cancelled_reason" json:"cancelled_reason,omitempty"`
	CancelledBy     *int       `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancelledAt     *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	DaysLeft int `db:"-" json:"days_remaining"`
}

// EffectiveStatus is the status a reader should see on today. A
// subscription past its end date is expired whatever is stored; the
// stored value catches up on the next sweep.
func EffectiveStatus(sub Subscription, today time.Time) Status {
	if sub.EndDate.Before(today) {
		return StatusExpired
	}
	return sub.Status
}

// IsActive reports whether sub grants access on today.
func (s *Subscription) IsActive(today time.Time) bool {
	return EffectiveStatus(*s, today) == StatusActive
}

func (s *Subscription) DaysRemaining(today time.Time) int {
	if s.EndDate.Before(today) {
		return 0
	}
	return int(s.EndDate.Sub(today).Hours() / 24)
}

type Payment struct {
	ID              int           `db:"id" json:"id"`
	UserID          int           `db:"user_id" json:"user_id"`
	SubscriptionID  int           `db:"subscription_id" json:"subscription_id"`
	AmountCents     int64         `db:"amount_cents" json:"amount_cents"`
	Method          Method        `db:"method" json:"method"`
	ReferenceNo     string        `db:"reference_no" json:"reference_no"`
	Status          PaymentStatus `db:"status" json:"status"`
	Notes           string        `db:"notes" json:"notes,omitempty"`
	ApprovedBy      *int          `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	RejectionReason string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	PaidAt          time.Time     `db:"paid_at" json:"paid_at"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// PendingPayment is a payment awaiting staff review, with enough of the
// member and plan to decide on it.
type PendingPayment struct {
	Payment
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	PlanName  string `db:"plan_name" json:"plan_name"`
}

// Expiring is an active subscription close to its end date.
type Expiring struct {
	Subscription
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}

type ConfirmResult struct {
	Payment      Payment      `json:"payment"`
	Subscription Subscription `json:"subscription"`
	KioskPIN     string       `json:"kiosk_pin"`
	PINIssued    bool         `json:"pin_issued"`
}

type PurchaseResult struct {
	Subscription Subscription `json:"subscription"`
	Payment      Payment      `json:"payment"`
}

type MemberDetail struct {
	Member        user.User      `json:"member"`
	Subscriptions []Subscription `json:"subscriptions"`
	Payments      []Payment      `json:"payments"`
}

type PurchaseRequest struct {
	PlanID int    `json:"plan_id" binding:"required,gt=0"`
	Method Method `json:"method" binding:"required,oneof=cash gcash"`
	Notes  string `json:"notes" binding:"max=500"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}
