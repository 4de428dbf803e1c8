package audit

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type Action string

const (
	ActionLogin               Action = "login"
	ActionLogout              Action = "logout"
	ActionLoginFailed         Action = "login_failed"
	ActionRegister            Action = "register"
	ActionUserCreated         Action = "user_created"
	ActionUserUpdated         Action = "user_updated"
	ActionRoleChanged         Action = "role_changed"
	ActionPasswordChanged     Action = "password_changed"
	ActionMembershipCreated   Action = "membership_created"
	ActionMembershipCancelled Action = "membership_cancelled"
	ActionMembershipExpired   Action = "membership_expired"
	ActionPaymentReceived     Action = "payment_received"
	ActionPaymentConfirmed    Action = "payment_confirmed"
	ActionPaymentRejected     Action = "payment_rejected"
	ActionWalkInSale          Action = "walkin_sale"
	ActionPlanCreated         Action = "plan_created"
	ActionPlanUpdated         Action = "plan_updated"
	ActionPlanArchived        Action = "plan_archived"
	ActionPlanRestored        Action = "plan_restored"
	ActionPlanDeleted         Action = "plan_deleted"
	ActionPINIssued           Action = "pin_issued"
	ActionCheckIn             Action = "check_in"
	ActionCheckOut            Action = "check_out"
	ActionReportGenerated     Action = "report_generated"
	ActionUnauthorizedAccess  Action = "unauthorized_access"
	ActionPermissionDenied    Action = "permission_denied"
)

var actions = map[Action]struct{}{
	ActionLogin: {}, ActionLogout: {}, ActionLoginFailed: {}, ActionRegister: {},
	ActionUserCreated: {}, ActionUserUpdated: {}, ActionRoleChanged: {}, ActionPasswordChanged: {},
	ActionMembershipCreated: {}, ActionMembershipCancelled: {}, ActionMembershipExpired: {},
	ActionPaymentReceived: {}, ActionPaymentConfirmed: {}, ActionPaymentRejected: {},
	ActionWalkInSale: {}, ActionPlanCreated: {}, ActionPlanUpdated: {}, ActionPlanArchived: {},
	ActionPlanRestored: {}, ActionPlanDeleted: {}, ActionPINIssued: {}, ActionCheckIn: {},
	ActionCheckOut: {}, ActionReportGenerated: {}, ActionUnauthorizedAccess: {}, ActionPermissionDenied: {},
}

func (a Action) Valid() bool {
	_, ok := actions[a]
	return ok
}

// SecurityActions and FinancialActions back the canned audit queries.
var (
	SecurityActions  = []Action{ActionLoginFailed, ActionUnauthorizedAccess, ActionPermissionDenied}
	FinancialActions = []Action{ActionPaymentReceived, ActionPaymentConfirmed, ActionPaymentRejected, ActionWalkInSale}
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// Event is what callers hand to a Recorder. Request metadata is taken
// from the context and need not be set here.
type Event struct {
	UserID      *int
	Action      Action
	Severity    Severity
	Description string
	ModelName   string
	ObjectID    string
	ObjectRepr  string
	Extra       map[string]interface{}
}

// Entry is one persisted audit row.
type Entry struct {
	ID          int64          `db:"id" json:"id"`
	UserID      *int           `db:"user_id" json:"user_id,omitempty"`
	Username    string         `db:"username" json:"username,omitempty"`
	Action      Action         `db:"action" json:"action"`
	Severity    Severity       `db:"severity" json:"severity"`
	Description string         `db:"description" json:"description"`
	IPAddress   string         `db:"ip_address" json:"ip_address"`
	UserAgent   string         `db:"user_agent" json:"user_agent"`
	RequestID   string         `db:"request_id" json:"request_id"`
	ModelName   string         `db:"model_name" json:"model_name,omitempty"`
	ObjectID    string         `db:"object_id" json:"object_id,omitempty"`
	ObjectRepr  string         `db:"object_repr" json:"object_repr,omitempty"`
	ExtraData   types.JSONText `db:"extra_data" json:"extra_data"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

type Filter struct {
	Action   Action
	Severity Severity
	Username string
	UserID   *int
	Actions  []Action
	Since    *time.Time
	Until    *time.Time
	// Days is a look-back window resolved against the service clock.
	Days     int
	Page     int
	Size     int
}

func (f Filter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Size
}
