package walkin

import (
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/membership"
)

// Sale is a completed walk-in pass purchase. Walk-in customers have no
// account; the sale is final once recorded.
type Sale struct {
	ID              int               `db:"id" json:"id"`
	PlanID          int               `db:"plan_id" json:"plan_id"`
	PassName        string            `db:"pass_name" json:"pass_name"`
	CustomerName    string            `db:"customer_name" json:"customer_name"`
	MobileNo        string            `db:"mobile_no" json:"mobile_no"`
	AmountCents     int64             `db:"amount_cents" json:"amount_cents"`
	Method          membership.Method `db:"method" json:"method"`
	ReferenceNo     string            `db:"reference_no" json:"reference_no"`
	Notes           string            `db:"notes" json:"notes,omitempty"`
	ProcessedBy     *int              `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedByName string            `db:"processed_by_name" json:"processed_by_name,omitempty"`
	PaidAt          time.Time         `db:"paid_at" json:"paid_at"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
}

type SellRequest struct {
	PassID       int               `json:"pass_id" binding:"required,gt=0"`
	CustomerName string            `json:"customer_name" binding:"max=100"`
	MobileNo     string            `json:"mobile_no" binding:"max=15"`
	Method       membership.Method `json:"method" binding:"required,oneof=cash gcash"`
	Notes        string            `json:"notes" binding:"max=500"`
}
