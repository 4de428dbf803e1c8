package catalog

import "time"

type Kind string

const (
	KindMembership Kind = "membership"
	KindWalkIn     Kind = "walkin"
)

func (k Kind) Valid() bool {
	return k == KindMembership || k == KindWalkIn
}

// Plan is either a membership plan or a walk-in pass.
type Plan struct {
	ID           int        `db:"id" json:"id"`
	Kind         Kind       `db:"kind" json:"kind"`
	Name         string     `db:"name" json:"name"`
	DurationDays int        `db:"duration_days" json:"duration_days"`
	PriceCents   int64      `db:"price_cents" json:"price_cents"`
	Description  string     `db:"description" json:"description"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	IsArchived   bool       `db:"is_archived" json:"is_archived"`
	ArchivedAt   *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	ArchivedBy   *int       `db:"archived_by" json:"archived_by,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Available reports whether the plan can be sold.
func (p *Plan) Available() bool {
	return p.IsActive && !p.IsArchived
}

type CreatePlanRequest struct {
	Kind         Kind   `json:"kind" binding:"required,oneof=membership walkin"`
	Name         string `json:"name" binding:"required,max=100"`
	DurationDays int    `json:"duration_days" binding:"required,gt=0"`
	PriceCents   int64  `json:"price_cents" binding:"gte=0"`
	Description  string `json:"description"`
}

type UpdatePlanRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	DurationDays *int    `json:"duration_days" binding:"omitempty,gt=0"`
	PriceCents   *int64  `json:"price_cents" binding:"omitempty,gte=0"`
	Description  *string `json:"description"`
}
