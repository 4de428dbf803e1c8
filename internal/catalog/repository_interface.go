package catalog

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id int) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	SetActive(ctx context.Context, id int, active bool) (*Plan, error)
	Archive(ctx context.Context, id, actorID int, at time.Time) (*Plan, error)
	Restore(ctx context.Context, id int) (*Plan, error)
	IsReferenced(ctx context.Context, id int) (bool, error)
	Delete(ctx context.Context, id int) error

	ListAvailable(ctx context.Context, kind Kind) ([]Plan, error)
	ListArchived(ctx context.Context) ([]Plan, error)
	ListAll(ctx context.Context, kind Kind) ([]Plan, error)
}
