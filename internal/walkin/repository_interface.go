package walkin

import (
	"context"
)

type Repository interface {
	ReferenceExists(ctx context.Context, ref string) (bool, error)
	Create(ctx context.Context, s *Sale) error
	Recent(ctx context.Context, limit int) ([]Sale, error)
}
