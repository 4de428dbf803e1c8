package analytics

import (
	"context"
	"time"
)

type Repository interface {
	// Upsert recomputes the snapshot for date from the rows whose
	// timestamps fall in [from, to).
	Upsert(ctx context.Context, date, from, to time.Time) (*Snapshot, error)
	Recent(ctx context.Context, limit int) ([]Snapshot, error)
	Totals(ctx context.Context) (*Totals, error)

	CountActive(ctx context.Context, today time.Time) (int, error)
	CountMembers(ctx context.Context) (int, error)
	CountPending(ctx context.Context) (int, error)
	CountPayments(ctx context.Context, from, to time.Time) (int, error)
	CountWalkIns(ctx context.Context, from, to time.Time) (int, error)
	Revenue(ctx context.Context, from, to time.Time) (int64, error)
}
