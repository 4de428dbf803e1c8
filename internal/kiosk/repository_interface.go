package kiosk

import (
	"context"
	"time"
)

// Store is the attendance access a toggle needs inside its transaction.
type Store interface {
	// LockOpen returns the member's open record, locked, or nil when the
	// member is checked out.
	LockOpen(ctx context.Context, userID int) (*Attendance, error)
	Open(ctx context.Context, a *Attendance) error
	Close(ctx context.Context, a *Attendance) error
}

type Repository interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error

	AssignPIN(ctx context.Context, userID int) (string, bool, error)
	Report(ctx context.Context, f ReportFilter) ([]Record, int, error)
	CountOpen(ctx context.Context) (int, error)
	CountCheckIns(ctx context.Context, from, to time.Time) (int, error)
}
