package membership

import (
	"context"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/catalog"
)

// Store holds the operations that make up a purchase or a payment
// decision. Inside Repository.WithTx they share one transaction.
type Store interface {
	LockUser(ctx context.Context, userID int) (auth.Role, error)
	GetPlan(ctx context.Context, planID int) (*catalog.Plan, error)
	HasActive(ctx context.Context, userID int, today time.Time) (bool, error)
	CreateSubscription(ctx context.Context, sub *Subscription) error
	ReferenceExists(ctx context.Context, ref string) (bool, error)
	CreatePayment(ctx context.Context, p *Payment) error

	LockPayment(ctx context.Context, paymentID int) (*Payment, error)
	DecidePayment(ctx context.Context, p *Payment) error
	GetSubscription(ctx context.Context, id int) (*Subscription, error)
	ExpireStale(ctx context.Context, userID int, today time.Time) (int, error)
	Activate(ctx context.Context, subscriptionID int) error
	Cancel(ctx context.Context, sub *Subscription, from Status) error
	AssignPIN(ctx context.Context, userID int) (pin string, issued bool, err error)
}

type Repository interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error

	ListByUser(ctx context.Context, userID int) ([]Subscription, error)
	Current(ctx context.Context, userID int, today time.Time) (*Subscription, error)
	ExpiringBetween(ctx context.Context, from, to time.Time) ([]Expiring, error)
	ExpireAll(ctx context.Context, today time.Time) (int, error)

	ListPending(ctx context.Context) ([]PendingPayment, error)
	PaymentsByUser(ctx context.Context, userID int) ([]Payment, error)
}
