package walkin

import (
	"context"
	"fmt"
	"strings"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/audit"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/catalog"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/membership"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/metrics"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/refgen"
)

const (
	defaultRecent = 20
	maxRecent     = 100
)

var ErrPassUnavailable = apperr.New(apperr.ErrValidation, "walk-in pass is not available for sale")

// PassLookup loads a plan by id; catalog.Repository satisfies it.
type PassLookup interface {
	GetByID(ctx context.Context, id int) (*catalog.Plan, error)
}

type Service interface {
	Sell(ctx context.Context, actorID int, req SellRequest) (*Sale, error)
	Recent(ctx context.Context, limit int) ([]Sale, error)
}

type service struct {
	repo   Repository
	passes PassLookup
	audit  audit.Recorder
	clock  clock.Clock
}

func NewService(repo Repository, passes PassLookup, recorder audit.Recorder, clk clock.Clock) Service {
	return &service{
		repo:   repo,
		passes: passes,
		audit:  recorder,
		clock:  clk,
	}
}

func (s *service) Sell(ctx context.Context, actorID int, req SellRequest) (*Sale, error) {
	if !req.Method.Valid() {
		return nil, membership.ErrInvalidMethod
	}

	pass, err := s.passes.GetByID(ctx, req.PassID)
	if err != nil {
		return nil, err
	}
	if pass.Kind != catalog.KindWalkIn || !pass.Available() {
		return nil, ErrPassUnavailable
	}

	now := s.clock.Now()
	ref, err := refgen.Reference(ctx, refgen.PrefixWalkIn, now, s.repo.ReferenceExists)
	if err != nil {
		return nil, err
	}

	sale := &Sale{
		PlanID:       pass.ID,
		PassName:     pass.Name,
		CustomerName: strings.TrimSpace(req.CustomerName),
		MobileNo:     strings.TrimSpace(req.MobileNo),
		AmountCents:  pass.PriceCents,
		Method:       req.Method,
		ReferenceNo:  ref,
		Notes:        strings.TrimSpace(req.Notes),
		ProcessedBy:  audit.UserRef(actorID),
		PaidAt:       now,
	}
	if err := s.repo.Create(ctx, sale); err != nil {
		return nil, err
	}

	metrics.RecordWalkInSale(pass.Name)

	customer := sale.CustomerName
	if customer == "" {
		customer = "walk-in customer"
	}
	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(actorID),
		Action:      audit.ActionWalkInSale,
		Description: fmt.Sprintf("sold %s to %s (ref %s)", pass.Name, customer, ref),
		ModelName:   "WalkInSale",
		ObjectID:    fmt.Sprint(sale.ID),
		ObjectRepr:  ref,
		Extra: map[string]interface{}{
			"pass_name":      pass.Name,
			"amount_cents":   sale.AmountCents,
			"payment_method": sale.Method,
			"reference_no":   ref,
		},
	})

	return sale, nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]Sale, error) {
	if limit <= 0 {
		limit = defaultRecent
	}
	if limit > maxRecent {
		limit = maxRecent
	}
	return s.repo.Recent(ctx, limit)
}
