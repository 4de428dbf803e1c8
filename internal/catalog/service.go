package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/audit"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/logger"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/metrics"
)

var ErrInvalidKind = apperr.New(apperr.ErrValidation, "kind must be membership or walkin")

type Service interface {
	Get(ctx context.Context, id int) (*Plan, error)
	Create(ctx context.Context, actorID int, req CreatePlanRequest) (*Plan, error)
	Update(ctx context.Context, actorID, id int, req UpdatePlanRequest) (*Plan, error)
	Toggle(ctx context.Context, actorID, id int) (*Plan, error)
	Archive(ctx context.Context, actorID, id int) (*Plan, error)
	Restore(ctx context.Context, actorID, id int) (*Plan, error)
	Delete(ctx context.Context, actorID, id int) error

	ListAvailable(ctx context.Context, kind Kind) ([]Plan, error)
	ListArchived(ctx context.Context) ([]Plan, error)
	ListAll(ctx context.Context, kind Kind) ([]Plan, error)
}

type service struct {
	repo  Repository
	cache Cache
	audit audit.Recorder
	clock clock.Clock
}

func NewService(repo Repository, cache Cache, recorder audit.Recorder, clk clock.Clock) Service {
	if cache == nil {
		cache = nopCache{}
	}
	return &service{
		repo:  repo,
		cache: cache,
		audit: recorder,
		clock: clk,
	}
}

func (s *service) Get(ctx context.Context, id int) (*Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, actorID int, req CreatePlanRequest) (*Plan, error) {
	if !req.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if req.DurationDays <= 0 {
		return nil, apperr.Validation("duration_days must be positive")
	}
	if req.PriceCents < 0 {
		return nil, apperr.Validation("price_cents must not be negative")
	}

	p := &Plan{
		Kind:         req.Kind,
		Name:         name,
		DurationDays: req.DurationDays,
		PriceCents:   req.PriceCents,
		Description:  strings.TrimSpace(req.Description),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.changed(ctx, actorID, audit.ActionPlanCreated, p, fmt.Sprintf("created %s plan %s", p.Kind, p.Name), nil)
	return p, nil
}

func (s *service) Update(ctx context.Context, actorID, id int, req UpdatePlanRequest) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name is required")
		}
		p.Name = name
	}
	if req.DurationDays != nil {
		if *req.DurationDays <= 0 {
			return nil, apperr.Validation("duration_days must be positive")
		}
		p.DurationDays = *req.DurationDays
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, apperr.Validation("price_cents must not be negative")
		}
		p.PriceCents = *req.PriceCents
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.changed(ctx, actorID, audit.ActionPlanUpdated, p, fmt.Sprintf("updated plan %s", p.Name), nil)
	return p, nil
}

func (s *service) Toggle(ctx context.Context, actorID, id int) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsArchived {
		return nil, ErrPlanArchived
	}

	p, err = s.repo.SetActive(ctx, id, !p.IsActive)
	if err != nil {
		return nil, err
	}

	state := "deactivated"
	if p.IsActive {
		state = "activated"
	}
	s.changed(ctx, actorID, audit.ActionPlanUpdated, p, fmt.Sprintf("%s plan %s", state, p.Name),
		map[string]interface{}{"is_active": p.IsActive})
	return p, nil
}

func (s *service) Archive(ctx context.Context, actorID, id int) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsArchived {
		return nil, ErrAlreadyArchived
	}

	p, err = s.repo.Archive(ctx, id, actorID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.changed(ctx, actorID, audit.ActionPlanArchived, p, fmt.Sprintf("archived plan %s", p.Name), nil)
	return p, nil
}

func (s *service) Restore(ctx context.Context, actorID, id int) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsArchived {
		return nil, ErrNotArchived
	}

	p, err = s.repo.Restore(ctx, id)
	if err != nil {
		return nil, err
	}

	s.changed(ctx, actorID, audit.ActionPlanRestored, p, fmt.Sprintf("restored plan %s", p.Name), nil)
	return p, nil
}

// Delete removes a plan nothing refers to. Referenced plans must be
// archived instead.
func (s *service) Delete(ctx context.Context, actorID, id int) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	referenced, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrPlanInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(actorID),
		Action:      audit.ActionPlanDeleted,
		Severity:    audit.SeverityWarning,
		Description: fmt.Sprintf("deleted plan %s", p.Name),
		ModelName:   "Plan",
		ObjectID:    fmt.Sprint(p.ID),
		ObjectRepr:  p.Name,
	})
	return nil
}

func (s *service) ListAvailable(ctx context.Context, kind Kind) ([]Plan, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	plans, ok, err := s.cache.Get(ctx, kind)
	switch {
	case err != nil:
		metrics.RecordCacheLookup("error")
		logger.Warn("catalog cache read failed", "kind", kind, "error", err)
	case ok:
		metrics.RecordCacheLookup("hit")
		return plans, nil
	default:
		metrics.RecordCacheLookup("miss")
	}

	plans, err = s.repo.ListAvailable(ctx, kind)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, kind, plans); err != nil {
		logger.Warn("catalog cache write failed", "kind", kind, "error", err)
	}
	return plans, nil
}

func (s *service) ListArchived(ctx context.Context) ([]Plan, error) {
	return s.repo.ListArchived(ctx)
}

func (s *service) ListAll(ctx context.Context, kind Kind) ([]Plan, error) {
	if kind != "" && !kind.Valid() {
		return nil, ErrInvalidKind
	}
	return s.repo.ListAll(ctx, kind)
}

// changed drops the cached listings and audits a mutation of p.
func (s *service) changed(ctx context.Context, actorID int, action audit.Action, p *Plan, desc string, extra map[string]interface{}) {
	s.invalidate(ctx)
	s.audit.Record(ctx, audit.Event{
		UserID:      audit.UserRef(actorID),
		Action:      action,
		Description: desc,
		ModelName:   "Plan",
		ObjectID:    fmt.Sprint(p.ID),
		ObjectRepr:  p.Name,
		Extra:       extra,
	})
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("catalog cache invalidation failed", "error", err)
	}
}
