package audit

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/logger"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/metrics"

	"github.com/jmoiron/sqlx/types"
)

const maxUserAgent = 500

// Recorder appends audit entries. Record never fails the caller: write
// errors are logged and counted.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

type Service interface {
	Recorder
	List(ctx context.Context, f Filter) ([]Entry, int, error)
	UserActivity(ctx context.Context, userID, days int) ([]Entry, error)
	SecurityEvents(ctx context.Context, days int) ([]Entry, error)
	FinancialEvents(ctx context.Context, from, to *time.Time) ([]Entry, error)
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{repo: repo, clock: clk}
}

func (s *service) Record(ctx context.Context, e Event) {
	if !e.Action.Valid() {
		logger.Error("audit entry rejected", "action", e.Action, "reason", "unknown action")
		metrics.RecordAuditFailure()
		return
	}
	if e.Severity == "" {
		e.Severity = SeverityInfo
	}
	if !e.Severity.Valid() {
		logger.Error("audit entry rejected", "action", e.Action, "severity", e.Severity, "reason", "unknown severity")
		metrics.RecordAuditFailure()
		return
	}

	extra := types.JSONText("{}")
	if len(e.Extra) > 0 {
		raw, err := json.Marshal(e.Extra)
		if err != nil {
			logger.Warn("audit extra data dropped", "action", e.Action, "error", err)
		} else {
			extra = raw
		}
	}

	meta := RequestMetaFrom(ctx)
	entry := &Entry{
		UserID:      e.UserID,
		Action:      e.Action,
		Severity:    e.Severity,
		Description: e.Description,
		IPAddress:   meta.IPAddress,
		UserAgent:   truncate(meta.UserAgent, maxUserAgent),
		RequestID:   meta.RequestID,
		ModelName:   e.ModelName,
		ObjectID:    e.ObjectID,
		ObjectRepr:  truncate(e.ObjectRepr, 200),
		ExtraData:   extra,
	}

	// The write outlives a cancelled request.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.repo.Insert(writeCtx, entry); err != nil {
		logger.Error("audit write failed",
			"action", e.Action,
			"request_id", meta.RequestID,
			"error", err,
		)
		metrics.RecordAuditFailure()
	}
}

func (s *service) List(ctx context.Context, f Filter) ([]Entry, int, error) {
	if f.Size <= 0 {
		f.Size = 50
	}
	if f.Days > 0 && f.Since == nil {
		since := s.since(f.Days)
		f.Since = &since
	}
	f.Days = 0
	return s.repo.List(ctx, f)
}

func (s *service) UserActivity(ctx context.Context, userID, days int) ([]Entry, error) {
	since := s.since(days)
	entries, _, err := s.repo.List(ctx, Filter{UserID: &userID, Since: &since, Size: 500})
	return entries, err
}

func (s *service) SecurityEvents(ctx context.Context, days int) ([]Entry, error) {
	since := s.since(days)
	entries, _, err := s.repo.List(ctx, Filter{Actions: SecurityActions, Since: &since, Size: 500})
	return entries, err
}

func (s *service) FinancialEvents(ctx context.Context, from, to *time.Time) ([]Entry, error) {
	entries, _, err := s.repo.List(ctx, Filter{Actions: FinancialActions, Since: from, Until: to, Size: 500})
	return entries, err
}

func (s *service) since(days int) time.Time {
	if days <= 0 {
		days = 30
	}
	return s.clock.Now().AddDate(0, 0, -days)
}

// truncate caps s at n bytes without splitting a multi-byte character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
