package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/audit"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) plan(args mock.Arguments) (*Plan, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockRepository) plans(args mock.Arguments) ([]Plan, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Plan), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p *Plan) error {
	args := m.Called(ctx, p)
	p.ID = 10
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*Plan, error) {
	return m.plan(m.Called(ctx, id))
}

func (m *MockRepository) Update(ctx context.Context, p *Plan) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) SetActive(ctx context.Context, id int, active bool) (*Plan, error) {
	return m.plan(m.Called(ctx, id, active))
}

func (m *MockRepository) Archive(ctx context.Context, id, actorID int, at time.Time) (*Plan, error) {
	return m.plan(m.Called(ctx, id, actorID, at))
}

func (m *MockRepository) Restore(ctx context.Context, id int) (*Plan, error) {
	return m.plan(m.Called(ctx, id))
}

func (m *MockRepository) IsReferenced(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListAvailable(ctx context.Context, kind Kind) ([]Plan, error) {
	return m.plans(m.Called(ctx, kind))
}

func (m *MockRepository) ListArchived(ctx context.Context) ([]Plan, error) {
	return m.plans(m.Called(ctx))
}

func (m *MockRepository) ListAll(ctx context.Context, kind Kind) ([]Plan, error) {
	return m.plans(m.Called(ctx, kind))
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, kind Kind) ([]Plan, bool, error) {
	args := m.Called(ctx, kind)
	plans, _ := args.Get(0).([]Plan)
	return plans, args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, kind Kind, plans []Plan) error {
	return m.Called(ctx, kind, plans).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var testNow = time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)

func newTestService() (Service, *MockRepository, *MockCache, *audit.Memory) {
	repo := new(MockRepository)
	cache := new(MockCache)
	rec := audit.NewMemory()
	return NewService(repo, cache, rec, clock.NewFakeClock(testNow)), repo, cache, rec
}

func TestService_Create(t *testing.T) {
	svc, repo, cache, rec := newTestService()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Plan) bool {
		return p.Name == "Monthly" && p.IsActive && p.Kind == KindMembership
	})).Return(nil)
	cache.On("Invalidate", mock.Anything).Return(nil)

	p, err := svc.Create(context.Background(), 1, CreatePlanRequest{
		Kind: KindMembership, Name: "  Monthly ", DurationDays: 30, PriceCents: 150000,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, p.ID)
	assert.Equal(t, []audit.Action{audit.ActionPlanCreated}, rec.Actions())
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestService_Create_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  CreatePlanRequest
	}{
		{"unknown kind", CreatePlanRequest{Kind: "class", Name: "Yoga", DurationDays: 1}},
		{"blank name", CreatePlanRequest{Kind: KindWalkIn, Name: "  ", DurationDays: 1}},
		{"zero duration", CreatePlanRequest{Kind: KindWalkIn, Name: "Day", DurationDays: 0}},
		{"negative price", CreatePlanRequest{Kind: KindWalkIn, Name: "Day", DurationDays: 1, PriceCents: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, rec := newTestService()

			_, err := svc.Create(context.Background(), 1, tt.req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, rec.Events())
		})
	}
}

func TestService_Update(t *testing.T) {
	svc, repo, cache, rec := newTestService()
	price := int64(99000)

	repo.On("GetByID", mock.Anything, 4).Return(&Plan{ID: 4, Name: "Monthly", DurationDays: 30, PriceCents: 150000}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *Plan) bool {
		return p.PriceCents == 99000 && p.DurationDays == 30
	})).Return(nil)
	cache.On("Invalidate", mock.Anything).Return(nil)

	p, err := svc.Update(context.Background(), 1, 4, UpdatePlanRequest{PriceCents: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(99000), p.PriceCents)
	assert.Equal(t, []audit.Action{audit.ActionPlanUpdated}, rec.Actions())
}

func TestService_Toggle(t *testing.T) {
	t.Run("deactivates", func(t *testing.T) {
		svc, repo, cache, rec := newTestService()
		repo.On("GetByID", mock.Anything, 4).Return(&Plan{ID: 4, IsActive: true}, nil)
		repo.On("SetActive", mock.Anything, 4, false).Return(&Plan{ID: 4, IsActive: false}, nil)
		cache.On("Invalidate", mock.Anything).Return(nil)

		p, err := svc.Toggle(context.Background(), 1, 4)
		require.NoError(t, err)
		assert.False(t, p.IsActive)
		require.Len(t, rec.Events(), 1)
		assert.Equal(t, false, rec.Events()[0].Extra["is_active"])
	})

	t.Run("archived plans stay inactive", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("GetByID", mock.Anything, 4).Return(&Plan{ID: 4, IsArchived: true}, nil)

		_, err := svc.Toggle(context.Background(), 1, 4)
		assert.ErrorIs(t, err, ErrPlanArchived)
		assert.ErrorIs(t, err, apperr.ErrConflict)
		repo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ArchiveRestore(t *testing.T) {
	svc, repo, cache, rec := newTestService()
	ctx := context.Background()

	repo.On("GetByID", mock.Anything, 5).Return(&Plan{ID: 5, Name: "Annual", IsActive: true}, nil).Once()
	repo.On("Archive", mock.Anything, 5, 1, testNow).
		Return(&Plan{ID: 5, Name: "Annual", IsArchived: true, ArchivedAt: &testNow}, nil)
	cache.On("Invalidate", mock.Anything).Return(nil)

	p, err := svc.Archive(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, p.IsArchived)
	assert.False(t, p.IsActive)

	repo.On("GetByID", mock.Anything, 5).Return(&Plan{ID: 5, Name: "Annual", IsArchived: true}, nil).Once()
	repo.On("Restore", mock.Anything, 5).Return(&Plan{ID: 5, Name: "Annual", IsActive: true}, nil)

	p, err = svc.Restore(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, p.Available())
	assert.Equal(t, []audit.Action{audit.ActionPlanArchived, audit.ActionPlanRestored}, rec.Actions())
	cache.AssertNumberOfCalls(t, "Invalidate", 2)
}

func TestService_Archive_Conflicts(t *testing.T) {
	svc, repo, _, rec := newTestService()
	repo.On("GetByID", mock.Anything, 5).Return(&Plan{ID: 5, IsArchived: true}, nil)

	_, err := svc.Archive(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrAlreadyArchived)
	assert.Empty(t, rec.Events())
}

func TestService_Restore_NotArchived(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.On("GetByID", mock.Anything, 5).Return(&Plan{ID: 5, IsActive: true}, nil)

	_, err := svc.Restore(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrNotArchived)
	repo.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything)
}

func TestService_Delete(t *testing.T) {
	t.Run("referenced plans are kept", func(t *testing.T) {
		svc, repo, _, rec := newTestService()
		repo.On("GetByID", mock.Anything, 3).Return(&Plan{ID: 3}, nil)
		repo.On("IsReferenced", mock.Anything, 3).Return(true, nil)

		err := svc.Delete(context.Background(), 1, 3)
		assert.ErrorIs(t, err, ErrPlanInUse)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		assert.Empty(t, rec.Events())
	})

	t.Run("unreferenced plans are removed", func(t *testing.T) {
		svc, repo, cache, rec := newTestService()
		repo.On("GetByID", mock.Anything, 3).Return(&Plan{ID: 3, Name: "Trial"}, nil)
		repo.On("IsReferenced", mock.Anything, 3).Return(false, nil)
		repo.On("Delete", mock.Anything, 3).Return(nil)
		cache.On("Invalidate", mock.Anything).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), 1, 3))
		require.Len(t, rec.Events(), 1)
		assert.Equal(t, audit.ActionPlanDeleted, rec.Events()[0].Action)
		assert.Equal(t, audit.SeverityWarning, rec.Events()[0].Severity)
	})
}

func TestService_ListAvailable(t *testing.T) {
	monthly := []Plan{{ID: 1, Name: "Monthly", IsActive: true}}

	t.Run("cache hit skips the database", func(t *testing.T) {
		svc, repo, cache, _ := newTestService()
		cache.On("Get", mock.Anything, KindMembership).Return(monthly, true, nil)

		plans, err := svc.ListAvailable(context.Background(), KindMembership)
		require.NoError(t, err)
		assert.Equal(t, monthly, plans)
		repo.AssertNotCalled(t, "ListAvailable", mock.Anything, mock.Anything)
	})

	t.Run("miss fills the cache", func(t *testing.T) {
		svc, repo, cache, _ := newTestService()
		cache.On("Get", mock.Anything, KindMembership).Return(nil, false, nil)
		repo.On("ListAvailable", mock.Anything, KindMembership).Return(monthly, nil)
		cache.On("Set", mock.Anything, KindMembership, monthly).Return(nil)

		plans, err := svc.ListAvailable(context.Background(), KindMembership)
		require.NoError(t, err)
		assert.Equal(t, monthly, plans)
		cache.AssertExpectations(t)
	})

	t.Run("cache failures fall back to the database", func(t *testing.T) {
		svc, repo, cache, _ := newTestService()
		cache.On("Get", mock.Anything, KindWalkIn).Return(nil, false, errors.New("redis down"))
		repo.On("ListAvailable", mock.Anything, KindWalkIn).Return([]Plan{}, nil)
		cache.On("Set", mock.Anything, KindWalkIn, []Plan{}).Return(errors.New("redis down"))

		plans, err := svc.ListAvailable(context.Background(), KindWalkIn)
		require.NoError(t, err)
		assert.Empty(t, plans)
	})

	t.Run("unknown kind", func(t *testing.T) {
		svc, _, cache, _ := newTestService()

		_, err := svc.ListAvailable(context.Background(), "class")
		assert.ErrorIs(t, err, ErrInvalidKind)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestService_ListAll_ValidatesKind(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.On("ListAll", mock.Anything, Kind("")).Return([]Plan{}, nil)

	_, err := svc.ListAll(context.Background(), "")
	require.NoError(t, err)

	_, err = svc.ListAll(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidKind)
}
