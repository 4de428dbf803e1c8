package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/catalog"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/membership"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) ListAvailable(ctx context.Context, kind catalog.Kind) ([]catalog.Plan, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]catalog.Plan), args.Error(1)
}

type MockSubscriptions struct{ mock.Mock }

func (m *MockSubscriptions) Current(ctx context.Context, userID int) (*membership.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Subscription), args.Error(1)
}

type MockUsers struct{ mock.Mock }

func (m *MockUsers) GetByID(ctx context.Context, userID int) (*user.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockAttendance struct{ mock.Mock }

func (m *MockAttendance) TodayCounts(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc        Service
	catalog    *MockCatalog
	subs       *MockSubscriptions
	users      *MockUsers
	attendance *MockAttendance
}

func newFixture() *fixture {
	f := &fixture{
		catalog:    new(MockCatalog),
		subs:       new(MockSubscriptions),
		users:      new(MockUsers),
		attendance: new(MockAttendance),
	}
	f.svc = NewService(f.catalog, f.subs, f.users, f.attendance, clock.NewFakeClock(testNow))
	f.catalog.On("ListAvailable", mock.Anything, catalog.KindMembership).
		Return([]catalog.Plan{{ID: 2, Name: "Monthly", DurationDays: 30, PriceCents: 150000}}, nil)
	f.catalog.On("ListAvailable", mock.Anything, catalog.KindWalkIn).
		Return([]catalog.Plan{{ID: 9, Name: "Day Pass", DurationDays: 1, PriceCents: 15000}}, nil)
	f.attendance.On("TodayCounts", mock.Anything).Return(4, 12, nil)
	return f
}

func TestService_Context_Member(t *testing.T) {
	f := newFixture()
	pin := "482913"
	f.users.On("GetByID", mock.Anything, 7).Return(&user.User{ID: 7, Username: "ana", Role: auth.RoleMember, KioskPIN: &pin}, nil)
	f.subs.On("Current", mock.Anything, 7).Return(&membership.Subscription{
		PlanName: "Monthly", EndDate: testNow.AddDate(0, 0, 20), DaysLeft: 20,
	}, nil)

	out, err := f.svc.Context(context.Background(), 7)
	require.NoError(t, err)

	assert.Len(t, out.Plans, 1)
	assert.Equal(t, "Day Pass", out.Passes[0].Name)
	assert.True(t, out.Member.HasKioskPIN)
	require.NotNil(t, out.Member.Subscription)
	assert.Equal(t, 20, out.Member.Subscription.DaysRemaining)
	assert.Equal(t, AttendanceSummary{CheckInsToday: 12, CurrentlyIn: 4}, out.Attendance)
}

func TestService_Context_NoSubscription(t *testing.T) {
	f := newFixture()
	f.users.On("GetByID", mock.Anything, 7).Return(&user.User{ID: 7, Username: "ana", Role: auth.RoleMember}, nil)
	f.subs.On("Current", mock.Anything, 7).Return(nil, membership.ErrNoActiveSubscription)

	out, err := f.svc.Context(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, out.Member.Subscription)
	assert.False(t, out.Member.HasKioskPIN)
}

func TestService_Context_StaffSkipsSubscription(t *testing.T) {
	f := newFixture()
	f.users.On("GetByID", mock.Anything, 2).Return(&user.User{ID: 2, Username: "desk", Role: auth.RoleStaff}, nil)

	out, err := f.svc.Context(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, out.Member.Subscription)
	f.subs.AssertNotCalled(t, "Current", mock.Anything, mock.Anything)
}
