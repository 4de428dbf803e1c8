package membership

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Purchase(ctx context.Context, userID int, req PurchaseRequest) (*PurchaseResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PurchaseResult), args.Error(1)
}

func (m *MockService) Confirm(ctx context.Context, actorID, paymentID int) (*ConfirmResult, error) {
	args := m.Called(ctx, actorID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ConfirmResult), args.Error(1)
}

func (m *MockService) Reject(ctx context.Context, actorID, paymentID int, reason string) (*Payment, error) {
	args := m.Called(ctx, actorID, paymentID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockService) Cancel(ctx context.Context, actorID, subscriptionID int, reason string) (*Subscription, error) {
	args := m.Called(ctx, actorID, subscriptionID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockService) ExpireSweep(ctx context.Context, today time.Time) (int, error) {
	args := m.Called(ctx, today)
	return args.Int(0), args.Error(1)
}

func (m *MockService) NotifyExpiring(ctx context.Context, days int) (int, error) {
	args := m.Called(ctx, days)
	return args.Int(0), args.Error(1)
}

func (m *MockService) Subscriptions(ctx context.Context, userID int) ([]Subscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]Subscription), args.Error(1)
}

func (m *MockService) Current(ctx context.Context, userID int) (*Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockService) ExpiringWithin(ctx context.Context, days int) ([]Expiring, error) {
	args := m.Called(ctx, days)
	return args.Get(0).([]Expiring), args.Error(1)
}

func (m *MockService) PendingPayments(ctx context.Context) ([]PendingPayment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]PendingPayment), args.Error(1)
}

func (m *MockService) MemberDetail(ctx context.Context, userID int) (*MemberDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MemberDetail), args.Error(1)
}

func setupRouter(svc Service, id auth.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id.UserID != 0 {
			auth.SetIdentity(c, id)
		}
		c.Next()
	})
	r.POST("/subscriptions", h.Purchase)
	r.GET("/subscriptions/current", h.Current)
	r.POST("/staff/payments/:id/confirm", h.Confirm)
	r.POST("/staff/payments/:id/reject", h.Reject)
	r.POST("/staff/subscriptions/:id/cancel", h.Cancel)
	r.GET("/staff/subscriptions/expiring", h.Expiring)
	return r
}

var (
	member = auth.Identity{UserID: 7, Username: "ana", Role: auth.RoleMember}
	staff  = auth.Identity{UserID: 2, Username: "desk", Role: auth.RoleStaff}
)

func TestHandler_Purchase(t *testing.T) {
	tests := []struct {
		name       string
		identity   auth.Identity
		body       string
		setupMock  func(*MockService)
		wantStatus int
	}{
		{
			name:     "created",
			identity: member,
			body:     `{"plan_id":2,"method":"gcash"}`,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, 7, PurchaseRequest{PlanID: 2, Method: MethodGCash}).
					Return(&PurchaseResult{Payment: Payment{ReferenceNo: "PAY-20260310-000001"}}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown method",
			identity:   member,
			body:       `{"plan_id":2,"method":"card"}`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "already active",
			identity: member,
			body:     `{"plan_id":2,"method":"cash"}`,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, 7, mock.Anything).Return(nil, ErrAlreadyActive)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "anonymous",
			body:       `{"plan_id":2,"method":"cash"}`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			setupRouter(svc, tt.identity).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Current_None(t *testing.T) {
	svc := new(MockService)
	svc.On("Current", mock.Anything, 7).Return(nil, ErrNoActiveSubscription)

	w := httptest.NewRecorder()
	setupRouter(svc, member).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/subscriptions/current", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Confirm(t *testing.T) {
	svc := new(MockService)
	svc.On("Confirm", mock.Anything, 2, 21).Return(&ConfirmResult{KioskPIN: "482913", PINIssued: true}, nil)
	svc.On("Confirm", mock.Anything, 2, 22).Return(nil, ErrPaymentNotPending)

	w := httptest.NewRecorder()
	setupRouter(svc, staff).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/staff/payments/21/confirm", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kiosk_pin":"482913"`)

	w = httptest.NewRecorder()
	setupRouter(svc, staff).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/staff/payments/22/confirm", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_Reject_OptionalBody(t *testing.T) {
	svc := new(MockService)
	svc.On("Reject", mock.Anything, 2, 21, "").Return(&Payment{ID: 21, Status: PaymentRejected}, nil)
	svc.On("Reject", mock.Anything, 2, 23, "wrong amount").Return(&Payment{ID: 23, Status: PaymentRejected}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc, staff).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/staff/payments/21/reject", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/staff/payments/23/reject", bytes.NewBufferString(`{"reason":"wrong amount"}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc, staff).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Cancel_RequiresReason(t *testing.T) {
	svc := new(MockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/staff/subscriptions/11/cancel", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc, staff).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Expiring_DaysQuery(t *testing.T) {
	svc := new(MockService)
	svc.On("ExpiringWithin", mock.Anything, 3).Return([]Expiring{}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc, staff).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff/subscriptions/expiring?days=3", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	svc.AssertExpectations(t)
}
