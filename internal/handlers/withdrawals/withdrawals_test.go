package withdrawals

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/pkg/auth"
)

const wallet = "UQCrq6urq6urq6urq6urq6urq6urq6urq6urq6urq6urq5jh"

type decimalMatcher struct{ want decimal.Decimal }

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string { return fmt.Sprintf("equals %s", m.want) }

func decEq(s string) gomock.Matcher { return decimalMatcher{decimal.RequireFromString(s)} }

type mocks struct {
	service *MockService
	users   *MockUserService
}

func NewMock(t *testing.T) (*WithdrawalHandler, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{service: NewMockService(ctrl), users: NewMockUserService(ctrl)}
	return New(m.service, m.users), m
}

func withUser(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.UserIDKey, "u-1"))
}

func TestRequestHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		prepareMock  func(m *mocks)
		expectedCode int
		expectedBody string
	}{
		{
			name: "Completed",
			body: `{"amount":"10","destination_wallet":"` + wallet + `"}`,
			prepareMock: func(m *mocks) {
				m.service.EXPECT().Request(gomock.Any(), "u-1", decEq("10"), wallet).Return(&domain.Withdrawal{
					ID: "w-1", Amount: decimal.RequireFromString("9.9"), Fee: decimal.RequireFromString("0.1"),
					Status: domain.StatusCompleted,
				}, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `"amount":"9.9"`,
		},
		{
			name: "Saved wallet",
			body: `{"amount":"10"}`,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().Me(gomock.Any(), "u-1").Return(&domain.User{ID: "u-1", WalletAddress: wallet}, nil)
				m.service.EXPECT().Request(gomock.Any(), "u-1", decEq("10"), wallet).
					Return(&domain.Withdrawal{ID: "w-1", Status: domain.StatusFailed, Error: "bounced"}, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `"status":"failed"`,
		},
		{
			name: "No wallet anywhere",
			body: `{"amount":"10"}`,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().Me(gomock.Any(), "u-1").Return(&domain.User{ID: "u-1"}, nil)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name: "Insufficient balance",
			body: `{"amount":"1000","destination_wallet":"` + wallet + `"}`,
			prepareMock: func(m *mocks) {
				m.service.EXPECT().Request(gomock.Any(), "u-1", decEq("1000"), wallet).
					Return(nil, domain.ErrInsufficientBalance)
			},
			expectedCode: http.StatusPaymentRequired,
		},
		{
			name: "Below minimum",
			body: `{"amount":"0.1","destination_wallet":"` + wallet + `"}`,
			prepareMock: func(m *mocks) {
				m.service.EXPECT().Request(gomock.Any(), "u-1", decEq("0.1"), wallet).
					Return(nil, domain.NewValidationError("min_withdrawal"))
			},
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: `min_withdrawal`,
		},
		{
			name:         "Amount not a number",
			body:         `{"amount":"ten"}`,
			prepareMock:  func(m *mocks) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := NewMock(t)
			tt.prepareMock(m)

			w := httptest.NewRecorder()
			handler.Request(w, withUser(httptest.NewRequest(http.MethodPost, "/api/withdrawals", bytes.NewBufferString(tt.body))))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestListHandler(t *testing.T) {
	handler, m := NewMock(t)
	m.service.EXPECT().List(gomock.Any(), "u-1").Return([]domain.Withdrawal{{ID: "w-1"}}, nil)

	w := httptest.NewRecorder()
	handler.List(w, withUser(httptest.NewRequest(http.MethodGet, "/api/withdrawals", nil)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"w-1"`)
}
