package campaigns

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/encoding/json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/dto"
	"github.com/ronsuru/taskquer/pkg/auth"
	"github.com/ronsuru/taskquer/pkg/money"
	"github.com/ronsuru/taskquer/pkg/utils"
)

func NewMock(t *testing.T) (*CampaignHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func request(method, target, body, id string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	if id != "" {
		rctx.URLParams.Add("id", id)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, auth.UserIDKey, "creator")
	return r.WithContext(ctx)
}

func campaign(status domain.CampaignStatus) *domain.Campaign {
	return &domain.Campaign{
		ID:             "c-1",
		CreatorID:      "creator",
		Title:          "Join",
		TotalSlots:     10,
		AvailableSlots: 10,
		RewardAmount:   decimal.RequireFromString("0.5"),
		EscrowAmount:   decimal.NewFromInt(5),
		Fee:            decimal.RequireFromString("0.05"),
		Status:         status,
	}
}

func TestCreateHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		prepareMock    func(service *MockService)
		expectedCode   int
		expectedReason string
	}{
		{
			name: "Draft created",
			body: `{"title":"Join","total_slots":10,"reward_amount":"0.5"}`,
			prepareMock: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), "creator", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, in domain.CampaignInput) (*domain.Campaign, error) {
						assert.Equal(t, 10, in.TotalSlots)
						assert.True(t, decimal.RequireFromString("0.5").Equal(in.RewardAmount))
						return campaign(domain.CampaignDraft), nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Too few slots",
			body: `{"title":"Join","total_slots":4,"reward_amount":"0.5"}`,
			prepareMock: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), "creator", gomock.Any()).Return(nil, domain.NewValidationError("min_slots"))
			},
			expectedCode:   http.StatusUnprocessableEntity,
			expectedReason: "min_slots",
		},
		{
			name:         "Reward is not a number",
			body:         `{"title":"Join","total_slots":10,"reward_amount":"lots"}`,
			prepareMock:  func(*MockService) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			w := httptest.NewRecorder()
			handler.Create(w, request(http.MethodPost, "/api/campaigns", tt.body, ""))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedReason != "" {
				var body utils.Response
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.expectedReason, body.Reason)
			}
			if tt.expectedCode == http.StatusCreated {
				var body dto.CampaignResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, "draft", body.Status)
				assert.True(t, decimal.NewFromInt(5).Equal(body.EscrowAmount))
			}
		})
	}
}

func TestFundHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		err          error
		expectedCode int
	}{
		{name: "Activated", body: `{"tx_hash":"h-1"}`, expectedCode: http.StatusOK},
		{name: "Hash reused", body: `{"tx_hash":"h-1"}`, err: domain.ErrDuplicateTransaction, expectedCode: http.StatusConflict},
		{name: "Deposit short", body: `{"tx_hash":"h-1"}`, err: domain.ErrInvalidTransaction, expectedCode: http.StatusUnprocessableEntity},
		{name: "Not the creator", body: `{"tx_hash":"h-1"}`, err: domain.ErrForbidden, expectedCode: http.StatusForbidden},
		{name: "Unknown campaign", body: `{"tx_hash":"h-1"}`, err: domain.ErrNotFound, expectedCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			if tt.err != nil {
				service.EXPECT().Fund(gomock.Any(), "c-1", "h-1", "creator").Return(nil, tt.err)
			} else {
				service.EXPECT().Fund(gomock.Any(), "c-1", "h-1", "creator").Return(campaign(domain.CampaignActive), nil)
			}

			w := httptest.NewRecorder()
			handler.Fund(w, request(http.MethodPost, "/api/campaigns/c-1/fund", tt.body, "c-1"))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestListHandler(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		want         *domain.CampaignFilter
		expectedCode int
	}{
		{
			name:         "Own active campaigns",
			target:       "/api/campaigns?status=active&creator=me&limit=5&offset=10",
			want:         &domain.CampaignFilter{Status: domain.CampaignActive, CreatorID: "creator", Limit: 5, Offset: 10},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Defaults",
			target:       "/api/campaigns",
			want:         &domain.CampaignFilter{},
			expectedCode: http.StatusOK,
		},
		{name: "Bad limit", target: "/api/campaigns?limit=ten", expectedCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			if tt.want != nil {
				service.EXPECT().List(gomock.Any(), *tt.want).Return([]domain.Campaign{*campaign(domain.CampaignActive)}, nil)
			}

			w := httptest.NewRecorder()
			handler.List(w, request(http.MethodGet, tt.target, "", ""))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestCostHandler(t *testing.T) {
	handler, service := NewMock(t)
	service.EXPECT().CalculateTotalCost(gomock.Any(), gomock.Any(), 5).Return(money.Cost{
		Subtotal: decimal.RequireFromString("0.075"),
		Fee:      decimal.RequireFromString("0.00075"),
		Total:    decimal.RequireFromString("0.07575"),
	}, nil)

	w := httptest.NewRecorder()
	handler.Cost(w, request(http.MethodGet, "/api/campaigns/cost?reward=0.015&slots=5", "", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":"0.07575"`)

	w = httptest.NewRecorder()
	handler.Cost(w, request(http.MethodGet, "/api/campaigns/cost?reward=-1&slots=5", "", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAndCancelHandler(t *testing.T) {
	handler, service := NewMock(t)
	service.EXPECT().Get(gomock.Any(), "c-1").Return(campaign(domain.CampaignDraft), nil)
	service.EXPECT().Cancel(gomock.Any(), "c-1", "creator").Return(nil, domain.ErrInvalidStateTransition)

	w := httptest.NewRecorder()
	handler.Get(w, request(http.MethodGet, "/api/campaigns/c-1", "", "c-1"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.Cancel(w, request(http.MethodPost, "/api/campaigns/c-1/cancel", "", "c-1"))
	assert.Equal(t, http.StatusConflict, w.Code)
}
