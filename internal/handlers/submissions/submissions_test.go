package submissions

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/dto"
	"github.com/ronsuru/taskquer/pkg/auth"
)

func NewMock(t *testing.T) (*SubmissionHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func request(method, target, body, id string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(context.WithValue(ctx, auth.UserIDKey, "tasker"))
}

func TestSubmitHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		err          error
		expectedCode int
	}{
		{name: "Accepted", body: `{"proof_type":"link","proof_data":"https://t.me/x"}`, expectedCode: http.StatusCreated},
		{name: "No slots", body: `{"proof_type":"link","proof_data":"https://t.me/x"}`, err: domain.ErrNoSlotsAvailable, expectedCode: http.StatusConflict},
		{name: "Twice", body: `{"proof_type":"link","proof_data":"https://t.me/x"}`, err: domain.ErrAlreadySubmitted, expectedCode: http.StatusConflict},
		{name: "Bad proof", body: `{"proof_type":"link","proof_data":"https://t.me/x"}`, err: domain.NewValidationError("proof"), expectedCode: http.StatusUnprocessableEntity},
		{name: "Own campaign", body: `{"proof_type":"link","proof_data":"https://t.me/x"}`, err: domain.ErrForbidden, expectedCode: http.StatusForbidden},
		{name: "Malformed", body: `[`, expectedCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			if tt.expectedCode != http.StatusBadRequest {
				call := service.EXPECT().Submit(gomock.Any(), "c-1", "tasker", domain.ProofLink, "https://t.me/x")
				if tt.err != nil {
					call.Return(nil, tt.err)
				} else {
					call.Return(&domain.TaskSubmission{ID: "s-1", CampaignID: "c-1", Status: domain.SubmissionPending}, nil)
				}
			}

			w := httptest.NewRecorder()
			handler.Submit(w, request(http.MethodPost, "/api/campaigns/c-1/submissions", tt.body, "c-1"))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusCreated {
				var body dto.SubmissionResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, "pending", body.Status)
			}
		})
	}
}

func TestReviewHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		decision     domain.SubmissionStatus
		err          error
		expectedCode int
	}{
		{name: "Approved", body: `{"decision":"approved"}`, decision: domain.SubmissionApproved, expectedCode: http.StatusOK},
		{name: "Already reviewed", body: `{"decision":"rejected"}`, decision: domain.SubmissionRejected, err: domain.ErrInvalidStateTransition, expectedCode: http.StatusConflict},
		{name: "Unknown decision", body: `{"decision":"maybe"}`, decision: "maybe", err: domain.NewValidationError("decision"), expectedCode: http.StatusUnprocessableEntity},
		{name: "Stranger", body: `{"decision":"approved"}`, decision: domain.SubmissionApproved, err: domain.ErrForbidden, expectedCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			call := service.EXPECT().Review(gomock.Any(), "s-1", tt.decision, "tasker")
			if tt.err != nil {
				call.Return(nil, tt.err)
			} else {
				call.Return(&domain.TaskSubmission{ID: "s-1", Status: tt.decision}, nil)
			}

			w := httptest.NewRecorder()
			handler.Review(w, request(http.MethodPost, "/api/submissions/s-1/review", tt.body, "s-1"))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestListHandlers(t *testing.T) {
	handler, service := NewMock(t)
	service.EXPECT().ListByCampaign(gomock.Any(), "c-1", "tasker").Return(nil, domain.ErrForbidden)
	service.EXPECT().ListByUser(gomock.Any(), "tasker").Return([]domain.TaskSubmission{{ID: "s-1"}, {ID: "s-2"}}, nil)

	w := httptest.NewRecorder()
	handler.ListByCampaign(w, request(http.MethodGet, "/api/campaigns/c-1/submissions", "", "c-1"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	handler.Mine(w, request(http.MethodGet, "/api/submissions", "", ""))
	require.Equal(t, http.StatusOK, w.Code)
	var body []dto.SubmissionResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Len(t, body, 2)
}
