package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/dto"
	pkgauth "github.com/ronsuru/taskquer/pkg/auth"
	"github.com/ronsuru/taskquer/pkg/utils"
)

func NewMock(t *testing.T) (*AuthHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

func TestLoginTelegramHandler(t *testing.T) {
	user := &domain.User{ID: "u-1", TelegramID: 42, Username: "alice"}

	tests := []struct {
		name          string
		body          string
		prepareMock   func(service *MockService)
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful login",
			body: `{"init_data":"user=%7B%22id%22%3A42%7D&hash=abc"}`,
			prepareMock: func(service *MockService) {
				service.EXPECT().LoginTelegram(gomock.Any(), "user=%7B%22id%22%3A42%7D&hash=abc").Return(user, nil)
				service.EXPECT().GenerateToken(user).Return("jwt-token", time.Now().Add(time.Hour), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid request body",
			body:          `{"init_data":`,
			prepareMock:   func(*MockService) {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name:          "Missing init data",
			body:          `{"init_data":"  "}`,
			prepareMock:   func(*MockService) {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name: "Forged init data",
			body: `{"init_data":"hash=forged"}`,
			prepareMock: func(service *MockService) {
				service.EXPECT().LoginTelegram(gomock.Any(), "hash=forged").
					Return(nil, fmt.Errorf("%w: signature mismatch", pkgauth.ErrInvalidInitData))
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "Token generation fails",
			body: `{"init_data":"hash=ok"}`,
			prepareMock: func(service *MockService) {
				service.EXPECT().LoginTelegram(gomock.Any(), "hash=ok").Return(user, nil)
				service.EXPECT().GenerateToken(user).Return("", time.Time{}, errors.New("sign failed"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Error generating token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			r := httptest.NewRequest(http.MethodPost, "/api/auth/telegram", bytes.NewBufferString(tt.body)).
				WithContext(context.Background())
			w := httptest.NewRecorder()
			handler.LoginTelegram(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				assert.Equal(t, "Bearer jwt-token", w.Header().Get("Authorization"))
				var body dto.LoginResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, "jwt-token", body.Token)
				assert.Equal(t, "u-1", body.User.ID)
				return
			}
			if tt.expectedError != "" {
				var body utils.Response
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.expectedError, body.Message)
			}
		})
	}
}
