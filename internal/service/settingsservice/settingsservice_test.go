package settingsservice

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
)

var defaults = domain.SystemSettings{
	FeeRate:           decimal.RequireFromString("0.01"),
	WithdrawalFeeRate: decimal.RequireFromString("0.01"),
	MinWithdrawal:     decimal.NewFromInt(1),
}

func NewMock(t *testing.T) (*Service, *MockRepo, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error { return fn(ctx) }).
		AnyTimes()
	return New(repo, txManager, defaults), repo, txManager
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestService_Load(t *testing.T) {
	tests := []struct {
		name        string
		stored      map[string]string
		repoErr     error
		wantFee     string
		wantWFee    string
		wantMin     string
		expectError bool
	}{
		{name: "Defaults when nothing stored", stored: map[string]string{}, wantFee: "0.01", wantWFee: "0.01", wantMin: "1"},
		{
			name:     "Stored values win",
			stored:   map[string]string{domain.SettingFeeRate: "0.05", domain.SettingMinWithdrawal: "2.5"},
			wantFee:  "0.05",
			wantWFee: "0.01",
			wantMin:  "2.5",
		},
		{
			name:     "Malformed value falls back",
			stored:   map[string]string{domain.SettingWithdrawalFeeRate: "1.5"},
			wantFee:  "0.01",
			wantWFee: "0.01",
			wantMin:  "1",
		},
		{name: "Repository error", repoErr: errors.New("db down"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := NewMock(t)
			repo.EXPECT().GetAll(gomock.Any()).Return(tt.stored, tt.repoErr)

			got, err := service.Load(context.Background())
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, got.FeeRate.String())
			assert.Equal(t, tt.wantWFee, got.WithdrawalFeeRate.String())
			assert.Equal(t, tt.wantMin, got.MinWithdrawal.String())
		})
	}
}

func TestService_CurrentIsCached(t *testing.T) {
	service, repo, _ := NewMock(t)
	repo.EXPECT().GetAll(gomock.Any()).Return(map[string]string{domain.SettingFeeRate: "0.02"}, nil).Times(1)

	for i := 0; i < 3; i++ {
		got, err := service.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "0.02", got.FeeRate.String())
	}
}

func TestService_Update(t *testing.T) {
	tests := []struct {
		name        string
		patch       domain.SettingsPatch
		prepareMock func(repo *MockRepo)
		wantReason  string
		wantFee     string
	}{
		{
			name:  "Fee rate updated and cache refreshed",
			patch: domain.SettingsPatch{FeeRate: dec("0.03")},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Upsert(gomock.Any(), domain.SettingFeeRate, "0.03").Return(nil)
				repo.EXPECT().GetAll(gomock.Any()).Return(map[string]string{domain.SettingFeeRate: "0.03"}, nil)
			},
			wantFee: "0.03",
		},
		{name: "Rate of one is rejected", patch: domain.SettingsPatch{FeeRate: dec("1")}, wantReason: domain.SettingFeeRate},
		{name: "Negative withdrawal rate", patch: domain.SettingsPatch{WithdrawalFeeRate: dec("-0.1")}, wantReason: domain.SettingWithdrawalFeeRate},
		{name: "Zero minimum", patch: domain.SettingsPatch{MinWithdrawal: dec("0")}, wantReason: domain.SettingMinWithdrawal},
		{
			name:  "Empty patch returns current",
			patch: domain.SettingsPatch{},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().GetAll(gomock.Any()).Return(map[string]string{}, nil)
			},
			wantFee: "0.01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(repo)
			}

			got, err := service.Update(context.Background(), tt.patch)
			if tt.wantReason != "" {
				assert.True(t, domain.IsValidation(err, tt.wantReason), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, got.FeeRate.String())
		})
	}
}
