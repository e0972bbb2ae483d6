package adminservice

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

type mocks struct {
	userRepo       *MockUserRepo
	adjustmentRepo *MockAdjustmentRepo
	actionRepo     *MockActionRepo
	campaignRepo   *MockCampaignRepo
	settings       *MockSettings
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		userRepo:       NewMockUserRepo(ctrl),
		adjustmentRepo: NewMockAdjustmentRepo(ctrl),
		actionRepo:     NewMockActionRepo(ctrl),
		campaignRepo:   NewMockCampaignRepo(ctrl),
		settings:       NewMockSettings(ctrl),
	}
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error { return fn(ctx) }).
		AnyTimes()
	return New(m.userRepo, m.adjustmentRepo, m.actionRepo, m.campaignRepo, txManager, m.settings), m
}

func TestService_AdjustBalance(t *testing.T) {
	tests := []struct {
		name        string
		action      domain.AdjustmentAction
		amount      string
		balance     string
		wantBalance string
		wantErr     error
		wantReason  string
	}{
		{name: "Set", action: domain.AdjustSet, amount: "3", balance: "10", wantBalance: "3"},
		{name: "Set to zero", action: domain.AdjustSet, amount: "0", balance: "10", wantBalance: "0"},
		{name: "Add below business minimums", action: domain.AdjustAdd, amount: "0.001", balance: "10", wantBalance: "10.001"},
		{name: "Deduct", action: domain.AdjustDeduct, amount: "4", balance: "10", wantBalance: "6"},
		{name: "Deduct to exactly zero", action: domain.AdjustDeduct, amount: "10", balance: "10", wantBalance: "0"},
		{name: "Deduct below zero", action: domain.AdjustDeduct, amount: "10.5", balance: "10", wantErr: domain.ErrInsufficientBalance},
		{name: "Negative amount", action: domain.AdjustAdd, amount: "-1", wantReason: "amount"},
		{name: "Zero add", action: domain.AdjustAdd, amount: "0", wantReason: "amount"},
		{name: "Unknown action", action: "multiply", amount: "2", wantReason: "action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			if tt.balance != "" {
				m.userRepo.EXPECT().GetForUpdate(gomock.Any(), "u-1").
					Return(&domain.User{ID: "u-1", Balance: decimal.RequireFromString(tt.balance)}, nil)
			}
			if tt.wantBalance != "" {
				want := decimal.RequireFromString(tt.wantBalance)
				m.userRepo.EXPECT().UpdateBalance(gomock.Any(), "u-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, got decimal.Decimal) error {
						assert.True(t, want.Equal(got), "balance %s, want %s", got, want)
						return nil
					})
				m.adjustmentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			}

			adj, err := service.AdjustBalance(context.Background(), "admin", "u-1", tt.action, decimal.RequireFromString(tt.amount))
			switch {
			case tt.wantReason != "":
				assert.True(t, domain.IsValidation(err, tt.wantReason), "got %v", err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "admin", adj.AdminID)
				assert.Equal(t, tt.action, adj.Action)
				assert.True(t, decimal.RequireFromString(tt.balance).Equal(adj.PreviousBalance))
				assert.True(t, decimal.RequireFromString(tt.wantBalance).Equal(adj.NewBalance))
			}
		})
	}
}

func TestService_AdjustBalanceAuditFailure(t *testing.T) {
	service, m := NewMock(t)
	m.userRepo.EXPECT().GetForUpdate(gomock.Any(), "u-1").Return(&domain.User{ID: "u-1", Balance: decimal.NewFromInt(1)}, nil)
	m.userRepo.EXPECT().UpdateBalance(gomock.Any(), "u-1", gomock.Any()).Return(nil)
	m.adjustmentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

	_, err := service.AddBalance(context.Background(), "admin", "u-1", decimal.NewFromInt(1))
	assert.EqualError(t, err, "insert failed")
}

func TestService_AdjustBalanceUnknownUser(t *testing.T) {
	service, m := NewMock(t)
	m.userRepo.EXPECT().GetForUpdate(gomock.Any(), "ghost").Return(nil, domain.ErrNotFound)

	_, err := service.DeductBalance(context.Background(), "admin", "ghost", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_UpdateSystemSettings(t *testing.T) {
	rate := decimal.RequireFromString("0.02")
	patch := domain.SettingsPatch{FeeRate: &rate}
	previous := domain.SystemSettings{
		FeeRate:           decimal.RequireFromString("0.01"),
		WithdrawalFeeRate: rate,
		MinWithdrawal:     decimal.NewFromInt(1),
	}
	updated := domain.SystemSettings{FeeRate: rate, WithdrawalFeeRate: rate, MinWithdrawal: decimal.NewFromInt(1)}

	tests := []struct {
		name        string
		prepareMock func(m *mocks)
		wantErr     string
		wantReason  string
	}{
		{
			name: "Applied and audited",
			prepareMock: func(m *mocks) {
				m.settings.EXPECT().Current(gomock.Any()).Return(previous, nil)
				m.settings.EXPECT().Update(gomock.Any(), patch).Return(updated, nil)
				m.actionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.AdminAction) error {
					assert.Equal(t, "admin", a.AdminID)
					assert.Equal(t, domain.AdminSettingsUpdate, a.Action)
					assert.Equal(t, "system_settings", a.Target)
					assert.JSONEq(t, `{"fee_rate":"0.01","withdrawal_fee_rate":"0.02","min_withdrawal":"1"}`, a.Previous)
					assert.JSONEq(t, `{"fee_rate":"0.02","withdrawal_fee_rate":"0.02","min_withdrawal":"1"}`, a.New)
					return nil
				})
			},
		},
		{
			name: "Rejected",
			prepareMock: func(m *mocks) {
				m.settings.EXPECT().Current(gomock.Any()).Return(previous, nil)
				m.settings.EXPECT().Update(gomock.Any(), patch).Return(domain.SystemSettings{}, domain.NewValidationError(domain.SettingFeeRate))
				m.settings.EXPECT().Load(gomock.Any()).Return(previous, nil)
			},
			wantReason: domain.SettingFeeRate,
		},
		{
			name: "Audit failure reloads settings",
			prepareMock: func(m *mocks) {
				m.settings.EXPECT().Current(gomock.Any()).Return(previous, nil)
				m.settings.EXPECT().Update(gomock.Any(), patch).Return(updated, nil)
				m.actionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))
				m.settings.EXPECT().Load(gomock.Any()).Return(previous, nil)
			},
			wantErr: "insert failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			got, err := service.UpdateSystemSettings(context.Background(), "admin", patch)
			switch {
			case tt.wantReason != "":
				assert.True(t, domain.IsValidation(err, tt.wantReason), "got %v", err)
			case tt.wantErr != "":
				assert.EqualError(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.True(t, rate.Equal(got.FeeRate))
			}
		})
	}
}

func TestService_SetCampaignSlots(t *testing.T) {
	current := func() *domain.Campaign {
		return &domain.Campaign{ID: "c-1", TotalSlots: 5, AvailableSlots: 2}
	}

	tests := []struct {
		name        string
		available   int
		prepareMock func(m *mocks)
		wantErr     error
		wantReason  string
	}{
		{
			name:      "Within bounds",
			available: 3,
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(current(), nil)
				m.campaignRepo.EXPECT().UpdateSlots(gomock.Any(), "c-1", 3).Return(nil)
				m.actionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.AdminAction) error {
					assert.Equal(t, "admin-1", a.AdminID)
					assert.Equal(t, domain.AdminCampaignSlots, a.Action)
					assert.Equal(t, "c-1", a.Target)
					assert.JSONEq(t, `{"available_slots":2}`, a.Previous)
					assert.JSONEq(t, `{"available_slots":3}`, a.New)
					return nil
				})
			},
		},
		{
			name:      "Above total",
			available: 6,
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(current(), nil)
				m.campaignRepo.EXPECT().UpdateSlots(gomock.Any(), "c-1", 6).Return(domain.NewValidationError("slots_out_of_range"))
			},
			wantReason: "slots_out_of_range",
		},
		{
			name:      "Unknown campaign",
			available: 1,
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:      "Audit failure",
			available: 3,
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(current(), nil)
				m.campaignRepo.EXPECT().UpdateSlots(gomock.Any(), "c-1", 3).Return(nil)
				m.actionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errInsert)
			},
			wantErr: errInsert,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			campaign, err := service.SetCampaignSlots(context.Background(), "admin-1", "c-1", tt.available)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantReason != "":
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantReason, ve.Reason)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.available, campaign.AvailableSlots)
			}
		})
	}
}

var errInsert = errors.New("insert failed")

func TestService_ListActions(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "Explicit", limit: 20, wantLimit: 20},
		{name: "Zero uses max", limit: 0, wantLimit: maxActions},
		{name: "Clamped", limit: 1000, wantLimit: maxActions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			m.actionRepo.EXPECT().List(gomock.Any(), tt.wantLimit).Return([]domain.AdminAction{{ID: "a-1"}}, nil)

			actions, err := service.ListActions(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.Len(t, actions, 1)
		})
	}
}
