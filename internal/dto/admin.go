package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ronsuru/taskquer/internal/domain"
)

type BalanceAdjustmentRequestDTO struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"2.5"`
}

type BalanceAdjustmentResponseDTO struct {
	ID              string          `json:"id"`
	AdminID         string          `json:"admin_id"`
	UserID          string          `json:"user_id"`
	Action          string          `json:"action" example:"add"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"2.5"`
	PreviousBalance decimal.Decimal `json:"previous_balance" swaggertype:"string" example:"10"`
	NewBalance      decimal.Decimal `json:"new_balance" swaggertype:"string" example:"12.5"`
	CreatedAt       time.Time       `json:"created_at"`
}

func NewBalanceAdjustmentResponse(a *domain.BalanceAdjustment) BalanceAdjustmentResponseDTO {
	return BalanceAdjustmentResponseDTO{
		ID:              a.ID,
		AdminID:         a.AdminID,
		UserID:          a.UserID,
		Action:          string(a.Action),
		Amount:          a.Amount,
		PreviousBalance: a.PreviousBalance,
		NewBalance:      a.NewBalance,
		CreatedAt:       a.CreatedAt,
	}
}

type AdminActionResponseDTO struct {
	ID        string    `json:"id"`
	AdminID   string    `json:"admin_id"`
	Action    string    `json:"action" example:"campaign_slots"`
	Target    string    `json:"target" example:"system_settings"`
	Previous  string    `json:"previous"`
	New       string    `json:"new"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAdminActionResponse(a *domain.AdminAction) AdminActionResponseDTO {
	return AdminActionResponseDTO{
		ID:        a.ID,
		AdminID:   a.AdminID,
		Action:    string(a.Action),
		Target:    a.Target,
		Previous:  a.Previous,
		New:       a.New,
		CreatedAt: a.CreatedAt,
	}
}

type CampaignSlotsRequestDTO struct {
	AvailableSlots int `json:"available_slots" example:"3"`
}

// SettingsDTO is both the settings view and the patch body; absent fields stay unchanged.
type SettingsDTO struct {
	FeeRate           *decimal.Decimal `json:"fee_rate,omitempty" swaggertype:"string" example:"0.01"`
	WithdrawalFeeRate *decimal.Decimal `json:"withdrawal_fee_rate,omitempty" swaggertype:"string" example:"0.01"`
	MinWithdrawal     *decimal.Decimal `json:"min_withdrawal,omitempty" swaggertype:"string" example:"1"`
}

func NewSettingsResponse(s domain.SystemSettings) SettingsDTO {
	return SettingsDTO{FeeRate: &s.FeeRate, WithdrawalFeeRate: &s.WithdrawalFeeRate, MinWithdrawal: &s.MinWithdrawal}
}

func (s SettingsDTO) Patch() domain.SettingsPatch {
	return domain.SettingsPatch{FeeRate: s.FeeRate, WithdrawalFeeRate: s.WithdrawalFeeRate, MinWithdrawal: s.MinWithdrawal}
}
