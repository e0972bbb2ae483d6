package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ronsuru/taskquer/internal/domain"
)

type UserResponseDTO struct {
	ID             string          `json:"id" example:"0b7e6a52-3f8c-4a55-9a2e-6f3b1a7c9d10"`
	TelegramID     int64           `json:"telegram_id" example:"42"`
	Username       string          `json:"username,omitempty" example:"alice"`
	WalletAddress  string          `json:"wallet_address,omitempty"`
	Balance        decimal.Decimal `json:"balance" swaggertype:"string" example:"12.5"`
	Rewards        decimal.Decimal `json:"rewards" swaggertype:"string" example:"3.2"`
	CompletedTasks int             `json:"completed_tasks" example:"7"`
	IsAdmin        bool            `json:"is_admin"`
	CreatedAt      time.Time       `json:"created_at"`
}

func NewUserResponse(u *domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:             u.ID,
		TelegramID:     u.TelegramID,
		Username:       u.Username,
		WalletAddress:  u.WalletAddress,
		Balance:        u.Balance,
		Rewards:        u.Rewards,
		CompletedTasks: u.CompletedTasks,
		IsAdmin:        u.IsAdmin,
		CreatedAt:      u.CreatedAt,
	}
}

type UpdateWalletRequestDTO struct {
	WalletAddress string `json:"wallet_address" example:"UQCrq6urq6urq6urq6urq6urq6urq6urq6urq6urq6urq5jh"`
}

type TransactionResponseDTO struct {
	ID           string          `json:"id"`
	Type         string          `json:"type" example:"reward"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"string" example:"0.5"`
	Fee          decimal.Decimal `json:"fee" swaggertype:"string" example:"0"`
	Status       string          `json:"status" example:"completed"`
	Hash         *string         `json:"hash,omitempty"`
	CampaignID   *string         `json:"campaign_id,omitempty"`
	SubmissionID *string         `json:"submission_id,omitempty"`
	WithdrawalID *string         `json:"withdrawal_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func NewTransactionsResponse(txs []domain.Transaction) []TransactionResponseDTO {
	out := make([]TransactionResponseDTO, len(txs))
	for i, tx := range txs {
		out[i] = TransactionResponseDTO{
			ID:           tx.ID,
			Type:         string(tx.Type),
			Amount:       tx.Amount,
			Fee:          tx.Fee,
			Status:       string(tx.Status),
			Hash:         tx.Hash,
			CampaignID:   tx.CampaignID,
			SubmissionID: tx.SubmissionID,
			WithdrawalID: tx.WithdrawalID,
			CreatedAt:    tx.CreatedAt,
		}
	}
	return out
}
