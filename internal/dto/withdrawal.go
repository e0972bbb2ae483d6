package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ronsuru/taskquer/internal/domain"
)

type WithdrawRequestDTO struct {
	Amount            decimal.Decimal `json:"amount" swaggertype:"string" example:"5"`
	DestinationWallet string          `json:"destination_wallet,omitempty" example:"UQCrq6urq6urq6urq6urq6urq6urq6urq6urq6urq6urq5jh"`
}

type WithdrawalResponseDTO struct {
	ID                string          `json:"id"`
	Amount            decimal.Decimal `json:"amount" swaggertype:"string" example:"4.95"`
	Fee               decimal.Decimal `json:"fee" swaggertype:"string" example:"0.05"`
	DestinationWallet string          `json:"destination_wallet"`
	Status            string          `json:"status" example:"completed"`
	Hash              *string         `json:"hash,omitempty"`
	Error             string          `json:"error,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	ProcessedAt       *time.Time      `json:"processed_at,omitempty" example:"2020-12-09T16:09:57+03:00"`
}

func NewWithdrawalResponse(w *domain.Withdrawal) WithdrawalResponseDTO {
	return WithdrawalResponseDTO{
		ID:                w.ID,
		Amount:            w.Amount,
		Fee:               w.Fee,
		DestinationWallet: w.DestinationWallet,
		Status:            string(w.Status),
		Hash:              w.Hash,
		Error:             w.Error,
		CreatedAt:         w.CreatedAt,
		ProcessedAt:       w.ProcessedAt,
	}
}

func NewWithdrawalsResponse(ws []domain.Withdrawal) []WithdrawalResponseDTO {
	out := make([]WithdrawalResponseDTO, len(ws))
	for i := range ws {
		out[i] = NewWithdrawalResponse(&ws[i])
	}
	return out
}
