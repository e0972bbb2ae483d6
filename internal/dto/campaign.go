package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/pkg/money"
)

type CreateCampaignRequestDTO struct {
	Title        string          `json:"title" example:"Join our channel"`
	Description  string          `json:"description,omitempty"`
	Platform     string          `json:"platform" example:"telegram"`
	TaskType     string          `json:"task_type" example:"join"`
	TaskURL      string          `json:"task_url,omitempty" example:"https://t.me/channel"`
	TotalSlots   int             `json:"total_slots" example:"10"`
	RewardAmount decimal.Decimal `json:"reward_amount" swaggertype:"string" example:"0.5"`
}

func (r CreateCampaignRequestDTO) Input() domain.CampaignInput {
	return domain.CampaignInput{
		Title:        r.Title,
		Description:  r.Description,
		Platform:     r.Platform,
		TaskType:     r.TaskType,
		TaskURL:      r.TaskURL,
		TotalSlots:   r.TotalSlots,
		RewardAmount: r.RewardAmount,
	}
}

type FundCampaignRequestDTO struct {
	TxHash string `json:"tx_hash" example:"97264395BD65A255A429B11326C84128B7D70FFED7949ABAE3036D506BA38621"`
}

type CampaignResponseDTO struct {
	ID             string          `json:"id"`
	CreatorID      string          `json:"creator_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Platform       string          `json:"platform"`
	TaskType       string          `json:"task_type"`
	TaskURL        string          `json:"task_url,omitempty"`
	TotalSlots     int             `json:"total_slots" example:"10"`
	AvailableSlots int             `json:"available_slots" example:"4"`
	RewardAmount   decimal.Decimal `json:"reward_amount" swaggertype:"string" example:"0.5"`
	EscrowAmount   decimal.Decimal `json:"escrow_amount" swaggertype:"string" example:"5"`
	Fee            decimal.Decimal `json:"fee" swaggertype:"string" example:"0.05"`
	Status         string          `json:"status" example:"active"`
	CreatedAt      time.Time       `json:"created_at"`
}

func NewCampaignResponse(c *domain.Campaign) CampaignResponseDTO {
	return CampaignResponseDTO{
		ID:             c.ID,
		CreatorID:      c.CreatorID,
		Title:          c.Title,
		Description:    c.Description,
		Platform:       c.Platform,
		TaskType:       c.TaskType,
		TaskURL:        c.TaskURL,
		TotalSlots:     c.TotalSlots,
		AvailableSlots: c.AvailableSlots,
		RewardAmount:   c.RewardAmount,
		EscrowAmount:   c.EscrowAmount,
		Fee:            c.Fee,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
	}
}

func NewCampaignsResponse(cs []domain.Campaign) []CampaignResponseDTO {
	out := make([]CampaignResponseDTO, len(cs))
	for i := range cs {
		out[i] = NewCampaignResponse(&cs[i])
	}
	return out
}

type CostResponseDTO struct {
	Subtotal decimal.Decimal `json:"subtotal" swaggertype:"string" example:"5"`
	Fee      decimal.Decimal `json:"fee" swaggertype:"string" example:"0.05"`
	Total    decimal.Decimal `json:"total" swaggertype:"string" example:"5.05"`
}

func NewCostResponse(c money.Cost) CostResponseDTO {
	return CostResponseDTO{Subtotal: c.Subtotal, Fee: c.Fee, Total: c.Total}
}
