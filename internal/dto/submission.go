package dto

import (
	"time"

	"github.com/ronsuru/taskquer/internal/domain"
)

type SubmitRequestDTO struct {
	ProofType string `json:"proof_type" example:"link"`
	ProofData string `json:"proof_data" example:"https://t.me/c/123/456"`
}

type ReviewRequestDTO struct {
	Decision string `json:"decision" example:"approved"`
}

type SubmissionResponseDTO struct {
	ID         string     `json:"id"`
	CampaignID string     `json:"campaign_id"`
	UserID     string     `json:"user_id"`
	ProofType  string     `json:"proof_type" example:"link"`
	ProofData  string     `json:"proof_data"`
	Status     string     `json:"status" example:"pending"`
	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewSubmissionResponse(s *domain.TaskSubmission) SubmissionResponseDTO {
	return SubmissionResponseDTO{
		ID:         s.ID,
		CampaignID: s.CampaignID,
		UserID:     s.UserID,
		ProofType:  string(s.ProofType),
		ProofData:  s.ProofData,
		Status:     string(s.Status),
		ReviewedBy: s.ReviewedBy,
		ReviewedAt: s.ReviewedAt,
		CreatedAt:  s.CreatedAt,
	}
}

func NewSubmissionsResponse(ss []domain.TaskSubmission) []SubmissionResponseDTO {
	out := make([]SubmissionResponseDTO, len(ss))
	for i := range ss {
		out[i] = NewSubmissionResponse(&ss[i])
	}
	return out
}
