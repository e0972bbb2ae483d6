// Package events carries post-commit notifications to read-only consumers.
// Publishing never fails the operation that produced the event.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	CampaignFunded      Type = "campaign.funded"
	SubmissionCreated   Type = "submission.created"
	SubmissionApproved  Type = "submission.approved"
	SubmissionRejected  Type = "submission.rejected"
	WithdrawalCompleted Type = "withdrawal.completed"
	WithdrawalFailed    Type = "withdrawal.failed"
)

type Event struct {
	Type       Type            `json:"type"`
	UserID     string          `json:"user_id"`
	TelegramID int64           `json:"telegram_id,omitempty"`
	EntityID   string          `json:"entity_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	for _, p := range m {
		p.Publish(ctx, e)
	}
}
