package events

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const sendTimeout = 5 * time.Second

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier tells the affected user about outcomes that concern them.
type TelegramNotifier struct {
	bot messageSender
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: b}, nil
}

func (n *TelegramNotifier) Publish(ctx context.Context, e Event) {
	if e.TelegramID == 0 {
		return
	}
	text := messageFor(e)
	if text == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()
	if _, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: e.TelegramID, Text: text}); err != nil {
		zap.L().Warn("can't notify user", zap.Int64("telegramID", e.TelegramID), zap.String("type", string(e.Type)), zap.Error(err))
	}
}

func messageFor(e Event) string {
	switch e.Type {
	case CampaignFunded:
		return "Your campaign is funded and now accepting submissions."
	case SubmissionApproved:
		return fmt.Sprintf("Your submission was approved. %s USDT was added to your balance.", e.Amount.String())
	case SubmissionRejected:
		return "Your submission was rejected."
	case WithdrawalCompleted:
		return fmt.Sprintf("Withdrawal of %s USDT was sent.", e.Amount.String())
	case WithdrawalFailed:
		return "Your withdrawal failed and the full amount was returned to your balance."
	default:
		return ""
	}
}
