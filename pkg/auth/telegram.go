package auth

import (
	"errors"
	"fmt"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

var ErrInvalidInitData = errors.New("invalid init data")

type TelegramUser struct {
	ID        int64
	Username  string
	FirstName string
}

// InitDataValidator checks Mini App launch parameters signed with the bot token.
type InitDataValidator struct {
	botToken string
	expIn    time.Duration
}

func NewInitDataValidator(botToken string, expIn time.Duration) *InitDataValidator {
	return &InitDataValidator{botToken: botToken, expIn: expIn}
}

func (v *InitDataValidator) Parse(raw string) (*TelegramUser, error) {
	if v.botToken == "" {
		return nil, errors.New("init data validation is not configured")
	}
	if err := initdata.Validate(raw, v.botToken, v.expIn); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}
	parsed, err := initdata.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}
	if parsed.User.ID == 0 {
		return nil, fmt.Errorf("%w: user is missing", ErrInvalidInitData)
	}
	return &TelegramUser{
		ID:        parsed.User.ID,
		Username:  parsed.User.Username,
		FirstName: parsed.User.FirstName,
	}, nil
}
