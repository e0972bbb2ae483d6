package chain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/xssnick/tonutils-go/address"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ronsuru/taskquer/pkg/clients"
	"github.com/ronsuru/taskquer/pkg/money"
)

const (
	defaultTonAPI = "https://tonapi.io"
	tonDecimals   = 9
)

type TonAPIConfig struct {
	BaseURL        string
	Token          string
	DepositWallet  string
	JettonMaster   string
	JettonDecimals int32
	RPS            float64
}

type accountRef struct {
	Address string `json:"address"`
}

type tonapiEvent struct {
	EventID    string `json:"event_id"`
	InProgress bool   `json:"in_progress"`
	Actions    []struct {
		Type        string `json:"type"`
		Status      string `json:"status"`
		TonTransfer *struct {
			Sender    accountRef `json:"sender"`
			Recipient accountRef `json:"recipient"`
			Amount    int64      `json:"amount"`
		} `json:"TonTransfer,omitempty"`
		JettonTransfer *struct {
			Sender    *accountRef `json:"sender"`
			Recipient *accountRef `json:"recipient"`
			Amount    string      `json:"amount"`
			Jetton    accountRef  `json:"jetton"`
		} `json:"JettonTransfer,omitempty"`
	} `json:"actions"`
}

// TonAPI verifies deposits by reading the event a transaction hash belongs to.
type TonAPI struct {
	baseURL  string
	token    string
	deposit  *address.Address
	jetton   *address.Address
	decimals int32
	client   clients.HTTPClientI
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[*Verification]
	group    singleflight.Group
}

func NewTonAPI(cfg TonAPIConfig, client clients.HTTPClientI) (*TonAPI, error) {
	deposit, err := ParseAddress(cfg.DepositWallet)
	if err != nil {
		return nil, fmt.Errorf("deposit wallet: %w", err)
	}
	var jetton *address.Address
	if cfg.JettonMaster != "" {
		if jetton, err = ParseAddress(cfg.JettonMaster); err != nil {
			return nil, fmt.Errorf("jetton master: %w", err)
		}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultTonAPI
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &TonAPI{
		baseURL:  baseURL,
		token:    cfg.Token,
		deposit:  deposit,
		jetton:   jetton,
		decimals: cfg.JettonDecimals,
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
		breaker:  newBreaker[*Verification]("tonapi"),
	}, nil
}

// VerifyTransaction reports whether hash is a finished transfer to the deposit wallet and how much it carried.
// Concurrent calls for one hash share a single upstream request.
func (c *TonAPI) VerifyTransaction(ctx context.Context, hash string) (*Verification, error) {
	v, err, _ := c.group.Do(hash, func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.breaker.Execute(func() (*Verification, error) {
			return c.fetchEvent(ctx, hash)
		})
	})
	if err != nil {
		zap.L().Warn("deposit verification failed", zap.String("hash", hash), zap.Error(err))
		return nil, err
	}
	return v.(*Verification), nil
}

func (c *TonAPI) fetchEvent(ctx context.Context, hash string) (*Verification, error) {
	headers := http.Header{}
	headers.Set("Accept", "application/json")
	if c.token != "" {
		headers.Set("Authorization", "Bearer "+c.token)
	}

	status, body, _, err := c.client.Get(ctx, c.baseURL+"/v2/events/"+url.PathEscape(hash), headers)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusBadRequest:
		return &Verification{}, nil
	default:
		return nil, fmt.Errorf("%w: tonapi http %d", ErrUnexpectedStatus, status)
	}

	var event tonapiEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode tonapi event: %w", err)
	}
	if event.InProgress {
		return &Verification{}, nil
	}
	return c.sumDeposits(&event), nil
}

// sumDeposits adds up the finished transfers to the deposit wallet and remembers who sent each.
func (c *TonAPI) sumDeposits(event *tonapiEvent) *Verification {
	total := decimal.Zero
	found := false
	var senders []string
	for _, action := range event.Actions {
		if action.Status != "ok" {
			continue
		}
		switch {
		case c.jetton != nil && action.Type == "JettonTransfer" && action.JettonTransfer != nil:
			tr := action.JettonTransfer
			if tr.Recipient == nil || !c.matches(tr.Recipient.Address, c.deposit) || !c.matches(tr.Jetton.Address, c.jetton) {
				continue
			}
			amount, err := money.FromUnits(tr.Amount, c.decimals)
			if err != nil {
				continue
			}
			total = total.Add(amount)
			found = true
			sender := ""
			if tr.Sender != nil {
				sender = tr.Sender.Address
			}
			senders = append(senders, sender)
		case c.jetton == nil && action.Type == "TonTransfer" && action.TonTransfer != nil:
			tr := action.TonTransfer
			if !c.matches(tr.Recipient.Address, c.deposit) {
				continue
			}
			total = total.Add(decimal.New(tr.Amount, -tonDecimals))
			found = true
			senders = append(senders, tr.Sender.Address)
		}
	}
	return &Verification{Valid: found && total.IsPositive(), Amount: total, Senders: senders}
}

func (c *TonAPI) matches(raw string, want *address.Address) bool {
	got, err := ParseAddress(raw)
	if err != nil {
		return false
	}
	return SameAddress(got, want)
}
