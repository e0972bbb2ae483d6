package chain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/sony/gobreaker/v2"

	"github.com/ronsuru/taskquer/pkg/clients"
	"github.com/ronsuru/taskquer/pkg/money"
)

type payoutBody struct {
	ID          string `json:"id"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	Units       string `json:"units"`
}

type payoutResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Hash   string `json:"hash"`
	Error  string `json:"error"`
}

// PayoutGateway sends outbound transfers through the custody service. The request id is the idempotency key.
type PayoutGateway struct {
	baseURL  string
	token    string
	decimals int32
	client   clients.HTTPClientI
	breaker  *gobreaker.CircuitBreaker[*PayoutResult]
}

func NewPayoutGateway(baseURL, token string, decimals int32, client clients.HTTPClientI) *PayoutGateway {
	return &PayoutGateway{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		decimals: decimals,
		client:   client,
		breaker:  newBreaker[*PayoutResult]("payout"),
	}
}

func (g *PayoutGateway) ProcessWithdrawal(ctx context.Context, req PayoutRequest) (*PayoutResult, error) {
	body, err := json.Marshal(payoutBody{
		ID:          req.ID,
		Destination: req.Destination,
		Amount:      req.Amount.String(),
		Units:       money.ToUnits(req.Amount, g.decimals),
	})
	if err != nil {
		return nil, err
	}
	return g.breaker.Execute(func() (*PayoutResult, error) {
		status, resp, _, err := g.client.Post(ctx, g.baseURL+"/payouts", g.headers(), body)
		if err != nil {
			return nil, err
		}
		switch status {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusConflict:
			return decodePayout(resp)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			res, err := decodePayout(resp)
			if err != nil {
				return &PayoutResult{Status: PayoutFailed, Error: fmt.Sprintf("rejected with http %d", status)}, nil
			}
			res.Status = PayoutFailed
			return res, nil
		default:
			return nil, fmt.Errorf("%w: payout http %d", ErrUnexpectedStatus, status)
		}
	})
}

func (g *PayoutGateway) LookupWithdrawal(ctx context.Context, id string) (*PayoutResult, error) {
	return g.breaker.Execute(func() (*PayoutResult, error) {
		status, resp, _, err := g.client.Get(ctx, g.baseURL+"/payouts/"+url.PathEscape(id), g.headers())
		if err != nil {
			return nil, err
		}
		switch status {
		case http.StatusOK:
			return decodePayout(resp)
		case http.StatusNotFound:
			return &PayoutResult{Status: PayoutUnknown}, nil
		default:
			return nil, fmt.Errorf("%w: payout http %d", ErrUnexpectedStatus, status)
		}
	})
}

func (g *PayoutGateway) headers() http.Header {
	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")
	if g.token != "" {
		headers.Set("Authorization", "Bearer "+g.token)
	}
	return headers
}

func decodePayout(body []byte) (*PayoutResult, error) {
	var resp payoutResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode payout response: %w", err)
	}
	status := PayoutStatus(resp.Status)
	switch status {
	case PayoutCompleted, PayoutFailed, PayoutProcessing:
	default:
		status = PayoutUnknown
	}
	return &PayoutResult{Status: status, Hash: resp.Hash, Error: resp.Error}, nil
}
