// Package chain adapts TonAPI and the payout gateway to the narrow interface the ledger needs:
// verify an inbound deposit, validate an address, send and look up payouts.
package chain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var ErrUnexpectedStatus = errors.New("unexpected upstream status")

type Verification struct {
	Valid  bool
	Amount decimal.Decimal
	// Senders holds the source address of every counted transfer, as reported upstream.
	Senders []string
}

// SentFrom reports whether every counted transfer came from wallet.
func (v *Verification) SentFrom(wallet string) bool {
	want, err := ParseAddress(wallet)
	if err != nil || len(v.Senders) == 0 {
		return false
	}
	for _, raw := range v.Senders {
		got, err := ParseAddress(raw)
		if err != nil || !SameAddress(got, want) {
			return false
		}
	}
	return true
}

type PayoutStatus string

const (
	PayoutProcessing PayoutStatus = "processing"
	PayoutCompleted  PayoutStatus = "completed"
	PayoutFailed     PayoutStatus = "failed"
	PayoutUnknown    PayoutStatus = "unknown"
)

type PayoutRequest struct {
	ID          string
	Destination string
	Amount      decimal.Decimal
}

type PayoutResult struct {
	Status PayoutStatus
	Hash   string
	Error  string
}

func (r *PayoutResult) Success() bool {
	return r != nil && r.Status == PayoutCompleted
}

func newBreaker[T any](name string) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}
