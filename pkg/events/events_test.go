package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/segmentio/encoding/json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (c *fakeConn) Publish(subj string, data []byte) error {
	c.subject, c.data = subj, data
	return c.err
}

type fakeSender struct {
	sent []*bot.SendMessageParams
	err  error
}

func (s *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	s.sent = append(s.sent, params)
	return &models.Message{}, s.err
}

func TestMulti_Publish(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, b}.Publish(context.Background(), Event{Type: CampaignFunded, EntityID: "c-1"})

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.False(t, a.events[0].OccurredAt.IsZero())
	assert.Equal(t, "c-1", b.events[0].EntityID)
}

func TestNatsPublisher_Publish(t *testing.T) {
	tests := []struct {
		name    string
		connErr error
	}{
		{name: "Published"},
		{name: "Broker error is swallowed", connErr: errors.New("nats: connection closed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{err: tt.connErr}
			p := &NatsPublisher{nc: conn}

			p.Publish(context.Background(), Event{Type: WithdrawalCompleted, EntityID: "w-1", Amount: decimal.RequireFromString("9.9")})

			assert.Equal(t, "taskquer.events.withdrawal.completed", conn.subject)
			var got map[string]any
			require.NoError(t, json.Unmarshal(conn.data, &got))
			assert.Equal(t, "w-1", got["entity_id"])
			assert.Equal(t, "9.9", got["amount"])
		})
	}
}

func TestTelegramNotifier_Publish(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		wantSent bool
	}{
		{name: "Approval is sent", event: Event{Type: SubmissionApproved, TelegramID: 42, Amount: decimal.RequireFromString("0.5")}, wantSent: true},
		{name: "Failed withdrawal is sent", event: Event{Type: WithdrawalFailed, TelegramID: 42}, wantSent: true},
		{name: "No chat to send to", event: Event{Type: SubmissionApproved}, wantSent: false},
		{name: "Creator-only event", event: Event{Type: SubmissionCreated, TelegramID: 42}, wantSent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			(&TelegramNotifier{bot: sender}).Publish(context.Background(), tt.event)

			if !tt.wantSent {
				assert.Empty(t, sender.sent)
				return
			}
			require.Len(t, sender.sent, 1)
			assert.Equal(t, int64(42), sender.sent[0].ChatID)
			assert.NotEmpty(t, sender.sent[0].Text)
		})
	}
}

func TestAsync_DeliversBeforeClose(t *testing.T) {
	rec := &recorder{}
	a := NewAsync(rec, 16)
	for i := 0; i < 10; i++ {
		a.Publish(context.Background(), Event{Type: SubmissionCreated})
	}
	a.Close()
	a.Close()

	assert.Len(t, rec.events, 10)
}

func TestAsync_PublishAfterCloseIsDropped(t *testing.T) {
	rec := &recorder{}
	a := NewAsync(rec, 4)
	a.Close()

	assert.NotPanics(t, func() {
		a.Publish(context.Background(), Event{Type: WithdrawalFailed, EntityID: "w-1"})
	})
	assert.Empty(t, rec.events)
}

func TestAsync_ConcurrentPublishAndClose(t *testing.T) {
	a := NewAsync(Nop{}, 4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				a.Publish(context.Background(), Event{Type: WithdrawalCompleted})
			}
		}()
	}
	a.Close()
	wg.Wait()
}
