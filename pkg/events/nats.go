package events

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
)

const subjectPrefix = "taskquer.events."

type natsConn interface {
	Publish(subj string, data []byte) error
}

type NatsPublisher struct {
	nc   natsConn
	conn *nats.Conn
}

func NewNatsPublisher(url string, opts ...nats.Option) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{nc: nc, conn: nc}, nil
}

func (p *NatsPublisher) Publish(_ context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		zap.L().Error("can't encode event", zap.String("type", string(e.Type)), zap.Error(err))
		return
	}
	if err := p.nc.Publish(subjectPrefix+string(e.Type), payload); err != nil {
		zap.L().Warn("can't publish event", zap.String("type", string(e.Type)), zap.Error(err))
	}
}

func (p *NatsPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
		p.conn.Close()
	}
}
