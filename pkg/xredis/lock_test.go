package xredis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestLeaderLock_TryAcquire(t *testing.T) {
	const key = "taskquer:reconciler"
	ttl := 30 * time.Second

	tests := []struct {
		name  string
		setup func(mock redismock.ClientMock)
		want  bool
	}{
		{
			name: "Free lock is taken",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, "node-1", ttl).SetVal(true)
			},
			want: true,
		},
		{
			name: "Own lock is renewed",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, "node-1", ttl).SetVal(false)
				mock.ExpectGet(key).SetVal("node-1")
				mock.ExpectExpire(key, ttl).SetVal(true)
			},
			want: true,
		},
		{
			name: "Held by another node",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, "node-1", ttl).SetVal(false)
				mock.ExpectGet(key).SetVal("node-2")
			},
			want: false,
		},
		{
			name: "Expired between calls",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, "node-1", ttl).SetVal(false)
				mock.ExpectGet(key).SetErr(redis.Nil)
			},
			want: false,
		},
		{
			name: "Redis down",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, "node-1", ttl).SetErr(errors.New("connection refused"))
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			tt.setup(mock)

			lock := NewLeaderLock(db)
			lock.id = "node-1"

			assert.Equal(t, tt.want, lock.TryAcquire(context.Background(), key, ttl))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
