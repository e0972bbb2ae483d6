package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Async moves delivery off the request path. Events beyond the buffer, or published
// after Close, are dropped.
type Async struct {
	next  Publisher
	queue chan Event
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewAsync(next Publisher, buffer int) *Async {
	a := &Async{next: next, queue: make(chan Event, buffer)}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *Async) run() {
	defer a.wg.Done()
	for e := range a.queue {
		a.next.Publish(context.Background(), e)
	}
}

func (a *Async) Publish(_ context.Context, e Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		zap.L().Warn("event publisher closed, dropping event", zap.String("type", string(e.Type)), zap.String("entity", e.EntityID))
		return
	}
	select {
	case a.queue <- e:
	default:
		zap.L().Warn("event queue full, dropping event", zap.String("type", string(e.Type)), zap.String("entity", e.EntityID))
	}
}

// Close drains queued events and waits for their delivery.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	a.wg.Wait()
}
