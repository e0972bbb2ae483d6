// Package reconciler resolves withdrawals left pending after a crash or a lost settlement write.
package reconciler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ronsuru/taskquer/internal/config"
	"github.com/ronsuru/taskquer/internal/domain"
)

const (
	leaderKey   = "taskquer:reconciler:leader"
	workers     = 10
	sweepLimit  = 100
	minInterval = time.Second
)

type Withdrawals interface {
	Stale(ctx context.Context, age time.Duration, limit int) ([]domain.Withdrawal, error)
	Reconcile(ctx context.Context, w domain.Withdrawal) error
}

type Leader interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) bool
}

type Service struct {
	withdrawals Withdrawals
	leader      Leader
	workerPool  WorkerPoolI
	interval    time.Duration
	staleAfter  time.Duration
	limit       int

	inFlight sync.Map
}

// New builds the reconciler. A nil leader means this instance always sweeps.
func New(cfg *config.Config, withdrawals Withdrawals, leader Leader) *Service {
	interval := cfg.ReconcileInterval
	if interval < minInterval {
		interval = minInterval
	}
	return &Service{
		withdrawals: withdrawals,
		leader:      leader,
		workerPool:  NewWorkerPool(workers),
		interval:    interval,
		staleAfter:  cfg.WithdrawalStaleAfter,
		limit:       sweepLimit,
	}
}

// Start sweeps on every tick until ctx is done. It returns once the running
// reconciliations have finished.
func (s *Service) Start(ctx context.Context) {
	zap.L().Info("withdrawal reconciler started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.workerPool.Close()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping reconciler")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	if s.leader != nil && !s.leader.TryAcquire(ctx, leaderKey, 2*s.interval) {
		return
	}

	stale, err := s.withdrawals.Stale(ctx, s.staleAfter, s.limit)
	if err != nil {
		zap.L().Error("failed to fetch stale withdrawals", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}
	zap.L().Info("reconciling stale withdrawals", zap.Int("count", len(stale)))

	var g errgroup.Group
	for _, w := range stale {
		w := w
		if _, loaded := s.inFlight.LoadOrStore(w.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, Task{
				WithdrawalID: w.ID,
				Run: func() error {
					defer s.inFlight.Delete(w.ID)
					return s.withdrawals.Reconcile(ctx, w)
				},
			})
			if err != nil {
				s.inFlight.Delete(w.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("error scheduling reconciliation", zap.Error(err))
	}
}
