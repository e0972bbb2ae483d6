package reconciler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/pkg/metrics"
)

type WorkerPoolI interface {
	AddTask(ctx context.Context, task Task) error
	Close()
}

// Task reconciles a single withdrawal.
type Task struct {
	WithdrawalID string
	Run          func() error
}

type WorkerPool struct {
	tasks chan Task
	wg    sync.WaitGroup
	once  sync.Once
}

func NewWorkerPool(size int) *WorkerPool {
	wp := &WorkerPool{tasks: make(chan Task, size)}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		wp.execute(task)
	}
}

// execute runs one task. A panicking task is logged and does not take the worker down.
func (wp *WorkerPool) execute(task Task) {
	defer func() {
		if p := recover(); p != nil {
			metrics.ReconciledTotal.WithLabelValues("panic").Inc()
			zap.L().Error("withdrawal reconciliation panicked",
				zap.String("withdrawalID", task.WithdrawalID),
				zap.Any("panic", p))
		}
	}()
	if err := task.Run(); err != nil {
		zap.L().Error("withdrawal reconciliation failed",
			zap.String("withdrawalID", task.WithdrawalID),
			zap.Error(err))
	}
}

func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.tasks <- task:
		return nil
	}
}

// Close stops accepting tasks and blocks until the queued ones have run. No AddTask may follow.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() { close(wp.tasks) })
	wp.wg.Wait()
}
