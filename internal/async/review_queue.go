package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/romitbhandari17/agentic-risk-automation/internal/review"
)

type ReviewQueue struct {
	proc    *review.Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ReviewQueue)

func WithWorkers(n int) Option {
	return func(q *ReviewQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ReviewQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ReviewQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewReviewQueue(proc *review.Processor, logger *slog.Logger, opts ...Option) *ReviewQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ReviewQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ReviewQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					_, err := q.proc.ProcessContract(ctx, job.Request)
					cancel()

					if err != nil {
						q.logger.Error("review failed", "worker_id", workerID, "contract_id", job.Request.ContractID, "error", err)
					} else {
						q.logger.Info("review completed", "worker_id", workerID, "contract_id", job.Request.ContractID)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ReviewQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "contract_id", job.Request.ContractID)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued contract for review", "contract_id", job.Request.ContractID)
	default:
		q.logger.Warn("queue full, applying backpressure", "contract_id", job.Request.ContractID)
		q.ch <- job
	}
	return nil
}

func (q *ReviewQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
