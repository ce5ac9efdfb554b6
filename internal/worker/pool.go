package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bucketbench/internal/metrics"
	"bucketbench/internal/queue"
	"bucketbench/internal/report"

	"go.uber.org/zap"
)

// DefaultPollInterval is how long an idle worker waits before rechecking the
// queue for new work.
const DefaultPollInterval = 10 * time.Millisecond

// Config contains worker configuration
type Config struct {
	PollInterval time.Duration
}

// Summary aggregates per-task outcomes across the pool.
type Summary struct {
	Attempted int64
	Succeeded int64
	Failed    int64
	BytesRead int64
}

// Pool drains the work queue with a fixed number of goroutines. Each worker
// loops pop-read-repeat, briefly sleeps when the queue is empty but still
// open, and exits once the queue is observed empty and closed. A failed read
// never terminates its worker.
type Pool struct {
	size    int
	config  Config
	queue   *queue.Queue
	reader  *Reader
	metrics *metrics.Collector
	results report.Store // optional, may be nil
	logger  *zap.Logger

	attempted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	bytesRead atomic.Int64
}

// NewPool creates a new worker pool
func NewPool(
	size int,
	config Config,
	q *queue.Queue,
	reader *Reader,
	metricsCollector *metrics.Collector,
	results report.Store,
	logger *zap.Logger,
) *Pool {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &Pool{
		size:    size,
		config:  config,
		queue:   q,
		reader:  reader,
		metrics: metricsCollector,
		results: results,
		logger:  logger,
	}
}

// Start starts the worker pool
func (p *Pool) Start(ctx context.Context, wg *sync.WaitGroup) {
	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go p.worker(ctx, i, wg)
	}
}

// Summary returns the aggregate counts recorded so far. Stable once all
// workers have finished.
func (p *Pool) Summary() Summary {
	return Summary{
		Attempted: p.attempted.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
		BytesRead: p.bytesRead.Load(),
	}
}

func (p *Pool) worker(ctx context.Context, id int, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := p.logger.With(zap.Int("worker_id", id))
	logger.Debug("Worker started")

	for {
		task, ok := p.queue.TryPop()
		if !ok {
			// Drained checks empty and closed under one lock; a task pushed
			// between TryPop and this check keeps it false.
			if p.queue.Drained() {
				logger.Debug("Worker finished - queue drained")
				return
			}

			select {
			case <-ctx.Done():
				logger.Info("Worker stopped - context cancelled")
				return
			case <-time.After(p.config.PollInterval):
			}
			continue
		}

		p.process(ctx, task, logger)
	}
}

func (p *Pool) process(ctx context.Context, task queue.Task, logger *zap.Logger) {
	startTime := time.Now()

	p.attempted.Add(1)
	p.metrics.IncInflight()
	defer p.metrics.DecInflight()

	n, err := p.reader.Read(ctx, task)
	elapsed := time.Since(startTime)

	if err != nil {
		p.failed.Add(1)
		p.metrics.IncFailed()
		logger.Warn("Read failed",
			zap.String("key", task.Key),
			zap.String("range", task.Range.String()),
			zap.Error(err),
		)
		p.record(task, 0, elapsed, err)
		return
	}

	p.succeeded.Add(1)
	p.bytesRead.Add(n)
	p.metrics.IncSuccessWithBytes(n)
	p.metrics.ObserveDuration(elapsed)
	logger.Info("Read completed",
		zap.String("key", task.Key),
		zap.String("range", task.Range.String()),
		zap.Int64("bytes", n),
		zap.Duration("duration", elapsed),
	)
	p.record(task, n, elapsed, nil)
}

func (p *Pool) record(task queue.Task, bytes int64, elapsed time.Duration, readErr error) {
	if p.results == nil {
		return
	}

	record := &report.TaskRecord{
		Bucket:     task.Bucket,
		Key:        task.Key,
		Range:      task.Range.String(),
		Bytes:      bytes,
		DurationMs: elapsed.Milliseconds(),
		Status:     report.StatusSuccess,
	}
	if readErr != nil {
		record.Status = report.StatusFailed
		record.LastError = readErr.Error()
	}

	if err := p.results.SaveTask(record); err != nil {
		p.logger.Error("Failed to save read result",
			zap.String("key", task.Key),
			zap.String("range", task.Range.String()),
			zap.Error(err),
		)
	}
}
